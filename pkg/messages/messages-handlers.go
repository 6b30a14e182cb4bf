package messages

import (
	"errors"
	"net/http"

	"github.com/seliand/macaw/pkg/auth"
	JSON "github.com/seliand/macaw/pkg/json-utilities"
	"github.com/seliand/macaw/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, mr MessageRepository, notary *auth.Notary, ar *auth.Repository) {
	engine.Post("/messages", sendMessage(mr), auth.Auth(notary, ar))
	engine.Get("/messages", getThreads(mr), auth.Auth(notary, ar))
}

// sendMessage handles the POST "/messages" route.
func sendMessage(mr MessageRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[SendMessageData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		err = mr.Send(auth.MustGetUser(request), data)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "recipient not found")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't send message")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Ok bool `json:"ok"`
		}{true})
	}
}

// getThreads handles the GET "/messages" route, returning one row per
// conversation counterpart, newest first.
func getThreads(mr MessageRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var user = auth.MustGetUser(request)

		threads, err := mr.GetThreads(user.Id)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't fetch threads")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Threads []Thread `json:"threads"`
		}{threads})
	}
}
