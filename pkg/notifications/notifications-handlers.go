package notifications

import (
	"net/http"

	"github.com/seliand/macaw/pkg/auth"
	JSON "github.com/seliand/macaw/pkg/json-utilities"
	"github.com/seliand/macaw/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, nr Repository, notary *auth.Notary, ar *auth.Repository) {
	engine.Get("/notifications", getNotifications(nr), auth.Auth(notary, ar))
}

// getNotifications handles the GET "/notifications" route, returning the fifty
// most recent notifications, newest first, and marking them as seen.
func getNotifications(nr Repository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var user = auth.MustGetUser(request)

		recent, err := nr.GetRecent(user.Id)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't fetch notifications")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Notifications []Notification `json:"notifications"`
		}{recent})
	}
}
