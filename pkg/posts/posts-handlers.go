package posts

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/seliand/macaw/pkg/auth"
	JSON "github.com/seliand/macaw/pkg/json-utilities"
	"github.com/seliand/macaw/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, ps Storer, notary *auth.Notary, ar *auth.Repository) {
	engine.Post("/posts", addPost(ps), auth.Auth(notary, ar))
	engine.Get("/posts", getPosts(ps))

	engine.Post("/posts/:id/like", likePost(ps), auth.Auth(notary, ar))
	engine.Post("/posts/:id/comment", commentPost(ps), auth.Auth(notary, ar))
}

// addPost handles the POST "/posts" route.
func addPost(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[AddPostData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var author = auth.MustGetUser(request)

		id, err := ps.AddPost(author.Id, data)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't add post")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Ok bool  `json:"ok"`
			Id int64 `json:"id"`
		}{true, id})
	}
}

// getPosts handles the GET "/posts" route; the `q` and `trending` query
// parameters select the search and trending modes, with `q` taking precedence.
// No authentication is required.
func getPosts(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var params = request.URL.Query()

		fetched, err := ps.GetPosts(Filter{
			Query:    params.Get("q"),
			Trending: params.Get("trending") != "",
		})
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't fetch posts")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Posts []Post `json:"posts"`
		}{fetched})
	}
}

// getPostId parses the `:id` path parameter; malformed ids behave like absent posts.
func getPostId(request *http.Request) (int64, error) {
	return strconv.ParseInt(rest.GetParam(request, "id"), 10, 64)
}

// likePost handles the POST "/posts/:id/like" route with toggle semantics.
func likePost(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		postId, err := getPostId(request)
		if err != nil {
			JSON.NotFound(writer, "post not found")
			return
		}

		liked, err := ps.ToggleLike(auth.MustGetUser(request), postId)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "post not found")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't toggle like")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Ok    bool `json:"ok"`
			Liked bool `json:"liked"`
		}{true, liked})
	}
}

// commentPost handles the POST "/posts/:id/comment" route.
func commentPost(ps Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		postId, err := getPostId(request)
		if err != nil {
			JSON.NotFound(writer, "post not found")
			return
		}

		data, err := JSON.DecodeValidate[CommentData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		err = ps.AddComment(auth.MustGetUser(request), postId, strings.TrimSpace(data.Text))
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "post not found")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't add comment")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Ok bool `json:"ok"`
		}{true})
	}
}
