package users

import (
	"errors"
	"io"
	"net/http"

	"github.com/seliand/macaw/pkg/auth"
	JSON "github.com/seliand/macaw/pkg/json-utilities"
	"github.com/seliand/macaw/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, ur UserRepository, notary *auth.Notary, ar *auth.Repository) {
	engine.Post("/register", registerUser(ur, notary))
	engine.Post("/login", loginUser(ur, notary))

	engine.Get("/me", getProfile(ur), auth.Auth(notary, ar))
	engine.Put("/me", updateProfile(ur), auth.Auth(notary, ar))

	engine.Get("/users", getUsers(ur))
	engine.Post("/users/:username/follow", followUser(ur), auth.Auth(notary, ar))
}

// sessionResponse pairs a fresh token with the public user fields, as returned
// by both registration and login.
type sessionResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

// registerUser handles the POST "/register" route.
func registerUser(ur UserRepository, notary *auth.Notary) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[RegisterData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		user, err := ur.Register(data)
		if errors.Is(err, ErrUsernameTaken) {
			JSON.BadRequestWithMessage(writer, "username taken")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't register user")
			JSON.InternalServerError(writer, err)
			return
		}

		token, err := notary.IssueToken(user)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't issue token")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, sessionResponse{token, user})
	}
}

// loginUser handles the POST "/login" route. Unknown usernames and mismatched
// passwords both yield 400s with distinct messages, matching the API contract.
func loginUser(ur UserRepository, notary *auth.Notary) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[LoginData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		user, err := ur.Authenticate(data)
		if errors.Is(err, ErrNotFound) {
			JSON.BadRequestWithMessage(writer, "user not found")
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			JSON.BadRequestWithMessage(writer, "invalid credentials")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't authenticate user")
			JSON.InternalServerError(writer, err)
			return
		}

		token, err := notary.IssueToken(user)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't issue token")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, sessionResponse{token, user})
	}
}

// getProfile handles the GET "/me" route, adding derived follow counts to the
// requester's public fields.
func getProfile(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var user = auth.MustGetUser(request)

		profile, err := ur.GetProfile(user.Id)
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't fetch profile")
			JSON.InternalServerError(writer, err)
			return
		}
		JSON.Ok(writer, profile)
	}
}

// updateProfile handles the PUT "/me" route; an empty display name is a no-op.
func updateProfile(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var user = auth.MustGetUser(request)

		// an absent body behaves like an absent display name
		data, err := JSON.DecodeValidate[UpdateProfileData](request)
		if err != nil && !errors.Is(err, io.EOF) {
			JSON.ValidationError(writer, err)
			return
		}

		if data.Display != "" {
			if err = ur.UpdateDisplay(user.Id, data.Display); err != nil {
				rest.GetLogger(request).WithError(err).Error("couldn't update display name")
				JSON.InternalServerError(writer, err)
				return
			}
		}

		JSON.Ok(writer, struct {
			Ok bool `json:"ok"`
		}{true})
	}
}

// getUsers fetches the public user directory; neither authorisation nor
// authentication are required.
func getUsers(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		listings, err := ur.GetAll()
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't fetch users")
			JSON.InternalServerError(writer, err)
			return
		}
		JSON.Ok(writer, struct {
			Users []Listing `json:"users"`
		}{listings})
	}
}

// followUser handles the POST "/users/:username/follow" route with toggle semantics.
func followUser(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var follower = auth.MustGetUser(request)
		var targetUsername = rest.GetParam(request, "username")

		// short circuit the handler when the target and the source match
		if follower.Username == targetUsername {
			JSON.BadRequestWithMessage(writer, "cannot follow yourself")
			return
		}

		following, err := ur.ToggleFollow(follower, targetUsername)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "user not found")
			return
		}
		if err != nil {
			rest.GetLogger(request).WithError(err).Error("couldn't toggle follow")
			JSON.InternalServerError(writer, err)
			return
		}

		JSON.Ok(writer, struct {
			Ok        bool `json:"ok"`
			Following bool `json:"following"`
		}{true, following})
	}
}
