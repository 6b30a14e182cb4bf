package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	JSON "github.com/seliand/macaw/pkg/json-utilities"
)

/* There are two solutions to avoiding cyclic imports between `auth` and `users` packages:
1. merge the two in the users package
2. adopt and maintain a narrow interface as a dependency in the auth package
*/

type userKeyType struct{}

var userKey userKeyType

type userGetter interface {
	GetUserById(id int64) (User, error)
}

// Auth guards routes, ensuring that requests carry a valid bearer token whose
// subject still exists; the resolved public user is attached to the request context.
// Verification costs one store read per request, and deliberately caches nothing.
func Auth(notary *Notary, ug userGetter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			tokenString, err := parseBearer(request)
			if err != nil {
				JSON.Unauthorised(w)
				return
			}

			claims, err := notary.ParseToken(tokenString)
			if err != nil {
				JSON.Unauthorised(w)
				return
			}

			// tokens outlive accounts in principle; verify the user still exists
			user, err := ug.GetUserById(claims.UserId)
			if err != nil {
				JSON.Unauthorised(w)
				return
			}

			next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), userKey, user)))
		})
	}
}

// parseBearer extracts the signed token from the authorization header.
func parseBearer(request *http.Request) (string, error) {
	var header = request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") && len(header) > 7 {
		return header[7:], nil
	}
	return "", errors.New("bad authorization header")
}

// GetUser returns the authenticated user, or an error revealing a missing Auth middleware.
func GetUser(request *http.Request) (User, error) {
	var user = request.Context().Value(userKey)
	if user == nil {
		return User{}, errors.New("missing authenticated user in request context")
	}
	return user.(User), nil
}

// MustGetUser is reserved for routes registered behind the Auth middleware,
// where a missing user is a programming error.
func MustGetUser(request *http.Request) User {
	user, err := GetUser(request)
	if err != nil {
		panic(err)
	}
	return user
}
