// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false, so ok=true always means a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// Caller returns the signed-in user's ID, writing a 401 and returning false
// when there is none.
func Caller(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	_, id, ok := UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}

// IsMentor reports whether the current request's user has the mentor role.
func IsMentor(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsMentor
}

// IsMentee reports whether the current request's user has the mentee role.
func IsMentee(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsMentee
}

// RequireMentor returns middleware that rejects callers without the mentor
// role with 403 and msg.
func RequireMentor(msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsMentor(r) {
				respond.Error(w, http.StatusForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
