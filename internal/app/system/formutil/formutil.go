// Package formutil reads path and query inputs for the JSON handlers.
//
// Malformed inputs come back as errors that carry a 400 status, so handlers
// can pass them straight to respond.Fail:
//
//	id, err := formutil.ObjectID(r, "id")
//	if err != nil {
//		respond.Fail(w, h.Log, "get session", err)
//		return
//	}
package formutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InputError is a malformed path or query value.
type InputError struct {
	Msg string
}

func (e InputError) Error() string   { return e.Msg }
func (e InputError) HTTPStatus() int { return http.StatusBadRequest }

// ObjectID parses the chi URL parameter name as a hex ObjectID.
func ObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, InputError{Msg: "Invalid " + name}
	}
	return id, nil
}

// Int reads query parameter name as an integer, returning def when absent.
func Int(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(query.Get(r, name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, InputError{Msg: "Invalid " + name}
	}
	return n, nil
}

// Bool reports whether query parameter name is "true", "1" or "yes".
func Bool(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(query.Get(r, name))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// String returns the trimmed query parameter name.
func String(r *http.Request, name string) string {
	return strings.TrimSpace(query.Get(r, name))
}
