// Package respond writes JSON API responses and maps errors to statuses.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// MaxBodyBytes caps request bodies decoded by Decode.
const MaxBodyBytes = 1 << 20

// ErrBadBody is returned by Decode for malformed or oversized JSON.
var ErrBadBody = errors.New("invalid request body")

// StatusError is implemented by errors that know their HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	if errors.Is(err, ErrBadBody) {
		return http.StatusBadRequest
	}
	var se StatusError
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Fail writes err as a JSON error. Errors without a known status are logged
// and reported as a generic 500 so internals never reach the client.
func Fail(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error(op+" failed", zap.Error(err))
		}
		Error(w, status, "internal server error")
		return
	}
	var se StatusError
	if errors.As(err, &se) {
		Error(w, status, se.Error())
		return
	}
	Error(w, status, err.Error())
}

// Decode reads a JSON body into v.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrBadBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return ErrBadBody
	}
	return nil
}

// DecodeOptional is Decode for endpoints whose body may be omitted. A
// missing or empty body leaves v untouched, whatever ContentLength says.
func DecodeOptional(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrBadBody
	}
	return nil
}
