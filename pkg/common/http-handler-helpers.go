package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// HttpError carries the status code a handler wants to respond with.
type HttpError struct {
	Status int
	Err    error
}

func (e *HttpError) Error() string {
	return e.Err.Error()
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(status int, err error) error {
	return &HttpError{Status: status, Err: err}
}

type errorResponse struct {
	Error string `json:"error"`
}

// JsonHandler resolves the session cookie and calls fn with a json encoder.
// Errors returned by fn are logged and written as a json error, the status
// comes from HttpError and defaults to 500.
func JsonHandler(trk SessionStarter, logger *slog.Logger, fn func(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionId := HandleSessionCookie(trk, w, r)
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")

		err := fn(w, r, sessionId, json.NewEncoder(w))
		if err != nil {
			status := http.StatusInternalServerError
			var httpErr *HttpError
			if errors.As(err, &httpErr) {
				status = httpErr.Status
			}
			if status >= http.StatusInternalServerError {
				logger.Error("error handling request", "path", r.URL.Path, "session", sessionId, "error", err)
			} else {
				logger.Debug("bad request", "path", r.URL.Path, "session", sessionId, "error", err)
			}
			WriteJSONError(w, status, err.Error())
		}
	}
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteJSONError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, errorResponse{Error: message})
}
