package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"bugTracker/internal/service"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var ve *service.ValidationError
	var re *service.ReferenceError
	var ae *service.AuthError
	switch {
	case errors.As(err, &ve), errors.As(err, &re):
		return http.StatusBadRequest
	case errors.As(err, &ae):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail writes err to the client. Store and other unexpected failures are
// logged and reported without detail.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.log.WithFields(logrus.Fields{
			"request_id": requestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// decodeBody reads a JSON object. An empty body yields a nil map so the
// services can tell "absent" from "empty".
func decodeBody(r *http.Request) (service.Raw, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &service.ValidationError{Reason: "invalid JSON body"}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &service.ValidationError{Reason: "invalid JSON body"}
	}
	return raw, nil
}

// pathID parses the named mux variable as an id.
func pathID(r *http.Request, name string) (int64, error) {
	return service.ParseID(mux.Vars(r)[name])
}
