package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"velocity/internal/query"
	"velocity/internal/storage"
)

const maxBodyBytes = 1 << 20

var errInvalidJSON = errors.New("invalid JSON body")

// writeJSON encodes v before touching the response, so an unencodable
// value becomes a logged 500 instead of an empty 200.
func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		a.Log.Error("Failed to encode response", zap.Int("status", status), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := writeBody(w, status, body); err != nil {
		a.Log.Debug("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	_ = writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(append(body, '\n'))
	return err
}

func (a *API) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	a.Log.Error("Request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// writeStoreError maps storage and validation errors onto status codes.
// label names the resource in not-found messages.
func (a *API) writeStoreError(w http.ResponseWriter, r *http.Request, label string, err error) {
	var fe *query.FieldError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, label+" not found")
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, fe.Error())
	case errors.Is(err, query.ErrNoValues):
		writeError(w, http.StatusBadRequest, "No updatable fields supplied")
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, fmt.Sprintf("%s already exists", label))
	case errors.Is(err, storage.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "Referenced record does not exist")
	case errors.Is(err, storage.ErrConstraint):
		writeError(w, http.StatusBadRequest, "Value violates a constraint")
	case errors.Is(err, storage.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, "Value is malformed or out of range")
	case errors.Is(err, errInvalidJSON):
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
	default:
		a.writeInternal(w, r, err)
	}
}

// decodeObject reads a JSON object body. Numbers are kept as json.Number so
// NUMERIC columns receive the exact decimal text.
func decodeObject(r *http.Request) (map[string]any, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errInvalidJSON
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, errInvalidJSON
	}
	return body, nil
}

// decodeInto reads a JSON body into a typed request struct.
func decodeInto(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}
