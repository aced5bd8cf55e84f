package main

import (
	"encoding/json"
	"net/http"

	"storefront/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}

	return writeJSON(w, status, &envelope{
		Success: false,
		Message: message,
		Status:  status,
	})
}

func writeJSONValidationError(w http.ResponseWriter, errs validation.Errors) error {
	type envelope struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Status  int               `json:"status"`
		Errors  validation.Errors `json:"errors"`
	}

	return writeJSON(w, http.StatusUnprocessableEntity, &envelope{
		Success: false,
		Message: errs.Error(),
		Status:  http.StatusUnprocessableEntity,
		Errors:  errs,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}

// messageResponse writes {"data": ..., "message": ...}.
func (app *application) messageResponse(w http.ResponseWriter, status int, message string, data any) error {
	type envelope struct {
		Data    any    `json:"data,omitempty"`
		Message string `json:"message"`
	}
	return writeJSON(w, status, &envelope{Data: data, Message: message})
}

// Envelope documents the success shape for swagger.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope documents the error shape for swagger.
type ErrorEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
