// Package response writes the API's JSON envelopes. Every payload carries a
// boolean `success`; errors add `error` and, for validation failures, a
// field-level `details` list.
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details []string    `json:"details,omitempty"`
}

// ListPayload is the envelope for paged list responses.
type ListPayload struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Total      int64       `json:"total"`
	Page       int64       `json:"page"`
	TotalPages int64       `json:"totalPages"`
	Pokemon    interface{} `json:"pokemon"`
}

// CountedPayload is the envelope for set-valued responses (e.g. type tags).
type CountedPayload struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// OK sends a 200 with data.
func OK(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// OKMessage sends a 200 with a message and data.
func OKMessage(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 with a message and data.
func Created(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// List sends a 200 paged list envelope.
func List(w http.ResponseWriter, p ListPayload) {
	p.Success = true
	write(w, http.StatusOK, p)
}

// Counted sends a 200 set envelope with its cardinality.
func Counted(w http.ResponseWriter, count int, data interface{}) {
	write(w, http.StatusOK, CountedPayload{Success: true, Count: count, Data: data})
}

// Err sends a JSON error envelope.
func Err(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Error: message})
}

// ValidationErr sends a 400 with one detail message per violated field.
func ValidationErr(w http.ResponseWriter, details []string) {
	write(w, http.StatusBadRequest, envelope{
		Success: false,
		Error:   "Validation Error",
		Details: details,
	})
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Err(w, http.StatusNotFound, message)
}

// ServerErr sends a generic 500 without leaking internals.
func ServerErr(w http.ResponseWriter, message string) {
	Err(w, http.StatusInternalServerError, message)
}
