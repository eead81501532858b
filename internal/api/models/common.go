// Package models defines the request and response types for the RIND REST
// API. Every non-204 response body is a Response envelope; record payload
// types live in the records package and are reused here unchanged.
package models

import "time"

// Response is the uniform JSON envelope. Data is present only on success,
// Error only on failure, and Timestamp is stamped in UTC when the
// envelope is built.
type Response struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OK wraps a successful payload.
func OK(data any) Response {
	return Response{Success: true, Data: data, Timestamp: time.Now().UTC()}
}

// Fail wraps an error message.
func Fail(msg string) Response {
	return Response{Success: false, Error: msg, Timestamp: time.Now().UTC()}
}
