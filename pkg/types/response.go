// Package types holds the JSON envelopes every API response is wrapped in.
package types

// SuccessEnvelope wraps 2xx payloads under a single "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire shape of a failure. Details carries structured hints
// (valid sizes, suggestions) when the error code allows exposing them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
