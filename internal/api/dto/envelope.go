package dto

import "time"

// Envelope is the uniform response wrapper. Data is present on success,
// Errors on failure; Timestamp is stamped at serialization time.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Errors    interface{} `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// OK wraps a successful payload.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data, Timestamp: time.Now().UTC()}
}

// OKMessage wraps a successful payload with a human-readable message.
func OKMessage(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data, Timestamp: time.Now().UTC()}
}

// Fail wraps an error response.
func Fail(message string, errs interface{}) Envelope {
	return Envelope{Success: false, Message: message, Errors: errs, Timestamp: time.Now().UTC()}
}
