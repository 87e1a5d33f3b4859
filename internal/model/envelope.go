package model

// Envelope wraps every API response. Failures carry the reason in Error,
// some successes carry a human readable Message.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Reason returns the best message to show a user for this envelope.
func (e Envelope[T]) Reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
