package types

// SuccessEnvelope wraps every 2xx body as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the body of every non-2xx storefront response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError is the public face of a typed error. Retryable tells a client
// whether repeating the same request may succeed; RequestID echoes the
// X-Request-Id the server logged the failure under.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
