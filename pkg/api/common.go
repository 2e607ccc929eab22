package api

// HealthOK is the status reported by a healthy service.
const HealthOK = "ok"

// EmptyReply acknowledges a request that returns no data. It encodes as {}.
type EmptyReply struct{}

// HealthCheckResponse reports service health.
type HealthCheckResponse struct {
	Health string `json:"health"`
}

// NewHealthCheckResponse returns a health response.
func NewHealthCheckResponse(health string) HealthCheckResponse {
	return HealthCheckResponse{Health: health}
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string  `json:"error"`
	Code  *string `json:"code,omitempty"`
}

// NewErrorResponse returns an error body without a code.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// WithCode returns a copy of r with a machine-readable code.
func (r ErrorResponse) WithCode(code string) ErrorResponse {
	r.Code = &code
	return r
}
