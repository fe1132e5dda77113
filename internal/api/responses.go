package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// TransportError is the stable code carried by 500 responses when the
// database or another backing service fails mid-request. Clients retry on
// it; domain rejections use their own reason codes.
const TransportError = "transport_error"

func InternalError(detail string) RejectionResponse {
	return RejectionResponse{Error: TransportError, Detail: detail}
}

// RejectionResponse carries a stable domain reason code. Reason strings are
// surfaced verbatim to clients and drive front-end affordances.
type RejectionResponse struct {
	Error  string `json:"error" example:"payment_pending"`
	Detail string `json:"detail,omitempty"`
}

// ValidationErrorResponse maps field names to their failure messages.
type ValidationErrorResponse struct {
	Error  string              `json:"error" example:"validation_failed"`
	Fields map[string][]string `json:"fields"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
