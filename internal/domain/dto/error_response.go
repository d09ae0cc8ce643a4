package dto

import "time"

// ErrorResponse is the body of unexpected failures (panics, rate limiting,
// errors attached to the gin context).
type ErrorResponse struct {
	Message      string    `json:"message" example:"Internal server error"`
	ErrorDetails string    `json:"error,omitempty" example:"boom"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
// err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// MessageResponse is the fixed-message body of client errors, e.g.
// {"message": "Trade not found"}.
type MessageResponse struct {
	Message string `json:"message" example:"Trade not found"`
}

// Client-facing messages.
const (
	MsgTradeNotFound    = "Trade not found"
	MsgInvalidTradeData = "Invalid trade data"
	MsgInvalidPriceData = "Invalid price data"
)
