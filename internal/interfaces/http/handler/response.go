package handler

import "github.com/locaflow/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Data T         `json:"data"`
	Meta *dto.Meta `json:"meta,omitempty"`
}

// MessageData is the body of endpoints that only acknowledge
// @Description Acknowledgement message
type MessageData struct {
	Message string `json:"message" example:"Logged out"`
}

// CountData reports how many records a batch operation touched
// @Description Count data
type CountData struct {
	Count int64 `json:"count" example:"3"`
}
