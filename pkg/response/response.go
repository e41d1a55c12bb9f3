package response

import "travelhub/pkg/pagination"

// Meta carries listing metadata: status-bucket counts and pagination.
type Meta struct {
	Count      interface{}      `json:"count,omitempty"`
	Pagination *pagination.Data `json:"pagination,omitempty"`
}

// Response represents the standard API envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// SuccessWithMeta returns a success response carrying counts and pagination
func SuccessWithMeta(message string, data interface{}, count interface{}, p pagination.Data) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    &Meta{Count: count, Pagination: &p},
	}
}

// Error returns a standard error response wrapping the error message
func Error(err string) Response {
	return Response{
		Success: false,
		Error:   err,
	}
}
