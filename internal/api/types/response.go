// internal/api/types/response.go
package types

// PaginatedResponse is the envelope of every list endpoint (users, pending
// cash requests, transaction history). TotalCount ignores limit and offset.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}
