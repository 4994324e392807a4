package query

import "time"

// Status is the observable state of a query
type Status int

const (
	// StatusPending means the query has neither data nor an error yet
	StatusPending Status = iota
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Result is a snapshot of one cache entry. Data from an earlier success is kept
// when a later refetch fails, so HasData can be true alongside StatusError.
type Result[T any] struct {
	Key          string
	Status       Status
	Data         T
	HasData      bool
	Err          error
	UpdatedAt    time.Time
	FailureCount int
}

// IsPending reports whether the query has not settled yet
func (r Result[T]) IsPending() bool {
	return r.Status == StatusPending
}

// IsError reports whether the latest fetch failed
func (r Result[T]) IsError() bool {
	return r.Status == StatusError
}
