// Package store is the backend access layer. Every call wraps one logical
// backend request and returns a Result instead of panicking or throwing.
package store

import (
	apperrors "github.com/aethra/haven/internal/errors"
)

// Result is the normalized outcome of a backend call: Data on success, Err otherwise
type Result[T any] struct {
	Data T
	Err  error
}

// OK reports whether the call succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Kind returns the error kind, or "" on success
func (r Result[T]) Kind() apperrors.Kind {
	return apperrors.KindOf(r.Err)
}

// Unwrap returns the data and error as a Go pair
func (r Result[T]) Unwrap() (T, error) {
	return r.Data, r.Err
}

// OK wraps a successful value
func OK[T any](v T) Result[T] {
	return Result[T]{Data: v}
}

// Fail wraps an error with the zero value of T
func Fail[T any](err error) Result[T] {
	var zero T
	return Result[T]{Data: zero, Err: err}
}

// Listing is one page of records plus the unpaged total
type Listing[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
