// Package site renders the public marketing pages from published content
package site

import (
	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/store"
)

// State is what a public page section shows
type State string

const (
	StatePopulated   State = "populated"
	StateEmpty       State = "empty"
	StateNotFound    State = "not_found"
	StateUnavailable State = "unavailable"
)

const unavailableMessage = "We couldn't load this right now. Please try again in a moment."

// Page is one section of a public page: a list or a single record, or the
// friendly message shown instead
type Page[T any] struct {
	State   State  `json:"state"`
	Items   []T    `json:"items,omitempty"`
	Item    *T     `json:"item,omitempty"`
	Message string `json:"message,omitempty"`
}

// Populated reports whether there is something to render
func (p Page[T]) Populated() bool { return p.State == StatePopulated }

// List turns a list result into a page; no rows is the empty state
func List[T any](res store.Result[[]T], empty string) Page[T] {
	if !res.OK() {
		return Page[T]{State: StateUnavailable, Message: unavailableMessage}
	}
	if len(res.Data) == 0 {
		return Page[T]{State: StateEmpty, Message: empty}
	}
	return Page[T]{State: StatePopulated, Items: res.Data}
}

// Detail turns a single-record result into a page; a missing record is the
// not-found state
func Detail[T any](res store.Result[T], missing string) Page[T] {
	if !res.OK() {
		if res.Kind() == apperrors.KindNotFound {
			return Page[T]{State: StateNotFound, Message: missing}
		}
		return Page[T]{State: StateUnavailable, Message: unavailableMessage}
	}
	item := res.Data
	return Page[T]{State: StatePopulated, Item: &item}
}

// Take keeps the first n items of a populated page
func (p Page[T]) Take(n int) Page[T] {
	if n >= 0 && len(p.Items) > n {
		p.Items = p.Items[:n]
	}
	return p
}
