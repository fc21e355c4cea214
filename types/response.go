package types

import (
	"net/http"

	"github.com/NomadCrew/cats-backend/store"
)

// Response is a successful handler result: a status, an optional body and,
// only when built from a store.Page, pagination metadata. The fields are
// unexported so pagination cannot be attached or dropped by hand.
type Response[T any] struct {
	status     int
	body       *T
	pagination *Pagination
}

// OK wraps body with status 200.
func OK[T any](body T) Response[T] {
	return Response[T]{status: http.StatusOK, body: &body}
}

// Created wraps body with status 201.
func Created[T any](body T) Response[T] {
	return Response[T]{status: http.StatusCreated, body: &body}
}

// NoContent is a 204 with no body.
func NoContent() Response[struct{}] {
	return Response[struct{}]{status: http.StatusNoContent}
}

// Paged wraps the items of page and carries its count, offset and limit.
func Paged[T any](page store.Page[T]) Response[[]T] {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return Response[[]T]{
		status: http.StatusOK,
		body:   &items,
		pagination: &Pagination{
			Count:  page.Count,
			Offset: page.Offset,
			Limit:  page.Limit,
		},
	}
}

// WithStatus overrides the status code.
func (r Response[T]) WithStatus(status int) Response[T] {
	r.status = status
	return r
}

// Status returns the HTTP status, 200 when unset.
func (r Response[T]) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Body returns the payload and whether there is one.
func (r Response[T]) Body() (T, bool) {
	if r.body == nil {
		var zero T
		return zero, false
	}
	return *r.body, true
}

// Pagination is non-nil only for responses built with Paged.
func (r Response[T]) Pagination() *Pagination {
	return r.pagination
}
