package types

import (
	"net/http"
	"testing"

	"github.com/NomadCrew/cats-backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	t.Run("ok has a body and no pagination", func(t *testing.T) {
		r := OK("hello")
		assert.Equal(t, http.StatusOK, r.Status())
		body, ok := r.Body()
		assert.True(t, ok)
		assert.Equal(t, "hello", body)
		assert.Nil(t, r.Pagination())
	})

	t.Run("created", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, Created(1).Status())
		assert.Nil(t, Created(1).Pagination())
	})

	t.Run("no content has no body", func(t *testing.T) {
		r := NoContent()
		assert.Equal(t, http.StatusNoContent, r.Status())
		_, ok := r.Body()
		assert.False(t, ok)
	})

	t.Run("paged carries the page metadata", func(t *testing.T) {
		r := Paged(store.Page[string]{Items: []string{"a", "b"}, Count: 7, Offset: 2, Limit: 2})
		assert.Equal(t, http.StatusOK, r.Status())

		body, ok := r.Body()
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, body)

		require.NotNil(t, r.Pagination())
		assert.Equal(t, Pagination{Count: 7, Offset: 2, Limit: 2}, *r.Pagination())
	})

	t.Run("empty page renders an empty list", func(t *testing.T) {
		body, _ := Paged(store.Page[int]{Count: 3, Offset: 10, Limit: 5}).Body()
		assert.NotNil(t, body)
		assert.Empty(t, body)
	})

	t.Run("status override keeps pagination", func(t *testing.T) {
		r := Paged(store.Page[int]{Items: []int{1}, Count: 1, Limit: 20}).WithStatus(http.StatusPartialContent)
		assert.Equal(t, http.StatusPartialContent, r.Status())
		assert.NotNil(t, r.Pagination())
	})

	t.Run("zero value defaults to 200", func(t *testing.T) {
		var r Response[int]
		assert.Equal(t, http.StatusOK, r.Status())
	})
}
