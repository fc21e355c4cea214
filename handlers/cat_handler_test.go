package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/models"
	"github.com/NomadCrew/cats-backend/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ store.Repository[models.Cat] = (*MockRepository[models.Cat])(nil)

func setupCatRouter(owner primitive.ObjectID) (*gin.Engine, *MockRepository[models.Cat]) {
	repo := &MockRepository[models.Cat]{collection: models.CatCollection}
	h := NewCatHandler(repo)

	r := newTestRouter(owner.Hex())
	r.POST("/v1/cats", h.CreateCat)
	r.GET("/v1/cats", h.ListCats)
	r.GET("/v1/cats/stats", h.CatStats)
	r.GET("/v1/cats/:id", h.GetCat)
	r.PUT("/v1/cats/:id", h.UpdateCat)
	r.DELETE("/v1/cats/:id", h.DeleteCat)
	return r, repo
}

func storedCat(owner primitive.ObjectID, name string) *models.Cat {
	cat := models.NewCat(owner, name)
	cat.ID = primitive.NewObjectID()
	cat.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cat.UpdatedAt = cat.CreatedAt
	return cat
}

func TestCatHandler_CreateCat(t *testing.T) {
	owner := primitive.NewObjectID()

	t.Run("created", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		saved := storedCat(owner, "Tom")
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Cat) bool {
			return c.User == owner && c.Name == "Tom"
		})).Return(saved, nil).Once()

		w, body := perform(t, r, http.MethodPost, "/v1/cats", map[string]string{"name": "Tom"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, body.Success)
		var cat models.PublicCat
		require.NoError(t, json.Unmarshal(body.Data, &cat))
		assert.Equal(t, saved.ID.Hex(), cat.ID)
		assert.Equal(t, owner.Hex(), cat.User)
		repo.AssertExpectations(t)
	})

	t.Run("missing name", func(t *testing.T) {
		r, repo := setupCatRouter(owner)

		w, body := perform(t, r, http.MethodPost, "/v1/cats", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(apperrors.ValidationError), body.Error.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank name", func(t *testing.T) {
		r, repo := setupCatRouter(owner)

		w, body := perform(t, r, http.MethodPost, "/v1/cats", map[string]string{"name": "   "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(apperrors.ValidationError), body.Error.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("name is stored trimmed", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Cat) bool {
			return c.Name == "Tom"
		})).Return(storedCat(owner, "Tom"), nil).Once()

		w, _ := perform(t, r, http.MethodPost, "/v1/cats", map[string]string{"name": "  Tom  "})

		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("store failure", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperrors.StoreFailure("cats.create", errors.New("no primary"))).Once()

		w, body := perform(t, r, http.MethodPost, "/v1/cats", map[string]string{"name": "Tom"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, string(apperrors.DatabaseError), body.Error.Code)
		assert.Empty(t, body.Error.Details)
	})
}

func TestCatHandler_ListCats(t *testing.T) {
	owner := primitive.NewObjectID()

	tests := []struct {
		name         string
		query        string
		expectedOpts store.FindOptions
	}{
		{
			name:         "defaults",
			query:        "",
			expectedOpts: store.FindOptions{Sort: models.CatListSort, Skip: 0, Limit: 20},
		},
		{
			name:         "explicit page",
			query:        "?offset=40&limit=10",
			expectedOpts: store.FindOptions{Sort: models.CatListSort, Skip: 40, Limit: 10},
		},
		{
			name:         "limit is clamped",
			query:        "?offset=-5&limit=1000",
			expectedOpts: store.FindOptions{Sort: models.CatListSort, Skip: 0, Limit: 100},
		},
		{
			name:         "garbage is ignored",
			query:        "?offset=abc&limit=",
			expectedOpts: store.FindOptions{Sort: models.CatListSort, Skip: 0, Limit: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := setupCatRouter(owner)
			cats := []models.Cat{*storedCat(owner, "Tom"), *storedCat(owner, "Felix")}
			repo.On("FindAndCount", mock.Anything, models.CatsOf(owner), tt.expectedOpts).
				Return(store.Page[models.Cat]{
					Items:  cats,
					Count:  42,
					Offset: tt.expectedOpts.Skip,
					Limit:  tt.expectedOpts.Limit,
				}, nil).Once()

			w, body := perform(t, r, http.MethodGet, "/v1/cats"+tt.query, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			require.NotNil(t, body.Pagination)
			assert.Equal(t, int64(42), body.Pagination.Count)
			assert.Equal(t, tt.expectedOpts.Skip, body.Pagination.Offset)
			assert.Equal(t, tt.expectedOpts.Limit, body.Pagination.Limit)

			var items []models.PublicCat
			require.NoError(t, json.Unmarshal(body.Data, &items))
			assert.Len(t, items, 2)
			repo.AssertExpectations(t)
		})
	}

	t.Run("empty page is an empty list", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("FindAndCount", mock.Anything, mock.Anything, mock.Anything).
			Return(store.Page[models.Cat]{Count: 3, Offset: 100, Limit: 20}, nil).Once()

		w, body := perform(t, r, http.MethodGet, "/v1/cats?offset=100", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(body.Data))
		assert.Equal(t, int64(3), body.Pagination.Count)
	})
}

func TestCatHandler_GetCat(t *testing.T) {
	owner := primitive.NewObjectID()
	cat := storedCat(owner, "Tom")

	t.Run("found", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("FindOne", mock.Anything, models.CatScope(cat.ID, owner)).Return(cat, nil).Once()

		w, body := perform(t, r, http.MethodGet, "/v1/cats/"+cat.ID.Hex(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, body.Pagination)
		repo.AssertExpectations(t)
	})

	t.Run("absent or owned by someone else", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("FindOne", mock.Anything, mock.Anything).Return(nil, nil).Once()

		w, body := perform(t, r, http.MethodGet, "/v1/cats/"+cat.ID.Hex(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, string(apperrors.NotFoundError), body.Error.Code)
	})

	t.Run("malformed id never reaches the store", func(t *testing.T) {
		r, repo := setupCatRouter(owner)

		w, body := perform(t, r, http.MethodGet, "/v1/cats/not-an-id", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(apperrors.ValidationError), body.Error.Code)
		repo.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
	})
}

func TestCatHandler_UpdateCat(t *testing.T) {
	owner := primitive.NewObjectID()
	cat := storedCat(owner, "Tom")

	t.Run("renamed", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		renamed := *cat
		renamed.Name = "Max"
		repo.On("FindOneAndUpdate", mock.Anything, models.CatScope(cat.ID, owner),
			mock.MatchedBy(func(u store.Update) bool {
				set, ok := u["$set"].(bson.M)
				return ok && set["name"] == "Max" && set["updated_at"] != nil
			})).Return(&renamed, nil).Once()

		w, body := perform(t, r, http.MethodPut, "/v1/cats/"+cat.ID.Hex(), map[string]string{"name": "Max"})

		assert.Equal(t, http.StatusOK, w.Code)
		var got models.PublicCat
		require.NoError(t, json.Unmarshal(body.Data, &got))
		assert.Equal(t, "Max", got.Name)
		repo.AssertExpectations(t)
	})

	t.Run("nothing matched", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()

		w, _ := perform(t, r, http.MethodPut, "/v1/cats/"+cat.ID.Hex(), map[string]string{"name": "Max"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("blank name", func(t *testing.T) {
		r, repo := setupCatRouter(owner)

		w, body := perform(t, r, http.MethodPut, "/v1/cats/"+cat.ID.Hex(), map[string]string{"name": " \t "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(apperrors.ValidationError), body.Error.Code)
		repo.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCatHandler_DeleteCat(t *testing.T) {
	owner := primitive.NewObjectID()
	id := primitive.NewObjectID()

	t.Run("deleted", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("DeleteOne", mock.Anything, models.CatScope(id, owner)).
			Return(store.DeleteOutcome{Deleted: 1}, nil).Once()

		w, _ := perform(t, r, http.MethodDelete, "/v1/cats/"+id.Hex(), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		repo.AssertExpectations(t)
	})

	t.Run("nothing deleted", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		repo.On("DeleteOne", mock.Anything, mock.Anything).
			Return(store.DeleteOutcome{Deleted: 0}, nil).Once()

		w, _ := perform(t, r, http.MethodDelete, "/v1/cats/"+id.Hex(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCatHandler_CatStats(t *testing.T) {
	owner := primitive.NewObjectID()

	t.Run("decodes rows", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		row1, err := bson.Marshal(bson.D{{Key: "_id", Value: "Tom"}, {Key: "count", Value: int64(3)}})
		require.NoError(t, err)
		row2, err := bson.Marshal(bson.D{{Key: "_id", Value: "Felix"}, {Key: "count", Value: int64(1)}})
		require.NoError(t, err)
		repo.On("AggregateRaw", mock.Anything, models.CatNameStats(owner)).
			Return([]bson.Raw{row1, row2}, nil).Once()

		w, body := perform(t, r, http.MethodGet, "/v1/cats/stats", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"name":"Tom","count":3},{"name":"Felix","count":1}]`, string(body.Data))
		repo.AssertExpectations(t)
	})

	t.Run("undecodable row fails the call", func(t *testing.T) {
		r, repo := setupCatRouter(owner)
		bad, err := bson.Marshal(bson.D{{Key: "_id", Value: "Tom"}, {Key: "count", Value: "many"}})
		require.NoError(t, err)
		repo.On("AggregateRaw", mock.Anything, mock.Anything).Return([]bson.Raw{bad}, nil).Once()

		w, body := perform(t, r, http.MethodGet, "/v1/cats/stats", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, string(apperrors.SerializationError), body.Error.Code)
	})
}

func TestCatHandler_RequiresUser(t *testing.T) {
	repo := &MockRepository[models.Cat]{collection: models.CatCollection}
	h := NewCatHandler(repo)
	r := newTestRouter("")
	r.GET("/v1/cats", h.ListCats)

	w, body := perform(t, r, http.MethodGet, "/v1/cats", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(apperrors.AuthError), body.Error.Code)
}
