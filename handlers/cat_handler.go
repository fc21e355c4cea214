package handlers

import (
	"github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/internal/utils"
	"github.com/NomadCrew/cats-backend/logger"
	"github.com/NomadCrew/cats-backend/middleware"
	"github.com/NomadCrew/cats-backend/models"
	"github.com/NomadCrew/cats-backend/pkg/pagination"
	"github.com/NomadCrew/cats-backend/store"
	"github.com/NomadCrew/cats-backend/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatHandler serves the cats of the authenticated user. Every query is
// scoped by owner, so another user's cat reads as not found.
type CatHandler struct {
	cats store.Repository[models.Cat]
}

func NewCatHandler(cats store.Repository[models.Cat]) *CatHandler {
	return &CatHandler{cats: cats}
}

// CreateCat godoc
// @Summary Create a cat
// @Tags cats
// @Accept json
// @Produce json
// @Param request body types.CatCreateRequest true "Cat details"
// @Success 201 {object} types.StandardResponse{data=models.PublicCat}
// @Failure 400 {object} types.StandardResponse "Invalid request body"
// @Failure 401 {object} types.StandardResponse "Unauthorized"
// @Router /v1/cats [post]
// @Security BearerAuth
func (h *CatHandler) CreateCat(c *gin.Context) {
	var req types.CatCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	name, err := models.CatName(req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	owner, err := utils.UserObjectID(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	cat, err := h.cats.Create(c.Request.Context(), models.NewCat(owner, name))
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.GetLogger().Infow("Cat created", "cat_id", cat.ID.Hex(), "user_id", owner.Hex())
	middleware.Respond(c, types.Created(cat.ToPublic()))
}

// ListCats godoc
// @Summary List the caller's cats, newest first
// @Tags cats
// @Produce json
// @Param offset query int false "Documents to skip" default(0)
// @Param limit query int false "Page size, at most 100" default(20)
// @Success 200 {object} types.StandardResponse{data=[]models.PublicCat,pagination=types.Pagination}
// @Failure 401 {object} types.StandardResponse "Unauthorized"
// @Router /v1/cats [get]
// @Security BearerAuth
func (h *CatHandler) ListCats(c *gin.Context) {
	owner, err := utils.UserObjectID(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	params := pagination.Parse(c.Query("offset"), c.Query("limit"))
	page, err := h.cats.FindAndCount(c.Request.Context(), models.CatsOf(owner),
		store.PageOptions(params, models.CatListSort))
	if err != nil {
		_ = c.Error(err)
		return
	}

	middleware.Respond(c, types.Paged(store.MapPage(page, models.Cat.ToPublic)))
}

// GetCat godoc
// @Summary Get one cat
// @Tags cats
// @Produce json
// @Param id path string true "Cat ID"
// @Success 200 {object} types.StandardResponse{data=models.PublicCat}
// @Failure 400 {object} types.StandardResponse "Malformed ID"
// @Failure 404 {object} types.StandardResponse "Cat not found"
// @Router /v1/cats/{id} [get]
// @Security BearerAuth
func (h *CatHandler) GetCat(c *gin.Context) {
	id, owner, ok := h.scope(c)
	if !ok {
		return
	}

	cat, err := h.cats.FindOne(c.Request.Context(), models.CatScope(id, owner))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if cat == nil {
		_ = c.Error(errors.NotFound("Cat", id.Hex()))
		return
	}

	middleware.Respond(c, types.OK(cat.ToPublic()))
}

// UpdateCat godoc
// @Summary Rename a cat
// @Tags cats
// @Accept json
// @Produce json
// @Param id path string true "Cat ID"
// @Param request body types.CatUpdateRequest true "New name"
// @Success 200 {object} types.StandardResponse{data=models.PublicCat}
// @Failure 400 {object} types.StandardResponse "Invalid request"
// @Failure 404 {object} types.StandardResponse "Cat not found"
// @Router /v1/cats/{id} [put]
// @Security BearerAuth
func (h *CatHandler) UpdateCat(c *gin.Context) {
	id, owner, ok := h.scope(c)
	if !ok {
		return
	}

	var req types.CatUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	name, err := models.CatName(req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	cat, err := h.cats.FindOneAndUpdate(c.Request.Context(), models.CatScope(id, owner),
		models.RenameCat(name, models.Now()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if cat == nil {
		_ = c.Error(errors.NotFound("Cat", id.Hex()))
		return
	}

	middleware.Respond(c, types.OK(cat.ToPublic()))
}

// DeleteCat godoc
// @Summary Delete a cat
// @Tags cats
// @Param id path string true "Cat ID"
// @Success 204 "Deleted"
// @Failure 404 {object} types.StandardResponse "Cat not found"
// @Router /v1/cats/{id} [delete]
// @Security BearerAuth
func (h *CatHandler) DeleteCat(c *gin.Context) {
	id, owner, ok := h.scope(c)
	if !ok {
		return
	}

	outcome, err := h.cats.DeleteOne(c.Request.Context(), models.CatScope(id, owner))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if outcome.Deleted == 0 {
		_ = c.Error(errors.NotFound("Cat", id.Hex()))
		return
	}

	middleware.Respond(c, types.NoContent())
}

// CatStats godoc
// @Summary Count the caller's cats per name
// @Tags cats
// @Produce json
// @Success 200 {object} types.StandardResponse{data=[]models.CatNameCount}
// @Router /v1/cats/stats [get]
// @Security BearerAuth
func (h *CatHandler) CatStats(c *gin.Context) {
	owner, err := utils.UserObjectID(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	stats, err := store.Aggregate[models.CatNameCount](c.Request.Context(), h.cats, models.CatNameStats(owner))
	if err != nil {
		_ = c.Error(err)
		return
	}

	middleware.Respond(c, types.OK(stats))
}

// scope resolves the path id and the caller. On failure the error is
// already pushed to the context.
func (h *CatHandler) scope(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	owner, err := utils.UserObjectID(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return id, owner, true
}
