package handler

import (
	"net/http"

	"marketrunner/internal/apierror"
	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/gin-gonic/gin"
)

type StoresHandler struct{ repo repository.StoreRepository }

func NewStoresHandler(repo repository.StoreRepository) *StoresHandler {
	return &StoresHandler{repo: repo}
}

// CreateStore godoc
// @Summary      Register a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateStoreRequest true "Store"
// @Success      201 {object} dto.StoreResponse
// @Router       /v1/stores [post]
func (h *StoresHandler) CreateStore(c *gin.Context) {
	var req dto.CreateStoreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	store := &model.Store{Name: req.Name, ContactEmail: req.ContactEmail, Active: true}
	if err := h.repo.Create(c.Request.Context(), store); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to create store"))
		return
	}
	c.JSON(http.StatusCreated, toStoreResponse(store))
}

// ListStores godoc
// @Summary      List stores
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.StoreResponse
// @Router       /v1/stores [get]
func (h *StoresHandler) ListStores(c *gin.Context) {
	stores, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list stores"))
		return
	}
	resp := make([]dto.StoreResponse, len(stores))
	for i := range stores {
		resp[i] = toStoreResponse(&stores[i])
	}
	c.JSON(http.StatusOK, resp)
}

func toStoreResponse(s *model.Store) dto.StoreResponse {
	return dto.StoreResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		ContactEmail: s.ContactEmail,
		Active:       s.Active,
	}
}
