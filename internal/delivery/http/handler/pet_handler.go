package handler

import (
	"context"
	"net/http"
	"strings"

	"pet-adoption-marketplace/internal/middleware"
	"pet-adoption-marketplace/internal/upload"
	"pet-adoption-marketplace/internal/usecase/pet"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

const msgInvalidPetID = "Invalid pet ID"

type PetHandler struct {
	service *pet.Service
	photos  *upload.Photos
}

func NewPetHandler(service *pet.Service, photos *upload.Photos) *PetHandler {
	return &PetHandler{service: service, photos: photos}
}

// RegisterRoutes mounts the listing routes. optionalAuth decorates the public
// listing so that mine=1 works; requireAuth guards every mutation.
func (h *PetHandler) RegisterRoutes(router *gin.RouterGroup, optionalAuth, requireAuth gin.HandlerFunc) {
	pets := router.Group("/pets")
	{
		pets.GET("", optionalAuth, h.ListPets)
		pets.GET("/mine", requireAuth, h.ListMyPets)
		pets.GET("/:id", h.GetPet)
	}

	owned := pets.Group("", requireAuth)
	{
		owned.POST("", h.CreatePet)
		owned.PATCH("/:id", h.UpdatePet)
		owned.PATCH("/:id/status", h.UpdateStatus)
		owned.DELETE("/:id", h.DeletePet)
	}
}

func (h *PetHandler) ListPets(c *gin.Context) {
	var q pet.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalidBody(c)
		return
	}

	principal := middleware.GetPrincipal(c)
	if principal == nil && utils.ParseLooseBool(q.Mine) {
		if authErr := middleware.GetAuthError(c); authErr != nil {
			utils.AppErrorResponse(c, authErr)
			return
		}
	}

	result, err := h.service.List(c.Request.Context(), q, principal)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, result.Items, result.Meta)
}

func (h *PetHandler) ListMyPets(c *gin.Context) {
	var q pet.MineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalidBody(c)
		return
	}

	result, err := h.service.ListMine(c.Request.Context(), q, middleware.GetPrincipal(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, result.Items, result.Meta)
}

func (h *PetHandler) GetPet(c *gin.Context) {
	petID, ok := parseID(c, msgInvalidPetID)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), petID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Pet retrieved successfully", p)
}

func (h *PetHandler) CreatePet(c *gin.Context) {
	h.withPayload(c, func(ctx context.Context, payload pet.Payload, uploaded []string) (*pet.PetResponse, error) {
		return h.service.Create(ctx, middleware.GetPrincipal(c), payload, uploaded)
	}, http.StatusCreated, "Pet created successfully")
}

func (h *PetHandler) UpdatePet(c *gin.Context) {
	petID, ok := parseID(c, msgInvalidPetID)
	if !ok {
		return
	}

	h.withPayload(c, func(ctx context.Context, payload pet.Payload, uploaded []string) (*pet.PetResponse, error) {
		return h.service.Update(ctx, middleware.GetPrincipal(c), petID, payload, uploaded)
	}, http.StatusOK, "Pet updated successfully")
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *PetHandler) UpdateStatus(c *gin.Context) {
	petID, ok := parseID(c, msgInvalidPetID)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	resp, err := h.service.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), petID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Pet status updated successfully", resp)
}

func (h *PetHandler) DeletePet(c *gin.Context) {
	petID, ok := parseID(c, msgInvalidPetID)
	if !ok {
		return
	}

	resp, err := h.service.Delete(c.Request.Context(), middleware.GetPrincipal(c), petID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Pet deleted successfully", resp)
}

type payloadFunc func(ctx context.Context, payload pet.Payload, uploaded []string) (*pet.PetResponse, error)

// withPayload decodes a JSON or multipart body, stores any uploaded photos
// and hands both to fn. Photos stored for a request that then fails are
// removed again.
func (h *PetHandler) withPayload(c *gin.Context, fn payloadFunc, status int, message string) {
	ctx := c.Request.Context()

	payload, uploaded, ok := h.readPayload(c)
	if !ok {
		return
	}

	resp, err := fn(ctx, payload, uploaded)
	if err != nil {
		h.photos.Discard(context.WithoutCancel(ctx), uploaded)
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, status, message, resp)
}

func (h *PetHandler) readPayload(c *gin.Context) (pet.Payload, []string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		payload := pet.Payload{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondInvalidBody(c)
			return nil, nil, false
		}
		return payload, nil, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondInvalidBody(c)
		return nil, nil, false
	}

	files := form.File[upload.FieldName]
	values := make(map[string][]string, len(form.Value))
	for key, vals := range form.Value {
		values[key] = vals
	}

	uploaded, err := h.photos.Save(c.Request.Context(), files)
	if err != nil {
		respondWithError(c, err)
		return nil, nil, false
	}

	return pet.PayloadFromForm(values), uploaded, true
}
