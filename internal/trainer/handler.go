package trainer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Bu1gur/challenger-crm/internal/api"
	"github.com/Bu1gur/challenger-crm/internal/client"
	"github.com/Bu1gur/challenger-crm/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) respondError(c *gin.Context, err error, action string) {
	if api.RespondValidation(c, err) {
		return
	}
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found"})
		return
	}
	logger.WithError(err).Errorf("failed to %s", action)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to " + action})
}

func trainerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid trainer ID"})
		return 0, false
	}
	return id, true
}

func bindRequest(c *gin.Context) (Request, bool) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return Request{}, false
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return Request{}, false
	}
	return req, true
}

// @Summary      List trainers
// @Tags         trainers
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} trainer.Trainer
// @Router       /trainers [get]
func (h *Handler) List(c *gin.Context) {
	trainers, err := h.service.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "fetch trainers")
		return
	}
	if trainers == nil {
		trainers = []Trainer{}
	}
	c.JSON(http.StatusOK, trainers)
}

// @Summary      Get trainer
// @Tags         trainers
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Trainer ID"
// @Success      200 {object} trainer.Trainer
// @Failure      404 {object} api.ErrorResponse
// @Router       /trainers/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "fetch trainer")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Create trainer
// @Tags         trainers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body trainer.Request true "Trainer"
// @Success      201 {object} trainer.Trainer
// @Failure      400 {object} api.ValidationErrorResponse
// @Router       /trainers [post]
func (h *Handler) Create(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	t, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "create trainer")
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      Update trainer
// @Tags         trainers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Trainer ID"
// @Param        request body trainer.Request true "Trainer"
// @Success      200 {object} trainer.Trainer
// @Failure      404 {object} api.ErrorResponse
// @Router       /trainers/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	t, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err, "update trainer")
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Delete trainer
// @Tags         trainers
// @Security     BearerAuth
// @Param        id path int true "Trainer ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /trainers/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "delete trainer")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Trainer's clients
// @Description  Live clients of the trainer's groups.
// @Tags         trainers
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int     true   "Trainer ID"
// @Param        group query string  false  "Only this group"
// @Success      200 {object} api.ListResponse[client.ClientResponse]
// @Router       /trainers/{id}/clients [get]
func (h *Handler) Clients(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	records, err := h.service.Clients(c.Request.Context(), id, c.Query("group"))
	if err != nil {
		h.respondError(c, err, "fetch trainer clients")
		return
	}
	out := make([]client.ClientResponse, 0, len(records))
	for _, r := range records {
		out = append(out, client.NewClientResponse(r))
	}
	c.JSON(http.StatusOK, api.NewList(out))
}

// @Summary      Trainer's weekly schedule
// @Tags         trainers
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Trainer ID"
// @Success      200 {array} trainer.ScheduleEntry
// @Router       /trainers/{id}/schedule [get]
func (h *Handler) Schedule(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	entries, err := h.service.Schedule(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "build schedule")
		return
	}
	c.JSON(http.StatusOK, entries)
}
