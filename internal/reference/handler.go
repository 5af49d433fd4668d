package reference

import (
	"errors"
	"net/http"

	"github.com/Bu1gur/challenger-crm/internal/api"
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
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Entry not found"})
	case errors.Is(err, ErrDuplicate):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "An entry with this value already exists"})
	default:
		logger.WithError(err).Errorf("failed to %s", action)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to " + action})
	}
}

func (h *Handler) snapshot(c *gin.Context) (Snapshot, bool) {
	snap, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "load reference data")
		return Snapshot{}, false
	}
	return snap, true
}

// @Summary      List subscription periods
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} reference.PeriodDTO
// @Router       /periods [get]
func (h *Handler) ListPeriods(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	out := make([]PeriodDTO, 0, len(snap.Periods))
	for _, p := range snap.Periods {
		out = append(out, PeriodFromDomain(p))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      List payment methods
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} reference.PaymentMethodDTO
// @Router       /payments [get]
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	out := make([]PaymentMethodDTO, 0, len(snap.Payments))
	for _, m := range snap.Payments {
		out = append(out, PaymentMethodFromDomain(m))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      List groups
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} reference.GroupDTO
// @Router       /groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	out := make([]GroupDTO, 0, len(snap.Groups))
	for _, g := range snap.Groups {
		out = append(out, GroupFromDomain(g))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Freeze settings
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} reference.FreezeSettingsDTO
// @Router       /freezeSettings [get]
func (h *Handler) GetFreezeSettings(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, FreezeSettingsFromDomain(snap.Freeze))
}

// @Summary      Create period
// @Description  Admin-only. The value is generated when omitted.
// @Tags         admin,reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body reference.PeriodDTO true "Period"
// @Success      201 {object} reference.PeriodDTO
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/periods [post]
func (h *Handler) CreatePeriod(c *gin.Context) {
	var req PeriodDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.service.CreatePeriod(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.respondError(c, err, "create period")
		return
	}
	c.JSON(http.StatusCreated, PeriodFromDomain(p))
}

// @Summary      Update period
// @Tags         admin,reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Period value"
// @Param        request body reference.PeriodDTO true "Period"
// @Success      200 {object} reference.PeriodDTO
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/periods/{id} [put]
func (h *Handler) UpdatePeriod(c *gin.Context) {
	var req PeriodDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.service.UpdatePeriod(c.Request.Context(), c.Param("id"), req.ToDomain())
	if err != nil {
		h.respondError(c, err, "update period")
		return
	}
	c.JSON(http.StatusOK, PeriodFromDomain(p))
}

// @Summary      Delete period
// @Description  Clients already on the period keep it; their derived fields go blank.
// @Tags         admin,reference
// @Security     BearerAuth
// @Param        id path string true "Period value"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/periods/{id} [delete]
func (h *Handler) DeletePeriod(c *gin.Context) {
	if err := h.service.DeletePeriod(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "delete period")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Create payment method
// @Tags         admin,reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body reference.PaymentMethodDTO true "Payment method"
// @Success      201 {object} reference.PaymentMethodDTO
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/payments [post]
func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	var req PaymentMethodDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, err := h.service.CreatePaymentMethod(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.respondError(c, err, "create payment method")
		return
	}
	c.JSON(http.StatusCreated, PaymentMethodFromDomain(m))
}

// @Summary      Update payment method
// @Tags         admin,reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payment method value"
// @Param        request body reference.PaymentMethodDTO true "Payment method"
// @Success      200 {object} reference.PaymentMethodDTO
// @Router       /admin/payments/{id} [put]
func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	var req PaymentMethodDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, err := h.service.UpdatePaymentMethod(c.Request.Context(), c.Param("id"), req.ToDomain())
	if err != nil {
		h.respondError(c, err, "update payment method")
		return
	}
	c.JSON(http.StatusOK, PaymentMethodFromDomain(m))
}

// @Summary      Delete payment method
// @Tags         admin,reference
// @Security     BearerAuth
// @Param        id path string true "Payment method value"
// @Success      204
// @Router       /admin/payments/{id} [delete]
func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	if err := h.service.DeletePaymentMethod(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "delete payment method")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Create group
// @Tags         admin,reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body reference.GroupDTO true "Group"
// @Success      201 {object} reference.GroupDTO
// @Router       /admin/groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	var req GroupDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := req.ToDomain()
	if err == nil {
		g, err = h.service.CreateGroup(c.Request.Context(), g)
	}
	if err != nil {
		h.respondError(c, err, "create group")
		return
	}
	c.JSON(http.StatusCreated, GroupFromDomain(g))
}

// @Summary      Update group
// @Tags         admin,reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Group value"
// @Param        request body reference.GroupDTO true "Group"
// @Success      200 {object} reference.GroupDTO
// @Router       /admin/groups/{id} [put]
func (h *Handler) UpdateGroup(c *gin.Context) {
	var req GroupDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := req.ToDomain()
	if err == nil {
		g, err = h.service.UpdateGroup(c.Request.Context(), c.Param("id"), g)
	}
	if err != nil {
		h.respondError(c, err, "update group")
		return
	}
	c.JSON(http.StatusOK, GroupFromDomain(g))
}

// @Summary      Delete group
// @Tags         admin,reference
// @Security     BearerAuth
// @Param        id path string true "Group value"
// @Success      204
// @Router       /admin/groups/{id} [delete]
func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.service.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "delete group")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Update freeze settings
// @Tags         admin,reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body reference.FreezeSettingsDTO true "Freeze settings"
// @Success      200 {object} reference.FreezeSettingsDTO
// @Router       /admin/freezeSettings [put]
func (h *Handler) UpdateFreezeSettings(c *gin.Context) {
	var req FreezeSettingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.service.UpdateFreezePolicy(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.respondError(c, err, "update freeze settings")
		return
	}
	c.JSON(http.StatusOK, FreezeSettingsFromDomain(p))
}
