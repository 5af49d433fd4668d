package client

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Bu1gur/challenger-crm/internal/api"
	"github.com/Bu1gur/challenger-crm/internal/logger"
	"github.com/Bu1gur/challenger-crm/internal/membership"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if api.RespondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Client not found"})
	case errors.Is(err, ErrInFlight):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "A save for this client is already in progress"})
	case errors.Is(err, ErrDeleted):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Client is deleted; restore it first"})
	default:
		logger.WithError(err).Error("failed to save client")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to save client"})
	}
}

func clientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid client ID"})
		return 0, false
	}
	return id, true
}

func toResponses(records []Record) []ClientResponse {
	out := make([]ClientResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewClientResponse(r))
	}
	return out
}

// List godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        search        query  string  false  "Substring of name, surname or phone"
// @Param        trainer       query  string  false  "Trainer"
// @Param        group         query  string  false  "Group value"
// @Param        status        query  string  false  "active, frozen or completed"
// @Param        show_deleted  query  bool    false  "Include deleted clients"
// @Success      200  {object}  api.ListResponse[ClientResponse]
// @Router       /clients [get]
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		Search:  c.Query("search"),
		Trainer: c.Query("trainer"),
		Group:   c.Query("group"),
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := membership.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown status filter"})
			return
		}
		f.Status = status
	}
	if raw := c.Query("show_deleted"); raw != "" {
		show, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "show_deleted must be a boolean"})
			return
		}
		f.ShowDeleted = show
	}

	records, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		logger.WithError(err).Error("failed to list clients")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load clients"})
		return
	}
	c.JSON(http.StatusOK, api.NewList(toResponses(records)))
}

// Get godoc
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  ClientResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /clients/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewClientResponse(rec))
}

// Create godoc
// @Summary      Create client
// @Description  Validates the form, derives end date, sessions and paid, then saves.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ClientRequest  true  "Client"
// @Success      201      {object}  ClientResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /clients [post]
func (h *Handler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	draft, freeze, err := req.ToDomain()
	if err == nil {
		var rec Record
		rec, err = h.service.Create(c.Request.Context(), draft, freeze)
		if err == nil {
			c.JSON(http.StatusCreated, NewClientResponse(rec))
			return
		}
	}
	h.respondError(c, err)
}

// Update godoc
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int            true  "Client ID"
// @Param        request  body      ClientRequest  true  "Client"
// @Success      200      {object}  ClientResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /clients/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	draft, freeze, err := req.ToDomain()
	if err == nil {
		var rec Record
		rec, err = h.service.Update(c.Request.Context(), id, draft, freeze)
		if err == nil {
			c.JSON(http.StatusOK, NewClientResponse(rec))
			return
		}
	}
	h.respondError(c, err)
}

// Delete godoc
// @Summary      Delete client
// @Description  Soft delete; the client can be restored.
// @Tags         clients
// @Security     BearerAuth
// @Param        id  path  int  true  "Client ID"
// @Success      204
// @Failure      404  {object}  api.ErrorResponse
// @Router       /clients/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Restore godoc
// @Summary      Restore deleted client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  ClientResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /clients/{id}/restore [post]
func (h *Handler) Restore(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	rec, err := h.service.Restore(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewClientResponse(rec))
}

func (h *Handler) bindRenewal(c *gin.Context) (int64, membership.RenewalRequest, bool) {
	id, ok := clientID(c)
	if !ok {
		return 0, membership.RenewalRequest{}, false
	}
	var req RenewalRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return 0, membership.RenewalRequest{}, false
	}
	renewal, err := req.ToDomain()
	if err != nil {
		h.respondError(c, err)
		return 0, membership.RenewalRequest{}, false
	}
	return id, renewal, true
}

// Extend godoc
// @Summary      Extend subscription
// @Description  Starts a new cycle: new dates and quota, visits reset, payment recorded.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                true  "Client ID"
// @Param        request  body      RenewalRequestDTO  true  "Renewal"
// @Success      200      {object}  ClientResponse
// @Failure      400      {object}  api.ErrorResponse
// @Router       /clients/{id}/extend [post]
func (h *Handler) Extend(c *gin.Context) {
	id, req, ok := h.bindRenewal(c)
	if !ok {
		return
	}
	rec, err := h.service.Extend(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewClientResponse(rec))
}

// QuoteRenewal godoc
// @Summary      Preview renewal
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                true  "Client ID"
// @Param        request  body      RenewalRequestDTO  true  "Renewal form"
// @Success      200      {object}  RenewalQuoteResponse
// @Router       /clients/{id}/extend/quote [post]
func (h *Handler) QuoteRenewal(c *gin.Context) {
	id, req, ok := h.bindRenewal(c)
	if !ok {
		return
	}
	q, err := h.service.QuoteRenewal(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRenewalQuoteResponse(q))
}

// AddVisit godoc
// @Summary      Mark visit
// @Description  Records attendance for a day; today when no date is sent. Idempotent.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int           true   "Client ID"
// @Param        request  body      VisitRequest  false  "Visit"
// @Success      200      {object}  ClientResponse
// @Router       /clients/{id}/visits [post]
func (h *Handler) AddVisit(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	var req VisitRequest
	// An empty body, chunked or not, means today.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	day, err := parseDate("visit date", req.Date)
	if err == nil {
		var rec Record
		rec, err = h.service.AddVisit(c.Request.Context(), id, day)
		if err == nil {
			c.JSON(http.StatusOK, NewClientResponse(rec))
			return
		}
	}
	h.respondError(c, err)
}

// RemoveVisit godoc
// @Summary      Unmark visit
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int     true  "Client ID"
// @Param        date  path      string  true  "YYYY-MM-DD"
// @Success      200   {object}  ClientResponse
// @Router       /clients/{id}/visits/{date} [delete]
func (h *Handler) RemoveVisit(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	day, err := membership.ParseDate(c.Param("date"))
	if err != nil || day.IsZero() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid visit date"})
		return
	}
	rec, err := h.service.RemoveVisit(c.Request.Context(), id, day)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewClientResponse(rec))
}

// Summary godoc
// @Summary      Client summary
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  SummaryResponse
// @Router       /clients/{id}/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	sum, err := h.service.Summary(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSummaryResponse(sum))
}

// Quote godoc
// @Summary      Recompute client form
// @Description  End date, quota, default amount and paid flag for unsaved input.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      QuoteRequest  true  "Form values"
// @Success      200      {object}  QuoteResponse
// @Router       /clients/quote [post]
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	in, err := req.ToDomain()
	if err == nil {
		var q Quote
		q, err = h.service.Quote(c.Request.Context(), in)
		if err == nil {
			c.JSON(http.StatusOK, NewQuoteResponse(q))
			return
		}
	}
	h.respondError(c, err)
}
