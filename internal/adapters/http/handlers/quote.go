package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/autoshop-quotes/internal/app"
	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// QuoteHandler serves the quote list, the quote editor and the quote
// actions.
type QuoteHandler struct {
	service *app.QuoteService
	editor  app.EditorConfig
}

// NewQuoteHandler creates a quote handler. Every create or update goes
// through a QuoteEditor that saves through service; editor supplies the
// editor's remaining dependencies.
func NewQuoteHandler(service *app.QuoteService, editor app.EditorConfig) *QuoteHandler {
	editor.Store = service

	return &QuoteHandler{
		service: service,
		editor:  editor,
	}
}

// ListQuotes handles GET /api/v1/quotes.
//
// @Summary List quotes
// @Description Filters by quote number or client name and by status, newest first
// @Tags quotes
// @Produce json
// @Param search query string false "Substring of the number or client name"
// @Param status query string false "all, Pendente, Aprovado, Reprovado or Cancelado"
// @Param limit query int false "Page size"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteSummary]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	after, err := req.AfterID()
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("cursor", err.Error()))
		return
	}

	page, err := h.service.List(c.Request.Context(), app.ListQuery{
		Filter: req.Filter(),
		Limit:  req.Limit,
		After:  after,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(
		dto.ToQuoteSummaries(page.Items),
		page.HasMore,
		func(q dto.QuoteSummary) *dto.CursorData {
			return dto.NewCursor(dto.CursorFieldID, q.Number, q.ID)
		},
	))
}

// GetQuote handles GET /api/v1/quotes/:id.
//
// @Summary Get a quote
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	q, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(q))
}

// GetQuoteDocument handles GET /api/v1/quotes/:id/document and returns the
// printable quote.
func (h *QuoteHandler) GetQuoteDocument(c *gin.Context) {
	id := c.Param("id")

	doc, contentType, err := h.service.RenderDocument(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="orcamento-`+id+`.pdf"`)
	c.Data(http.StatusOK, contentType, doc)
}

// CreateQuote handles POST /api/v1/quotes.
//
// @Summary Create a quote
// @Description The store assigns the number; new quotes start as Pendente
// @Tags quotes
// @Accept json
// @Produce json
// @Param body body dto.CreateQuoteRequest true "Quote header and lines"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	editor := app.NewQuoteEditor(h.editor)

	editor.SelectClient(req.ClientID)
	editor.SelectVehicle(req.VehicleID)
	editor.SetQuoteDate(req.QuoteDate)
	editor.SetValidUntil(req.ValidUntil)

	if len(req.PartsLines) > 0 || len(req.LaborLines) > 0 {
		if err := editor.SetLines(ctx, dto.PartsInputs(req.PartsLines), dto.LaborInputs(req.LaborLines)); err != nil {
			dto.HandleError(c, err)
			return
		}
	}

	saved, err := editor.Submit(ctx, nil)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+saved.ID)
	c.JSON(http.StatusCreated, dto.ToQuoteResponse(saved))
}

// UpdateQuote handles PATCH /api/v1/quotes/:id. Changing the client clears
// the vehicle unless the body also names one.
//
// @Summary Edit a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param body body dto.UpdateQuoteRequest true "Fields to change"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [patch]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	var req dto.UpdateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	ctx := c.Request.Context()

	current, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	editor := app.EditQuote(h.editor, current)

	if req.ClientID != nil {
		editor.SelectClient(*req.ClientID)
	}

	if req.VehicleID != nil {
		editor.SelectVehicle(*req.VehicleID)
	}

	if req.QuoteDate != nil {
		editor.SetQuoteDate(*req.QuoteDate)
	}

	if req.ValidUntil != nil {
		editor.SetValidUntil(*req.ValidUntil)
	}

	// Stored lines of a list the request leaves alone are kept as saved,
	// even if their part or service has since left the catalog.
	var linesErr error

	switch {
	case req.PartsLines != nil && req.LaborLines != nil:
		linesErr = editor.SetLines(ctx, dto.PartsInputs(*req.PartsLines), dto.LaborInputs(*req.LaborLines))
	case req.PartsLines != nil:
		linesErr = editor.SetPartsLines(ctx, dto.PartsInputs(*req.PartsLines))
	case req.LaborLines != nil:
		linesErr = editor.SetLaborLines(ctx, dto.LaborInputs(*req.LaborLines))
	}

	if linesErr != nil {
		dto.HandleError(c, linesErr)
		return
	}

	saved, err := editor.Submit(ctx, nil)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(saved))
}

// DeleteQuote handles DELETE /api/v1/quotes/:id?confirm=true.
//
// @Summary Delete a quote
// @Tags quotes
// @Param id path string true "Quote ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	var req dto.DeleteQuoteRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), req.Confirm); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangeStatus handles PUT /api/v1/quotes/:id/status. Only a pending quote
// can move, and only to a final status.
//
// @Summary Change a quote's status
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param body body dto.ChangeStatusRequest true "New status"
// @Success 200 {object} dto.QuoteResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/status [put]
func (h *QuoteHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	q, err := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(q))
}

// GenerateWorkOrder handles POST /api/v1/quotes/:id/work-order. Only an
// approved quote may be turned into a work order.
//
// @Summary Request a work order
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 202 {object} dto.WorkOrderResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/work-order [post]
func (h *QuoteHandler) GenerateWorkOrder(c *gin.Context) {
	req, err := h.service.GenerateWorkOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToWorkOrderResponse(req))
}

// FormOptions handles GET /api/v1/quote-form/options.
//
// @Summary Editor choices
// @Description Clients, the selected client's vehicles, parts, services and statuses
// @Tags quotes
// @Produce json
// @Param clientId query string false "Selected client"
// @Success 200 {object} dto.FormOptionsResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quote-form/options [get]
func (h *QuoteHandler) FormOptions(c *gin.Context) {
	var req dto.FormOptionsRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	opts, err := h.service.FormOptions(c.Request.Context(), req.ClientID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFormOptionsResponse(opts))
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.GET("/:id", h.GetQuote)
	quotes.PATCH("/:id", h.UpdateQuote)
	quotes.DELETE("/:id", h.DeleteQuote)
	quotes.GET("/:id/document", h.GetQuoteDocument)
	quotes.PUT("/:id/status", h.ChangeStatus)
	quotes.POST("/:id/work-order", h.GenerateWorkOrder)

	rg.GET("/quote-form/options", h.FormOptions)
}
