package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/internal/service"
	"github.com/noah-isme/waste-collection-api/pkg/response"
)

type wasteRequestService interface {
	Create(ctx context.Context, actor models.Actor, payload dto.CreateWasteRequest) (*models.WasteRequest, error)
	Update(ctx context.Context, actor models.Actor, id string, payload dto.UpdateWasteRequest) (*models.WasteRequest, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Detail(ctx context.Context, actor models.Actor, id string) (*models.WasteRequestDetail, error)
	List(ctx context.Context, actor models.Actor, query dto.WasteRequestQuery) ([]models.WasteRequest, *models.Pagination, error)
	Decide(ctx context.Context, actor models.Actor, id string, payload dto.DecisionRequest) (*models.WasteRequest, error)
	DriverDecide(ctx context.Context, actor models.Actor, id string, payload dto.DecisionRequest) (*models.WasteRequest, error)
	AdvanceCollection(ctx context.Context, actor models.Actor, id string, payload dto.CollectionUpdateRequest) (*models.WasteRequest, error)
	Confirm(ctx context.Context, actor models.Actor, id string) (*models.WasteRequest, error)
}

type assignmentService interface {
	Assign(ctx context.Context, requestID, driverID string) (*models.WasteRequest, error)
	Candidates(ctx context.Context, requestID string) ([]models.DriverLoad, error)
}

type paymentService interface {
	Resolve(ctx context.Context, id string) (*models.WasteRequest, error)
	Settle(ctx context.Context, id string, payload dto.SettlePaymentRequest) (*models.WasteRequest, error)
}

type feedbackService interface {
	Record(ctx context.Context, actor models.Actor, id string, payload dto.FeedbackRequest) (*models.WasteRequest, error)
}

type reportService interface {
	RequestReport(ctx context.Context, actor models.Actor, id, format string) (*service.Document, error)
	Export(ctx context.Context, actor models.Actor, query dto.WasteRequestQuery, format string) (*service.Document, error)
}

// WasteRequestHandler exposes the pickup request lifecycle.
type WasteRequestHandler struct {
	requests    wasteRequestService
	assignments assignmentService
	payments    paymentService
	feedback    feedbackService
	reports     reportService
}

// NewWasteRequestHandler constructs the handler.
func NewWasteRequestHandler(requests wasteRequestService, assignments assignmentService, payments paymentService, feedback feedbackService, reports reportService) *WasteRequestHandler {
	return &WasteRequestHandler{
		requests:    requests,
		assignments: assignments,
		payments:    payments,
		feedback:    feedback,
		reports:     reports,
	}
}

// Create godoc
// @Summary File a pickup request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateWasteRequest true "Pickup request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *WasteRequestHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var payload dto.CreateWasteRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.requests.Create(c.Request.Context(), actor, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// Get godoc
// @Summary Get a request with its category, driver, user, district and payment
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *WasteRequestHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	detail, err := h.requests.Detail(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary List pickup requests
// @Tags Requests
// @Produce json
// @Param userId query string false "Owner"
// @Param driverId query string false "Bound driver"
// @Param city query string false "City"
// @Param districtId query string false "District"
// @Param categoryId query string false "Category"
// @Param acceptanceStatus query string false "Comma separated acceptance statuses"
// @Param driverStatus query string false "Comma separated driver statuses"
// @Param collectionStatus query string false "Comma separated collection statuses"
// @Param paymentStatus query string false "Comma separated payment statuses"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *WasteRequestHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	query, err := parseRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.requests.List(c.Request.Context(), actor, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Update godoc
// @Summary Edit a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateWasteRequest true "Changed fields"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /requests/{id} [put]
func (h *WasteRequestHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var payload dto.UpdateWasteRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.requests.Update(c.Request.Context(), actor, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Delete godoc
// @Summary Delete a pending request
// @Tags Requests
// @Param id path string true "Request ID"
// @Success 204
// @Failure 412 {object} response.Envelope
// @Router /requests/{id} [delete]
func (h *WasteRequestHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.requests.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Decide godoc
// @Summary Accept or reject a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/decision [post]
func (h *WasteRequestHandler) Decide(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var payload dto.DecisionRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.requests.Decide(c.Request.Context(), actor, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Candidates godoc
// @Summary Active drivers in the request's city with their pending load
// @Tags Assignment
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/candidates [get]
func (h *WasteRequestHandler) Candidates(c *gin.Context) {
	drivers, err := h.assignments.Candidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drivers, nil)
}

// Assign godoc
// @Summary Bind a driver to an accepted request
// @Tags Assignment
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.AssignDriverRequest true "Driver"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /requests/{id}/assignment [post]
func (h *WasteRequestHandler) Assign(c *gin.Context) {
	var payload dto.AssignDriverRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), payload.DriverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// DriverDecide godoc
// @Summary Driver accepts or rejects an assignment
// @Tags Assignment
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/driver-decision [post]
func (h *WasteRequestHandler) DriverDecide(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var payload dto.DecisionRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.requests.DriverDecide(c.Request.Context(), actor, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// AdvanceCollection godoc
// @Summary Start or cancel the pickup
// @Tags Collection
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.CollectionUpdateRequest true "Collection status"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/collection [post]
func (h *WasteRequestHandler) AdvanceCollection(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var payload dto.CollectionUpdateRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.requests.AdvanceCollection(c.Request.Context(), actor, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Confirm godoc
// @Summary Confirm the pickup happened and resolve the payment obligation
// @Tags Collection
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/confirm [post]
func (h *WasteRequestHandler) Confirm(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	req, err := h.requests.Confirm(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// ResolvePayment godoc
// @Summary Retry payment obligation resolution for a completed pickup
// @Tags Payments
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/payment/resolve [post]
func (h *WasteRequestHandler) ResolvePayment(c *gin.Context) {
	req, err := h.payments.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// SettlePayment godoc
// @Summary Apply the settlement outcome of a pending payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.SettlePaymentRequest true "Settlement"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/payment/settle [post]
func (h *WasteRequestHandler) SettlePayment(c *gin.Context) {
	var payload dto.SettlePaymentRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.payments.Settle(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Feedback godoc
// @Summary Rate a completed pickup
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.FeedbackRequest true "Rating"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/feedback [post]
func (h *WasteRequestHandler) Feedback(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var payload dto.FeedbackRequest
	if !bindJSON(c, &payload) {
		return
	}
	req, err := h.feedback.Record(c.Request.Context(), actor, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Report godoc
// @Summary Download a single request report
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Request ID"
// @Param format query string false "pdf or csv"
// @Success 200 {file} file
// @Router /requests/{id}/report [get]
func (h *WasteRequestHandler) Report(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	doc, err := h.reports.RequestReport(c.Request.Context(), actor, c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data)
}

// Export godoc
// @Summary Download the filtered request listing
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param format query string false "pdf or csv"
// @Success 200 {file} file
// @Router /requests/export [get]
func (h *WasteRequestHandler) Export(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	query, err := parseRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.reports.Export(c.Request.Context(), actor, query, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data)
}
