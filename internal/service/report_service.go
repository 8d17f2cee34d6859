package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
	"github.com/noah-isme/waste-collection-api/pkg/export"
)

var exportHeaders = []string{
	"ID", "Created", "User", "City", "Category", "Quantity (kg)", "Pickup",
	"Price", "Acceptance", "Driver", "Collection", "Payment", "Rating",
}

type requestDetailReader interface {
	Detail(ctx context.Context, actor models.Actor, id string) (*models.WasteRequestDetail, error)
}

type reportRequestStore interface {
	ListAll(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, error)
}

type categoryLister interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.WasteCategory, error)
}

// Document is a rendered report ready to be sent as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders request details and filtered listings as CSV or PDF.
type ReportService struct {
	details    requestDetailReader
	requests   reportRequestStore
	categories categoryLister
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs the service.
func NewReportService(details requestDetailReader, requests reportRequestStore, categories categoryLister, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{details: details, requests: requests, categories: categories, logger: logger, now: time.Now}
}

// RequestReport renders one request with its populated references.
func (s *ReportService) RequestReport(ctx context.Context, actor models.Actor, id, format string) (*Document, error) {
	renderer, err := rendererFor(format)
	if err != nil {
		return nil, err
	}
	detail, err := s.details.Detail(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	dataset := detailDataset(detail)
	data, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &Document{
		Filename:    fmt.Sprintf("request_%s.%s", sanitizeFilename(detail.ID), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// Export renders every request matching query, one row per request.
func (s *ReportService) Export(ctx context.Context, actor models.Actor, query dto.WasteRequestQuery, format string) (*Document, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	renderer, err := rendererFor(format)
	if err != nil {
		return nil, err
	}
	filter, err := BuildRequestFilter(query)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests for export")
	}
	names := s.categoryNames(ctx)

	dataset := export.Dataset{Title: "Waste collection requests", Headers: exportHeaders}
	for i := range requests {
		dataset.Rows = append(dataset.Rows, exportRow(&requests[i], names))
	}

	data, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("requests exported", zap.Int("rows", len(requests)), zap.String("format", renderer.Extension()))

	return &Document{
		Filename:    fmt.Sprintf("requests_%s.%s", s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func (s *ReportService) categoryNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	if s.categories == nil {
		return names
	}
	categories, err := s.categories.List(ctx, models.CategoryFilter{})
	if err != nil {
		s.logger.Warn("export falls back to category ids", zap.Error(err))
		return names
	}
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func rendererFor(raw string) (export.Renderer, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	return renderer, nil
}

func exportRow(req *models.WasteRequest, categoryNames map[string]string) map[string]string {
	category := categoryNames[req.CategoryID]
	if category == "" {
		category = req.CategoryID
	}
	return map[string]string{
		"ID":            req.ID,
		"Created":       req.CreatedAt.UTC().Format(time.RFC3339),
		"User":          req.UserID,
		"City":          req.City,
		"Category":      category,
		"Quantity (kg)": formatAmount(req.Quantity),
		"Pickup":        req.PickupDate.Format(pickupDateLayout),
		"Price":         formatAmount(req.EstimatedPrice),
		"Acceptance":    string(req.AcceptanceStatus),
		"Driver":        string(req.DriverStatus),
		"Collection":    string(req.CollectionStatus),
		"Payment":       string(req.PaymentStatus),
		"Rating":        formatRating(req.Rating),
	}
}

func detailDataset(detail *models.WasteRequestDetail) export.Dataset {
	dataset := export.Dataset{
		Title:   "Waste collection request " + detail.ID,
		Headers: []string{"Field", "Value"},
	}
	add := func(field, value string) {
		dataset.Rows = append(dataset.Rows, map[string]string{"Field": field, "Value": value})
	}

	add("Request", detail.ID)
	if detail.User != nil {
		add("Requested by", strings.TrimSpace(detail.User.FullName+" <"+detail.User.Email+">"))
	} else {
		add("Requested by", detail.UserID)
	}
	add("Address", detail.Address)
	add("City", detail.City)
	if detail.District != nil {
		add("District", detail.District.Name)
	}
	if detail.Category != nil {
		add("Category", detail.Category.Name)
		add("Price per kg", formatAmount(detail.Category.PricePerKg))
	}
	add("Quantity (kg)", formatAmount(detail.Quantity))
	add("Estimated price", formatAmount(detail.EstimatedPrice))
	add("Pickup date", detail.PickupDate.Format(pickupDateLayout))
	add("Acceptance", string(detail.AcceptanceStatus))
	add("Driver status", string(detail.DriverStatus))
	if detail.Driver != nil {
		add("Driver", detail.Driver.Name)
	}
	add("Collection", string(detail.CollectionStatus))
	add("Payment", string(detail.PaymentStatus))
	if detail.Payment != nil {
		add("Amount due", formatAmount(detail.Payment.Amount))
		add("Due date", detail.Payment.DueDate.Format(pickupDateLayout))
		add("Method", detail.Payment.Method)
	}
	if detail.Rating != nil {
		add("Rating", formatRating(detail.Rating))
		if detail.FeedbackComment != nil {
			add("Comment", *detail.FeedbackComment)
		}
	}
	return dataset
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRating(rating *int) string {
	if rating == nil {
		return ""
	}
	return strconv.Itoa(*rating)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
