package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

func TestRequestReportCSV(t *testing.T) {
	f := newLifecycleFixture(t)
	req := f.completed(t, "cat-plastic", 10)
	svc := NewReportService(f.requestsSvc, f.requests, f.categories, nil)

	doc, err := svc.RequestReport(context.Background(), ownerActor, req.ID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)
	assert.Equal(t, "request_"+req.ID+".csv", doc.Filename)

	body := string(doc.Data)
	assert.Contains(t, body, "Estimated price,500.00")
	assert.Contains(t, body, "Category,Plastic")
	assert.Contains(t, body, "Driver,Asep")
	assert.Contains(t, body, "Amount due,500.00")
}

func TestRequestReportRespectsAccess(t *testing.T) {
	f := newLifecycleFixture(t)
	req := f.create(t, "cat-plastic", 1)
	svc := NewReportService(f.requestsSvc, f.requests, f.categories, nil)

	_, err := svc.RequestReport(context.Background(), otherActor, req.ID, "pdf")
	require.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.RequestReport(context.Background(), ownerActor, req.ID, "docx")
	require.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportListsFilteredRequests(t *testing.T) {
	f := newLifecycleFixture(t)
	f.accepted(t, "cat-plastic", 2)
	f.create(t, "cat-glass", 4)
	svc := NewReportService(f.requestsSvc, f.requests, f.categories, nil)

	doc, err := svc.Export(context.Background(), adminActor, dto.WasteRequestQuery{AcceptanceStatus: []string{"PENDING"}}, "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(doc.Data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Created,User,City,Category"))
	assert.Contains(t, lines[1], "Glass")
	assert.True(t, strings.HasSuffix(doc.Filename, ".csv"))

	pdf, err := svc.Export(context.Background(), adminActor, dto.WasteRequestQuery{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, strings.HasPrefix(string(pdf.Data), "%PDF"))

	_, err = svc.Export(context.Background(), ownerActor, dto.WasteRequestQuery{}, "csv")
	require.True(t, errors.Is(err, appErrors.ErrForbidden))
}
