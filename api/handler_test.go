package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/services"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/store"
)

// stubExtractor returns canned text instead of running OCR.
type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	return s.text, s.err
}

func newTestHandler(extractor stubExtractor) (*Handler, *store.Memory) {
	mem := store.NewMemory()
	cfg := &models.Config{Extraction: models.ExtractionConfig{Engine: "gemini"}}
	return NewHandler(cfg, mem, extractor), mem
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/process-receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type processedResponse struct {
	models.ProcessResponse
	Validation *services.ValidationResult `json:"validation"`
}

func TestProcessReceipt(t *testing.T) {
	h, mem := newTestHandler(stubExtractor{
		text: "Acme Corp\nSubtotal: $100.00\nTax 7%\nTotal: $107.00",
	})
	router := h.SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "file", "receipt.png", []byte("fake image bytes")))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp processedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ReceiptID)
	require.NotNil(t, resp.Record)
	assert.Equal(t, "Acme Corp", resp.Record.VendorName)
	require.NotNil(t, resp.Record.Amount)
	assert.Equal(t, 107.0, *resp.Record.Amount)
	require.NotNil(t, resp.Record.TaxAmount)
	assert.Equal(t, 7.0, *resp.Record.TaxAmount)
	require.NotNil(t, resp.Validation)
	assert.True(t, resp.Validation.Valid)

	// Persisted under the returned id.
	saved, err := mem.Get(context.Background(), resp.ReceiptID)
	require.NoError(t, err)
	assert.Equal(t, "receipt.png", saved.FileName)
}

func TestProcessReceiptAcceptsImageField(t *testing.T) {
	h, _ := newTestHandler(stubExtractor{text: "Total $88.00"})
	router := h.SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "image", "receipt.jpg", []byte("bytes")))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProcessReceiptRejectsUnsupportedType(t *testing.T) {
	h, _ := newTestHandler(stubExtractor{text: "whatever"})
	router := h.SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "file", "notes.txt", []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unsupported file type")
}

func TestProcessReceiptRequiresFile(t *testing.T) {
	h, _ := newTestHandler(stubExtractor{text: "whatever"})
	router := h.SetupRoutes()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/process-receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProcessReceiptExtractionFailure(t *testing.T) {
	h, _ := newTestHandler(stubExtractor{err: errors.New("engine exploded")})
	router := h.SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "file", "receipt.png", []byte("bytes")))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp processedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "text extraction failed")
}

func TestProcessReceiptEmptyText(t *testing.T) {
	h, _ := newTestHandler(stubExtractor{text: "   \n "})
	router := h.SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "file", "receipt.png", []byte("bytes")))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func seedReceipt(t *testing.T, mem *store.Memory, id string, created time.Time, total, tax float64) {
	t.Helper()
	require.NoError(t, mem.Save(context.Background(), &store.Receipt{
		ID:        id,
		FileName:  id + ".png",
		CreatedAt: created,
		Record: &models.ReceiptRecord{
			RawText:   "seed",
			Amount:    &total,
			TaxAmount: &tax,
		},
	}))
}

func TestGetReceipts(t *testing.T) {
	h, mem := newTestHandler(stubExtractor{})
	router := h.SetupRoutes()

	seedReceipt(t, mem, "a", time.Now(), 10, 1)
	seedReceipt(t, mem, "b", time.Now().Add(-time.Hour), 20, 2)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/receipts", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success  bool            `json:"success"`
		Count    int             `json:"count"`
		Receipts []store.Receipt `json:"receipts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Receipts, 2)
	assert.Equal(t, "a", resp.Receipts[0].ID)
}

func TestGetReceiptNotFound(t *testing.T) {
	h, _ := newTestHandler(stubExtractor{})
	router := h.SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/receipt/missing-id", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteReceipt(t *testing.T) {
	h, mem := newTestHandler(stubExtractor{})
	router := h.SetupRoutes()
	seedReceipt(t, mem, "gone", time.Now(), 10, 1)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/receipt/gone", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	_, err := mem.Get(context.Background(), "gone")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting again is a 404.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/receipt/gone", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetStats(t *testing.T) {
	h, mem := newTestHandler(stubExtractor{})
	router := h.SetupRoutes()

	january := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	seedReceipt(t, mem, "jan1", january, 107, 7)
	seedReceipt(t, mem, "jan2", january.Add(24*time.Hour), 50, 0)
	seedReceipt(t, mem, "feb1", january.AddDate(0, 1, 0), 16.59, 1.09)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 173.59, resp.TotalAmount)
	assert.Equal(t, 8.09, resp.TotalTax)

	require.Len(t, resp.Monthly, 2)
	assert.Equal(t, "2026-02", resp.Monthly[0].Month)
	assert.Equal(t, "2026-01", resp.Monthly[1].Month)
	assert.Equal(t, 2, resp.Monthly[1].Count)
	assert.Equal(t, 157.0, resp.Monthly[1].Amount)
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(stubExtractor{})
	router := h.SetupRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
	assert.Equal(t, "gemini", resp.Engine)
	assert.False(t, resp.Database.Available)
}
