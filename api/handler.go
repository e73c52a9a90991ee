package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/auth"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/db"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/parser"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/services"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/storage"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/store"
	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/textextract"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.0.0"
)

// Handler handles HTTP requests for receipt processing
type Handler struct {
	config    *models.Config
	store     store.Store
	parser    *parser.Parser
	validator *services.RecordValidator

	// extractText is the text-extraction entry point, injectable in tests.
	extractText func(ctx context.Context, path string) (string, error)
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, st store.Store, extractor textextract.Provider) *Handler {
	p := parser.New()
	p.Trace = config.Parser.Trace
	return &Handler{
		config:      config,
		store:       st,
		parser:      p,
		validator:   services.NewRecordValidator(),
		extractText: extractor.ExtractText,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Main endpoints
	router.HandleFunc("/api/process-receipt", h.ProcessReceipt).Methods("POST")
	router.HandleFunc("/api/receipts", h.GetReceipts).Methods("GET")

	// Receipt CRUD
	router.HandleFunc("/api/receipt/{id}", h.GetReceipt).Methods("GET")
	router.HandleFunc("/api/receipt/{id}", h.DeleteReceipt).Methods("DELETE")

	// Statistics
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Auth
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Memory    MemoryStats   `json:"memory"`
	Engine    string        `json:"engine"`
	Tesseract ServiceStatus `json:"tesseract"`
	Database  ServiceStatus `json:"database"`
	Storage   ServiceStatus `json:"storage"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	tesseractStatus := h.checkTesseract()

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Engine:    h.engineName(),
		Tesseract: tesseractStatus,
		Database:  h.checkDatabase(),
		Storage:   h.checkStorage(),
	}

	// Tesseract only degrades the service when it is the configured engine.
	if h.engineName() == "tesseract" && !tesseractStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (h *Handler) engineName() string {
	if h.config.Extraction.Engine == "" {
		return "tesseract"
	}
	return h.config.Extraction.Engine
}

// checkTesseract verifies Tesseract OCR is available
func (h *Handler) checkTesseract() ServiceStatus {
	cmd := exec.Command("tesseract", "--version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "tesseract not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkDatabase verifies PostgreSQL connection
func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized - receipts kept in memory",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL",
	}
}

// checkStorage verifies MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if !storage.Enabled() {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized - originals are not archived",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// ProcessReceipt accepts one uploaded receipt file, extracts its text,
// parses the financial fields and stores the result.
func (h *Handler) ProcessReceipt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	// Accept both "file" and "image" field names
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'image' field)")
			return
		}
	}
	defer file.Close()

	if !textextract.Supported(header.Filename) {
		h.sendError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(header.Filename)))
		return
	}

	tempPath, err := saveTempFile(file, header.Filename)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer os.Remove(tempPath)

	extractStart := time.Now()
	rawText, err := h.extractText(ctx, tempPath)
	extractDuration := time.Since(extractStart).Seconds()

	if err != nil {
		h.sendProcessFailure(w, fmt.Sprintf("text extraction failed: %v", err), time.Since(start))
		return
	}
	if strings.TrimSpace(rawText) == "" {
		h.sendProcessFailure(w, "no text could be recognized in the file", time.Since(start))
		return
	}

	record := h.parser.Parse(rawText)
	receipt := &store.Receipt{
		ID:        uuid.New().String(),
		FileName:  header.Filename,
		CreatedAt: time.Now(),
		Record:    record,
	}

	// Archive the original when storage is configured. Failure is logged,
	// not fatal.
	if storage.Enabled() {
		if f, err := os.Open(tempPath); err == nil {
			url, upErr := storage.UploadReceiptFile(ctx, receipt.ID, header.Filename,
				f, header.Size, header.Header.Get("Content-Type"))
			f.Close()
			if upErr != nil {
				log.Printf("Warning: failed to archive receipt file: %v", upErr)
			} else {
				receipt.FileURL = url
			}
		}
	}

	if err := h.store.Save(ctx, receipt); err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save receipt: %v", err))
		return
	}

	json.NewEncoder(w).Encode(struct {
		models.ProcessResponse
		Validation *services.ValidationResult `json:"validation"`
	}{
		ProcessResponse: models.ProcessResponse{
			Success:         true,
			ReceiptID:       receipt.ID,
			Record:          record,
			ExtractDuration: extractDuration,
			TotalDuration:   time.Since(start).Seconds(),
		},
		Validation: h.validator.Validate(record),
	})
}

// saveTempFile copies an upload to a temp file, keeping the extension so the
// extraction engine can route by it.
func saveTempFile(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// GetReceipts returns the most recent receipts
func (h *Handler) GetReceipts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	receipts, err := h.store.List(ctx, 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get receipts: %v", err))
		return
	}

	h.presignAll(ctx, receipts)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"receipts": receipts,
		"count":    len(receipts),
	})
}

// GetReceipt returns a single receipt
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	receipt, err := h.store.Get(ctx, mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		h.sendError(w, http.StatusNotFound, "receipt not found")
		return
	}
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get receipt: %v", err))
		return
	}

	if receipt.FileURL != "" && storage.Enabled() {
		if presignedURL, err := storage.GetPresignedURL(ctx, receipt.FileURL); err == nil {
			receipt.FileURL = presignedURL
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"receipt": receipt,
	})
}

// DeleteReceipt removes a receipt and its archived file
func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	receipt, err := h.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.sendError(w, http.StatusNotFound, "receipt not found")
		return
	}
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get receipt: %v", err))
		return
	}

	if err := h.store.Delete(ctx, id); err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete receipt: %v", err))
		return
	}

	if receipt.FileURL != "" && storage.Enabled() {
		if err := storage.DeleteReceiptFile(ctx, receipt.FileURL); err != nil {
			log.Printf("Warning: failed to delete archived file for %s: %v", id, err)
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"deleted": id,
	})
}

// MonthlyStat aggregates receipts of one calendar month.
type MonthlyStat struct {
	Month  string  `json:"month"` // YYYY-MM
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
	Tax    float64 `json:"tax"`
}

// StatsResponse summarizes all stored receipts.
type StatsResponse struct {
	Success     bool          `json:"success"`
	Count       int           `json:"count"`
	TotalAmount float64       `json:"totalAmount"`
	TotalTax    float64       `json:"totalTax"`
	Monthly     []MonthlyStat `json:"monthly"`
}

// GetStats aggregates stored receipts by month. Sums use decimal arithmetic
// so cents cannot drift across many receipts.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	receipts, err := h.store.List(ctx, 0)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	type bucket struct {
		count       int
		amount, tax decimal.Decimal
	}
	totalAmount := decimal.Zero
	totalTax := decimal.Zero
	months := make(map[string]*bucket)

	for _, rec := range receipts {
		month := rec.CreatedAt.Format("2006-01")
		b := months[month]
		if b == nil {
			b = &bucket{}
			months[month] = b
		}
		b.count++
		if rec.Record.Amount != nil {
			d := decimal.NewFromFloat(*rec.Record.Amount)
			b.amount = b.amount.Add(d)
			totalAmount = totalAmount.Add(d)
		}
		if rec.Record.TaxAmount != nil {
			d := decimal.NewFromFloat(*rec.Record.TaxAmount)
			b.tax = b.tax.Add(d)
			totalTax = totalTax.Add(d)
		}
	}

	monthly := make([]MonthlyStat, 0, len(months))
	for month, b := range months {
		monthly = append(monthly, MonthlyStat{
			Month:  month,
			Count:  b.count,
			Amount: decimalToFloat64(b.amount),
			Tax:    decimalToFloat64(b.tax),
		})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month > monthly[j].Month })

	json.NewEncoder(w).Encode(StatsResponse{
		Success:     true,
		Count:       len(receipts),
		TotalAmount: decimalToFloat64(totalAmount),
		TotalTax:    decimalToFloat64(totalTax),
		Monthly:     monthly,
	})
}

func (h *Handler) presignAll(ctx context.Context, receipts []store.Receipt) {
	if !storage.Enabled() {
		return
	}
	for i := range receipts {
		if receipts[i].FileURL == "" {
			continue
		}
		if presignedURL, err := storage.GetPresignedURL(ctx, receipts[i].FileURL); err == nil {
			receipts[i].FileURL = presignedURL
		}
	}
}

// sendProcessFailure reports a failed extraction in the processing response
// shape. 422: the upload was valid but nothing useful could be read from it.
func (h *Handler) sendProcessFailure(w http.ResponseWriter, message string, elapsed time.Duration) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(models.ProcessResponse{
		Success:       false,
		Error:         message,
		TotalDuration: elapsed.Seconds(),
	})
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// decimalToFloat64 converts decimal.Decimal to float64
func decimalToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
