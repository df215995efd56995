package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crm-ledger/internal/adapters/storage"
	"crm-ledger/internal/backup"
	"crm-ledger/internal/database"
	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
	"crm-ledger/internal/repositories/sqlite"
	"crm-ledger/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixedNow is 05-03-2024 1:34:09 PM in Asia/Kolkata
var fixedNow = time.Date(2024, 3, 5, 8, 4, 9, 0, time.UTC)

type testServer struct {
	router *gin.Engine
	files  *storage.MemoryFileStorage
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := database.DefaultConnectionConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "handlers.db")
	cfg.Logger = logger

	db, err := database.InitializeDatabase(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	store := sqlite.NewStore(db, repositories.DefaultConfig(), logger)
	t.Cleanup(func() { store.Close() })

	loc, err := time.LoadLocation(models.DefaultTimeZone)
	if err != nil {
		t.Fatalf("Failed to load zone: %v", err)
	}
	clock := models.NewClockWithSource(loc, func() time.Time { return fixedNow })

	container, err := services.NewServiceContainer(store, &services.ServiceConfig{
		Clock:         clock,
		InvoicePrefix: "INV",
		Logger:        logger,
	})
	if err != nil {
		t.Fatalf("NewServiceContainer() failed: %v", err)
	}

	files := storage.NewMemoryFileStorage()
	codec := backup.NewCodec(store, logger)

	router := NewRouter(&RouterConfig{
		Services:          container,
		Codec:             codec,
		Archive:           backup.NewArchive(codec, files, clock, logger),
		Logger:            logger,
		RequestsPerSecond: 1000,
		Burst:             1000,
	})

	return &testServer{router: router, files: files}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	decode(t, w, &body)
	if body["service"] != "crm-ledger" || body["status"] != "healthy" {
		t.Errorf("GET /health = %v", body)
	}
}

func TestCustomerRoutes(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/customers", `{"name":"Asha","email":"asha@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /customers status = %d, body %s", w.Code, w.Body.String())
	}
	var customer models.Customer
	decode(t, w, &customer)
	if customer.ID != 1 || customer.Name != "Asha" {
		t.Errorf("POST /customers = %+v", customer)
	}

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"list", http.MethodGet, "/api/v1/customers", "", http.StatusOK},
		{"get", http.MethodGet, "/api/v1/customers/1", "", http.StatusOK},
		{"get missing", http.MethodGet, "/api/v1/customers/99", "", http.StatusNotFound},
		{"get malformed id", http.MethodGet, "/api/v1/customers/abc", "", http.StatusBadRequest},
		{"update", http.MethodPut, "/api/v1/customers/1", `{"address":"Pune"}`, http.StatusOK},
		{"update bad email", http.MethodPut, "/api/v1/customers/1", `{"email":"nope"}`, http.StatusBadRequest},
		{"statement", http.MethodGet, "/api/v1/customers/1/statement", "", http.StatusOK},
		{"create malformed json", http.MethodPost, "/api/v1/customers", `{"name":`, http.StatusBadRequest},
		{"create without content type", http.MethodPost, "/api/v1/customers", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.target, tt.body)
			if w.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d (body %s)", tt.method, tt.target, w.Code, tt.want, w.Body.String())
			}
		})
	}

	w = s.do(http.MethodPost, "/api/v1/customers", `{"name":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /customers with blank name status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var errResp ErrorResponse
	decode(t, w, &errResp)
	if errResp.Field != "name" || errResp.RequestID == "" {
		t.Errorf("validation error response = %+v", errResp)
	}

	if w := s.do(http.MethodDelete, "/api/v1/customers/1", ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE /customers/1 status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestSaleAndPaymentRoutes(t *testing.T) {
	s := setupTestServer(t)

	s.do(http.MethodPost, "/api/v1/customers", `{"name":"Asha"}`)
	if w := s.do(http.MethodPost, "/api/v1/items", `{"name":"Cake","price":100,"gst_rate":18}`); w.Code != http.StatusCreated {
		t.Fatalf("POST /items status = %d, body %s", w.Code, w.Body.String())
	}

	saleBody := `{"customer_id":1,"lines":[{"item_id":1,"quantity":2}]}`

	w := s.do(http.MethodPost, "/api/v1/sales/preview", saleBody)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /sales/preview status = %d, body %s", w.Code, w.Body.String())
	}
	var preview services.SalePreview
	decode(t, w, &preview)
	if preview.TotalAmount != 236 || preview.TotalGST != 36 {
		t.Errorf("preview totals = %v / %v, want 236 / 36", preview.TotalAmount, preview.TotalGST)
	}

	w = s.do(http.MethodPost, "/api/v1/sales", saleBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /sales status = %d, body %s", w.Code, w.Body.String())
	}
	var sale models.Sale
	decode(t, w, &sale)
	if sale.InvoiceNo != "INV-20240305-001" || sale.TotalAmount != 236 {
		t.Errorf("POST /sales = %+v", sale)
	}

	w = s.do(http.MethodGet, "/api/v1/sales/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /sales/1 status = %d", w.Code)
	}
	var fetched models.Sale
	decode(t, w, &fetched)
	if len(fetched.Items) != 1 || fetched.Items[0].UnitPrice != 100 {
		t.Errorf("GET /sales/1 items = %+v", fetched.Items)
	}

	if w := s.do(http.MethodPost, "/api/v1/sales", `{"customer_id":1,"lines":[{"item_id":1,"quantity":0}]}`); w.Code != http.StatusBadRequest {
		t.Errorf("POST /sales with zero quantity status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	if w := s.do(http.MethodPost, "/api/v1/payments", `{"customer_id":1,"amount":100,"sale_id":1}`); w.Code != http.StatusCreated {
		t.Fatalf("POST /payments status = %d, body %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodPost, "/api/v1/payments", `{"customer_id":1,"amount":0}`); w.Code != http.StatusBadRequest {
		t.Errorf("POST /payments with zero amount status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = s.do(http.MethodGet, "/api/v1/balances", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /balances status = %d", w.Code)
	}
	var balances []BalanceResponse
	decode(t, w, &balances)
	if len(balances) != 1 || balances[0].Net != 136 || balances[0].Status != "receivable" {
		t.Errorf("GET /balances = %+v", balances)
	}

	w = s.do(http.MethodGet, "/api/v1/stats", "")
	var stats models.Stats
	decode(t, w, &stats)
	if stats.Sales != 1 || stats.Payments != 1 || stats.Receivables != 136 {
		t.Errorf("GET /stats = %+v", stats)
	}
}

func TestCompleteSaleRoute(t *testing.T) {
	s := setupTestServer(t)

	s.do(http.MethodPost, "/api/v1/customers", `{"name":"Asha"}`)
	s.do(http.MethodPost, "/api/v1/items", `{"name":"Cake","price":100,"gst_rate":18}`)
	if w := s.do(http.MethodPost, "/api/v1/sales", `{"customer_id":1,"lines":[{"item_id":1,"quantity":2}]}`); w.Code != http.StatusCreated {
		t.Fatalf("POST /sales status = %d, body %s", w.Code, w.Body.String())
	}

	forged := `{"pending":[{"item_id":1,"quantity":1,"unit_price":100,"gst_rate":18,"line_incl":0.01}]}`

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"complete sale", "/api/v1/sales/1/complete", forged, http.StatusBadRequest},
		{"absent sale", "/api/v1/sales/424242/complete", forged, http.StatusNotFound},
		{"no pending lines", "/api/v1/sales/1/complete", `{"pending":[]}`, http.StatusBadRequest},
		{"malformed body", "/api/v1/sales/1/complete", `{"pending":`, http.StatusBadRequest},
		{"bad id", "/api/v1/sales/abc/complete", forged, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(http.MethodPost, tt.target, tt.body); w.Code != tt.want {
				t.Errorf("POST %s status = %d, want %d, body %s", tt.target, w.Code, tt.want, w.Body.String())
			}
		})
	}

	w := s.do(http.MethodGet, "/api/v1/sales/1", "")
	var sale models.Sale
	decode(t, w, &sale)
	if len(sale.Items) != 1 || sale.TotalAmount != 236 {
		t.Errorf("GET /sales/1 after rejected completions = %+v", sale)
	}
}

func TestReportRoutes(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"monthly", "/api/v1/reports/monthly?period=2024-03", http.StatusOK},
		{"monthly malformed period", "/api/v1/reports/monthly?period=March", http.StatusBadRequest},
		{"monthly missing period", "/api/v1/reports/monthly", http.StatusBadRequest},
		{"quarterly", "/api/v1/reports/quarterly?quarter=4&year=2024", http.StatusOK},
		{"quarterly out of range", "/api/v1/reports/quarterly?quarter=5&year=2024", http.StatusBadRequest},
		{"quarterly missing year", "/api/v1/reports/quarterly?quarter=1", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(http.MethodGet, tt.target, ""); w.Code != tt.want {
				t.Errorf("GET %s status = %d, want %d", tt.target, w.Code, tt.want)
			}
		})
	}
}

func TestWipeAll(t *testing.T) {
	s := setupTestServer(t)
	s.do(http.MethodPost, "/api/v1/customers", `{"name":"Asha"}`)

	if w := s.do(http.MethodDelete, "/api/v1/data", ""); w.Code != http.StatusBadRequest {
		t.Errorf("DELETE /data without confirm status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := s.do(http.MethodDelete, "/api/v1/data?confirm=true", ""); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /data?confirm=true status = %d, want %d", w.Code, http.StatusNoContent)
	}

	var customers []models.Customer
	decode(t, s.do(http.MethodGet, "/api/v1/customers", ""), &customers)
	if len(customers) != 0 {
		t.Errorf("customers after wipe = %d, want 0", len(customers))
	}
}

func TestBackupRoutes(t *testing.T) {
	s := setupTestServer(t)
	s.do(http.MethodPost, "/api/v1/customers", `{"name":"Asha"}`)

	w := s.do(http.MethodGet, "/api/v1/backup/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /backup/export status = %d, body %s", w.Code, w.Body.String())
	}
	key := "crm_backup_2024-03-05-13-34-09.json"
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, key) {
		t.Errorf("Content-Disposition = %q, want %s", got, key)
	}
	exported := w.Body.String()

	var files []storage.FileInfo
	decode(t, s.do(http.MethodGet, "/api/v1/backup/files", ""), &files)
	if len(files) != 1 || files[0].Key != key {
		t.Errorf("GET /backup/files = %+v", files)
	}

	w = s.do(http.MethodPost, "/api/v1/backup/import", exported)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /backup/import status = %d, body %s", w.Code, w.Body.String())
	}
	var result backup.ImportResult
	decode(t, w, &result)
	if result.Customers != 1 || result.Mode != backup.ModeRemap {
		t.Errorf("POST /backup/import = %+v", result)
	}

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"import malformed", http.MethodPost, "/api/v1/backup/import", `[1,2]`, http.StatusBadRequest},
		{"import unknown mode", http.MethodPost, "/api/v1/backup/import?mode=replace", `{}`, http.StatusBadRequest},
		{"restore", http.MethodPost, "/api/v1/backup/files/" + key + "/restore?mode=merge", "", http.StatusOK},
		{"restore missing", http.MethodPost, "/api/v1/backup/files/crm_backup_1999-01-01-00-00-00.json/restore", "", http.StatusNotFound},
		{"restore foreign file", http.MethodPost, "/api/v1/backup/files/notes.txt/restore", "", http.StatusBadRequest},
		{"download", http.MethodGet, "/api/v1/backup/files/" + key, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := s.do(tt.method, tt.target, tt.body); w.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d (body %s)", tt.method, tt.target, w.Code, tt.want, w.Body.String())
			}
		})
	}

	var customers []models.Customer
	decode(t, s.do(http.MethodGet, "/api/v1/customers", ""), &customers)
	if len(customers) != 3 {
		t.Errorf("customers after import and restore = %d, want 3", len(customers))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("name", "name is required", nil), http.StatusBadRequest},
		{"confirmation", services.ErrConfirmationRequired, http.StatusBadRequest},
		{"draft committed", services.ErrDraftCommitted, http.StatusConflict},
		{"partial commit", &services.PartialCommitError{SaleID: 1}, http.StatusInternalServerError},
		{"not found", repositories.ErrNotFound, http.StatusNotFound},
		{"file not found", storage.ErrFileNotFound, http.StatusNotFound},
		{"backup storage", storage.NewStorageError("store", "k", storage.ErrStorageUnavailable, true), http.StatusServiceUnavailable},
		{"parse", &backup.ParseError{Err: storage.ErrInvalidKey}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
