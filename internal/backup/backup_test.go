package backup

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"crm-ledger/internal/adapters/storage"
	"crm-ledger/internal/database"
	"crm-ledger/internal/models"
	"crm-ledger/internal/repositories"
	"crm-ledger/internal/repositories/sqlite"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	cfg := database.DefaultConnectionConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "backup.db")
	cfg.Logger = testLogger()

	db, err := database.InitializeDatabase(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	store := sqlite.NewStore(db, repositories.DefaultConfig(), cfg.Logger)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreate[T any](t *testing.T, c repositories.Collection[T], record *T) int64 {
	t.Helper()
	id, err := c.Create(context.Background(), record)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return id
}

// seedLedger fills a store whose surviving customer has id 2, so that ids
// in its export differ from the ids a fresh store assigns
func seedLedger(t *testing.T, store repositories.Store) {
	t.Helper()
	ctx := context.Background()

	first := mustCreate(t, store.Customers(), &models.Customer{Name: "Gone", CreatedAt: "01-03-2024 Time: 9:00:00 AM"})
	customerID := mustCreate(t, store.Customers(), &models.Customer{Name: "Asha", Email: "asha@example.com", CreatedAt: "01-03-2024 Time: 9:05:00 AM"})
	if err := store.Customers().Remove(ctx, first); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}

	itemID := mustCreate(t, store.Items(), &models.Item{Name: "Rice", Price: 100, GSTRate: 18, CreatedAt: "01-03-2024 Time: 9:10:00 AM"})

	saleID := mustCreate[models.Sale](t, store.Sales(), &models.Sale{
		InvoiceNo: "INV-20240305-001", SaleDate: "05-03-2024 Time: 1:34:09 PM",
		CustomerID: customerID, TotalAmount: 236, TotalGST: 36,
	})
	mustCreate[models.SaleItem](t, store.SaleItems(), &models.SaleItem{
		SaleID: saleID, ItemID: itemID, Quantity: 2, UnitPrice: 100, GSTRate: 18,
		GSTAmount: 36, LineExcl: 200, LineIncl: 236,
	})
	mustCreate[models.Payment](t, store.Payments(), &models.Payment{
		CustomerID: customerID, SaleID: &saleID, PaymentDate: "06-03-2024 Time: 10:00:00 AM", Amount: 100, Note: "cash",
	})
	mustCreate[models.Payment](t, store.Payments(), &models.Payment{
		CustomerID: customerID, PaymentDate: "07-03-2024 Time: 10:00:00 AM", Amount: 36,
	})
}

func TestExport_EmptyStoreWritesAllKeys(t *testing.T) {
	codec := NewCodec(setupTestStore(t), testLogger())

	data, err := codec.ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("ExportJSON() failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("export is not a JSON object: %v", err)
	}
	if len(raw) != len(models.Collections) {
		t.Errorf("export has %d keys, want %d", len(raw), len(models.Collections))
	}
	for _, key := range models.Collections {
		if string(raw[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, raw[key])
		}
	}
}

func TestImport_RemapRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := setupTestStore(t)
	seedLedger(t, source)

	data, err := NewCodec(source, testLogger()).ExportJSON(ctx)
	if err != nil {
		t.Fatalf("ExportJSON() failed: %v", err)
	}

	// Target already holds two customers, so Asha cannot keep id 2
	target := setupTestStore(t)
	mustCreate(t, target.Customers(), &models.Customer{Name: "Existing 1"})
	mustCreate(t, target.Customers(), &models.Customer{Name: "Existing 2"})

	result, err := NewCodec(target, testLogger()).ImportJSON(ctx, data, ModeRemap)
	if err != nil {
		t.Fatalf("ImportJSON() failed: %v", err)
	}

	want := ImportResult{Mode: ModeRemap, Customers: 1, Items: 1, Sales: 1, SaleItems: 1, Payments: 2}
	if *result != want {
		t.Errorf("ImportJSON() = %+v, want %+v", *result, want)
	}

	customers, _ := target.Customers().GetAll(ctx)
	asha := customers[2]
	if asha.ID != 3 || asha.Name != "Asha" || asha.Email != "asha@example.com" {
		t.Fatalf("imported customer = %+v", asha)
	}

	sales, _ := target.Sales().GetAll(ctx)
	if len(sales) != 1 || sales[0].CustomerID != asha.ID || sales[0].InvoiceNo != "INV-20240305-001" {
		t.Errorf("imported sale = %+v", sales)
	}

	items, _ := target.Items().GetAll(ctx)
	lines, _ := target.SaleItems().ListBySale(ctx, sales[0].ID)
	if len(lines) != 1 || lines[0].ItemID != items[0].ID || lines[0].LineIncl != 236 {
		t.Errorf("imported sale items = %+v", lines)
	}

	payments, _ := target.Payments().ListByCustomer(ctx, asha.ID)
	if len(payments) != 2 {
		t.Fatalf("Expected 2 payments for imported customer, got %d", len(payments))
	}
	if !payments[0].HasSale() || *payments[0].SaleID != sales[0].ID {
		t.Errorf("payment sale reference = %v, want %d", payments[0].SaleID, sales[0].ID)
	}
	if payments[1].HasSale() {
		t.Errorf("unlinked payment gained a sale reference: %v", *payments[1].SaleID)
	}
}

func TestImport_RoundTripIntoEmptyStore(t *testing.T) {
	ctx := context.Background()
	source := setupTestStore(t)
	seedLedger(t, source)

	exported, err := NewCodec(source, testLogger()).Export(ctx)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	target := setupTestStore(t)
	codec := NewCodec(target, testLogger())
	if _, err := codec.Import(ctx, exported, ModeRemap); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}

	again, err := codec.Export(ctx)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	if again.Len() != exported.Len() {
		t.Fatalf("record count = %d, want %d", again.Len(), exported.Len())
	}

	// Equal modulo ids
	a, b := exported.Customers[0], again.Customers[0]
	a.ID, b.ID = 0, 0
	if a != b {
		t.Errorf("customer = %+v, want %+v", b, a)
	}
	if again.Sales[0].CustomerID != again.Customers[0].ID {
		t.Errorf("sale customer_id = %d, want %d", again.Sales[0].CustomerID, again.Customers[0].ID)
	}
	if again.Payments[0].Amount != 100 || again.Payments[0].Note != "cash" {
		t.Errorf("payment = %+v", again.Payments[0])
	}
}

func TestImport_MergeKeepsReferences(t *testing.T) {
	ctx := context.Background()
	source := setupTestStore(t)
	seedLedger(t, source)

	doc, err := NewCodec(source, testLogger()).Export(ctx)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	target := setupTestStore(t)
	result, err := NewCodec(target, testLogger()).Import(ctx, doc, ModeMerge)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if result.Mode != ModeMerge || result.Total() != 6 {
		t.Errorf("Import() = %+v", result)
	}

	// Asha is created with id 1 but her sale still points at customer 2
	sales, _ := target.Sales().GetAll(ctx)
	if sales[0].CustomerID != 2 {
		t.Errorf("merged sale customer_id = %d, want 2", sales[0].CustomerID)
	}
}

func TestImport_DanglingReferences(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	data := []byte(`{"sales": [{"id": 7, "invoice_no": "INV-1", "customer_id": 99, "total_amount": 10}],
		"payments": [{"id": 1, "customer_id": 99, "sale_id": 7, "amount": 10}]}`)

	result, err := NewCodec(store, testLogger()).ImportJSON(ctx, data, ModeRemap)
	if err != nil {
		t.Fatalf("ImportJSON() failed: %v", err)
	}
	if result.Sales != 1 || result.Payments != 1 || result.Dangling != 2 {
		t.Errorf("ImportJSON() = %+v, want 1 sale, 1 payment, 2 dangling", result)
	}

	payments, _ := store.Payments().GetAll(ctx)
	sales, _ := store.Sales().GetAll(ctx)
	if payments[0].CustomerID != 99 || *payments[0].SaleID != sales[0].ID {
		t.Errorf("payment = %+v", payments[0])
	}
}

func TestImport_ParseErrorWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "customers: []"},
		{"array document", "[]"},
		{"null document", "null"},
		{"collection is object", `{"customers": {}}`},
		{"wrong field type", `{"customers": [{"id": 1, "name": "A"}], "items": [{"name": "x", "price": "ten"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			_, err := NewCodec(store, testLogger()).ImportJSON(context.Background(), []byte(tt.data), ModeRemap)
			if !IsParse(err) {
				t.Fatalf("ImportJSON() error = %v, want parse error", err)
			}

			count, _ := store.Customers().Count(context.Background())
			if count != 0 {
				t.Errorf("customers written = %d, want 0", count)
			}
		})
	}
}

func TestImport_MissingKeysAreEmpty(t *testing.T) {
	store := setupTestStore(t)

	result, err := NewCodec(store, testLogger()).ImportJSON(context.Background(),
		[]byte(`{"customers": [{"id": 5, "name": "Zoya"}], "payments": null}`), "")
	if err != nil {
		t.Fatalf("ImportJSON() failed: %v", err)
	}
	if result.Mode != ModeRemap || result.Customers != 1 || result.Total() != 1 {
		t.Errorf("ImportJSON() = %+v", result)
	}
}

func TestImport_NotIdempotent(t *testing.T) {
	ctx := context.Background()
	source := setupTestStore(t)
	seedLedger(t, source)

	data, err := NewCodec(source, testLogger()).ExportJSON(ctx)
	if err != nil {
		t.Fatalf("ExportJSON() failed: %v", err)
	}

	target := setupTestStore(t)
	codec := NewCodec(target, testLogger())
	for i := 0; i < 2; i++ {
		if _, err := codec.ImportJSON(ctx, data, ModeRemap); err != nil {
			t.Fatalf("ImportJSON() #%d failed: %v", i+1, err)
		}
	}

	count, _ := target.Payments().Count(ctx)
	if count != 4 {
		t.Errorf("payments = %d, want 4", count)
	}
}

// failingPayments rejects every payment
type failingPayments struct {
	repositories.PaymentCollection
}

func (f failingPayments) Create(ctx context.Context, p *models.Payment) (int64, error) {
	return 0, repositories.NewRepositoryError("create", models.CollectionPayments, 0, errors.New("disk full"))
}

type failingStore struct {
	repositories.Store
}

func (s failingStore) Payments() repositories.PaymentCollection {
	return failingPayments{s.Store.Payments()}
}

func TestImport_PartialImport(t *testing.T) {
	ctx := context.Background()
	source := setupTestStore(t)
	seedLedger(t, source)

	doc, err := NewCodec(source, testLogger()).Export(ctx)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	target := setupTestStore(t)
	result, err := NewCodec(failingStore{target}, testLogger()).Import(ctx, doc, ModeRemap)

	partial, ok := AsPartialImport(err)
	if !ok {
		t.Fatalf("Import() error = %v, want partial import", err)
	}
	if partial.Collection != models.CollectionPayments || partial.Index != 0 {
		t.Errorf("partial = %+v", partial)
	}
	if partial.Written.Customers != 1 || partial.Written.Sales != 1 || partial.Written.SaleItems != 1 || partial.Written.Payments != 0 {
		t.Errorf("written = %+v", partial.Written)
	}
	if result == nil || result.Total() != 4 {
		t.Errorf("Import() result = %+v, want 4 records written", result)
	}
	if !repositories.IsStorage(err) {
		t.Errorf("partial import should wrap the storage error")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeRemap, false},
		{"remap", ModeRemap, false},
		{" MERGE ", ModeMerge, false},
		{"replace", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	seedLedger(t, store)

	loc, err := time.LoadLocation(models.DefaultTimeZone)
	if err != nil {
		t.Fatalf("Failed to load zone: %v", err)
	}
	clock := models.NewClockWithSource(loc, func() time.Time {
		return time.Date(2024, 3, 5, 8, 4, 9, 0, time.UTC)
	})

	files := storage.NewMemoryFileStorage()
	archive := NewArchive(NewCodec(store, testLogger()), files, clock, testLogger())

	first, err := archive.Save(ctx)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if first.Key != "crm_backup_2024-03-05-13-34-09.json" {
		t.Errorf("Save() key = %s", first.Key)
	}

	second, err := archive.Save(ctx)
	if err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}
	if second.Key == first.Key || !strings.HasPrefix(second.Key, "crm_backup_2024-03-05-13-34-09-") {
		t.Errorf("second Save() key = %s", second.Key)
	}

	files.Store(ctx, "notes.txt", []byte("x"), nil)
	backups, err := archive.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("List() = %d files, want 2", len(backups))
	}

	if err := store.ResetAll(ctx); err != nil {
		t.Fatalf("ResetAll() failed: %v", err)
	}
	result, err := archive.Restore(ctx, first.Key, ModeRemap)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if result.Total() != 6 {
		t.Errorf("Restore() = %+v, want 6 records", result)
	}

	if _, err := archive.Restore(ctx, "notes.txt", ModeRemap); !models.IsValidationError(err) {
		t.Errorf("Restore(notes.txt) error = %v, want validation error", err)
	}
	if _, err := archive.Restore(ctx, "crm_backup_1999-01-01-00-00-00.json", ModeRemap); !storage.IsNotFound(err) {
		t.Errorf("Restore(missing) error = %v, want not found", err)
	}
}
