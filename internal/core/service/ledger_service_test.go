package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/smartor/case-ledger/internal/core/domain"
	"github.com/smartor/case-ledger/internal/port"
)

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	stock          map[string]decimal.Decimal
	idempotencySet map[string]bool
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		stock:          make(map[string]decimal.Decimal),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) DecrementStock(ctx context.Context, itemID string, qty decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.stock[itemID]
	if current.GreaterThanOrEqual(qty) {
		m.stock[itemID] = current.Sub(qty)
		return true, nil
	}
	return false, nil
}

func (m *mockCacheRepo) AdjustStock(ctx context.Context, itemID string, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] = m.stock[itemID].Add(delta)
	return nil
}

func (m *mockCacheRepo) SetStock(ctx context.Context, itemID string, qty decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] = qty
	return nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

// Mock CatalogRepository + LedgerRepository backed by in-memory maps
type mockStore struct {
	mu       sync.Mutex
	items    map[string]domain.InventoryItem // keyed by id
	order    []string
	entries  []domain.LogEntry
	failItem string // RecordUsage fails for entries naming this item
}

func newMockStore(items ...domain.InventoryItem) *mockStore {
	s := &mockStore{items: make(map[string]domain.InventoryItem)}
	for _, item := range items {
		s.items[item.ID] = item
		s.order = append(s.order, item.ID)
	}
	return s
}

func (s *mockStore) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.InventoryItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items, nil
}

func (s *mockStore) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[id]; ok {
		return &item, nil
	}
	return nil, nil
}

func (s *mockStore) SeedItems(ctx context.Context, items []domain.InventoryItem) error {
	return nil
}

func (s *mockStore) RecordUsage(ctx context.Context, entry domain.LogEntry, itemID string, policy domain.StockPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Item == s.failItem {
		return fmt.Errorf("write failed for %s", entry.Item)
	}

	item, ok := s.items[itemID]
	if !ok {
		return errors.New("no such item")
	}
	switch policy {
	case domain.PolicyReject:
		if item.OnHand.LessThan(entry.Qty) {
			return errors.New("stock update conflict")
		}
		item.OnHand = item.OnHand.Sub(entry.Qty)
	case domain.PolicyClamp:
		next := item.OnHand.Sub(entry.Qty)
		if next.IsNegative() {
			next = decimal.Zero
		}
		item.OnHand = next
	default:
		item.OnHand = item.OnHand.Sub(entry.Qty)
	}
	item.Version++
	s.items[itemID] = item
	s.entries = append(s.entries, entry)
	return nil
}

func (s *mockStore) AppendEntry(ctx context.Context, entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *mockStore) ListEntries(ctx context.Context) ([]domain.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *mockStore) onHand(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].OnHand
}

// Mock Extractor
type mockExtractor struct {
	candidates []domain.Candidate
	err        error
}

func (m *mockExtractor) Extract(ctx context.Context, u port.Utterance, knownItems []string) ([]domain.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

func propofol() domain.InventoryItem {
	return domain.InventoryItem{
		ID:        "item-propofol",
		Name:      "Propofol",
		UnitPrice: decimal.NewFromInt(50),
		Unit:      "amp",
		Category:  "Drug",
		OnHand:    decimal.NewFromInt(20),
	}
}

func newTestService(t *testing.T, store *mockStore, cache *mockCacheRepo, ex *mockExtractor, policy domain.StockPolicy) *LedgerService {
	t.Helper()
	svc := NewLedgerService(store, store, cache, ex, policy)
	if _, err := svc.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	return svc
}

func TestRecordUsage_Success(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Propofol", Qty: decimal.NewFromInt(2)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "used 2 amps of Propofol"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Status != LineRecorded {
		t.Errorf("expected recorded line, got %s (%s)", lines[0].Status, lines[0].Error)
	}
	if !lines[0].Cost.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected cost 100, got %s", lines[0].Cost)
	}

	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(18)) {
		t.Errorf("expected stock 18, got %s", got)
	}

	entries, _ := store.ListEntries(context.Background())
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Source != domain.SourceText {
		t.Errorf("expected source Text, got %s", entries[0].Source)
	}
	if !entries[0].Cost.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected entry cost 100, got %s", entries[0].Cost)
	}
}

func TestRecordUsage_VoiceSourceTag(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Propofol", Qty: decimal.NewFromInt(1)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	_, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Audio: []byte{1, 2, 3}, AudioMIME: "audio/wav"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	entries, _ := store.ListEntries(context.Background())
	if entries[0].Source != domain.SourceVoice {
		t.Errorf("expected source Voice, got %s", entries[0].Source)
	}
}

func TestRecordUsage_Unresolved(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Unobtainium", Qty: decimal.NewFromInt(5)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "5 Unobtainium"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if lines[0].Status != LineNotFound {
		t.Errorf("expected not_found line, got %s", lines[0].Status)
	}

	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected stock untouched at 20, got %s", got)
	}

	entries, _ := store.ListEntries(context.Background())
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Source != domain.SourceNotFound {
		t.Errorf("expected Not Found tag, got %s", entries[0].Source)
	}
	if !entries[0].Cost.IsZero() {
		t.Errorf("expected zero cost, got %s", entries[0].Cost)
	}
	if entries[0].Item != "Unobtainium" {
		t.Errorf("expected raw name retained, got %s", entries[0].Item)
	}
}

func TestRecordUsage_CaseSensitiveMatch(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "propofol", Qty: decimal.NewFromInt(2)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "2 propofol"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if lines[0].Status != LineNotFound {
		t.Errorf("lowercase name must not resolve, got %s", lines[0].Status)
	}
	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected stock untouched, got %s", got)
	}
}

func TestRecordUsage_OverDeductionGoesNegative(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Propofol", Qty: decimal.NewFromInt(25)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "25 Propofol"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if lines[0].Status != LineRecorded {
		t.Fatalf("expected recorded line, got %s", lines[0].Status)
	}

	// q - d exactly, never clamped
	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(-5)) {
		t.Errorf("expected stock -5, got %s", got)
	}
}

func TestRecordUsage_RejectPolicy(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Propofol", Qty: decimal.NewFromInt(25)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyReject)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "25 Propofol"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if lines[0].Status != LineFailed {
		t.Fatalf("expected failed line, got %s", lines[0].Status)
	}
	if lines[0].Error != ErrInsufficientStock.Error() {
		t.Errorf("expected insufficient stock error, got %q", lines[0].Error)
	}
	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected stock untouched, got %s", got)
	}
	entries, _ := store.ListEntries(context.Background())
	if len(entries) != 0 {
		t.Errorf("expected no ledger entries, got %d", len(entries))
	}
}

func TestRecordUsage_ClampPolicy(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Propofol", Qty: decimal.NewFromInt(25)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyClamp)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "25 Propofol"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if lines[0].Status != LineRecorded {
		t.Fatalf("expected recorded line, got %s", lines[0].Status)
	}
	if got := store.onHand("item-propofol"); !got.IsZero() {
		t.Errorf("expected stock clamped to 0, got %s", got)
	}
	// The ledger still records the requested quantity.
	entries, _ := store.ListEntries(context.Background())
	if !entries[0].Qty.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected recorded qty 25, got %s", entries[0].Qty)
	}
}

func TestRecordUsage_ZeroQuantityNoop(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Propofol", Qty: decimal.Zero}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "some Propofol"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if lines[0].Status != LineRecorded {
		t.Fatalf("expected recorded line, got %s", lines[0].Status)
	}
	if !lines[0].Cost.IsZero() {
		t.Errorf("expected zero cost, got %s", lines[0].Cost)
	}
	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected zero-effect mutation, got %s", got)
	}
}

func TestRecordUsage_ExtractionFailure(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{err: errors.New("malformed extraction payload")}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	_, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "garbled"})
	if err == nil {
		t.Fatal("expected error")
	}

	entries, _ := store.ListEntries(context.Background())
	if len(entries) != 0 {
		t.Errorf("expected no entries after extraction failure, got %d", len(entries))
	}
	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected no mutations, got %s", got)
	}
}

func TestRecordUsage_DuplicateRequest(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{{Item: "Propofol", Qty: decimal.NewFromInt(1)}}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	if _, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "1 Propofol"}); err != nil {
		t.Fatalf("first action failed: %v", err)
	}

	_, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "1 Propofol"})
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got: %v", err)
	}

	// Deducted exactly once.
	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(19)) {
		t.Errorf("expected stock 19, got %s", got)
	}
}

func TestRecordUsage_PartialBatchIsolation(t *testing.T) {
	fentanyl := domain.InventoryItem{
		ID: "item-fentanyl", Name: "Fentanyl", UnitPrice: decimal.NewFromInt(35),
		Unit: "amp", Category: "Drug", OnHand: decimal.NewFromInt(10),
	}
	gauze := domain.InventoryItem{
		ID: "item-gauze", Name: "Surgical Gauze", UnitPrice: decimal.NewFromInt(8),
		Unit: "pack", Category: "Disposable", OnHand: decimal.NewFromInt(100),
	}
	store := newMockStore(propofol(), fentanyl, gauze)
	store.failItem = "Fentanyl"

	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{
		{Item: "Propofol", Qty: decimal.NewFromInt(2)},
		{Item: "Fentanyl", Qty: decimal.NewFromInt(1)},
		{Item: "Surgical Gauze", Qty: decimal.NewFromInt(5)},
	}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	lines, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "..."})
	if err != nil {
		t.Fatalf("batch must not fail as a whole: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	// First candidate persisted, no rollback.
	if lines[0].Status != LineRecorded {
		t.Errorf("line 0: expected recorded, got %s", lines[0].Status)
	}
	if got := store.onHand("item-propofol"); !got.Equal(decimal.NewFromInt(18)) {
		t.Errorf("expected propofol stock 18, got %s", got)
	}

	// Second candidate isolated failure.
	if lines[1].Status != LineFailed {
		t.Errorf("line 1: expected failed, got %s", lines[1].Status)
	}
	if got := store.onHand("item-fentanyl"); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected fentanyl stock untouched, got %s", got)
	}

	// Third candidate not blocked by the failure before it.
	if lines[2].Status != LineRecorded {
		t.Errorf("line 2: expected recorded, got %s", lines[2].Status)
	}
	if got := store.onHand("item-gauze"); !got.Equal(decimal.NewFromInt(95)) {
		t.Errorf("expected gauze stock 95, got %s", got)
	}
}

func TestRecordUsage_NoCatalog(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{}
	svc := NewLedgerService(store, store, cache, ex, domain.PolicyAllowNegative)

	_, err := svc.RecordUsage(context.Background(), "req-1", "case-1", port.Utterance{Text: "x"})
	if !errors.Is(err, ErrNoCatalog) {
		t.Errorf("expected ErrNoCatalog, got: %v", err)
	}
}

func TestRecordUsage_AppendOnlyLength(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	ex := &mockExtractor{candidates: []domain.Candidate{
		{Item: "Propofol", Qty: decimal.NewFromInt(1)},
		{Item: "Unobtainium", Qty: decimal.NewFromInt(1)},
	}}
	svc := newTestService(t, store, cache, ex, domain.PolicyAllowNegative)

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordUsage(context.Background(), fmt.Sprintf("req-%d", i), "case-1", port.Utterance{Text: "x"}); err != nil {
			t.Fatalf("action %d failed: %v", i, err)
		}
	}

	entries, _ := store.ListEntries(context.Background())
	if len(entries) != 6 {
		t.Errorf("expected 6 entries after 3 actions of 2 candidates, got %d", len(entries))
	}
}

func TestRecordStamp_Sequence(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	svc := newTestService(t, store, cache, &mockExtractor{}, domain.PolicyAllowNegative)
	ctx := context.Background()

	if err := svc.RecordStamp(ctx, "s-1", "case-1", domain.StagePatientIn); err != nil {
		t.Fatalf("Patient In failed: %v", err)
	}
	if err := svc.RecordStamp(ctx, "s-2", "case-1", domain.StageIncision); err != nil {
		t.Fatalf("Incision failed: %v", err)
	}
	if err := svc.RecordStamp(ctx, "s-3", "case-1", domain.StageCloseSkin); err != nil {
		t.Fatalf("Close Skin failed: %v", err)
	}

	entries, _ := store.ListEntries(ctx)
	if len(entries) != 3 {
		t.Fatalf("expected 3 stamps, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Source != domain.SourceWorkflow {
			t.Errorf("expected Workflow tag, got %s", e.Source)
		}
		if !e.Cost.IsZero() {
			t.Errorf("stamps must be zero cost, got %s", e.Cost)
		}
	}
}

func TestRecordStamp_OutOfOrder(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	svc := newTestService(t, store, cache, &mockExtractor{}, domain.PolicyAllowNegative)
	ctx := context.Background()

	err := svc.RecordStamp(ctx, "s-1", "case-1", domain.StageIncision)
	if !errors.Is(err, domain.ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got: %v", err)
	}

	// Rejected stamps leave no trace.
	entries, _ := store.ListEntries(ctx)
	if len(entries) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(entries))
	}

	// Stamps are scoped per case: another case still opens normally.
	if err := svc.RecordStamp(ctx, "s-2", "case-2", domain.StagePatientIn); err != nil {
		t.Errorf("case-2 Patient In failed: %v", err)
	}
}

func TestRecordStamp_DuplicateStage(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	svc := newTestService(t, store, cache, &mockExtractor{}, domain.PolicyAllowNegative)
	ctx := context.Background()

	if err := svc.RecordStamp(ctx, "s-1", "case-1", domain.StagePatientIn); err != nil {
		t.Fatalf("Patient In failed: %v", err)
	}
	err := svc.RecordStamp(ctx, "s-2", "case-1", domain.StagePatientIn)
	if !errors.Is(err, domain.ErrBadTransition) {
		t.Errorf("expected ErrBadTransition for repeated Patient In, got: %v", err)
	}
}

func TestRecordSafetyCount(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	svc := newTestService(t, store, cache, &mockExtractor{}, domain.PolicyAllowNegative)
	ctx := context.Background()

	if err := svc.RecordSafetyCount(ctx, "c-1", "case-1", domain.CountInitial, true); err != nil {
		t.Fatalf("count failed: %v", err)
	}

	entries, _ := store.ListEntries(ctx)
	if entries[0].Item != "Initial Count Correct" {
		t.Errorf("unexpected count label %q", entries[0].Item)
	}
	if entries[0].Source != domain.SourceSafetyCount {
		t.Errorf("expected Safety Count tag, got %s", entries[0].Source)
	}
}

func TestRecordSafetyCount_ClosedCase(t *testing.T) {
	store := newMockStore(propofol())
	cache := newMockCacheRepo()
	svc := newTestService(t, store, cache, &mockExtractor{}, domain.PolicyAllowNegative)
	ctx := context.Background()

	for i, stage := range []domain.WorkflowStage{domain.StagePatientIn, domain.StageIncision, domain.StageCloseSkin} {
		if err := svc.RecordStamp(ctx, fmt.Sprintf("s-%d", i), "case-1", stage); err != nil {
			t.Fatalf("stamp %s failed: %v", stage, err)
		}
	}

	err := svc.RecordSafetyCount(ctx, "c-1", "case-1", domain.CountClosing, true)
	if !errors.Is(err, ErrCaseClosed) {
		t.Errorf("expected ErrCaseClosed, got: %v", err)
	}
}
