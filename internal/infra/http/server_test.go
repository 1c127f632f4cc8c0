package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/config"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/infra/trackermem"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/usecase"
)

type memOrderRepo struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *memOrderRepo) GetByBatch(ctx context.Context, batchID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.BatchID == batchID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memOrderRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	order.ID = "ORD-" + strconv.Itoa(r.seq)
	cp := order
	r.orders[order.ID] = &cp
	return order, nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[orderID]; ok {
		o.Status = status
	}
	return nil
}

func (r *memOrderRepo) AssignBatch(ctx context.Context, orderID, batchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.BatchID != "" {
		return domain.ErrNotFound
	}
	o.BatchID = batchID
	o.Status = domain.OrderStatusInProgress
	return nil
}

func (r *memOrderRepo) ListBySupplier(ctx context.Context, supplierID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.SupplierID == supplierID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListByStatus(ctx context.Context, status domain.OrderStatus, retailerID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == status && (retailerID == "" || o.RetailerID == retailerID) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type memSupplierRepo struct {
	mu        sync.Mutex
	seq       int
	suppliers map[string]domain.Supplier
}

func newMemSupplierRepo() *memSupplierRepo {
	return &memSupplierRepo{suppliers: make(map[string]domain.Supplier)}
}

func (r *memSupplierRepo) GetByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[supplierID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memSupplierRepo) Create(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	supplier.ID = "sup-" + strconv.Itoa(r.seq)
	r.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (r *memSupplierRepo) List(ctx context.Context) ([]domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Supplier
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, nil
}

type memFactRepo struct {
	mu    sync.Mutex
	facts []domain.TelemetryFact
}

func (r *memFactRepo) Append(ctx context.Context, fact domain.TelemetryFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facts = append(r.facts, fact)
	return nil
}

func (r *memFactRepo) VarianceSums(ctx context.Context, nodeID *int64) ([]usecase.VarianceSum, error) {
	return nil, nil
}

func (r *memFactRepo) KPIs(ctx context.Context) (usecase.KPIStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return usecase.KPIStats{TotalEvents: int64(len(r.facts))}, nil
}

func (r *memFactRepo) NodeAverages(ctx context.Context) ([]usecase.NodeVariance, error) {
	return nil, nil
}

func (r *memFactRepo) ProcessStats(ctx context.Context, lineageIDs []string, limit int) ([]usecase.ProcessStat, error) {
	return nil, nil
}

func (r *memFactRepo) AvgVarianceForLineages(ctx context.Context, lineageIDs []string) (float64, error) {
	return 0, nil
}

type memMetricRepo struct{ metrics []domain.Metric }

func (r *memMetricRepo) List(ctx context.Context) ([]domain.Metric, error) { return r.metrics, nil }

func (r *memMetricRepo) GetByID(ctx context.Context, metricID string) (*domain.Metric, error) {
	for _, m := range r.metrics {
		if m.ID == metricID {
			cp := m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memNodeRepo struct{}

func (r *memNodeRepo) GetByName(ctx context.Context, name string) (*domain.Node, error) {
	return nil, domain.ErrNotFound
}

func (r *memNodeRepo) List(ctx context.Context) ([]domain.Node, error) { return nil, nil }

func newTestServer(t *testing.T) (*Server, *memOrderRepo, *memSupplierRepo) {
	t.Helper()
	orders := newMemOrderRepo()
	suppliers := newMemSupplierRepo()
	facts := &memFactRepo{}
	metrics := &memMetricRepo{metrics: []domain.Metric{
		{ID: "M1", Name: "Reliability", Level: domain.LevelExec, Weight: 1},
		{ID: "M1.1", ParentID: "M1", Name: "Logistics", Level: domain.LevelCategory, Weight: 0.5},
		{ID: "M1.1.1", ParentID: "M1.1", Name: "Transit Delay", Level: domain.LevelLeaf, Weight: 0.6},
	}}

	tracker := usecase.NewTrackerService(orders, suppliers, facts, trackermem.New())
	rollup := usecase.NewRollupService(metrics, facts, 5.0)
	ingest := usecase.NewIngestService(facts, &memNodeRepo{}, 10.0, 5.0)
	insight := usecase.NewInsightService(nil, rollup, metrics)

	srv := NewServerWithDeps(config.Config{HTTPAddr: ":0"}, ServerDeps{
		Tracker:   tracker,
		Rollup:    rollup,
		Ingest:    ingest,
		Insight:   insight,
		Suppliers: suppliers,
		Orders:    orders,
	})
	return srv, orders, suppliers
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOrderLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v2/suppliers", supplierRequest{
		CompanyName: "Highland Farms",
		Processes:   []string{"Harvesting", "Shipping"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create supplier status = %d body=%s", w.Code, w.Body.String())
	}
	supplier := decode[supplierResponse](t, w)

	w = doJSON(t, srv, http.MethodPost, "/api/v2/orders/place", placeOrderRequest{
		RetailerID: "ret-1",
		SupplierID: supplier.SupplierID,
		Product:    "Coffee Beans",
		Quantity:   500,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place order status = %d body=%s", w.Code, w.Body.String())
	}
	order := decode[orderResponse](t, w)
	if order.Status != "PENDING" {
		t.Fatalf("order status = %q", order.Status)
	}

	w = doJSON(t, srv, http.MethodPut, "/api/v2/orders/"+order.OrderID+"/accept", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept status = %d body=%s", w.Code, w.Body.String())
	}
	entry := decode[domain.TrackerEntry](t, w)
	if entry.BatchID == "" {
		t.Fatal("accept returned no batch id")
	}
	if len(entry.Telemetry) != 3 {
		t.Fatalf("step count = %d, want 3", len(entry.Telemetry))
	}

	// ERP webhook completes both supplier steps; the tracker reports
	// all-completed on the second.
	for i, name := range []string{"Harvesting", "Shipping"} {
		w = doJSON(t, srv, http.MethodPost, "/api/v2/webhook/erp", webhookRequest{
			BatchID:  entry.BatchID,
			StepName: name,
			Status:   "Completed",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("webhook status = %d body=%s", w.Code, w.Body.String())
		}
		resp := decode[webhookResponse](t, w)
		if !resp.Applied {
			t.Fatalf("webhook %s not applied", name)
		}
		if wantAll := i == 1; resp.AllCompleted != wantAll {
			t.Fatalf("webhook %s all_completed = %v, want %v", name, resp.AllCompleted, wantAll)
		}
	}

	w = doJSON(t, srv, http.MethodGet, "/api/v2/track/"+entry.BatchID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("track status = %d", w.Code)
	}
	tracked := decode[domain.TrackerEntry](t, w)
	for _, step := range tracked.Telemetry {
		if step.Status != domain.StepStatusCompleted {
			t.Fatalf("step %q status = %q after completion", step.Name, step.Status)
		}
	}
}

func TestPlaceOrderUnknownSupplier(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodPost, "/api/v2/orders/place", placeOrderRequest{SupplierID: "sup-missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	resp := decode[errorResponse](t, w)
	if resp.Code != "SUPPLIER_NOT_FOUND" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestTrackUnknownBatch(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/api/v2/track/BATCH-NOPE", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[errorResponse](t, w)
	if resp.Code != "BATCH_NOT_FOUND" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestWebhookUnknownStep(t *testing.T) {
	srv, _, suppliers := newTestServer(t)
	supplier, _ := suppliers.Create(context.Background(), domain.Supplier{CompanyName: "Acme"})

	w := doJSON(t, srv, http.MethodPost, "/api/v2/orders/place", placeOrderRequest{SupplierID: supplier.ID})
	order := decode[orderResponse](t, w)
	w = doJSON(t, srv, http.MethodPut, "/api/v2/orders/"+order.OrderID+"/accept", nil)
	entry := decode[domain.TrackerEntry](t, w)

	w = doJSON(t, srv, http.MethodPost, "/api/v2/webhook/erp", webhookRequest{
		BatchID:  entry.BatchID,
		StepName: "Teleportation",
		Status:   "Completed",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	resp := decode[errorResponse](t, w)
	if resp.Code != "STEP_NOT_FOUND" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestWebhookInvalidBody(t *testing.T) {
	srv, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/webhook/erp", bytes.NewBufferString("{nope"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGenerateProcessesFallsBackWithoutGenerator(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodPost, "/api/v2/generate-processes", generateProcessesRequest{SuppliedGood: "coffee"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	processes := decode[[]string](t, w)
	if len(processes) == 0 {
		t.Fatal("no processes returned")
	}
}

func TestSimulateUnknownMetric(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodPost, "/api/v2/simulate", simulateRequest{TargetMetricID: "M9", Delta: 1})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	resp := decode[errorResponse](t, w)
	if resp.Code != "METRIC_NOT_FOUND" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestNoRoute(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/api/v2/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
