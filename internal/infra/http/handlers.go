package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type supplierRequest struct {
	CompanyName  string   `json:"company_name"`
	Location     string   `json:"location"`
	Role         string   `json:"role"`
	SuppliedGood string   `json:"supplied_good"`
	Processes    []string `json:"processes"`
}

type supplierResponse struct {
	SupplierID   string   `json:"supplier_id"`
	CompanyName  string   `json:"company_name"`
	Location     string   `json:"location,omitempty"`
	Role         string   `json:"role,omitempty"`
	SuppliedGood string   `json:"supplied_good,omitempty"`
	Processes    []string `json:"processes"`
}

type placeOrderRequest struct {
	RetailerID   string `json:"retailer_id"`
	SupplierID   string `json:"supplier_id"`
	Product      string `json:"product"`
	Quantity     int    `json:"quantity"`
	RequiredDate string `json:"required_date"`
}

type orderResponse struct {
	OrderID      string `json:"order_id"`
	RetailerID   string `json:"retailer_id"`
	SupplierID   string `json:"supplier_id"`
	Product      string `json:"product"`
	Quantity     int    `json:"quantity"`
	RequiredDate string `json:"required_date"`
	Status       string `json:"status"`
	BatchID      string `json:"batch_id,omitempty"`
}

type webhookRequest struct {
	BatchID     string  `json:"batch_id"`
	StepName    string  `json:"step_name"`
	Status      string  `json:"status"`
	VarianceHrs float64 `json:"variance_hrs"`
}

type webhookResponse struct {
	Applied      bool `json:"applied"`
	AllCompleted bool `json:"all_completed"`
}

type ingestRequest struct {
	EventType  string  `json:"event_type"`
	SupplierID string  `json:"supplier_id"`
	MetricID   string  `json:"metric_id"`
	Value      float64 `json:"value"`
	Timestamp  string  `json:"timestamp"`
}

type simulateRequest struct {
	TargetMetricID string  `json:"target_metric_id"`
	Delta          float64 `json:"adjustment_factor"`
}

type generateProcessesRequest struct {
	SuppliedGood string `json:"supplied_good"`
}

func (s *Server) handleCreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	supplier, err := s.tracker.RegisterSupplier(c.Request.Context(), domain.Supplier{
		CompanyName:  req.CompanyName,
		Location:     req.Location,
		Role:         req.Role,
		SuppliedGood: req.SuppliedGood,
		Processes:    req.Processes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildSupplierResponse(supplier))
}

func (s *Server) handleListSuppliers(c *gin.Context) {
	suppliers, err := s.suppliers.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]supplierResponse, len(suppliers))
	for i, supplier := range suppliers {
		out[i] = buildSupplierResponse(supplier)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	order, err := s.tracker.PlaceOrder(c.Request.Context(), usecase.PlaceOrderRequest{
		RetailerID:   req.RetailerID,
		SupplierID:   req.SupplierID,
		Product:      req.Product,
		Quantity:     req.Quantity,
		RequiredDate: req.RequiredDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildOrderResponse(order))
}

func (s *Server) handleAcceptOrder(c *gin.Context) {
	entry, err := s.tracker.Accept(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleListOrders(c *gin.Context) {
	status := domain.OrderStatus(c.Query("status"))
	if status == "" {
		status = domain.OrderStatusPending
	}
	orders, err := s.orders.ListByStatus(c.Request.Context(), status, c.Query("retailer_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i, order := range orders {
		out[i] = buildOrderResponse(order)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleTrack(c *gin.Context) {
	entry, err := s.tracker.Ensure(c.Request.Context(), c.Param("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleWebhookERP(c *gin.Context) {
	s.handleWebhook(c, domain.SourceERP)
}

func (s *Server) handleWebhookOCR(c *gin.Context) {
	s.handleWebhook(c, domain.SourceOCR)
}

func (s *Server) handleWebhook(c *gin.Context, source domain.UpdateSource) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	result, err := s.tracker.Apply(c.Request.Context(), domain.StepUpdate{
		BatchID:     req.BatchID,
		StepName:    req.StepName,
		Status:      domain.StepStatus(req.Status),
		VarianceHrs: req.VarianceHrs,
		Source:      source,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, webhookResponse{
		Applied:      result.Applied,
		AllCompleted: result.AllCompleted,
	})
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	fact, err := s.ingest.Ingest(c.Request.Context(), usecase.IngestRequest{
		EventType:  req.EventType,
		SupplierID: req.SupplierID,
		MetricID:   req.MetricID,
		Value:      req.Value,
		Timestamp:  req.Timestamp,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "event_id": fact.EventID})
}

func (s *Server) handleSupplierKPIs(c *gin.Context) {
	kpis, err := s.tracker.SupplierKPIs(c.Request.Context(), c.Param("supplier_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (s *Server) handleSupplierBottlenecks(c *gin.Context) {
	stats, err := s.tracker.SupplierBottlenecks(c.Request.Context(), c.Param("supplier_id"), 5)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProcessStats(stats))
}

func (s *Server) handleKPIs(c *gin.Context) {
	kpis, err := s.rollup.KPIs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (s *Server) handleNodePerformance(c *gin.Context) {
	nodes, err := s.rollup.NodePerformance(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	type nodeOut struct {
		NodeID      int64   `json:"node_id"`
		NodeName    string  `json:"node_name"`
		NodeType    string  `json:"node_type"`
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
		AvgVariance float64 `json:"avg_variance"`
	}
	out := make([]nodeOut, len(nodes))
	for i, n := range nodes {
		out[i] = nodeOut{
			NodeID:      n.Node.ID,
			NodeName:    n.Node.Name,
			NodeType:    n.Node.Type,
			Lat:         n.Node.Lat,
			Lng:         n.Node.Lng,
			AvgVariance: n.AvgVariance,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleBottlenecks(c *gin.Context) {
	stats, err := s.rollup.Bottlenecks(c.Request.Context(), 5)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProcessStats(stats))
}

func (s *Server) handleMetricTree(c *gin.Context) {
	tree, err := s.rollup.MetricTree(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": tree})
}

func (s *Server) handleRollup(c *gin.Context) {
	var nodeID *int64
	if raw := c.Query("node_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_NODE_ID", "node_id must be an integer")
			return
		}
		nodeID = &parsed
	}
	scores, err := s.rollup.Rollup(c.Request.Context(), nodeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

func (s *Server) handleGenerateInsight(c *gin.Context) {
	text, err := s.insight.BottleneckInsight(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight": text})
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	result, err := s.insight.Simulate(c.Request.Context(), usecase.SimulationRequest{
		TargetMetricID: req.TargetMetricID,
		Delta:          req.Delta,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGenerateProcesses(c *gin.Context) {
	var req generateProcessesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	c.JSON(http.StatusOK, s.insight.GenerateProcesses(c.Request.Context(), req.SuppliedGood))
}

func buildSupplierResponse(s domain.Supplier) supplierResponse {
	return supplierResponse{
		SupplierID:   s.ID,
		CompanyName:  s.CompanyName,
		Location:     s.Location,
		Role:         s.Role,
		SuppliedGood: s.SuppliedGood,
		Processes:    s.Processes,
	}
}

func buildOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		OrderID:      o.ID,
		RetailerID:   o.RetailerID,
		SupplierID:   o.SupplierID,
		Product:      o.Product,
		Quantity:     o.Quantity,
		RequiredDate: o.RequiredDate,
		Status:       string(o.Status),
		BatchID:      o.BatchID,
	}
}

type processStatOut struct {
	NodeName      string  `json:"node_name"`
	ProcessType   string  `json:"process_type"`
	AvgVarianceHr float64 `json:"avg_variance_hrs"`
	FailRatePct   float64 `json:"fail_rate_pct"`
}

func buildProcessStats(stats []usecase.ProcessStat) []processStatOut {
	out := make([]processStatOut, len(stats))
	for i, st := range stats {
		failRate := 0.0
		if st.TotalEvents > 0 {
			failRate = float64(st.FailCount) / float64(st.TotalEvents) * 100
		}
		out[i] = processStatOut{
			NodeName:      st.NodeName,
			ProcessType:   st.ProcessType,
			AvgVarianceHr: st.AvgVariance,
			FailRatePct:   failRate,
		}
	}
	return out
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrBatchNotFound):
		status, code = http.StatusNotFound, "BATCH_NOT_FOUND"
	case errors.Is(err, domain.ErrStepNotFound):
		status, code = http.StatusNotFound, "STEP_NOT_FOUND"
	case errors.Is(err, domain.ErrOrderNotFound):
		status, code = http.StatusNotFound, "ORDER_NOT_FOUND"
	case errors.Is(err, domain.ErrSupplierNotFound):
		status, code = http.StatusNotFound, "SUPPLIER_NOT_FOUND"
	case errors.Is(err, domain.ErrMetricNotFound):
		status, code = http.StatusNotFound, "METRIC_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidUpdate):
		status, code = http.StatusBadRequest, "INVALID_UPDATE"
	case errors.Is(err, domain.ErrStoreUnavailable):
		status, code = http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
