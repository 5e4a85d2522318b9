package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"

	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/metrics"
	"restaurant-billing/internal/models"
	"restaurant-billing/internal/order"
	"restaurant-billing/internal/pricing"
	"restaurant-billing/internal/receipt"
	"restaurant-billing/internal/store"
)

type ctxKey int

const requestIDKey ctxKey = iota

// Handler handles HTTP requests for the billing service
type Handler struct {
	service *Service
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewHandler creates a new billing handler. m may be nil.
func NewHandler(service *Service, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		metrics: m,
		logger:  log,
	}
}

type totalsResponse struct {
	Subtotal      string `json:"subtotal"`
	TaxAmount     string `json:"tax_amount"`
	ServiceCharge string `json:"service_charge"`
	Total         string `json:"total"`
}

func newTotalsResponse(t models.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:      t.Subtotal.StringFixed(2),
		TaxAmount:     t.TaxAmount.StringFixed(2),
		ServiceCharge: t.ServiceCharge.StringFixed(2),
		Total:         t.Total.StringFixed(2),
	}
}

type lineResponse struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

func newLineResponses(lines []pricing.Line) []lineResponse {
	out := make([]lineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineResponse{
			Name:      l.Name,
			Category:  l.Category,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Total:     l.Total.StringFixed(2),
		})
	}
	return out
}

type orderResponse struct {
	BillNumber    string         `json:"bill_number"`
	CustomerID    int64          `json:"customer_id"`
	CustomerName  string         `json:"customer_name,omitempty"`
	CustomerPhone string         `json:"customer_phone,omitempty"`
	Lines         models.Lines   `json:"lines"`
	Totals        totalsResponse `json:"totals"`
	OrderDate     time.Time      `json:"order_date"`
}

func newOrderResponse(o models.StoredOrder) orderResponse {
	return orderResponse{
		BillNumber: o.BillNumber,
		CustomerID: o.CustomerID,
		Lines:      o.Lines,
		Totals:     newTotalsResponse(o.Totals),
		OrderDate:  o.OrderDate,
	}
}

type quoteRequest struct {
	Items models.Lines `json:"items"`
}

type createBillRequest struct {
	CustomerName  string       `json:"customer_name"`
	CustomerPhone string       `json:"customer_phone"`
	Items         models.Lines `json:"items"`
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type menuCategory struct {
	Name  string     `json:"name"`
	Items []menuItem `json:"items"`
}

type menuItem struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Menu handles GET /menu
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	catalog := h.service.Catalog()
	categories := make([]menuCategory, 0)
	for _, name := range catalog.Categories() {
		cat := menuCategory{Name: name, Items: make([]menuItem, 0)}
		for _, item := range catalog.Items(name) {
			cat.Items = append(cat.Items, menuItem{Name: item.Name, Price: item.UnitPrice.StringFixed(2)})
		}
		categories = append(categories, cat)
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"categories": categories})
}

// Quote handles POST /bills/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	totals, lines, err := h.service.Quote(req.Items)
	if err != nil {
		h.writeError(w, r, "quote_failed", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"lines":  newLineResponses(lines),
		"totals": newTotalsResponse(totals),
	})
}

// CreateBill handles POST /bills
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req createBillRequest
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.service.BuildOrder(req.CustomerName, req.CustomerPhone, req.Items)
	if err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	// Process order with timeout
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	saved, err := h.service.SaveOrder(ctx, o, requestID)
	if err != nil {
		h.writeError(w, r, "bill_save_failed", err)
		return
	}

	resp := newOrderResponse(saved)
	resp.CustomerName = o.CustomerName()
	resp.CustomerPhone = o.CustomerPhone()
	h.writeJSON(w, r, http.StatusCreated, resp)
}

// Receipt handles GET /bills/{billNumber}/receipt
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	format, err := receipt.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestIDFrom(r))
		return
	}

	bill, err := h.service.Receipt(r.Context(), mux.Vars(r)["billNumber"])
	if err != nil {
		h.writeError(w, r, "receipt_failed", err)
		return
	}

	var buf bytes.Buffer
	if format == receipt.FormatPDF {
		err = receipt.PDF(&buf, bill)
	} else {
		err = receipt.Text(&buf, bill)
	}
	if err != nil {
		h.writeError(w, r, "receipt_render_failed", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", receipt.FileName(bill.BillNumber, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("response_write_failed", "Failed to write receipt", requestIDFrom(r), err, map[string]interface{}{
			"bill_number": bill.BillNumber,
		})
	}
}

// SearchCustomers handles GET /customers
func (h *Handler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.SearchCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, "customer_search_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, customers)
}

// CreateCustomer handles POST /customers
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.CreateCustomer(r.Context(), req.Name, req.Phone)
	if err != nil {
		h.writeError(w, r, "customer_create_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, c)
}

// GetCustomer handles GET /customers/{phone}
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.LookupCustomer(r.Context(), mux.Vars(r)["phone"])
	if err != nil {
		h.writeError(w, r, "customer_lookup_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, found)
}

// SearchOrders handles GET /orders
func (h *Handler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.SearchOrders(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, "order_search_failed", err)
		return
	}

	out := make([]orderResponse, 0, len(records))
	for _, rec := range records {
		resp := newOrderResponse(rec.StoredOrder)
		resp.CustomerName = rec.CustomerName
		resp.CustomerPhone = rec.CustomerPhone
		out = append(out, resp)
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "billing-service",
		"healthy":   healthy,
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}
	h.writeJSON(w, r, status, response)
}

// decode reads a JSON body, writing a 400 and returning false when it cannot
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	requestID := requestIDFrom(r)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.writeErrorResponse(w, http.StatusBadRequest, "Content-Type must be application/json", requestID)
		return false
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.IsAny(err, order.ErrInvalidItem, order.ErrInvalidQuantity, ErrEmptyOrder, ErrMissingCustomerInfo),
		IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case store.IsDuplicate(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the mapped status. Server faults get a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	requestID := requestIDFrom(r)
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
		h.logger.Error(action, "Request failed", requestID, err, map[string]interface{}{
			"path": r.URL.Path,
		})
	} else {
		h.logger.Debug(action, err.Error(), requestID, map[string]interface{}{
			"path":        r.URL.Path,
			"status_code": status,
		})
	}
	h.writeErrorResponse(w, status, message, requestID)
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestIDFrom(r), err, nil)
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.withLogging)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/menu", h.Menu).Methods(http.MethodGet)
	r.HandleFunc("/bills/quote", h.Quote).Methods(http.MethodPost)
	r.HandleFunc("/bills", h.CreateBill).Methods(http.MethodPost)
	r.HandleFunc("/bills/{billNumber}/receipt", h.Receipt).Methods(http.MethodGet)
	r.HandleFunc("/customers", h.SearchCustomers).Methods(http.MethodGet)
	r.HandleFunc("/customers", h.CreateCustomer).Methods(http.MethodPost)
	r.HandleFunc("/customers/{phone}", h.GetCustomer).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.SearchOrders).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = h.withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestIDFrom(r))
	}))
	r.NotFoundHandler = h.withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeErrorResponse(w, http.StatusNotFound, "Not found", requestIDFrom(r))
	}))
	return r
}

func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// withLogging adds request logging and metrics middleware
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))
		w.Header().Set("X-Request-ID", requestID)

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		// Create a response writer that captures status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		if h.metrics != nil {
			route := routeName(r)
			h.metrics.HTTPRequests.WithLabelValues(route, fmt.Sprint(rw.statusCode)).Inc()
			h.metrics.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
		}

		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
			})
	})
}

// routeName is the matched path template
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
