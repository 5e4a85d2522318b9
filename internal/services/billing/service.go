// Package billing ties the order model, pricing, the ledger and receipts
// together for the HTTP API and the CLI.
package billing

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/metrics"
	"restaurant-billing/internal/models"
	"restaurant-billing/internal/order"
	"restaurant-billing/internal/pricing"
	"restaurant-billing/internal/receipt"
	"restaurant-billing/internal/store"
)

var (
	// ErrEmptyOrder is returned when saving or rendering an order with no items.
	ErrEmptyOrder = errors.New("no items in order")
	// ErrMissingCustomerInfo is returned when the customer name or phone is blank.
	ErrMissingCustomerInfo = errors.New("customer name and phone are required")
)

// Publisher announces saved bills.
type Publisher interface {
	PublishBillSaved(ctx context.Context, msg *models.BillSavedMessage) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Service provides billing operations
type Service struct {
	store       store.Store
	catalog     *menu.Catalog
	billNumbers order.BillNumberer
	header      receipt.Header
	publisher   Publisher
	publishWait time.Duration
	metrics     *metrics.Metrics
	logger      *logger.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sends a bill.saved event after every successful save.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithPublishTimeout bounds how long a save waits on the bill.saved event.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) { s.publishWait = d }
}

// WithMetrics records bill counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithHeader sets the receipt header.
func WithHeader(h receipt.Header) Option {
	return func(s *Service) { s.header = h }
}

// WithClock replaces the clock used for receipt previews.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new billing service
func NewService(st store.Store, catalog *menu.Catalog, billNumbers order.BillNumberer, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:       st,
		catalog:     catalog,
		billNumbers: billNumbers,
		header:      receipt.Header{Currency: "Rs."},
		publishWait: 2 * time.Second,
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the menu orders are built from.
func (s *Service) Catalog() *menu.Catalog {
	return s.catalog
}

// NewOrder starts an empty order with a fresh bill number.
func (s *Service) NewOrder() *order.Order {
	return order.New(s.catalog, s.billNumbers)
}

// BuildOrder creates an order for the customer with the given lines.
// An unknown item or a negative quantity rejects the whole order.
func (s *Service) BuildOrder(name, phone string, lines models.Lines) (*order.Order, error) {
	o := s.NewOrder()
	o.SetCustomer(strings.TrimSpace(name), strings.TrimSpace(phone))
	for _, item := range sortedKeys(lines) {
		if err := o.SetQuantity(item, lines[item]); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Quote prices lines without saving anything.
func (s *Service) Quote(lines models.Lines) (models.Totals, []pricing.Line, error) {
	o, err := s.BuildOrder("", "", lines)
	if err != nil {
		return models.Totals{}, nil, err
	}
	current := o.Lines()
	return pricing.Price(current, s.catalog), pricing.Breakdown(current, s.catalog), nil
}

func checkReady(o *order.Order) error {
	if err := validateCustomer(o.CustomerName(), o.CustomerPhone()); err != nil {
		return err
	}
	if o.IsEmpty() {
		return ErrEmptyOrder
	}
	return nil
}

// SaveOrder records the order in the ledger under its bill number. The
// customer is created from the order's name and phone unless the phone is
// already known, in which case the stored customer is used as is.
func (s *Service) SaveOrder(ctx context.Context, o *order.Order, requestID string) (models.StoredOrder, error) {
	if err := checkReady(o); err != nil {
		s.recordFailure(err)
		return models.StoredOrder{}, err
	}

	customer, err := s.store.EnsureCustomer(ctx, o.CustomerName(), o.CustomerPhone())
	if err != nil {
		s.recordFailure(err)
		return models.StoredOrder{}, errors.Wrap(err, "resolve customer")
	}

	lines := o.Lines()
	saved, err := s.store.SaveOrder(ctx, models.StoredOrder{
		CustomerID: customer.ID,
		BillNumber: o.BillNumber(),
		Lines:      lines,
		Totals:     pricing.Price(lines, s.catalog),
	})
	if err != nil {
		s.recordFailure(err)
		return models.StoredOrder{}, errors.Wrapf(err, "save bill %s", o.BillNumber())
	}

	if s.metrics != nil {
		s.metrics.ObserveBill(saved.Total)
	}
	s.logger.Info("bill_saved", "Bill saved", requestID, map[string]interface{}{
		"bill_number": saved.BillNumber,
		"customer_id": saved.CustomerID,
		"total":       saved.Total.StringFixed(2),
	})

	s.publish(ctx, saved, customer, requestID)
	return saved, nil
}

// publish never fails the save; the ledger row is already written.
func (s *Service) publish(ctx context.Context, saved models.StoredOrder, customer models.Customer, requestID string) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishWait)
	defer cancel()
	if err := s.publisher.PublishBillSaved(ctx, models.CreateBillSavedMessage(saved, customer)); err != nil {
		if s.metrics != nil {
			s.metrics.PublishFailures.Inc()
		}
		s.logger.Error("bill_publish_failed", "Failed to publish bill saved event", requestID, err, map[string]interface{}{
			"bill_number": saved.BillNumber,
		})
	}
}

func (s *Service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.BillsFailed.WithLabelValues(failureReason(err)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyOrder):
		return "empty_order"
	case errors.Is(err, ErrMissingCustomerInfo):
		return "missing_customer"
	case IsValidationError(err):
		return "invalid_customer"
	case errors.Is(err, store.ErrDuplicateBillNumber):
		return "duplicate_bill"
	case errors.Is(err, store.ErrNotFound):
		return "unknown_customer"
	default:
		return "storage"
	}
}

// CustomerLookup is a known customer and the lines of their latest order.
type CustomerLookup struct {
	Customer  models.Customer `json:"customer"`
	LastOrder models.Lines    `json:"last_order,omitempty"`
	LastBill  string          `json:"last_bill,omitempty"`
}

// LookupCustomer finds a customer by phone along with their most recent order, if any.
func (s *Service) LookupCustomer(ctx context.Context, phone string) (CustomerLookup, error) {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return CustomerLookup{}, err
	}

	c, err := s.store.FindCustomerByPhone(ctx, phone)
	if err != nil {
		return CustomerLookup{}, err
	}

	result := CustomerLookup{Customer: c}
	last, err := s.store.MostRecentOrder(ctx, c.ID)
	switch {
	case err == nil:
		result.LastOrder = last.Lines
		result.LastBill = last.BillNumber
	case !errors.Is(err, store.ErrNotFound):
		return CustomerLookup{}, err
	}
	return result, nil
}

// Prefill loads the customer and their last order into o. Items that are
// no longer on the menu are skipped.
func (s *Service) Prefill(ctx context.Context, o *order.Order, phone string) (CustomerLookup, error) {
	found, err := s.LookupCustomer(ctx, phone)
	if err != nil {
		return CustomerLookup{}, err
	}
	o.SetCustomer(found.Customer.Name, found.Customer.Phone)
	o.Prefill(found.LastOrder)
	return found, nil
}

// CreateCustomer registers a new customer.
func (s *Service) CreateCustomer(ctx context.Context, name, phone string) (models.Customer, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if err := validateCustomer(name, phone); err != nil {
		return models.Customer{}, err
	}
	return s.store.CreateCustomer(ctx, name, phone)
}

// SearchCustomers lists customers whose name or phone contains query.
func (s *Service) SearchCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	return s.store.SearchCustomers(ctx, strings.TrimSpace(query))
}

// SearchOrders lists bills whose customer name, phone or bill number contains query.
func (s *Service) SearchOrders(ctx context.Context, query string) ([]models.OrderRecord, error) {
	return s.store.SearchOrders(ctx, strings.TrimSpace(query))
}

// Receipt re-renders a saved bill from the ledger.
func (s *Service) Receipt(ctx context.Context, billNumber string) (receipt.Bill, error) {
	rec, err := s.store.FindOrder(ctx, billNumber)
	if err != nil {
		return receipt.Bill{}, err
	}
	return receipt.FromRecord(s.header, rec, s.catalog), nil
}

// PreviewReceipt renders an unsaved order as of now.
func (s *Service) PreviewReceipt(o *order.Order) (receipt.Bill, error) {
	if err := checkReady(o); err != nil {
		return receipt.Bill{}, err
	}
	lines := o.Lines()
	return receipt.Bill{
		Header:        s.header,
		BillNumber:    o.BillNumber(),
		Date:          s.now(),
		CustomerName:  o.CustomerName(),
		CustomerPhone: o.CustomerPhone(),
		Lines:         pricing.Breakdown(lines, s.catalog),
		Totals:        pricing.Price(lines, s.catalog),
	}, nil
}

// HealthCheck pings the store when it supports it.
func (s *Service) HealthCheck(ctx context.Context) bool {
	p, ok := s.store.(pinger)
	if !ok {
		return true
	}
	if err := p.Ping(ctx); err != nil {
		s.logger.Error("health_check_failed", "Store ping failed", "", err, nil)
		return false
	}
	return true
}

func sortedKeys(lines models.Lines) []string {
	keys := make([]string, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
