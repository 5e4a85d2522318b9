package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"restaurant-billing/internal/models"
)

// Memory is an in-process Store. Records are copied on the way in and out
// so callers never share state with the ledger.
type Memory struct {
	mu          sync.RWMutex
	customers   []models.Customer
	orders      []models.StoredOrder
	customerSeq int64
	orderSeq    int64
	now         func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// WithClock replaces the time source used for created and order dates.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) customerByPhone(phone string) (models.Customer, bool) {
	for _, c := range m.customers {
		if c.Phone == phone {
			return c, true
		}
	}
	return models.Customer{}, false
}

func (m *Memory) customerByID(id int64) (models.Customer, bool) {
	for _, c := range m.customers {
		if c.ID == id {
			return c, true
		}
	}
	return models.Customer{}, false
}

func (m *Memory) FindCustomerByPhone(ctx context.Context, phone string) (models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customerByPhone(phone)
	if !ok {
		return models.Customer{}, errors.Wrapf(ErrNotFound, "customer %q", phone)
	}
	return c, nil
}

func (m *Memory) CreateCustomer(ctx context.Context, name, phone string) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customerByPhone(phone); ok {
		return models.Customer{}, errors.Wrapf(ErrDuplicatePhone, "phone %q", phone)
	}
	return m.insertCustomer(name, phone), nil
}

func (m *Memory) EnsureCustomer(ctx context.Context, name, phone string) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.customerByPhone(phone); ok {
		return c, nil
	}
	return m.insertCustomer(name, phone), nil
}

func (m *Memory) insertCustomer(name, phone string) models.Customer {
	m.customerSeq++
	now := m.now()
	c := models.Customer{
		ID:          m.customerSeq,
		Name:        name,
		Phone:       phone,
		CreatedDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	m.customers = append(m.customers, c)
	return c
}

func (m *Memory) MostRecentOrder(ctx context.Context, customerID int64) (models.StoredOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		latest models.StoredOrder
		found  bool
	)
	for _, o := range m.orders {
		if o.CustomerID != customerID {
			continue
		}
		if !found || newerOrder(o, latest) {
			latest = o
			found = true
		}
	}
	if !found {
		return models.StoredOrder{}, errors.Wrapf(ErrNotFound, "orders for customer %d", customerID)
	}
	return cloneOrder(latest), nil
}

func (m *Memory) SaveOrder(ctx context.Context, order models.StoredOrder) (models.StoredOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customerByID(order.CustomerID); !ok {
		return models.StoredOrder{}, errors.Wrapf(ErrNotFound, "customer %d", order.CustomerID)
	}
	for _, o := range m.orders {
		if o.BillNumber == order.BillNumber {
			return models.StoredOrder{}, errors.Wrapf(ErrDuplicateBillNumber, "bill %s", order.BillNumber)
		}
	}

	m.orderSeq++
	saved := cloneOrder(order)
	saved.ID = m.orderSeq
	saved.OrderDate = m.now().UTC()
	m.orders = append(m.orders, saved)
	return cloneOrder(saved), nil
}

func (m *Memory) FindOrder(ctx context.Context, billNumber string) (models.OrderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.orders {
		if o.BillNumber == billNumber {
			return m.record(o), nil
		}
	}
	return models.OrderRecord{}, errors.Wrapf(ErrNotFound, "bill %s", billNumber)
}

func (m *Memory) SearchCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Customer, 0)
	for _, c := range m.customers {
		if matches(query, c.Name, c.Phone) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.After(out[j].CreatedDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) SearchOrders(ctx context.Context, query string) ([]models.OrderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.OrderRecord, 0)
	for _, o := range m.orders {
		rec := m.record(o)
		if matches(query, rec.CustomerName, rec.CustomerPhone, rec.BillNumber) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerOrder(out[i].StoredOrder, out[j].StoredOrder)
	})
	return out, nil
}

func (m *Memory) record(o models.StoredOrder) models.OrderRecord {
	c, _ := m.customerByID(o.CustomerID)
	return models.OrderRecord{
		StoredOrder:   cloneOrder(o),
		CustomerName:  c.Name,
		CustomerPhone: c.Phone,
	}
}

func newerOrder(a, b models.StoredOrder) bool {
	if !a.OrderDate.Equal(b.OrderDate) {
		return a.OrderDate.After(b.OrderDate)
	}
	return a.ID > b.ID
}

func cloneOrder(o models.StoredOrder) models.StoredOrder {
	o.Lines = o.Lines.Clone()
	return o
}
