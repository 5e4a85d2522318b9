package store

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"restaurant-billing/internal/database"
	"restaurant-billing/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Postgres is a Store backed by the customers and orders tables.
type Postgres struct {
	db *database.DB
}

// NewPostgres wraps an open database connection.
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

// translate maps driver errors onto the store sentinels.
func translate(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Wrapf(ErrNotFound, format, args...)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == database.CustomersPhoneKey:
			return errors.Wrapf(ErrDuplicatePhone, format, args...)
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == database.OrdersBillNumberKey:
			return errors.Wrapf(ErrDuplicateBillNumber, format, args...)
		case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == database.OrdersCustomerIDFKey:
			return errors.Wrapf(ErrNotFound, format, args...)
		}
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrStorageFailure)
}

func (p *Postgres) FindCustomerByPhone(ctx context.Context, phone string) (models.Customer, error) {
	var c models.Customer
	err := p.db.QueryRow(ctx, database.GetCustomerByPhoneSQL, phone).Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.CreatedDate,
	)
	if err != nil {
		return models.Customer{}, translate(err, "customer %q", phone)
	}
	return c, nil
}

func (p *Postgres) CreateCustomer(ctx context.Context, name, phone string) (models.Customer, error) {
	var c models.Customer
	err := p.db.QueryRow(ctx, database.InsertCustomerSQL, name, phone).Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.CreatedDate,
	)
	if err != nil {
		return models.Customer{}, translate(err, "create customer %q", phone)
	}
	return c, nil
}

func (p *Postgres) EnsureCustomer(ctx context.Context, name, phone string) (models.Customer, error) {
	if _, err := p.db.Exec(ctx, database.InsertCustomerIgnoreSQL, name, phone); err != nil {
		return models.Customer{}, translate(err, "ensure customer %q", phone)
	}
	return p.FindCustomerByPhone(ctx, phone)
}

func (p *Postgres) MostRecentOrder(ctx context.Context, customerID int64) (models.StoredOrder, error) {
	var (
		o   models.StoredOrder
		raw []byte
	)
	err := p.db.QueryRow(ctx, database.GetMostRecentOrderSQL, customerID).Scan(
		&o.ID,
		&o.CustomerID,
		&o.BillNumber,
		&raw,
		&o.Subtotal,
		&o.TaxAmount,
		&o.ServiceCharge,
		&o.Total,
		&o.OrderDate,
	)
	if err != nil {
		return models.StoredOrder{}, translate(err, "orders for customer %d", customerID)
	}
	if err := json.Unmarshal(raw, &o.Lines); err != nil {
		return models.StoredOrder{}, errors.Mark(errors.Wrapf(err, "decode order %s", o.BillNumber), ErrStorageFailure)
	}
	return o, nil
}

func (p *Postgres) SaveOrder(ctx context.Context, order models.StoredOrder) (models.StoredOrder, error) {
	data, err := json.Marshal(order.Lines.Clone())
	if err != nil {
		return models.StoredOrder{}, errors.Wrap(err, "encode order lines")
	}

	saved := order
	saved.Lines = order.Lines.Clone()
	err = p.db.QueryRow(ctx, database.InsertOrderSQL,
		order.CustomerID,
		order.BillNumber,
		string(data),
		order.Subtotal,
		order.TaxAmount,
		order.ServiceCharge,
		order.Total,
	).Scan(&saved.ID, &saved.OrderDate)
	if err != nil {
		return models.StoredOrder{}, translate(err, "save bill %s", order.BillNumber)
	}
	return saved, nil
}

func (p *Postgres) FindOrder(ctx context.Context, billNumber string) (models.OrderRecord, error) {
	rec, err := scanRecord(p.db.QueryRow(ctx, database.GetOrderByBillNumberSQL, billNumber))
	if err != nil {
		return models.OrderRecord{}, translate(err, "bill %s", billNumber)
	}
	return rec, nil
}

func (p *Postgres) SearchCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	rows, err := p.db.Query(ctx, database.SearchCustomersSQL, query, likePattern(query))
	if err != nil {
		return nil, translate(err, "search customers %q", query)
	}
	defer rows.Close()

	customers := make([]models.Customer, 0)
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedDate); err != nil {
			return nil, translate(err, "scan customer")
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "iterate customers")
	}
	return customers, nil
}

func (p *Postgres) SearchOrders(ctx context.Context, query string) ([]models.OrderRecord, error) {
	rows, err := p.db.Query(ctx, database.SearchOrdersSQL, query, likePattern(query))
	if err != nil {
		return nil, translate(err, "search orders %q", query)
	}
	defer rows.Close()

	records := make([]models.OrderRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, translate(err, "scan order")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "iterate orders")
	}
	return records, nil
}

func scanRecord(row pgx.Row) (models.OrderRecord, error) {
	var (
		rec models.OrderRecord
		raw []byte
	)
	err := row.Scan(
		&rec.ID,
		&rec.CustomerID,
		&rec.BillNumber,
		&raw,
		&rec.Subtotal,
		&rec.TaxAmount,
		&rec.ServiceCharge,
		&rec.Total,
		&rec.OrderDate,
		&rec.CustomerName,
		&rec.CustomerPhone,
	)
	if err != nil {
		return models.OrderRecord{}, err
	}
	if err := json.Unmarshal(raw, &rec.Lines); err != nil {
		return models.OrderRecord{}, errors.Wrapf(err, "decode order %s", rec.BillNumber)
	}
	return rec, nil
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
