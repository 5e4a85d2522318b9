package database

// Migration bookkeeping
const (
	CreateMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	SelectAppliedMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	InsertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Constraint names the store translates into domain errors
const (
	CustomersPhoneKey    = "customers_phone_key"
	OrdersBillNumberKey  = "orders_bill_number_key"
	OrdersCustomerIDFKey = "orders_customer_id_fkey"
)

// Customer queries
const (
	InsertCustomerSQL = `
		INSERT INTO customers (name, phone)
		VALUES ($1, $2)
		RETURNING id, name, phone, created_date`

	InsertCustomerIgnoreSQL = `
		INSERT INTO customers (name, phone)
		VALUES ($1, $2)
		ON CONFLICT (phone) DO NOTHING`

	GetCustomerByPhoneSQL = `
		SELECT id, name, phone, created_date
		FROM customers WHERE phone = $1`

	SearchCustomersSQL = `
		SELECT id, name, phone, created_date
		FROM customers
		WHERE $1 = '' OR LOWER(name) LIKE $2 ESCAPE '\' OR phone LIKE $2 ESCAPE '\'
		ORDER BY created_date DESC, id DESC`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (customer_id, bill_number, order_data, subtotal, tax_amount, service_charge, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, order_date`

	GetMostRecentOrderSQL = `
		SELECT id, customer_id, bill_number, order_data, subtotal, tax_amount, service_charge, total_amount, order_date
		FROM orders
		WHERE customer_id = $1
		ORDER BY order_date DESC, id DESC
		LIMIT 1`

	GetOrderByBillNumberSQL = `
		SELECT o.id, o.customer_id, o.bill_number, o.order_data, o.subtotal, o.tax_amount,
			   o.service_charge, o.total_amount, o.order_date, c.name, c.phone
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		WHERE o.bill_number = $1`

	SearchOrdersSQL = `
		SELECT o.id, o.customer_id, o.bill_number, o.order_data, o.subtotal, o.tax_amount,
			   o.service_charge, o.total_amount, o.order_date, c.name, c.phone
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		WHERE $1 = ''
		   OR LOWER(c.name) LIKE $2 ESCAPE '\'
		   OR c.phone LIKE $2 ESCAPE '\'
		   OR LOWER(o.bill_number) LIKE $2 ESCAPE '\'
		ORDER BY o.order_date DESC, o.id DESC`
)
