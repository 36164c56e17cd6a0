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

// Menu queries
const (
	ListMenuItemsSQL = `
		SELECT id, name, description, price, image, rating, category
		FROM menu_items
		ORDER BY category ASC`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (customer_email, customer_phone, items, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, status, created_at`

	GetOrderByIDSQL = `
		SELECT id::text, customer_email, customer_phone, items, total_amount, status, created_at
		FROM orders
		WHERE id = $1`
)
