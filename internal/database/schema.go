package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// schema is written once for both dialects. {{pk}} expands to the
// auto-increment primary key syntax of the driver.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'user',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id {{pk}},
		name VARCHAR(255) NOT NULL UNIQUE,
		slug VARCHAR(255) NOT NULL UNIQUE,
		description TEXT,
		image VARCHAR(512),
		parent_id BIGINT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id {{pk}},
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		image VARCHAR(512) NOT NULL DEFAULT '',
		brand VARCHAR(255) NOT NULL DEFAULT '',
		category VARCHAR(255) NOT NULL DEFAULT '',
		description TEXT,
		price DOUBLE NOT NULL DEFAULT 0,
		original_price DOUBLE NULL,
		count_in_stock INT NOT NULL DEFAULT 0,
		rating DOUBLE NOT NULL DEFAULT 0,
		num_reviews INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id {{pk}},
		product_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		rating INT NOT NULL,
		comment TEXT,
		created_at DATETIME NOT NULL,
		UNIQUE (product_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id {{pk}},
		user_id BIGINT NOT NULL,
		shipping_address VARCHAR(512) NOT NULL,
		shipping_city VARCHAR(255) NOT NULL,
		shipping_postal_code VARCHAR(64) NOT NULL,
		shipping_country VARCHAR(255) NOT NULL,
		payment_method VARCHAR(64) NOT NULL,
		payment_id VARCHAR(255) NULL,
		payment_status VARCHAR(64) NULL,
		payment_update_time VARCHAR(64) NULL,
		payment_email VARCHAR(255) NULL,
		items_price DOUBLE NOT NULL,
		tax_price DOUBLE NOT NULL,
		shipping_price DOUBLE NOT NULL,
		total_price DOUBLE NOT NULL,
		is_paid TINYINT(1) NOT NULL DEFAULT 0,
		paid_at DATETIME NULL,
		is_delivered TINYINT(1) NOT NULL DEFAULT 0,
		delivered_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id {{pk}},
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		qty INT NOT NULL,
		image VARCHAR(512) NOT NULL DEFAULT '',
		price DOUBLE NOT NULL
	)`,
}

func primaryKey(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "BIGINT AUTO_INCREMENT PRIMARY KEY", nil
	case "sqlite":
		return "INTEGER PRIMARY KEY AUTOINCREMENT", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// InitSchema creates any missing tables. Statements run one at a time so
// the MySQL DSN does not need multiStatements.
func InitSchema(db *sql.DB, driver string) error {
	pk, err := primaryKey(driver)
	if err != nil {
		return err
	}
	for _, stmt := range schema {
		if _, err := db.Exec(strings.ReplaceAll(stmt, "{{pk}}", pk)); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
