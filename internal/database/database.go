package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// OpenDB opens and verifies a connection pool for the given driver.
// driver is "mysql" or "sqlite".
func OpenDB(driver, dsn string) (*sql.DB, error) {
	// 1. Open a new connection pool.
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// 2. Configure the connection pool settings.
	if driver == "sqlite" {
		// One connection keeps an in-memory database alive and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// 3. Ping the database to verify the connection.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	log.Printf("Database connection pool established successfully (%s)", driver)
	return db, nil
}
