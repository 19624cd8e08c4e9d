// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	dbfs "github.com/go-petr/pet-ledger/db"
	"github.com/go-petr/pet-ledger/internal/eventpub"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// Config loads the application config from dir and fails the test on error.
func Config(t *testing.T, dir string) configpkg.Config {
	t.Helper()

	config, err := configpkg.Load(dir)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, dir, err)
	}

	return config
}

// SetupServer returns a data server backed by postgres that cleans up database after the test.
func SetupServer(t *testing.T, config configpkg.Config) (*httpserver.Server, *sql.DB) {
	t.Helper()

	db := SetupDB(t, config.DBDriver, config.DBSource)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.NewData(httpserver.PostgresDataStore(db), eventpub.NopPublisher{}, zerolog.Nop(), config)
	if err != nil {
		t.Fatalf(`httpserver.NewData(...) returned error: %v`, err)
	}

	return server, db
}

// Flush flushes all db tables without droping and restarts their sequences.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables 
	WHERE table_schema='public' AND table_name <> 'schema_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up a migrated and empty database for testing and cleans it afterwards.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	if err := dbpkg.Migrate(db, dbfs.Migrations); err != nil {
		t.Fatalf("db migration failed. err: %v", err)
	}

	Flush(t, db)

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	if err := dbpkg.Migrate(db, dbfs.Migrations); err != nil {
		t.Fatalf("db migration failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}
