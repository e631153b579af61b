package users

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/userbook/internal/dbx"
	"github.com/dmitrijs2005/userbook/internal/models"
	"github.com/dmitrijs2005/userbook/internal/repositories/users/migrations"
)

// dialect holds the driver-specific parts of the SQL backend.
type dialect struct {
	driver      string
	gooseName   string
	insertQuery string
}

var (
	sqliteDialect = dialect{
		driver:    "sqlite",
		gooseName: "sqlite3",
		insertQuery: `INSERT INTO users (position, name, number, password, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
	}
	postgresDialect = dialect{
		driver:    "pgx",
		gooseName: "pgx",
		insertQuery: `INSERT INTO users (position, name, number, password, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
	}
)

const (
	selectUsersQuery = `SELECT name, number, password, created_at FROM users ORDER BY position`
	deleteUsersQuery = `DELETE FROM users`
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema using the given goose dialect.
func RunMigrations(ctx context.Context, db *sql.DB, gooseDialect string) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SQLRepository keeps one row per user; position preserves insertion order.
// Save replaces all rows in a single transaction.
type SQLRepository struct {
	db       *sql.DB
	dialect  dialect
	location string
}

func newSQLRepository(db *sql.DB, d dialect, location string) *SQLRepository {
	return &SQLRepository{db: db, dialect: d, location: location}
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLRepository, error) {
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, sqliteDialect.gooseName); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLRepository(db, sqliteDialect, schemeSQLite+path), nil
}

// OpenPostgres connects to the PostgreSQL database at dsn and migrates it.
func OpenPostgres(ctx context.Context, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(ctx, db, postgresDialect.gooseName); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLRepository(db, postgresDialect, redactDSN(dsn)), nil
}

func (r *SQLRepository) Location() string { return r.location }

func (r *SQLRepository) Close() error { return r.db.Close() }

func (r *SQLRepository) Load(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Name, &u.Number, &u.Password, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}

func (r *SQLRepository) Save(ctx context.Context, users []models.User) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, deleteUsersQuery); err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		for i, u := range users {
			if _, err := tx.ExecContext(ctx, r.dialect.insertQuery,
				i, u.Name, u.Number, u.Password, u.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert user %d: %w", i, err)
			}
		}
		return nil
	})
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}

var _ Repository = (*SQLRepository)(nil)
