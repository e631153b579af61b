package users

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/userbook/internal/models"
)

// ---- SQLite (real, in memory) ----

func openMemorySQLite(t *testing.T) *SQLRepository {
	t.Helper()
	r, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLite_LoadEmptyTable_ReturnsEmpty(t *testing.T) {
	r := openMemorySQLite(t)

	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_SaveThenLoad_PreservesOrderAndFields(t *testing.T) {
	r := openMemorySQLite(t)
	ctx := context.Background()

	users := sampleUsers()
	users = append(users, models.User{Name: "dup", Number: users[0].Number, Password: users[0].Password, CreatedAt: "2024-06-01T00:00:00.000000"})

	require.NoError(t, r.Save(ctx, users))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(users, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLite_Save_ReplacesWholeCollection(t *testing.T) {
	r := openMemorySQLite(t)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, sampleUsers()))
	require.NoError(t, r.Save(ctx, sampleUsers()[1:]))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sampleUsers()[1], got[0])
}

func TestSQLite_FileDatabasePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	ctx := context.Background()

	r1, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, r1.Save(ctx, sampleUsers()))
	require.NoError(t, r1.Close())

	r2, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer r2.Close()

	got, err := r2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleUsers(), got)
	assert.Equal(t, "sqlite://"+path, r2.Location())
}

func TestSQLite_ClosedDB_ErrorsWrapped(t *testing.T) {
	r := openMemorySQLite(t)
	require.NoError(t, r.Close())

	_, err := r.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list users")

	err = r.Save(context.Background(), sampleUsers())
	require.Error(t, err)
}

// ---- PostgreSQL (sqlmock) ----

func newPostgresWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newSQLRepository(db, postgresDialect, "postgres://localhost/users"), mock
}

func TestPostgres_Load(t *testing.T) {
	r, mock := newPostgresWithMock(t)

	rows := sqlmock.NewRows([]string{"name", "number", "password", "created_at"})
	for _, u := range sampleUsers() {
		rows.AddRow(u.Name, u.Number, u.Password, u.CreatedAt)
	}
	mock.ExpectQuery(`SELECT name, number, password, created_at FROM users ORDER BY position`).WillReturnRows(rows)

	got, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleUsers(), got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Save_DeletesThenInsertsInTx(t *testing.T) {
	r, mock := newPostgresWithMock(t)
	users := sampleUsers()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 5))
	for i, u := range users {
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(i, u.Name, u.Number, u.Password, u.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, r.Save(context.Background(), users))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Save_InsertErrorRollsBack(t *testing.T) {
	r, mock := newPostgresWithMock(t)
	users := sampleUsers()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := r.Save(context.Background(), users)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert user 0")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Load_QueryError(t *testing.T) {
	r, mock := newPostgresWithMock(t)
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("conn reset"))

	_, err := r.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list users: conn reset")
}

// ---- migrations ----

func TestRunMigrations_UsesEmbeddedRoot(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), db, "pgx"))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err = RunMigrations(context.Background(), db, "pgx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate: boom")
}

func TestRunMigrations_UnknownDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, RunMigrations(context.Background(), db, "oracle-ish"))
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/users", redactDSN("postgres://app:secret@db:5432/users"))
	assert.Equal(t, "postgres://db/users", redactDSN("postgres://db/users"))
}
