package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/userbook/internal/common"
	"github.com/dmitrijs2005/userbook/internal/cryptox"
	"github.com/dmitrijs2005/userbook/internal/logging"
	"github.com/dmitrijs2005/userbook/internal/models"
	"github.com/dmitrijs2005/userbook/internal/repositories/users"
	"github.com/dmitrijs2005/userbook/internal/services"
)

func newTestStore(t *testing.T) (*services.UserStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return services.NewUserStore(context.Background(), users.NewJSONFileRepository(path)), path
}

func newTestApp(t *testing.T, store *services.UserStore, input string) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return NewApp(store, strings.NewReader(input), &out), &out
}

func TestAddUser_Interactive(t *testing.T) {
	store, path := newTestStore(t)
	app, out := newTestApp(t, store, "  Ayşe  \n05123456789\nAbcdefg1\n")

	require.NoError(t, app.AddUser(context.Background()))
	assert.Contains(t, out.String(), msgSaved)

	u, ok := store.FindUser("05123456789")
	require.True(t, ok)
	assert.Equal(t, "Ayşe", u.Name)
	assert.Equal(t, cryptox.HashPassword("Abcdefg1"), u.Password)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name": "Ayşe"`)
	assert.NotContains(t, string(b), "Abcdefg1")
}

func TestAddUser_ValidationMessages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty name", "\n05123456789\nAbcdefg1\n", "Error: " + services.ReasonEmptyName},
		{"bad number", "Ali\n12345\nAbcdefg1\n", "Error: " + services.ReasonInvalidNumber},
		{"weak password", "Ali\n05123456789\nabc\n", "Error: " + services.ReasonInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, path := newTestStore(t)
			app, out := newTestApp(t, store, tt.input)

			err := app.AddUser(context.Background())
			require.ErrorIs(t, err, common.ErrValidation)
			assert.True(t, isReported(err))
			assert.Contains(t, out.String(), tt.want)
			assert.Equal(t, 0, store.Len())

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "failed add must not create the file")
		})
	}
}

func TestAddUser_InputClosed(t *testing.T) {
	store, _ := newTestStore(t)
	app, _ := newTestApp(t, store, "Ali\n")

	err := app.AddUser(context.Background())
	require.Error(t, err)
	assert.False(t, isReported(err))
	assert.Equal(t, 0, store.Len())
}

type failingService struct {
	userService
	err error
}

func (f failingService) AddUser(context.Context, string, string, string) error { return f.err }

func TestAddUser_UnexpectedErrorIsGenericAndLogged(t *testing.T) {
	var logBuf bytes.Buffer
	restore := logging.Replace(logging.NewSlogLogger(slog.New(slog.NewTextHandler(&logBuf, nil))))
	t.Cleanup(restore)

	svc := failingService{err: errors.Join(common.ErrStorage, errors.New("disk full"))}
	var out bytes.Buffer
	app := NewApp(svc, strings.NewReader("Ali\n05123456789\nAbcdefg1\n"), &out)

	err := app.AddUser(context.Background())
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, out.String(), msgUnexpected)
	assert.NotContains(t, out.String(), "disk full")
	assert.Contains(t, logBuf.String(), "level=ERROR msg=\"unexpected error\"")
}

func seedUsers(t *testing.T, store *services.UserStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.AddUser(ctx, "First", "05111111111", "Abcdefg1"))
	require.NoError(t, store.AddUser(ctx, "Second", "05222222222", "Abcdefg2"))
}

func TestListUsers_Plain(t *testing.T) {
	store, _ := newTestStore(t)
	app, out := newTestApp(t, store, "")

	require.NoError(t, app.ListUsers(context.Background()))
	assert.Equal(t, msgNoUsers+"\n", out.String())

	seedUsers(t, store)
	out.Reset()
	require.NoError(t, app.ListUsers(context.Background()))

	got := out.String()
	assert.Contains(t, got, "User 1:\nName: First\nNumber: 05111111111\nRegistered: ")
	assert.Contains(t, got, "User 2:\nName: Second\nNumber: 05222222222\n")
	assert.NotContains(t, got, cryptox.HashPassword("Abcdefg1"))
}

func TestUpdateUser_Interactive(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, u models.User)
	}{
		{
			name:  "name by digit",
			input: "05111111111\n1\n  Renamed \n",
			check: func(t *testing.T, u models.User) { assert.Equal(t, "Renamed", u.Name) },
		},
		{
			name:  "password by word",
			input: "05111111111\npassword\nNewPassw0rd\n",
			check: func(t *testing.T, u models.User) {
				assert.Equal(t, cryptox.HashPassword("NewPassw0rd"), u.Password)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t)
			seedUsers(t, store)
			app, out := newTestApp(t, store, tt.input)

			require.NoError(t, app.UpdateUser(context.Background()))
			assert.Contains(t, out.String(), msgUpdated)

			u, ok := store.FindUser("05111111111")
			require.True(t, ok)
			tt.check(t, u)
		})
	}
}

func TestUpdateUser_NumberChange(t *testing.T) {
	store, _ := newTestStore(t)
	seedUsers(t, store)
	app, _ := newTestApp(t, store, "05111111111\n2\n05333333333\n")

	require.NoError(t, app.UpdateUser(context.Background()))

	_, ok := store.FindUser("05111111111")
	assert.False(t, ok)
	u, ok := store.FindUser("05333333333")
	require.True(t, ok)
	assert.Equal(t, "First", u.Name)
}

func TestUpdateUser_Failures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"unknown user", "05999999999\n", msgNotFound, common.ErrNotFound},
		{"bad selection", "05111111111\n7\n", msgInvalidSelection, common.ErrInvalidSelection},
		{"invalid value", "05111111111\n2\n0511\n", "Error: " + services.ReasonInvalidNumber, common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, path := newTestStore(t)
			seedUsers(t, store)
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			app, out := newTestApp(t, store, tt.input)
			err = app.UpdateUser(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, out.String(), tt.want)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestDeleteUser_Interactive(t *testing.T) {
	store, _ := newTestStore(t)
	seedUsers(t, store)

	app, out := newTestApp(t, store, "05111111111\n05111111111\n")
	require.NoError(t, app.DeleteUser(context.Background()))
	assert.Contains(t, out.String(), msgDeleted)
	assert.Equal(t, 1, store.Len())

	err := app.DeleteUser(context.Background())
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, out.String(), msgNotFound)
	assert.Equal(t, 1, store.Len())
}

func TestApp_RunDrivesMenu(t *testing.T) {
	store, _ := newTestStore(t)
	app, out := newTestApp(t, store, "1\nAli\n05123456789\nAbcdefg1\n2\n4\n05123456789\n2\n5\n")

	app.Run(context.Background())

	got := out.String()
	assert.Contains(t, got, msgSaved)
	assert.Contains(t, got, "Name: Ali")
	assert.Contains(t, got, msgDeleted)
	assert.Contains(t, got, msgNoUsers)
	assert.Equal(t, 0, store.Len())
}
