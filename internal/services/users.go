// Package services contains the userbook application services. UserStore
// owns the in-memory collection of user records, validates input and keeps
// storage in step with every mutation.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/userbook/internal/common"
	"github.com/dmitrijs2005/userbook/internal/cryptox"
	"github.com/dmitrijs2005/userbook/internal/logging"
	"github.com/dmitrijs2005/userbook/internal/models"
	"github.com/dmitrijs2005/userbook/internal/repositories/users"
)

// UserStore is the record-management core. It is not safe for concurrent
// use; the CLI drives it from a single goroutine.
//
// Mutations are staged on a copy of the collection, written out in full, and
// only then committed, so a failed save leaves memory equal to storage.
type UserStore struct {
	repo  users.Repository
	users []models.User
	now   func() time.Time
}

// Option configures a UserStore.
type Option func(*UserStore)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *UserStore) { s.now = now }
}

// NewUserStore loads the collection from repo. A missing location yields an
// empty collection; unreadable or corrupt content is logged and also yields
// an empty collection, which the next save overwrites.
func NewUserStore(ctx context.Context, repo users.Repository, opts ...Option) *UserStore {
	s := &UserStore{repo: repo, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.load(ctx)
	logging.L().Info(ctx, "system started", "storage", repo.Location())
	return s
}

func (s *UserStore) load(ctx context.Context) {
	log := logging.L()

	loaded, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		s.users = loaded
		log.Info(ctx, "users loaded", "count", len(loaded))
	case errors.Is(err, common.ErrStorageNotExist):
		s.users = nil
		log.Info(ctx, "new user list created", "storage", s.repo.Location())
	case errors.Is(err, common.ErrCorruptStorage):
		s.users = nil
		log.Error(ctx, "failed to parse users", "storage", s.repo.Location(), "error", err)
	default:
		s.users = nil
		log.Error(ctx, "failed to load users", "storage", s.repo.Location(), "error", err)
	}
}

// persist writes staged as the complete collection.
func (s *UserStore) persist(ctx context.Context, staged []models.User) error {
	if err := s.repo.Save(ctx, staged); err != nil {
		logging.L().Error(ctx, "save failed", "storage", s.repo.Location(), "error", err)
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	logging.L().Info(ctx, "users saved", "count", len(staged))
	return nil
}

// commit persists staged and, on success, makes it the current collection.
func (s *UserStore) commit(ctx context.Context, staged []models.User) error {
	if err := s.persist(ctx, staged); err != nil {
		return err
	}
	s.users = staged
	return nil
}

func (s *UserStore) rejected(ctx context.Context, op string, err error) error {
	logging.L().Warn(ctx, "validation failed", "op", op, "reason", err.Error())
	return err
}

func (s *UserStore) indexOf(number string) int {
	return slices.IndexFunc(s.users, func(u models.User) bool { return u.Number == number })
}

// AddUser validates the fields, hashes the password and appends a new record
// stamped with the current time.
func (s *UserStore) AddUser(ctx context.Context, name, number, password string) error {
	name, err := normalizeName(name)
	if err != nil {
		return s.rejected(ctx, "add", err)
	}
	if err := checkNumber(number); err != nil {
		return s.rejected(ctx, "add", err)
	}
	if err := checkPassword(password); err != nil {
		return s.rejected(ctx, "add", err)
	}

	u := models.User{
		Name:      name,
		Number:    number,
		Password:  cryptox.HashPassword(password),
		CreatedAt: models.FormatCreatedAt(s.now()),
	}

	staged := append(slices.Clone(s.users), u)
	if err := s.commit(ctx, staged); err != nil {
		return err
	}
	logging.L().Info(ctx, "user added", "name", name)
	return nil
}

// FindUser returns the first record whose number equals number exactly.
func (s *UserStore) FindUser(number string) (models.User, bool) {
	i := s.indexOf(number)
	if i < 0 {
		return models.User{}, false
	}
	return s.users[i], true
}

// UpdateUser replaces one field of the first record matching number.
// CreatedAt is never changed.
func (s *UserStore) UpdateUser(ctx context.Context, number string, field models.Field, value string) error {
	i := s.indexOf(number)
	if i < 0 {
		return fmt.Errorf("%w: %s", common.ErrNotFound, number)
	}

	staged := slices.Clone(s.users)
	u := &staged[i]

	switch field {
	case models.FieldName:
		name, err := normalizeName(value)
		if err != nil {
			return s.rejected(ctx, "update", err)
		}
		u.Name = name
	case models.FieldNumber:
		if err := checkNumber(value); err != nil {
			return s.rejected(ctx, "update", err)
		}
		u.Number = value
	case models.FieldPassword:
		if err := checkPassword(value); err != nil {
			return s.rejected(ctx, "update", err)
		}
		u.Password = cryptox.HashPassword(value)
	default:
		logging.L().Warn(ctx, "invalid update selection", "field", string(field))
		return fmt.Errorf("%w: %q", common.ErrInvalidSelection, field)
	}

	if err := s.commit(ctx, staged); err != nil {
		return err
	}
	logging.L().Info(ctx, "user updated", "name", u.Name, "field", string(field))
	return nil
}

// DeleteUser removes the first record matching number; the order of the
// remaining records is kept.
func (s *UserStore) DeleteUser(ctx context.Context, number string) error {
	i := s.indexOf(number)
	if i < 0 {
		return fmt.Errorf("%w: %s", common.ErrNotFound, number)
	}

	removed := s.users[i]
	staged := slices.Delete(slices.Clone(s.users), i, i+1)
	if err := s.commit(ctx, staged); err != nil {
		return err
	}
	logging.L().Info(ctx, "user deleted", "name", removed.Name)
	return nil
}

// ListUsers returns the collection in insertion order without password
// digests. The result is never nil.
func (s *UserStore) ListUsers() []models.UserView {
	out := make([]models.UserView, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.View())
	}
	return out
}

// Len returns the number of records.
func (s *UserStore) Len() int { return len(s.users) }

// Location describes the underlying storage.
func (s *UserStore) Location() string { return s.repo.Location() }

// Close releases the underlying storage.
func (s *UserStore) Close() error { return s.repo.Close() }
