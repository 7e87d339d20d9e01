package services

import (
	"context"
	"errors"
	"testing"

	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/harentsoaR/telecare-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededResolver(t *testing.T) (*AccountResolver, *models.User, *models.Doctor) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	u := &models.User{FullName: "Ravi", Email: "ravi@test.com"}
	require.NoError(t, store.CreateUser(ctx, u))
	d := &models.Doctor{FullName: "Dr. Rajesh", Email: "rajesh@hospital.com"}
	require.NoError(t, store.CreateDoctor(ctx, d))
	require.Equal(t, u.ID, d.ID)
	return NewAccountResolver(store), u, d
}

func TestResolveByRoleAndID_DispatchesOnRole(t *testing.T) {
	r, u, d := seededResolver(t)
	ctx := context.Background()

	acc, err := r.ResolveByRoleAndID(ctx, models.RoleDoctor, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, acc.AccountRole())
	assert.Equal(t, "rajesh@hospital.com", acc.AccountEmail())

	acc, err = r.ResolveByRoleAndID(ctx, models.RoleUser, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, acc.AccountRole())

	acc, err = r.ResolveByRoleAndID(ctx, "", u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, acc.AccountRole(), "missing role defaults to user")

	_, err = r.ResolveByRoleAndID(ctx, models.RoleDoctor, 404)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResolveByEmail(t *testing.T) {
	r, _, _ := seededResolver(t)
	ctx := context.Background()

	acc, err := r.ResolveByEmail(ctx, "rajesh@hospital.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, acc.AccountRole())

	acc, err = r.ResolveByEmail(ctx, "ravi@test.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, acc.AccountRole())

	_, err = r.ResolveByEmail(ctx, "rajesh@hospital.com", models.RoleUser)
	assert.ErrorIs(t, err, ErrAccountNotFound, "hint restricts the search")

	_, err = r.ResolveByEmail(ctx, "ravi@test.com", models.RoleDoctor)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = r.ResolveByEmail(ctx, "nobody@test.com", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestEmailTaken(t *testing.T) {
	r, _, _ := seededResolver(t)
	ctx := context.Background()

	for email, want := range map[string]bool{
		"ravi@test.com":       true,
		"rajesh@hospital.com": true,
		"free@test.com":       false,
	} {
		taken, err := r.EmailTaken(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, want, taken, email)
	}
}

type failingStore struct{ repository.AccountStore }

var errDown = errors.New("store down")

func (failingStore) FindUserByEmail(context.Context, string) (*models.User, error) { return nil, errDown }
func (failingStore) FindUserByID(context.Context, int64) (*models.User, error)     { return nil, errDown }

func TestResolver_PropagatesStoreErrors(t *testing.T) {
	r := NewAccountResolver(failingStore{})
	ctx := context.Background()

	_, err := r.ResolveByRoleAndID(ctx, models.RoleUser, 1)
	assert.ErrorIs(t, err, errDown)
	assert.NotErrorIs(t, err, ErrAccountNotFound)

	_, err = r.EmailTaken(ctx, "x@y.com")
	assert.ErrorIs(t, err, errDown)
}
