package services

import (
	"context"
	"errors"

	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/harentsoaR/telecare-api/internal/repository"
)

// ErrAccountNotFound means no account matched. Callers treat it as an
// authentication failure, not a server error.
var ErrAccountNotFound = errors.New("account not found")

// AccountResolver is the only place that dispatches on role to pick the
// users or doctors collection.
type AccountResolver struct {
	store repository.AccountStore
}

func NewAccountResolver(store repository.AccountStore) *AccountResolver {
	return &AccountResolver{store: store}
}

// ResolveByRoleAndID looks id up in the doctors collection for RoleDoctor and
// in the users collection otherwise.
func (r *AccountResolver) ResolveByRoleAndID(ctx context.Context, role models.Role, id int64) (models.Account, error) {
	var (
		acc models.Account
		err error
	)
	if role == models.RoleDoctor {
		var d *models.Doctor
		d, err = r.store.FindDoctorByID(ctx, id)
		acc = d
	} else {
		var u *models.User
		u, err = r.store.FindUserByID(ctx, id)
		acc = u
	}
	if err != nil {
		return nil, notFound(err)
	}
	return acc, nil
}

// ResolveByEmail searches only the hinted collection when roleHint is set,
// otherwise users first and then doctors.
func (r *AccountResolver) ResolveByEmail(ctx context.Context, email string, roleHint models.Role) (models.Account, error) {
	if roleHint != models.RoleDoctor {
		u, err := r.store.FindUserByEmail(ctx, email)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if roleHint == models.RoleUser {
			return nil, ErrAccountNotFound
		}
	}
	d, err := r.store.FindDoctorByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// EmailTaken reports whether either collection already holds email.
func (r *AccountResolver) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := r.ResolveByEmail(ctx, email, "")
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAccountNotFound):
		return false, nil
	default:
		return false, err
	}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}
