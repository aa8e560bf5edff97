package service

import (
	"context"

	"github.com/kanon95/user-records/internal/domain"
	"github.com/kanon95/user-records/internal/repository"
)

type UserSvc struct{ repo *repository.UserRepo }

func NewUserSvc(r *repository.UserRepo) *UserSvc { return &UserSvc{repo: r} }

func (s *UserSvc) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserSvc) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.ByID(ctx, id)
}

func (s *UserSvc) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.ByEmail(ctx, email)
}

func (s *UserSvc) GetByEmailAndName(ctx context.Context, email, name string) (*domain.User, error) {
	return s.repo.ByEmailAndName(ctx, email, name)
}

func (s *UserSvc) SearchByName(ctx context.Context, fragment string) ([]domain.User, error) {
	return s.repo.SearchByName(ctx, fragment)
}

// Create persists a new user and returns it with the store-assigned id.
// Duplicate detection is left to the store's unique index rather than a
// check-then-insert, so two concurrent creates with the same email cannot
// both succeed.
func (s *UserSvc) Create(ctx context.Context, name, email string) (*domain.User, error) {
	u := &domain.User{Name: name, Email: email}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update replaces the mutable fields of the record with the given values.
// The id is preserved; it is never taken from the request body.
func (s *UserSvc) Update(ctx context.Context, id uint, name, email string) (*domain.User, error) {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = name
	u.Email = email
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserSvc) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
