package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kanon95/user-records/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.User{})
}

// List returns every record in insertion order (ascending id).
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) ByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ByEmail performs an exact, case-sensitive match.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ByEmailAndName performs an exact match on both fields.
func (r *UserRepo) ByEmailAndName(ctx context.Context, email, name string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ? AND name = ?", email, name).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// likeEscaper neutralizes LIKE metacharacters so the fragment always matches
// literally: "100%" must only match names containing a percent sign.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByName matches name against the fragment case-insensitively as a
// literal substring. An empty fragment matches every record.
func (r *UserRepo) SearchByName(ctx context.Context, fragment string) ([]domain.User, error) {
	users := []domain.User{}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
	err := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("search users by name: %w", err)
	}
	return users, nil
}

// Create inserts u and fills in the assigned id. The unique index on email is
// the authoritative duplicate guard; a violation surfaces as ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Update replaces the mutable fields of the row keyed by u.ID. Updating a row
// that no longer exists (e.g. lost a race with a delete) is ErrNotFound; Save
// is avoided here because it re-creates the row when the update matches
// nothing.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{"name": u.Name, "email": u.Email})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the record, hard. Deleting an absent id is ErrNotFound.
func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicateEmail
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
