// Package store is the persistence layer for platforms, games, users and
// collection entries. Each write is atomic for one row; callers that touch
// several rows use Store.Transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("store: record not found")
	ErrMalformedID = errors.New("store: malformed id")
	ErrDuplicate   = errors.New("store: duplicate key")
)

// Fields maps column names to new values for Update.
type Fields map[string]any

// Scope narrows a GetAll or Count query.
type Scope func(*gorm.DB) *gorm.DB

func Where(column string, value any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(map[string]any{column: value})
	}
}

func IDIn(ids []string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	}
}

func CreatedAfter(t time.Time) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at > ?", t)
	}
}

// Contains matches column case-insensitively against a substring.
func Contains(column, text string) Scope {
	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") LIKE ?", pattern)
	}
}

// ValidID reports whether id could address a row at all. Only the canonical
// lowercase hyphenated form is accepted, since ids are stored and compared
// as plain strings.
func ValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

type Repository[T any] struct {
	db *gorm.DB
}

func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

func (r *Repository[T]) GetAll(ctx context.Context, scopes ...Scope) ([]T, error) {
	items := make([]T, 0)
	if err := r.query(ctx, scopes).Order("created_at, id").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *Repository[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := r.query(ctx, scopes).Model(new(T)).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if !ValidID(id) {
		return nil, ErrMalformedID
	}
	var item T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *Repository[T]) Update(ctx context.Context, id string, fields Fields) (*T, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(item).Updates(map[string]any(fields)).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repository[T]) Delete(ctx context.Context, id string) (*T, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(item).Error; err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *Repository[T]) query(ctx context.Context, scopes []Scope) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, scope := range scopes {
		q = q.Scopes(scope)
	}
	return q
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
