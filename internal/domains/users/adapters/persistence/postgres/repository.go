package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
	"github.com/Apurer/roopet-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID           string    `gorm:"primaryKey;column:id"`
	PasswordHash string    `gorm:"column:password_hash"`
	PetCode      *string   `gorm:"column:pet_code;size:6;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Get fetches a user by id.
func (r *Repository) Get(ctx context.Context, id string) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Create inserts the user; an existing id yields ports.ErrAlreadyExists.
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}
	record := toRecord(user)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ports.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrAlreadyExists
	}
	return nil
}

// Merge updates the patched columns of an existing user.
func (r *Repository) Merge(ctx context.Context, id string, patch ports.Patch) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.PetCode != nil {
		updates["pet_code"] = nullableString(*patch.PetCode)
	}
	result := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		PasswordHash: user.PasswordHash,
		PetCode:      nullableString(user.PetCode),
		CreatedAt:    user.CreatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	user := &domain.User{
		ID:           r.ID,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
	if r.PetCode != nil {
		user.PetCode = *r.PetCode
	}
	return user
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
