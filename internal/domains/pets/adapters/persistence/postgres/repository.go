package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM-mapped columns. The schema is
// owned by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type petRecord struct {
	Code        string         `gorm:"primaryKey;column:code;size:6"`
	Name        string         `gorm:"column:name"`
	Species     string         `gorm:"column:species;type:varchar(16)"`
	Hunger      int            `gorm:"column:hunger"`
	Happiness   int            `gorm:"column:happiness"`
	Cleanliness int            `gorm:"column:cleanliness"`
	Coins       int            `gorm:"column:coins"`
	Accessories pq.Int64Array  `gorm:"column:accessories;type:bigint[]"`
	Owners      pq.StringArray `gorm:"column:owners;type:text[]"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	LastUpdated time.Time      `gorm:"column:last_updated"`
}

func (petRecord) TableName() string { return "pets" }

func newPetRecord(p *domain.Pet) petRecord {
	return petRecord{
		Code:        p.Code,
		Name:        p.Name,
		Species:     string(p.Species),
		Hunger:      p.Stats.Hunger,
		Happiness:   p.Stats.Happiness,
		Cleanliness: p.Stats.Cleanliness,
		Coins:       p.Coins,
		Accessories: accessoryArray(p.Accessories),
		Owners:      pq.StringArray(append([]string{}, p.Owners...)),
		CreatedAt:   p.CreatedAt,
		LastUpdated: p.LastUpdated,
	}
}

// Create inserts a new pet; a taken code yields ports.ErrAlreadyExists.
func (r *Repository) Create(ctx context.Context, pet *domain.Pet) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if pet == nil {
		return errors.New("cannot create nil pet")
	}
	if err := pet.Validate(); err != nil {
		return err
	}
	record := newPetRecord(pet)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
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

// Get fetches a pet by join code.
func (r *Repository) Get(ctx context.Context, code string) (*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record petRecord
	if err := r.db.WithContext(ctx).First(&record, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Exists reports whether the code is taken.
func (r *Repository) Exists(ctx context.Context, code string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&petRecord{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update locks the row, applies fn and writes back only the columns fn changed.
func (r *Repository) Update(ctx context.Context, code string, fn ports.MutateFunc) (*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var updated *domain.Pet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record petRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		working := record.toDomain()
		changed, err := fn(working)
		if err != nil {
			return err
		}
		updated = working
		if !changed {
			return nil
		}
		if err := working.Validate(); err != nil {
			return err
		}
		columns := changedColumns(record, newPetRecord(working))
		if len(columns) == 0 {
			return nil
		}
		return tx.Model(&petRecord{}).Where("code = ?", code).Updates(columns).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// changedColumns diffs two records so concurrent writers of other fields are never clobbered.
func changedColumns(before, after petRecord) map[string]any {
	columns := map[string]any{}
	if before.Name != after.Name {
		columns["name"] = after.Name
	}
	if before.Hunger != after.Hunger {
		columns["hunger"] = after.Hunger
	}
	if before.Happiness != after.Happiness {
		columns["happiness"] = after.Happiness
	}
	if before.Cleanliness != after.Cleanliness {
		columns["cleanliness"] = after.Cleanliness
	}
	if before.Coins != after.Coins {
		columns["coins"] = after.Coins
	}
	if !equalInt64s(before.Accessories, after.Accessories) {
		columns["accessories"] = after.Accessories
	}
	if !equalStrings(before.Owners, after.Owners) {
		columns["owners"] = after.Owners
	}
	if !before.LastUpdated.Equal(after.LastUpdated) {
		columns["last_updated"] = after.LastUpdated
	}
	return columns
}

func (r *petRecord) toDomain() *domain.Pet {
	if r == nil {
		return nil
	}
	pet := &domain.Pet{
		Code:    r.Code,
		Name:    r.Name,
		Species: domain.Species(r.Species),
		Stats: domain.Stats{
			Hunger:      r.Hunger,
			Happiness:   r.Happiness,
			Cleanliness: r.Cleanliness,
		},
		Coins:       r.Coins,
		CreatedAt:   r.CreatedAt,
		LastUpdated: r.LastUpdated,
	}
	if len(r.Accessories) > 0 {
		pet.Accessories = make([]domain.AccessoryID, 0, len(r.Accessories))
		for _, id := range r.Accessories {
			pet.Accessories = append(pet.Accessories, domain.AccessoryID(id))
		}
	}
	if len(r.Owners) > 0 {
		pet.Owners = append([]string{}, r.Owners...)
	}
	return pet
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}

func accessoryArray(ids []domain.AccessoryID) pq.Int64Array {
	arr := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, int64(id))
	}
	return arr
}

func equalInt64s(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
