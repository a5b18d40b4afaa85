package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&petRecord{},
		&idempotencyRecord{},
		&userRecord{},
		&sessionRecord{},
	)
}

// Pet schema mirrors the pets Postgres adapter.
type petRecord struct {
	Code        string         `gorm:"primaryKey;column:code;size:6"`
	Name        string         `gorm:"column:name;not null"`
	Species     string         `gorm:"column:species;type:varchar(16);not null"`
	Hunger      int            `gorm:"column:hunger;not null;check:chk_pets_hunger,hunger BETWEEN 0 AND 100"`
	Happiness   int            `gorm:"column:happiness;not null;check:chk_pets_happiness,happiness BETWEEN 0 AND 100"`
	Cleanliness int            `gorm:"column:cleanliness;not null;check:chk_pets_cleanliness,cleanliness BETWEEN 0 AND 100"`
	Coins       int            `gorm:"column:coins;not null;default:0;check:chk_pets_coins,coins >= 0"`
	Accessories pq.Int64Array  `gorm:"column:accessories;type:bigint[];not null;default:'{}'"`
	Owners      pq.StringArray `gorm:"column:owners;type:text[];not null"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	LastUpdated time.Time      `gorm:"column:last_updated"`
}

func (petRecord) TableName() string { return "pets" }

// Idempotency schema mirrors the adoption idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	PetCode     string    `gorm:"column:pet_code;size:6"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "pet_idempotency_keys" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           string    `gorm:"primaryKey;column:id"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	PetCode      *string   `gorm:"column:pet_code;size:6;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:64"`
	UserID    string    `gorm:"column:user_id;index"`
	PetCode   *string   `gorm:"column:pet_code;size:6"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }
