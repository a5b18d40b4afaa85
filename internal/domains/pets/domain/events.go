package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// PetAdopted is raised when a first owner creates a pet.
type PetAdopted struct {
	BaseEvent
	Code    string
	Name    string
	Species Species
	OwnerID string
}

// EventName returns the event type identifier.
func (e PetAdopted) EventName() string {
	return "pets.pet.adopted"
}

// OwnerJoined is raised when a user joins a pet through its code.
type OwnerJoined struct {
	BaseEvent
	Code    string
	OwnerID string
}

// EventName returns the event type identifier.
func (e OwnerJoined) EventName() string {
	return "pets.pet.owner_joined"
}

// ActionApplied is raised after feed, play, clean or exercise.
type ActionApplied struct {
	BaseEvent
	Code        string
	Name        string
	Action      Action
	CoinsEarned int
}

// EventName returns the event type identifier.
func (e ActionApplied) EventName() string {
	return "pets.pet.action_applied"
}

// AccessoryPurchased is raised when coins are spent in the shop.
type AccessoryPurchased struct {
	BaseEvent
	Code      string
	Name      string
	Accessory Accessory
}

// EventName returns the event type identifier.
func (e AccessoryPurchased) EventName() string {
	return "pets.pet.accessory_purchased"
}

// StatsDecayed is raised when elapsed time lowered the stats.
type StatsDecayed struct {
	BaseEvent
	Code   string
	Amount int
	Before Stats
	After  Stats
}

// EventName returns the event type identifier.
func (e StatsDecayed) EventName() string {
	return "pets.pet.stats_decayed"
}

// AggregateWithEvents is implemented by aggregates that track domain events.
type AggregateWithEvents interface {
	Events() []Event
	ClearEvents()
}
