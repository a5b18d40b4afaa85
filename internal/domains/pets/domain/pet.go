package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Species enumerates the kinds of pet an owner can adopt.
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesRabbit  Species = "rabbit"
	SpeciesHamster Species = "hamster"
	SpeciesBird    Species = "bird"
)

// Action is an owner interaction applied to a pet.
type Action string

const (
	ActionFeed     Action = "feed"
	ActionPlay     Action = "play"
	ActionClean    Action = "clean"
	ActionExercise Action = "exercise"
)

// Stat names one of the decaying well-being stats.
type Stat string

const (
	StatHunger      Stat = "hunger"
	StatHappiness   Stat = "happiness"
	StatCleanliness Stat = "cleanliness"
)

const (
	MinStat      = 0
	MaxStat      = 100
	ActionBoost  = 25
	ActionReward = 5

	// DecayPerHour is applied to every stat for each elapsed hour, up to MaxDecayHours.
	DecayPerHour  = 1.5
	MaxDecayHours = 24
)

var (
	ErrEmptyName         = errors.New("pet name is required")
	ErrUnknownSpecies    = errors.New("pet species is not supported")
	ErrUnknownAction     = errors.New("pet action is not supported")
	ErrNoOwner           = errors.New("pet must have at least one owner")
	ErrAlreadyOwner      = errors.New("user is already an owner of this pet")
	ErrInsufficientFunds = errors.New("not enough coins")
	ErrInvalidStat       = errors.New("stat must be between 0 and 100")
	ErrNegativeCoins     = errors.New("coins cannot be negative")
)

// Stats groups the three well-being values of a pet.
type Stats struct {
	Hunger      int
	Happiness   int
	Cleanliness int
}

// Pet is the aggregate shared by every owner holding its join code.
type Pet struct {
	Code        string
	Name        string
	Species     Species
	Stats       Stats
	Coins       int
	Accessories []AccessoryID
	Owners      []string
	CreatedAt   time.Time
	LastUpdated time.Time

	events []Event
}

// NewPet adopts a fresh pet with full stats and a single owner.
func NewPet(code string, species Species, name, ownerID string, now time.Time) (*Pet, error) {
	if err := ValidateCode(code); err != nil {
		return nil, err
	}
	if !species.Valid() {
		return nil, ErrUnknownSpecies
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrNoOwner
	}
	p := &Pet{
		Code:        code,
		Name:        name,
		Species:     species,
		Stats:       Stats{Hunger: MaxStat, Happiness: MaxStat, Cleanliness: MaxStat},
		Owners:      []string{ownerID},
		CreatedAt:   now,
		LastUpdated: now,
	}
	p.record(PetAdopted{BaseEvent: BaseEvent{Timestamp: now}, Code: code, Name: name, Species: species, OwnerID: ownerID})
	return p, nil
}

// Valid reports whether the species is one of the adoptable kinds.
func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesRabbit, SpeciesHamster, SpeciesBird:
		return true
	default:
		return false
	}
}

// AllSpecies lists every adoptable species.
func AllSpecies() []Species {
	return []Species{SpeciesDog, SpeciesCat, SpeciesRabbit, SpeciesHamster, SpeciesBird}
}

// Valid reports whether the action is supported.
func (a Action) Valid() bool {
	switch a {
	case ActionFeed, ActionPlay, ActionClean, ActionExercise:
		return true
	default:
		return false
	}
}

// Stat returns the stat boosted by the action. Exercise boosts nothing.
func (a Action) Stat() (Stat, bool) {
	switch a {
	case ActionFeed:
		return StatHunger, true
	case ActionPlay:
		return StatHappiness, true
	case ActionClean:
		return StatCleanliness, true
	default:
		return "", false
	}
}

// DecayFor computes how many points each stat loses after elapsed time.
func DecayFor(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	hours := math.Min(elapsed.Hours(), MaxDecayHours)
	return int(math.Floor(hours * DecayPerHour))
}

// ApplyDecay settles the decay accrued since LastUpdated. When no whole point has
// accrued the pet is left untouched so callers can skip the write.
func (p *Pet) ApplyDecay(now time.Time) int {
	decay := DecayFor(now.Sub(p.LastUpdated))
	if decay <= 0 {
		return 0
	}
	before := p.Stats
	p.Stats = Stats{
		Hunger:      clamp(p.Stats.Hunger - decay),
		Happiness:   clamp(p.Stats.Happiness - decay),
		Cleanliness: clamp(p.Stats.Cleanliness - decay),
	}
	p.touch(now)
	p.record(StatsDecayed{BaseEvent: BaseEvent{Timestamp: now}, Code: p.Code, Amount: decay, Before: before, After: p.Stats})
	return decay
}

// Apply performs an owner action and returns the coins it earned. Only the stat
// mapped to the action changes; decay is settled on read.
func (p *Pet) Apply(action Action, now time.Time) (int, error) {
	if !action.Valid() {
		return 0, ErrUnknownAction
	}
	if stat, ok := action.Stat(); ok {
		p.boost(stat, ActionBoost)
	}
	p.Coins += ActionReward
	p.touch(now)
	p.record(ActionApplied{BaseEvent: BaseEvent{Timestamp: now}, Code: p.Code, Name: p.Name, Action: action, CoinsEarned: ActionReward})
	return ActionReward, nil
}

// Purchase spends coins on a catalog accessory. Owning the same accessory more
// than once is allowed.
func (p *Pet) Purchase(item Accessory, now time.Time) error {
	if p.Coins < item.Price {
		return ErrInsufficientFunds
	}
	p.Coins -= item.Price
	p.Accessories = append(p.Accessories, item.ID)
	p.touch(now)
	p.record(AccessoryPurchased{BaseEvent: BaseEvent{Timestamp: now}, Code: p.Code, Name: p.Name, Accessory: item})
	return nil
}

// AddOwner grants co-ownership. LastUpdated is not advanced because no stat changes.
func (p *Pet) AddOwner(ownerID string, now time.Time) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrNoOwner
	}
	if p.HasOwner(ownerID) {
		return ErrAlreadyOwner
	}
	p.Owners = append(p.Owners, ownerID)
	p.record(OwnerJoined{BaseEvent: BaseEvent{Timestamp: now}, Code: p.Code, OwnerID: ownerID})
	return nil
}

// HasOwner reports whether the user co-owns the pet.
func (p *Pet) HasOwner(ownerID string) bool {
	for _, owner := range p.Owners {
		if owner == ownerID {
			return true
		}
	}
	return false
}

// CountAccessory returns how many copies of an accessory the pet owns.
func (p *Pet) CountAccessory(id AccessoryID) int {
	n := 0
	for _, owned := range p.Accessories {
		if owned == id {
			n++
		}
	}
	return n
}

// Validate re-checks the aggregate invariants before persistence.
func (p *Pet) Validate() error {
	if err := ValidateCode(p.Code); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.Species.Valid() {
		return ErrUnknownSpecies
	}
	for _, v := range []int{p.Stats.Hunger, p.Stats.Happiness, p.Stats.Cleanliness} {
		if v < MinStat || v > MaxStat {
			return ErrInvalidStat
		}
	}
	if p.Coins < 0 {
		return ErrNegativeCoins
	}
	if len(p.Owners) == 0 {
		return ErrNoOwner
	}
	return nil
}

// Clone returns a deep copy without pending events.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Accessories = append([]AccessoryID(nil), p.Accessories...)
	clone.Owners = append([]string(nil), p.Owners...)
	clone.events = nil
	return &clone
}

// Events returns the events recorded since the last ClearEvents.
func (p *Pet) Events() []Event {
	return append([]Event(nil), p.events...)
}

// ClearEvents drops recorded events once they have been published.
func (p *Pet) ClearEvents() {
	p.events = nil
}

func (p *Pet) boost(stat Stat, amount int) {
	switch stat {
	case StatHunger:
		p.Stats.Hunger = clamp(p.Stats.Hunger + amount)
	case StatHappiness:
		p.Stats.Happiness = clamp(p.Stats.Happiness + amount)
	case StatCleanliness:
		p.Stats.Cleanliness = clamp(p.Stats.Cleanliness + amount)
	}
}

// touch advances LastUpdated, never moving it backwards.
func (p *Pet) touch(now time.Time) {
	if now.After(p.LastUpdated) {
		p.LastUpdated = now
	}
}

func (p *Pet) record(e Event) {
	p.events = append(p.events, e)
}

func clamp(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

var _ AggregateWithEvents = (*Pet)(nil)
