package domain

import (
	"fmt"
	"strings"
	"time"

	petsdomain "github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

const (
	// LowStatThreshold marks a stat as low when strictly below it.
	LowStatThreshold = 30
	// Cooldown is the minimum gap between two low-stat alerts.
	Cooldown = 30 * time.Minute

	LowStatsTitle  = "Roopet Alert"
	UpdateTitle    = "Roopet Update"
	ShopTitle      = "Roopet Shop"
	LowStatsTag    = "low-stats"
	PetActionTag   = "pet-action"
	PurchaseTag    = "purchase-success"
	DefaultDismiss = 5 * time.Second
)

// Notification is a fire-and-forget message for the pet's owners.
type Notification struct {
	PetCode            string
	Title              string
	Body               string
	Tag                string
	RequireInteraction bool
}

// LowCategories names the low stats of a pet in display order: hungry, sad, dirty.
func LowCategories(stats petsdomain.Stats) []string {
	var out []string
	if stats.Hunger < LowStatThreshold {
		out = append(out, "hungry")
	}
	if stats.Happiness < LowStatThreshold {
		out = append(out, "sad")
	}
	if stats.Cleanliness < LowStatThreshold {
		out = append(out, "dirty")
	}
	return out
}

// LowStatsNotification builds the combined alert for the given low categories.
func LowStatsNotification(code, name string, categories []string) Notification {
	return Notification{
		PetCode:            code,
		Title:              LowStatsTitle,
		Body:               fmt.Sprintf("%s is %s! Please take care of your pet!", name, strings.Join(categories, ", ")),
		Tag:                LowStatsTag,
		RequireInteraction: true,
	}
}

var actionVerbs = map[petsdomain.Action]string{
	petsdomain.ActionFeed:     "fed",
	petsdomain.ActionPlay:     "played with",
	petsdomain.ActionClean:    "cleaned",
	petsdomain.ActionExercise: "exercised",
}

// ActionNotification confirms an owner interaction.
func ActionNotification(code, name string, action petsdomain.Action, coins int) Notification {
	verb, ok := actionVerbs[action]
	if !ok {
		verb = string(action)
	}
	return Notification{
		PetCode: code,
		Title:   UpdateTitle,
		Body:    fmt.Sprintf("You %s %s! +%d coins earned!", verb, name, coins),
		Tag:     PetActionTag,
	}
}

// PurchaseNotification confirms a shop purchase.
func PurchaseNotification(code, item string) Notification {
	return Notification{
		PetCode: code,
		Title:   ShopTitle,
		Body:    fmt.Sprintf("Successfully purchased %s! Your pet will love it!", item),
		Tag:     PurchaseTag,
	}
}
