package domain

import "errors"

// AccessoryID identifies a catalog entry.
type AccessoryID int64

// Category groups accessories in the shop.
type Category string

const (
	CategoryHats        Category = "hats"
	CategoryToys        Category = "toys"
	CategoryClothes     Category = "clothes"
	CategoryAccessories Category = "accessories"
)

var (
	ErrUnknownAccessory = errors.New("accessory not found in catalog")
	ErrUnknownCategory  = errors.New("accessory category is not supported")
)

// Accessory is a purchasable cosmetic item.
type Accessory struct {
	ID          AccessoryID
	Name        string
	Category    Category
	Price       int
	Description string
	Icon        string
}

var catalog = []Accessory{
	{ID: 1, Name: "Bow Tie", Category: CategoryClothes, Price: 50, Description: "A fancy red bow tie for your pet", Icon: "🎀"},
	{ID: 2, Name: "Hat", Category: CategoryHats, Price: 75, Description: "A cute hat for your pet", Icon: "🎩"},
	{ID: 3, Name: "Glasses", Category: CategoryAccessories, Price: 100, Description: "Cool sunglasses for your pet", Icon: "🕶️"},
	{ID: 4, Name: "Collar", Category: CategoryAccessories, Price: 25, Description: "A stylish collar", Icon: "🔗"},
	{ID: 5, Name: "Bandana", Category: CategoryClothes, Price: 30, Description: "A colorful bandana", Icon: "🧣"},
	{ID: 6, Name: "Crown", Category: CategoryHats, Price: 200, Description: "A royal crown for your pet", Icon: "👑"},
	{ID: 7, Name: "Wings", Category: CategoryToys, Price: 150, Description: "Magical wings for your pet", Icon: "🦋"},
	{ID: 8, Name: "Backpack", Category: CategoryToys, Price: 80, Description: "A cute backpack for adventures", Icon: "🎒"},
}

// Valid reports whether the category exists.
func (c Category) Valid() bool {
	switch c {
	case CategoryHats, CategoryToys, CategoryClothes, CategoryAccessories:
		return true
	default:
		return false
	}
}

// Catalog returns a copy of the static accessory table.
func Catalog() []Accessory {
	return append([]Accessory(nil), catalog...)
}

// CatalogByCategory filters the catalog; an empty category returns everything.
func CatalogByCategory(category Category) ([]Accessory, error) {
	if category == "" {
		return Catalog(), nil
	}
	if !category.Valid() {
		return nil, ErrUnknownCategory
	}
	var items []Accessory
	for _, item := range catalog {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items, nil
}

// FindAccessory looks an accessory up by id.
func FindAccessory(id AccessoryID) (Accessory, error) {
	for _, item := range catalog {
		if item.ID == id {
			return item, nil
		}
	}
	return Accessory{}, ErrUnknownAccessory
}
