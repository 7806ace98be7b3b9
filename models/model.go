package models

import (
	"time"
)

// Household represents a tenant account. It is the isolation boundary for
// ingredients and write access; households are never deleted by this service.
type Household struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Collections []Collection `gorm:"foreignKey:HouseholdID" json:"collections,omitempty"`
	Ingredients []Ingredient `gorm:"foreignKey:HouseholdID" json:"ingredients,omitempty"`
}

// Collection groups recipes. Readable by its owner, by subscribers, or by
// anyone when public; mutable only by its owner.
type Collection struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HouseholdID  uint      `gorm:"not null;index" json:"household_id"` // owner
	Title        string    `gorm:"size:255;not null" json:"title"`
	Slug         string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	IsPublic     bool      `gorm:"default:false" json:"is_public"`
	ImageRef     string    `gorm:"size:255" json:"image_ref"`
	ImageRefDark string    `gorm:"size:255" json:"image_ref_dark"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Household Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}

// CollectionRecipe links a recipe into a collection. A recipe can be linked
// into several collections; its effective owner is the owner of whichever
// collection a mutation is routed through.
type CollectionRecipe struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CollectionID uint      `gorm:"not null;uniqueIndex:idx_collection_recipe" json:"collection_id"`
	RecipeID     uint      `gorm:"not null;uniqueIndex:idx_collection_recipe" json:"recipe_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subscription grants a household read access to another household's
// collection. Read access only; a subscription never grants writes and never
// triggers a fork.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	HouseholdID  uint      `gorm:"not null;uniqueIndex:idx_household_collection" json:"household_id"`
	CollectionID uint      `gorm:"not null;uniqueIndex:idx_household_collection" json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Recipe is a catalog entry. Archived recipes stay out of browse/search but
// keep their row so historical shopping entries still resolve.
type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	PrepMinutes int       `gorm:"default:0" json:"prep_minutes"`
	CookMinutes int       `gorm:"default:0" json:"cook_minutes"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	ImageRef    string    `gorm:"size:255" json:"image_ref"`
	PdfRef      string    `gorm:"size:255" json:"pdf_ref"`
	Archived    bool      `gorm:"default:false;index" json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category    *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

// Ingredient is strictly private to one household. Forking a shared recipe
// resolves or creates equivalents inside the forking household instead of
// referencing another household's rows.
type Ingredient struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	HouseholdID    uint      `gorm:"not null;uniqueIndex:idx_household_ingredient" json:"household_id"`
	Name           string    `gorm:"size:255;not null;uniqueIndex:idx_household_ingredient" json:"name"`
	PantryCategory string    `gorm:"size:100" json:"pantry_category"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RecipeIngredient joins a recipe to an ingredient with quantities for two
// and four portions.
type RecipeIngredient struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	RecipeID      uint    `gorm:"not null;index" json:"recipe_id"`
	IngredientID  uint    `gorm:"not null;index" json:"ingredient_id"`
	Quantity2P    float64 `gorm:"default:0" json:"quantity_2p"`
	Quantity4P    float64 `gorm:"default:0" json:"quantity_4p"`
	MeasureID     *uint   `gorm:"index" json:"measure_id"`
	PreparationID *uint   `gorm:"index" json:"preparation_id"`

	Ingredient  Ingredient   `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Measure     *Measure     `gorm:"foreignKey:MeasureID" json:"measure,omitempty"`
	Preparation *Preparation `gorm:"foreignKey:PreparationID" json:"preparation,omitempty"`
}

// PlanEntry schedules a recipe into a household's week. A live plan entry is
// a hard block on deleting or archiving the recipe.
type PlanEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HouseholdID uint      `gorm:"not null;index" json:"household_id"`
	RecipeID    uint      `gorm:"not null;index" json:"recipe_id"`
	Week        int       `gorm:"not null" json:"week"`
	Year        int       `gorm:"not null" json:"year"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShoppingListEntry is a historical record of an ingredient landing on a
// household's shopping list. Its existence blocks hard delete but permits
// archive.
type ShoppingListEntry struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	HouseholdID        uint      `gorm:"not null;index" json:"household_id"`
	RecipeIngredientID uint      `gorm:"not null;index" json:"recipe_ingredient_id"`
	Purchased          bool      `gorm:"default:false" json:"purchased"`
	CreatedAt          time.Time `json:"created_at"`
}

// Category classifies recipes (e.g. Chicken, Vegetarian).
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Measure is a measurement unit lookup (g, ml, tbsp).
type Measure struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

// Preparation is a preparation-style lookup (diced, sliced).
type Preparation struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}
