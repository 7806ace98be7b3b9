package services

import (
	"context"
	"errors"

	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/models"

	"gorm.io/gorm"
)

// EntityKind names the entity types the ownership index understands.
type EntityKind string

const (
	KindCollection EntityKind = "collection"
	KindRecipe     EntityKind = "recipe"
)

// OwnershipService answers "does household H own entity E" and "may H read
// entity E". Every answer is derived from current relational state on every
// call; nothing is cached across requests because ownership can change
// between them. A missing entity answers false, never an error.
type OwnershipService struct {
	DB *gorm.DB
}

func NewOwnershipService(db *gorm.DB) *OwnershipService {
	return &OwnershipService{DB: db}
}

// CanEdit reports whether the household owns the entity. For a recipe,
// ownership means the household owns at least one collection the recipe is
// currently linked into.
func (s *OwnershipService) CanEdit(ctx context.Context, householdID uint, kind EntityKind, entityID uint) bool {
	switch kind {
	case KindCollection:
		return s.ownsCollection(ctx, s.DB, householdID, entityID)
	case KindRecipe:
		return s.ownsRecipe(ctx, s.DB, householdID, entityID)
	default:
		return false
	}
}

// CanRead reports whether the household may view the entity: owner,
// subscriber, or anyone for public collections. A recipe is readable when any
// collection it is linked into is readable.
func (s *OwnershipService) CanRead(ctx context.Context, householdID uint, kind EntityKind, entityID uint) bool {
	switch kind {
	case KindCollection:
		return s.readableCollection(ctx, s.DB, householdID, entityID)
	case KindRecipe:
		var ids []uint
		err := s.DB.WithContext(ctx).Model(&models.CollectionRecipe{}).
			Where("recipe_id = ?", entityID).
			Pluck("collection_id", &ids).Error
		if err != nil {
			logger.Warn("ownership: recipe membership lookup failed", "recipe_id", entityID, "error", err)
			return false
		}
		for _, id := range ids {
			if s.readableCollection(ctx, s.DB, householdID, id) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ValidateMembership reports whether the recipe is currently linked into the
// collection and the household has read access to that collection.
func (s *OwnershipService) ValidateMembership(ctx context.Context, recipeID, collectionID, householdID uint) bool {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.CollectionRecipe{}).
		Where("recipe_id = ? AND collection_id = ?", recipeID, collectionID).
		Count(&count).Error
	if err != nil {
		logger.Warn("ownership: membership check failed", "recipe_id", recipeID, "collection_id", collectionID, "error", err)
		return false
	}
	if count == 0 {
		return false
	}
	return s.readableCollection(ctx, s.DB, householdID, collectionID)
}

func (s *OwnershipService) ownsCollection(ctx context.Context, db *gorm.DB, householdID, collectionID uint) bool {
	var collection models.Collection
	err := db.WithContext(ctx).Select("id", "household_id").First(&collection, collectionID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("ownership: collection lookup failed", "collection_id", collectionID, "error", err)
		}
		return false
	}
	return collection.HouseholdID == householdID
}

func (s *OwnershipService) ownsRecipe(ctx context.Context, db *gorm.DB, householdID, recipeID uint) bool {
	var count int64
	err := db.WithContext(ctx).Model(&models.CollectionRecipe{}).
		Joins("JOIN collections ON collections.id = collection_recipes.collection_id").
		Where("collection_recipes.recipe_id = ? AND collections.household_id = ?", recipeID, householdID).
		Count(&count).Error
	if err != nil {
		logger.Warn("ownership: recipe ownership lookup failed", "recipe_id", recipeID, "error", err)
		return false
	}
	return count > 0
}

func (s *OwnershipService) readableCollection(ctx context.Context, db *gorm.DB, householdID, collectionID uint) bool {
	var collection models.Collection
	err := db.WithContext(ctx).Select("id", "household_id", "is_public").First(&collection, collectionID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("ownership: collection lookup failed", "collection_id", collectionID, "error", err)
		}
		return false
	}
	if collection.IsPublic || collection.HouseholdID == householdID {
		return true
	}
	var subs int64
	err = db.WithContext(ctx).Model(&models.Subscription{}).
		Where("household_id = ? AND collection_id = ?", householdID, collectionID).
		Count(&subs).Error
	if err != nil {
		logger.Warn("ownership: subscription lookup failed", "collection_id", collectionID, "error", err)
		return false
	}
	return subs > 0
}
