package services

import (
	"context"
	"errors"

	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/metrics"
	"github.com/mealweek/mealweek/models"

	"gorm.io/gorm"
)

// ForkAction records which copies a fork actually made. The set is only used
// for user-facing messaging, never for control flow.
type ForkAction string

const (
	ActionCollectionCopied ForkAction = "collection_copied"
	ActionRecipeCopied     ForkAction = "recipe_copied"
)

// ForkResult carries the identifiers the caller must redirect its mutation
// to, plus the copies that were made along the way.
type ForkResult struct {
	CollectionID   uint         `json:"collection_id"`
	RecipeID       uint         `json:"recipe_id,omitempty"`
	CollectionSlug string       `json:"collection_slug,omitempty"`
	RecipeSlug     string       `json:"recipe_slug,omitempty"`
	Actions        []ForkAction `json:"actions"`
}

// Copied reports whether the given action was taken.
func (r *ForkResult) Copied(action ForkAction) bool {
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// ForkService implements copy-on-write for shared catalog content. When a
// household mutates a collection or recipe it does not own, Fork produces a
// private copy of the minimal subtree and the mutation is redirected there.
// The source is never touched.
type ForkService struct {
	DB *gorm.DB
}

func NewForkService(db *gorm.DB) *ForkService {
	return &ForkService{DB: db}
}

// Fork copies collectionID (and recipeID, when non-zero) into the household
// unless the household already owns them. Runs in one transaction so a caller
// never observes a half-forked recipe. Pass recipeID 0 for a collection-only
// fork. Already-owned entities are returned as-is, which makes a second fork
// of the same pair a no-op. Re-submitting the original source ids after a
// fork creates another independent copy; follow-up mutations must be routed
// through the ids the first fork returned.
func (s *ForkService) Fork(ctx context.Context, householdID, collectionID, recipeID uint) (*ForkResult, error) {
	result := &ForkResult{Actions: []ForkAction{}}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownership := NewOwnershipService(tx)

		var source models.Collection
		if err := tx.First(&source, collectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		// Content the household cannot even read is indistinguishable
		// from content that does not exist.
		if !ownership.CanRead(ctx, householdID, KindCollection, collectionID) {
			return ErrNotFound
		}

		target := source
		if source.HouseholdID != householdID {
			target = models.Collection{
				HouseholdID:  householdID,
				Title:        source.Title,
				Slug:         NewSlug(source.Title),
				IsPublic:     false,
				ImageRef:     source.ImageRef,
				ImageRefDark: source.ImageRefDark,
			}
			if err := tx.Create(&target).Error; err != nil {
				return err
			}
			result.Actions = append(result.Actions, ActionCollectionCopied)
			result.CollectionSlug = target.Slug
		}
		result.CollectionID = target.ID

		if recipeID == 0 {
			return nil
		}

		if !ownership.ValidateMembership(ctx, recipeID, collectionID, householdID) {
			return ErrNotFound
		}
		if ownership.CanEdit(ctx, householdID, KindRecipe, recipeID) {
			result.RecipeID = recipeID
			return nil
		}

		var sourceRecipe models.Recipe
		if err := tx.First(&sourceRecipe, recipeID).Error; err != nil {
			return err
		}
		newRecipe := models.Recipe{
			Name:        sourceRecipe.Name,
			Slug:        NewSlug(sourceRecipe.Name),
			Description: sourceRecipe.Description,
			PrepMinutes: sourceRecipe.PrepMinutes,
			CookMinutes: sourceRecipe.CookMinutes,
			CategoryID:  sourceRecipe.CategoryID,
			ImageRef:    sourceRecipe.ImageRef,
			PdfRef:      sourceRecipe.PdfRef,
		}
		if err := tx.Create(&newRecipe).Error; err != nil {
			return err
		}
		membership := models.CollectionRecipe{CollectionID: target.ID, RecipeID: newRecipe.ID}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		if err := s.copyIngredients(tx, householdID, sourceRecipe.ID, newRecipe.ID); err != nil {
			return err
		}
		result.Actions = append(result.Actions, ActionRecipeCopied)
		result.RecipeID = newRecipe.ID
		result.RecipeSlug = newRecipe.Slug
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Copied(ActionCollectionCopied) {
		metrics.CollectionsForked.Inc()
	}
	if result.Copied(ActionRecipeCopied) {
		metrics.RecipesForked.Inc()
	}
	logger.Info("fork completed",
		"household_id", householdID,
		"collection_id", result.CollectionID,
		"recipe_id", result.RecipeID,
		"actions", result.Actions)
	return result, nil
}

// copyIngredients rebuilds the source recipe's ingredient list on the new
// recipe. Ingredients are strictly household-private, so each source
// ingredient is resolved by name inside the forking household's catalog and
// created there when absent. Quantities, measure and preparation carry over.
func (s *ForkService) copyIngredients(tx *gorm.DB, householdID, sourceRecipeID, newRecipeID uint) error {
	var rows []models.RecipeIngredient
	if err := tx.Preload("Ingredient").Where("recipe_id = ?", sourceRecipeID).Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		owned, err := s.resolveIngredient(tx, householdID, row.Ingredient)
		if err != nil {
			return err
		}
		copied := models.RecipeIngredient{
			RecipeID:      newRecipeID,
			IngredientID:  owned.ID,
			Quantity2P:    row.Quantity2P,
			Quantity4P:    row.Quantity4P,
			MeasureID:     row.MeasureID,
			PreparationID: row.PreparationID,
		}
		if err := tx.Create(&copied).Error; err != nil {
			return err
		}
	}
	return nil
}

// resolveIngredient finds the household's ingredient with the same name, or
// creates one mirroring the source.
func (s *ForkService) resolveIngredient(tx *gorm.DB, householdID uint, source models.Ingredient) (*models.Ingredient, error) {
	var existing models.Ingredient
	err := tx.Where("household_id = ? AND LOWER(name) = LOWER(?)", householdID, source.Name).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := models.Ingredient{
		HouseholdID:    householdID,
		Name:           source.Name,
		PantryCategory: source.PantryCategory,
	}
	if err := tx.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}
