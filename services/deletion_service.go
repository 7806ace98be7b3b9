package services

import (
	"context"
	"errors"

	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/metrics"
	"github.com/mealweek/mealweek/models"

	"gorm.io/gorm"
)

// DeleteResult summarizes what a delete actually did.
type DeleteResult struct {
	Archived bool `json:"archived"`
	// DeletedIngredients lists ingredient names removed by the orphan
	// sweep, for the caller's summary message.
	DeletedIngredients []string `json:"deleted_ingredients"`
	// Warnings carries non-fatal post-commit cleanup failures. The
	// database is consistent even when these are present.
	Warnings []string `json:"warnings,omitempty"`
}

// DeletionService removes recipes without breaking referential integrity.
// Live plan entries block the delete outright; shopping history downgrades it
// to an archive; otherwise join rows, the recipe row, and newly orphaned
// ingredients are removed in one transaction. Blob cleanup runs strictly
// after commit and is best-effort.
type DeletionService struct {
	DB     *gorm.DB
	Assets *AssetService
}

func NewDeletionService(db *gorm.DB, assets *AssetService) *DeletionService {
	return &DeletionService{DB: db, Assets: assets}
}

// Delete removes recipeID from the household's catalog, routed through the
// collection the household is operating on. Returns ErrNotFound when the pair
// is invisible to the household, ErrNotOwned when the household does not own
// the collection context, and *ActivePlanError while plan entries exist in
// any household.
func (s *DeletionService) Delete(ctx context.Context, householdID, collectionID, recipeID uint) (*DeleteResult, error) {
	result := &DeleteResult{DeletedIngredients: []string{}}
	var outcome Outcome
	var recipe models.Recipe

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownership := NewOwnershipService(tx)

		if !ownership.ValidateMembership(ctx, recipeID, collectionID, householdID) {
			return ErrNotFound
		}
		if !ownership.CanEdit(ctx, householdID, KindCollection, collectionID) {
			return ErrNotOwned
		}
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Plan entries block regardless of which household planned them;
		// a subscriber's planned week must never point at a deleted recipe.
		var plans int64
		if err := tx.Model(&models.PlanEntry{}).
			Where("recipe_id = ?", recipeID).
			Count(&plans).Error; err != nil {
			return err
		}
		// Counted inside the transaction so a shopping entry inserted
		// concurrently flips the outcome to archive instead of leaving
		// a dangling reference.
		shopping, err := s.countShoppingRefs(tx, householdID, recipeID)
		if err != nil {
			return err
		}

		outcome = DecideOutcome(plans, shopping)
		switch outcome {
		case OutcomeBlocked:
			return &ActivePlanError{Count: plans}
		case OutcomeArchived:
			return s.archive(tx, householdID, &recipe)
		default:
			return s.hardDelete(tx, householdID, &recipe, result)
		}
	})
	if err != nil {
		return nil, err
	}

	result.Archived = outcome == OutcomeArchived
	if result.Archived {
		metrics.RecipesArchived.Inc()
	} else {
		metrics.RecipesDeleted.Inc()
		// The rows are gone; now reclaim the recipe's blobs. Failure here
		// must never surface as a failed delete.
		s.cleanupAssets(ctx, &recipe, result)
	}
	logger.Info("recipe delete finished",
		"household_id", householdID,
		"recipe_id", recipeID,
		"outcome", outcome,
		"ingredients_swept", len(result.DeletedIngredients))
	return result, nil
}

// countShoppingRefs counts the household's shopping entries that point at any
// of the recipe's ingredient rows.
func (s *DeletionService) countShoppingRefs(tx *gorm.DB, householdID, recipeID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.ShoppingListEntry{}).
		Joins("JOIN recipe_ingredients ON recipe_ingredients.id = shopping_list_entries.recipe_ingredient_id").
		Where("shopping_list_entries.household_id = ? AND recipe_ingredients.recipe_id = ?", householdID, recipeID).
		Count(&count).Error
	return count, err
}

// archive unlinks the recipe from the household's collections and flags it.
// The recipe row and its ingredient rows stay so shopping history resolves.
func (s *DeletionService) archive(tx *gorm.DB, householdID uint, recipe *models.Recipe) error {
	err := tx.Where("recipe_id = ? AND collection_id IN (?)",
		recipe.ID,
		tx.Model(&models.Collection{}).Select("id").Where("household_id = ?", householdID),
	).Delete(&models.CollectionRecipe{}).Error
	if err != nil {
		return err
	}
	return tx.Model(recipe).Update("archived", true).Error
}

// hardDelete removes join rows, the recipe row, and then every ingredient the
// recipe referenced that nothing else references anymore. Ordering matters:
// children before parent before orphan sweep.
func (s *DeletionService) hardDelete(tx *gorm.DB, householdID uint, recipe *models.Recipe, result *DeleteResult) error {
	var rows []models.RecipeIngredient
	if err := tx.Where("recipe_id = ?", recipe.ID).Find(&rows).Error; err != nil {
		return err
	}
	ingredientIDs := make([]uint, 0, len(rows))
	seen := make(map[uint]bool, len(rows))
	for _, row := range rows {
		if !seen[row.IngredientID] {
			seen[row.IngredientID] = true
			ingredientIDs = append(ingredientIDs, row.IngredientID)
		}
	}

	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CollectionRecipe{}).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
		return err
	}

	for _, id := range ingredientIDs {
		name, deleted, err := s.sweepIngredient(tx, householdID, id)
		if err != nil {
			return err
		}
		if deleted {
			result.DeletedIngredients = append(result.DeletedIngredients, name)
		}
	}
	metrics.IngredientsSwept.Add(float64(len(result.DeletedIngredients)))
	return nil
}

// sweepIngredient deletes the ingredient when its reference count has dropped
// to zero: no remaining recipe_ingredient row and no shopping entry in the
// household still pointing at one of its join rows.
func (s *DeletionService) sweepIngredient(tx *gorm.DB, householdID, ingredientID uint) (string, bool, error) {
	var ingredient models.Ingredient
	if err := tx.First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	var recipeRefs int64
	if err := tx.Model(&models.RecipeIngredient{}).
		Where("ingredient_id = ?", ingredientID).
		Count(&recipeRefs).Error; err != nil {
		return "", false, err
	}
	var shoppingRefs int64
	err := tx.Model(&models.ShoppingListEntry{}).
		Joins("JOIN recipe_ingredients ON recipe_ingredients.id = shopping_list_entries.recipe_ingredient_id").
		Where("shopping_list_entries.household_id = ? AND recipe_ingredients.ingredient_id = ?", householdID, ingredientID).
		Count(&shoppingRefs).Error
	if err != nil {
		return "", false, err
	}
	if recipeRefs > 0 || shoppingRefs > 0 {
		return "", false, nil
	}
	if err := tx.Delete(&models.Ingredient{}, ingredientID).Error; err != nil {
		return "", false, err
	}
	return ingredient.Name, true, nil
}

// cleanupAssets sweeps the deleted recipe's image and pdf blobs. Errors are
// downgraded to warnings on the result.
func (s *DeletionService) cleanupAssets(ctx context.Context, recipe *models.Recipe, result *DeleteResult) {
	if s.Assets == nil {
		return
	}
	for _, ref := range []string{recipe.ImageRef, recipe.PdfRef} {
		if ref == "" {
			continue
		}
		if warn := s.Assets.CleanupRef(ctx, ref); warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}
	}
}
