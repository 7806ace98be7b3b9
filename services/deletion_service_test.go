package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mealweek/mealweek/models"
)

func TestDeleteBlockedByActivePlans(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := createHousehold(t, db, "h")
	c := createCollection(t, db, h, "Mine", false)
	r := createRecipe(t, db, c, "Curry")
	ri := linkIngredient(t, db, r, createIngredient(t, db, h, "Rice"))
	require.NoError(t, db.Create(&models.PlanEntry{HouseholdID: h.ID, RecipeID: r.ID, Week: 12, Year: 2026}).Error)
	// Plan block holds regardless of shopping history.
	require.NoError(t, db.Create(&models.ShoppingListEntry{HouseholdID: h.ID, RecipeIngredientID: ri.ID}).Error)

	_, err := NewDeletionService(db, nil).Delete(ctx, h.ID, c.ID, r.ID)
	var planErr *ActivePlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, int64(1), planErr.Count)

	// Nothing was touched.
	var recipe models.Recipe
	require.NoError(t, db.First(&recipe, r.ID).Error)
	assert.False(t, recipe.Archived)
}

// The plan block is global: a reader household planning the recipe stops the
// owner's delete, otherwise the reader's week would reference a deleted row.
func TestDeleteBlockedByOtherHouseholdsPlan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	b := createHousehold(t, db, "b")
	c := createCollection(t, db, a, "Shared", true)
	r := createRecipe(t, db, c, "Paella")
	require.NoError(t, db.Create(&models.PlanEntry{HouseholdID: b.ID, RecipeID: r.ID, Week: 30, Year: 2026}).Error)

	_, err := NewDeletionService(db, nil).Delete(ctx, a.ID, c.ID, r.ID)
	var planErr *ActivePlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, int64(1), planErr.Count)

	// Recipe and the other household's plan entry both survive.
	require.NoError(t, db.First(&models.Recipe{}, r.ID).Error)
	var plans int64
	require.NoError(t, db.Model(&models.PlanEntry{}).Where("recipe_id = ?", r.ID).Count(&plans).Error)
	assert.Equal(t, int64(1), plans)
}

func TestDeleteArchivesWhenShoppingHistoryExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := createHousehold(t, db, "h")
	c := createCollection(t, db, h, "Mine", false)
	r := createRecipe(t, db, c, "Chili")
	ri := linkIngredient(t, db, r, createIngredient(t, db, h, "Beans"))
	require.NoError(t, db.Create(&models.ShoppingListEntry{HouseholdID: h.ID, RecipeIngredientID: ri.ID}).Error)

	result, err := NewDeletionService(db, nil).Delete(ctx, h.ID, c.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, result.Archived)
	assert.Empty(t, result.DeletedIngredients)

	// Row survives flagged, unlinked from the household's collections.
	var recipe models.Recipe
	require.NoError(t, db.First(&recipe, r.ID).Error)
	assert.True(t, recipe.Archived)
	var memberships int64
	require.NoError(t, db.Model(&models.CollectionRecipe{}).Where("recipe_id = ?", r.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)

	// Ingredient and join rows stay so shopping history resolves.
	var joinRows int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", r.ID).Count(&joinRows).Error)
	assert.Equal(t, int64(1), joinRows)
}

func TestHardDeleteSweepsOrphanedIngredients(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := createHousehold(t, db, "h")
	c := createCollection(t, db, h, "Mine", false)
	r := createRecipe(t, db, c, "Soup")
	leek := createIngredient(t, db, h, "Leek")
	potato := createIngredient(t, db, h, "Potato")
	linkIngredient(t, db, r, leek)
	linkIngredient(t, db, r, potato)

	// Potato is also used by another recipe and must survive.
	other := createRecipe(t, db, c, "Mash")
	linkIngredient(t, db, other, potato)

	result, err := NewDeletionService(db, nil).Delete(ctx, h.ID, c.ID, r.ID)
	require.NoError(t, err)
	assert.False(t, result.Archived)
	assert.Equal(t, []string{"Leek"}, result.DeletedIngredients)

	assert.ErrorIs(t, db.First(&models.Recipe{}, r.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.First(&models.Ingredient{}, leek.ID).Error, gorm.ErrRecordNotFound)
	require.NoError(t, db.First(&models.Ingredient{}, potato.ID).Error)

	var joinRows int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", r.ID).Count(&joinRows).Error)
	assert.Zero(t, joinRows)
	var memberships int64
	require.NoError(t, db.Model(&models.CollectionRecipe{}).Where("recipe_id = ?", r.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)
}

// An ingredient referenced by shopping history through another recipe's join
// row survives the sweep even when its last recipe link disappears elsewhere.
func TestSweepKeepsIngredientWithShoppingHistoryElsewhere(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := createHousehold(t, db, "h")
	c := createCollection(t, db, h, "Mine", false)
	doomed := createRecipe(t, db, c, "Doomed")
	keeper := createRecipe(t, db, c, "Keeper")
	garlic := createIngredient(t, db, h, "Garlic")
	linkIngredient(t, db, doomed, garlic)
	keeperJoin := linkIngredient(t, db, keeper, garlic)
	require.NoError(t, db.Create(&models.ShoppingListEntry{HouseholdID: h.ID, RecipeIngredientID: keeperJoin.ID}).Error)

	result, err := NewDeletionService(db, nil).Delete(ctx, h.ID, c.ID, doomed.ID)
	require.NoError(t, err)
	assert.False(t, result.Archived)
	assert.Empty(t, result.DeletedIngredients, "garlic still referenced by the keeper recipe")
	require.NoError(t, db.First(&models.Ingredient{}, garlic.ID).Error)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	b := createHousehold(t, db, "b")
	c := createCollection(t, db, a, "Public", true)
	r := createRecipe(t, db, c, "Visible")

	svc := NewDeletionService(db, nil)
	_, err := svc.Delete(ctx, b.ID, c.ID, r.ID)
	assert.ErrorIs(t, err, ErrNotOwned, "read access is not delete access")

	_, err = svc.Delete(ctx, b.ID, 999, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
