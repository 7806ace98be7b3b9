package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealweek/mealweek/models"
)

// Household A owns a collection with one recipe and two ingredients;
// household B edits it. B must end up with its own collection, recipe, and
// ingredient rows, with the sources untouched.
func TestForkCopiesSubtreeForNonOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	b := createHousehold(t, db, "b")
	c1 := createCollection(t, db, a, "Classics", true)
	r1 := createRecipe(t, db, c1, "Pasta Pomodoro")
	tomato := createIngredient(t, db, a, "Tomato")
	onion := createIngredient(t, db, a, "Onion")
	linkIngredient(t, db, r1, tomato)
	linkIngredient(t, db, r1, onion)

	result, err := NewForkService(db).Fork(ctx, b.ID, c1.ID, r1.ID)
	require.NoError(t, err)

	assert.True(t, result.Copied(ActionCollectionCopied))
	assert.True(t, result.Copied(ActionRecipeCopied))
	assert.NotEqual(t, c1.ID, result.CollectionID)
	assert.NotEqual(t, r1.ID, result.RecipeID)
	assert.NotEmpty(t, result.CollectionSlug)
	assert.NotEmpty(t, result.RecipeSlug)
	assert.NotEqual(t, c1.Slug, result.CollectionSlug, "slug regenerated to avoid collision")

	var newCollection models.Collection
	require.NoError(t, db.First(&newCollection, result.CollectionID).Error)
	assert.Equal(t, b.ID, newCollection.HouseholdID)
	assert.Equal(t, "Classics", newCollection.Title)
	assert.False(t, newCollection.IsPublic, "forks start private")

	// B's recipe has B-owned ingredient rows, never A's.
	var rows []models.RecipeIngredient
	require.NoError(t, db.Preload("Ingredient").Where("recipe_id = ?", result.RecipeID).Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, b.ID, row.Ingredient.HouseholdID)
		assert.NotEqual(t, tomato.ID, row.IngredientID)
		assert.NotEqual(t, onion.ID, row.IngredientID)
	}

	// Source rows unchanged.
	var sourceRows []models.RecipeIngredient
	require.NoError(t, db.Where("recipe_id = ?", r1.ID).Find(&sourceRows).Error)
	assert.Len(t, sourceRows, 2)
	var sourceRecipe models.Recipe
	require.NoError(t, db.First(&sourceRecipe, r1.ID).Error)
	assert.Equal(t, "Pasta Pomodoro", sourceRecipe.Name)
	var sourceCollection models.Collection
	require.NoError(t, db.First(&sourceCollection, c1.ID).Error)
	assert.Equal(t, a.ID, sourceCollection.HouseholdID)
}

func TestForkReusesExistingIngredientByName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	b := createHousehold(t, db, "b")
	c1 := createCollection(t, db, a, "Classics", true)
	r1 := createRecipe(t, db, c1, "Salad")
	linkIngredient(t, db, r1, createIngredient(t, db, a, "Tomato"))

	// B already has an ingredient literally named Tomato.
	existing := createIngredient(t, db, b, "Tomato")

	result, err := NewForkService(db).Fork(ctx, b.ID, c1.ID, r1.ID)
	require.NoError(t, err)

	var rows []models.RecipeIngredient
	require.NoError(t, db.Where("recipe_id = ?", result.RecipeID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, existing.ID, rows[0].IngredientID, "must reuse B's Tomato, not duplicate it")

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).
		Where("household_id = ? AND name = ?", b.ID, "Tomato").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// Forking the same pair twice across independent requests must not create a
// second private copy: the second call sees B's ownership and forks nothing.
func TestForkIsIdempotentAcrossRequests(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	b := createHousehold(t, db, "b")
	c1 := createCollection(t, db, a, "Classics", true)
	r1 := createRecipe(t, db, c1, "Stew")
	linkIngredient(t, db, r1, createIngredient(t, db, a, "Carrot"))

	svc := NewForkService(db)
	first, err := svc.Fork(ctx, b.ID, c1.ID, r1.ID)
	require.NoError(t, err)
	require.True(t, first.Copied(ActionRecipeCopied))

	// Second mutation goes through B's own forked context.
	second, err := svc.Fork(ctx, b.ID, first.CollectionID, first.RecipeID)
	require.NoError(t, err)
	assert.Empty(t, second.Actions, "nothing further to fork")
	assert.Equal(t, first.CollectionID, second.CollectionID)
	assert.Equal(t, first.RecipeID, second.RecipeID)

	var collections int64
	require.NoError(t, db.Model(&models.Collection{}).
		Where("household_id = ?", b.ID).Count(&collections).Error)
	assert.Equal(t, int64(1), collections)
	var recipes int64
	require.NoError(t, db.Model(&models.CollectionRecipe{}).
		Joins("JOIN collections ON collections.id = collection_recipes.collection_id").
		Where("collections.household_id = ?", b.ID).Count(&recipes).Error)
	assert.Equal(t, int64(1), recipes)
}

func TestForkSkipsCollectionCopyForOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	c1 := createCollection(t, db, a, "Mine", false)
	r1 := createRecipe(t, db, c1, "Omelette")

	result, err := NewForkService(db).Fork(ctx, a.ID, c1.ID, r1.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Actions)
	assert.Equal(t, c1.ID, result.CollectionID)
	assert.Equal(t, r1.ID, result.RecipeID)
}

func TestForkCollectionOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	b := createHousehold(t, db, "b")
	c1 := createCollection(t, db, a, "Shared Looks", true)

	result, err := NewForkService(db).Fork(ctx, b.ID, c1.ID, 0)
	require.NoError(t, err)
	assert.True(t, result.Copied(ActionCollectionCopied))
	assert.Zero(t, result.RecipeID)
}

func TestForkInvisibleContentIsNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createHousehold(t, db, "a")
	b := createHousehold(t, db, "b")
	private := createCollection(t, db, a, "Secret", false)
	recipe := createRecipe(t, db, private, "Hidden")

	svc := NewForkService(db)
	_, err := svc.Fork(ctx, b.ID, private.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound, "unreadable content looks absent")

	_, err = svc.Fork(ctx, b.ID, 999, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
