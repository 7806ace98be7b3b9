package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnershipCollectionAccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewOwnershipService(db)

	owner := createHousehold(t, db, "owner")
	reader := createHousehold(t, db, "reader")
	stranger := createHousehold(t, db, "stranger")

	private := createCollection(t, db, owner, "Family Favourites", false)
	public := createCollection(t, db, owner, "Everyone Eats", true)
	subscribe(t, db, reader, private)

	assert.True(t, svc.CanEdit(ctx, owner.ID, KindCollection, private.ID))
	assert.False(t, svc.CanEdit(ctx, reader.ID, KindCollection, private.ID), "subscription never grants writes")
	assert.False(t, svc.CanEdit(ctx, stranger.ID, KindCollection, public.ID), "public never grants writes")

	assert.True(t, svc.CanRead(ctx, owner.ID, KindCollection, private.ID))
	assert.True(t, svc.CanRead(ctx, reader.ID, KindCollection, private.ID), "subscriber can read")
	assert.False(t, svc.CanRead(ctx, stranger.ID, KindCollection, private.ID))
	assert.True(t, svc.CanRead(ctx, stranger.ID, KindCollection, public.ID), "public readable by anyone")
}

func TestOwnershipRecipeAccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewOwnershipService(db)

	owner := createHousehold(t, db, "owner")
	other := createHousehold(t, db, "other")
	collection := createCollection(t, db, owner, "Weeknight", false)
	recipe := createRecipe(t, db, collection, "Lasagna")

	assert.True(t, svc.CanEdit(ctx, owner.ID, KindRecipe, recipe.ID))
	assert.False(t, svc.CanEdit(ctx, other.ID, KindRecipe, recipe.ID))
	assert.True(t, svc.CanRead(ctx, owner.ID, KindRecipe, recipe.ID))
	assert.False(t, svc.CanRead(ctx, other.ID, KindRecipe, recipe.ID))

	subscribe(t, db, other, collection)
	assert.True(t, svc.CanRead(ctx, other.ID, KindRecipe, recipe.ID), "readable via subscribed collection")
	assert.False(t, svc.CanEdit(ctx, other.ID, KindRecipe, recipe.ID))
}

func TestOwnershipMissingEntityIsFalse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewOwnershipService(db)
	h := createHousehold(t, db, "h")

	assert.False(t, svc.CanEdit(ctx, h.ID, KindCollection, 999))
	assert.False(t, svc.CanRead(ctx, h.ID, KindCollection, 999))
	assert.False(t, svc.CanEdit(ctx, h.ID, KindRecipe, 999))
	assert.False(t, svc.CanRead(ctx, h.ID, KindRecipe, 999))
	assert.False(t, svc.CanEdit(ctx, h.ID, EntityKind("bogus"), 1))
	assert.False(t, svc.ValidateMembership(ctx, 999, 999, h.ID))
}

func TestValidateMembership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewOwnershipService(db)

	owner := createHousehold(t, db, "owner")
	other := createHousehold(t, db, "other")
	collection := createCollection(t, db, owner, "Soups", true)
	unrelated := createCollection(t, db, owner, "Desserts", true)
	recipe := createRecipe(t, db, collection, "Minestrone")

	assert.True(t, svc.ValidateMembership(ctx, recipe.ID, collection.ID, owner.ID))
	assert.True(t, svc.ValidateMembership(ctx, recipe.ID, collection.ID, other.ID), "public collection is readable")
	assert.False(t, svc.ValidateMembership(ctx, recipe.ID, unrelated.ID, owner.ID), "recipe not linked into that collection")
}
