package services

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/models"
)

// newTestDB opens a fresh in-memory SQLite database with the full schema.
// Each test gets its own named shared-cache database so GORM's connection
// pool sees the same data on every connection.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func bytesReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}

func createHousehold(t *testing.T, db *gorm.DB, name string) *models.Household {
	t.Helper()
	h := &models.Household{Name: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(h).Error)
	return h
}

func createCollection(t *testing.T, db *gorm.DB, owner *models.Household, title string, public bool) *models.Collection {
	t.Helper()
	c := &models.Collection{
		HouseholdID: owner.ID,
		Title:       title,
		Slug:        NewSlug(title),
		IsPublic:    public,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func createRecipe(t *testing.T, db *gorm.DB, collection *models.Collection, name string) *models.Recipe {
	t.Helper()
	r := &models.Recipe{Name: name, Slug: NewSlug(name), Description: "test recipe"}
	require.NoError(t, db.Create(r).Error)
	require.NoError(t, db.Create(&models.CollectionRecipe{
		CollectionID: collection.ID,
		RecipeID:     r.ID,
	}).Error)
	return r
}

func createIngredient(t *testing.T, db *gorm.DB, owner *models.Household, name string) *models.Ingredient {
	t.Helper()
	i := &models.Ingredient{HouseholdID: owner.ID, Name: name}
	require.NoError(t, db.Create(i).Error)
	return i
}

func linkIngredient(t *testing.T, db *gorm.DB, recipe *models.Recipe, ingredient *models.Ingredient) *models.RecipeIngredient {
	t.Helper()
	ri := &models.RecipeIngredient{
		RecipeID:     recipe.ID,
		IngredientID: ingredient.ID,
		Quantity2P:   1,
		Quantity4P:   2,
	}
	require.NoError(t, db.Create(ri).Error)
	return ri
}

func subscribe(t *testing.T, db *gorm.DB, household *models.Household, collection *models.Collection) {
	t.Helper()
	require.NoError(t, db.Create(&models.Subscription{
		HouseholdID:  household.ID,
		CollectionID: collection.ID,
	}).Error)
}
