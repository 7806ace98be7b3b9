package controllers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/models"
	"github.com/mealweek/mealweek/services"
)

type RecipeRequest struct {
	Name string `json:"name"`
	// Pointer so an explicit empty string clears the description while an
	// omitted field leaves it alone.
	Description *string `json:"description"`
	PrepMinutes *int    `json:"prep_minutes"`
	CookMinutes *int    `json:"cook_minutes"`
	CategoryID  *uint   `json:"category_id"`
}

type RecipeUpdateResponse struct {
	Recipe       models.Recipe         `json:"recipe"`
	CollectionID uint                  `json:"collection_id"`
	Actions      []services.ForkAction `json:"actions"`
}

// GetRecipe returns one recipe with its ingredient rows, if readable through
// the given collection.
func GetRecipe(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	collectionID, ok1 := urlID(r, "collection_id")
	recipeID, ok2 := urlID(r, "recipe_id")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	ownership := services.NewOwnershipService(database.DB)
	if !ownership.ValidateMembership(r.Context(), recipeID, collectionID, householdID) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	var recipe models.Recipe
	err := database.DB.WithContext(r.Context()).
		Preload("Category").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Preload("Ingredients.Measure").
		Preload("Ingredients.Preparation").
		First(&recipe, recipeID).Error
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// CreateRecipe adds a recipe to one of the household's own collections.
func CreateRecipe(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	collectionID, ok := urlID(r, "collection_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid collection id")
		return
	}
	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	ownership := services.NewOwnershipService(database.DB)
	if !ownership.CanEdit(r.Context(), householdID, services.KindCollection, collectionID) {
		writeError(w, http.StatusForbidden, "Not owned by household")
		return
	}

	recipe := models.Recipe{
		Name:       req.Name,
		Slug:       services.NewSlug(req.Name),
		CategoryID: req.CategoryID,
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.PrepMinutes != nil {
		recipe.PrepMinutes = *req.PrepMinutes
	}
	if req.CookMinutes != nil {
		recipe.CookMinutes = *req.CookMinutes
	}
	err := database.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		membership := models.CollectionRecipe{CollectionID: collectionID, RecipeID: recipe.ID}
		return tx.Create(&membership).Error
	})
	if err != nil {
		logger.Error("Failed to create recipe", "collection_id", collectionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// UpdateRecipe edits recipe fields through a collection context. Owners edit
// in place; a non-owner with read access gets a private fork first and the
// edit is redirected to the forked copy.
func UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	collectionID, ok1 := urlID(r, "collection_id")
	recipeID, ok2 := urlID(r, "recipe_id")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownership := services.NewOwnershipService(database.DB)
	targetCollection, targetRecipe := collectionID, recipeID
	actions := []services.ForkAction{}

	ownsContext := ownership.CanEdit(r.Context(), householdID, services.KindCollection, collectionID) &&
		ownership.ValidateMembership(r.Context(), recipeID, collectionID, householdID)
	if !ownsContext {
		fork, err := services.NewForkService(database.DB).Fork(r.Context(), householdID, collectionID, recipeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		targetCollection, targetRecipe = fork.CollectionID, fork.RecipeID
		actions = fork.Actions
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PrepMinutes != nil {
		updates["prep_minutes"] = *req.PrepMinutes
	}
	if req.CookMinutes != nil {
		updates["cook_minutes"] = *req.CookMinutes
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if len(updates) > 0 {
		err := database.DB.WithContext(r.Context()).
			Model(&models.Recipe{}).
			Where("id = ?", targetRecipe).
			Updates(updates).Error
		if err != nil {
			logger.Error("Failed to update recipe", "recipe_id", targetRecipe, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal error")
			return
		}
	}

	var recipe models.Recipe
	if err := database.DB.WithContext(r.Context()).First(&recipe, targetRecipe).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, RecipeUpdateResponse{
		Recipe:       recipe,
		CollectionID: targetCollection,
		Actions:      actions,
	})
}

// DeleteRecipe removes a recipe from the household's catalog. Plan entries
// block it, shopping history downgrades it to an archive, otherwise the
// recipe and its newly orphaned ingredients are deleted.
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	collectionID, ok1 := urlID(r, "collection_id")
	recipeID, ok2 := urlID(r, "recipe_id")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	deletion := services.NewDeletionService(database.DB, assets)
	result, err := deletion.Delete(r.Context(), householdID, collectionID, recipeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
