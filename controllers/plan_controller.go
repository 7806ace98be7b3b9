package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/models"
	"github.com/mealweek/mealweek/services"
)

type PlanEntryRequest struct {
	RecipeID uint `json:"recipe_id"`
	Week     int  `json:"week"`
	Year     int  `json:"year"`
}

type ShoppingEntryRequest struct {
	RecipeIngredientID uint `json:"recipe_ingredient_id"`
}

// AddPlanEntry schedules a recipe into the household's week. The recipe must
// be readable; while the entry exists the recipe cannot be deleted.
func AddPlanEntry(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req PlanEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecipeID == 0 || req.Week < 1 || req.Week > 53 {
		writeError(w, http.StatusBadRequest, "Invalid plan entry")
		return
	}

	ownership := services.NewOwnershipService(database.DB)
	if !ownership.CanRead(r.Context(), householdID, services.KindRecipe, req.RecipeID) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	entry := models.PlanEntry{
		HouseholdID: householdID,
		RecipeID:    req.RecipeID,
		Week:        req.Week,
		Year:        req.Year,
	}
	if err := database.DB.WithContext(r.Context()).Create(&entry).Error; err != nil {
		logger.Error("Failed to create plan entry", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// RemovePlanEntry deletes one of the household's plan entries.
func RemovePlanEntry(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	entryID, ok := urlID(r, "entry_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	res := database.DB.WithContext(r.Context()).
		Where("id = ? AND household_id = ?", entryID, householdID).
		Delete(&models.PlanEntry{})
	if res.Error != nil {
		logger.Error("Failed to delete plan entry", "entry_id", entryID, "error", res.Error)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// AddShoppingEntry records a recipe ingredient on the household's shopping
// list. The record is historical: once it exists the recipe can only ever be
// archived, not hard-deleted.
func AddShoppingEntry(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req ShoppingEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecipeIngredientID == 0 {
		writeError(w, http.StatusBadRequest, "Invalid shopping entry")
		return
	}

	var row models.RecipeIngredient
	if err := database.DB.WithContext(r.Context()).First(&row, req.RecipeIngredientID).Error; err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	ownership := services.NewOwnershipService(database.DB)
	if !ownership.CanRead(r.Context(), householdID, services.KindRecipe, row.RecipeID) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	entry := models.ShoppingListEntry{
		HouseholdID:        householdID,
		RecipeIngredientID: req.RecipeIngredientID,
	}
	if err := database.DB.WithContext(r.Context()).Create(&entry).Error; err != nil {
		logger.Error("Failed to create shopping entry", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// MarkShoppingEntryPurchased flags a shopping entry as bought. The row is
// kept; shopping history is never deleted by this service.
func MarkShoppingEntryPurchased(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	entryID, ok := urlID(r, "entry_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	res := database.DB.WithContext(r.Context()).
		Model(&models.ShoppingListEntry{}).
		Where("id = ? AND household_id = ?", entryID, householdID).
		Update("purchased", true)
	if res.Error != nil {
		logger.Error("Failed to update shopping entry", "entry_id", entryID, "error", res.Error)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purchased"})
}
