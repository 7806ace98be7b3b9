package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/models"
	"github.com/mealweek/mealweek/services"
)

type CollectionRequest struct {
	Title    string `json:"title"`
	IsPublic *bool  `json:"is_public"`
}

type CollectionUpdateResponse struct {
	Collection models.Collection     `json:"collection"`
	Actions    []services.ForkAction `json:"actions"`
}

// ListCollections returns the collections visible to the household: its own,
// its subscriptions, and public ones.
func ListCollections(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var collections []models.Collection
	err := database.DB.WithContext(r.Context()).
		Where("household_id = ? OR is_public = ? OR id IN (?)",
			householdID, true,
			database.DB.Model(&models.Subscription{}).Select("collection_id").Where("household_id = ?", householdID),
		).
		Order("title").
		Find(&collections).Error
	if err != nil {
		logger.Error("Failed to list collections", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, collections)
}

// GetCollection returns one collection with its recipes, if readable.
func GetCollection(w http.ResponseWriter, r *http.Request) {
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

	ownership := services.NewOwnershipService(database.DB)
	if !ownership.CanRead(r.Context(), householdID, services.KindCollection, collectionID) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	var collection models.Collection
	if err := database.DB.WithContext(r.Context()).First(&collection, collectionID).Error; err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	var recipes []models.Recipe
	err := database.DB.WithContext(r.Context()).
		Joins("JOIN collection_recipes ON collection_recipes.recipe_id = recipes.id").
		Where("collection_recipes.collection_id = ? AND recipes.archived = ?", collectionID, false).
		Order("recipes.name").
		Find(&recipes).Error
	if err != nil {
		logger.Error("Failed to load collection recipes", "collection_id", collectionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"collection": collection,
		"recipes":    recipes,
	})
}

// CreateCollection creates a collection owned by the household.
func CreateCollection(w http.ResponseWriter, r *http.Request) {
	householdID, ok := getHouseholdID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	collection := models.Collection{
		HouseholdID: householdID,
		Title:       req.Title,
		Slug:        services.NewSlug(req.Title),
	}
	if req.IsPublic != nil {
		collection.IsPublic = *req.IsPublic
	}
	if err := database.DB.WithContext(r.Context()).Create(&collection).Error; err != nil {
		logger.Error("Failed to create collection", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

// UpdateCollection edits a collection's fields. A non-owner with read access
// gets a private fork and the edit lands on the fork; the source is never
// mutated.
func UpdateCollection(w http.ResponseWriter, r *http.Request) {
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
	var req CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownership := services.NewOwnershipService(database.DB)
	targetID := collectionID
	actions := []services.ForkAction{}
	if !ownership.CanEdit(r.Context(), householdID, services.KindCollection, collectionID) {
		fork, err := services.NewForkService(database.DB).Fork(r.Context(), householdID, collectionID, 0)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		targetID = fork.CollectionID
		actions = fork.Actions
	}

	updates := map[string]any{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if len(updates) > 0 {
		err := database.DB.WithContext(r.Context()).
			Model(&models.Collection{}).
			Where("id = ?", targetID).
			Updates(updates).Error
		if err != nil {
			logger.Error("Failed to update collection", "collection_id", targetID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal error")
			return
		}
	}

	var collection models.Collection
	if err := database.DB.WithContext(r.Context()).First(&collection, targetID).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, CollectionUpdateResponse{Collection: collection, Actions: actions})
}
