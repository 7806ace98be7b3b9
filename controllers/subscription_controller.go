package controllers

import (
	"net/http"

	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/models"
)

// Subscribe grants the household read access to a public collection.
// Subscriptions never grant writes and never trigger a fork.
func Subscribe(w http.ResponseWriter, r *http.Request) {
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

	var collection models.Collection
	if err := database.DB.WithContext(r.Context()).First(&collection, collectionID).Error; err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if !collection.IsPublic && collection.HouseholdID != householdID {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if collection.HouseholdID == householdID {
		writeError(w, http.StatusBadRequest, "Cannot subscribe to own collection")
		return
	}

	sub := models.Subscription{HouseholdID: householdID, CollectionID: collectionID}
	if err := database.DB.WithContext(r.Context()).FirstOrCreate(&sub, sub).Error; err != nil {
		logger.Error("Failed to subscribe", "household_id", householdID, "collection_id", collectionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe removes the household's subscription to a collection.
func Unsubscribe(w http.ResponseWriter, r *http.Request) {
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

	err := database.DB.WithContext(r.Context()).
		Where("household_id = ? AND collection_id = ?", householdID, collectionID).
		Delete(&models.Subscription{}).Error
	if err != nil {
		logger.Error("Failed to unsubscribe", "household_id", householdID, "collection_id", collectionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
