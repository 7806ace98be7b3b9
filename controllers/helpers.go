package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mealweek/mealweek/jobs"
	"github.com/mealweek/mealweek/middleware"
	"github.com/mealweek/mealweek/services"
)

// Package-level collaborators wired once at startup.
var (
	assets  *services.AssetService
	janitor *jobs.Janitor
)

// Init wires the asset service and janitor into the controllers.
func Init(a *services.AssetService, j *jobs.Janitor) {
	assets = a
	janitor = j
}

func getHouseholdID(r *http.Request) (uint, bool) {
	return middleware.HouseholdID(r.Context())
}

func urlID(r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service-layer failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var planErr *services.ActivePlanError
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrNotOwned):
		writeError(w, http.StatusForbidden, "Not owned by household")
	case errors.As(err, &planErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":        "Recipe is referenced by active plan entries",
			"active_plans": planErr.Count,
		})
	default:
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
