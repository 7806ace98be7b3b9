package controllers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/mealweek/mealweek/blob"
	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/services"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// readUpload pulls the "file" part out of a multipart form.
func readUpload(w http.ResponseWriter, r *http.Request) (data []byte, ext, contentType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, "", "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return nil, "", "", false
	}
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if ext == "" {
		ext = "jpg"
	}
	contentType = header.Header.Get("Content-Type")
	return data, ext, contentType, true
}

// enqueueSweepBackup hands the asset base to the janitor when the inline
// sweep reported a failure.
func enqueueSweepBackup(update *services.AssetUpdate) {
	if update.Warning == "" || janitor == nil {
		return
	}
	if base, _, _, err := blob.ParseName(update.Filename); err == nil {
		janitor.Enqueue(base)
	}
}

// UploadRecipeImage replaces the recipe's image with a new version. A
// non-owner with read access gets a private fork and the upload lands there.
func UploadRecipeImage(w http.ResponseWriter, r *http.Request) {
	uploadRecipeAsset(w, r, false)
}

// UploadRecipePDF replaces the recipe's pdf with a new version.
func UploadRecipePDF(w http.ResponseWriter, r *http.Request) {
	uploadRecipeAsset(w, r, true)
}

func uploadRecipeAsset(w http.ResponseWriter, r *http.Request, pdf bool) {
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
	data, ext, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	ownership := services.NewOwnershipService(database.DB)
	targetRecipe := recipeID
	ownsContext := ownership.CanEdit(r.Context(), householdID, services.KindCollection, collectionID) &&
		ownership.ValidateMembership(r.Context(), recipeID, collectionID, householdID)
	if !ownsContext {
		fork, err := services.NewForkService(database.DB).Fork(r.Context(), householdID, collectionID, recipeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		targetRecipe = fork.RecipeID
	}

	var update *services.AssetUpdate
	var err error
	if pdf {
		update, err = assets.ReplaceRecipePDF(r.Context(), targetRecipe, data, contentType)
	} else {
		update, err = assets.ReplaceRecipeImage(r.Context(), targetRecipe, data, ext, contentType)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	enqueueSweepBackup(update)
	writeJSON(w, http.StatusOK, update)
}

// UploadCollectionImage replaces a collection image (query dark=true selects
// the dark-mode variant). Non-owners get a collection fork first.
func UploadCollectionImage(w http.ResponseWriter, r *http.Request) {
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
	data, ext, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}
	dark := r.URL.Query().Get("dark") == "true"

	ownership := services.NewOwnershipService(database.DB)
	targetID := collectionID
	if !ownership.CanEdit(r.Context(), householdID, services.KindCollection, collectionID) {
		fork, err := services.NewForkService(database.DB).Fork(r.Context(), householdID, collectionID, 0)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		targetID = fork.CollectionID
	}

	update, err := assets.ReplaceCollectionImage(r.Context(), targetID, dark, data, ext, contentType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	enqueueSweepBackup(update)
	writeJSON(w, http.StatusOK, update)
}
