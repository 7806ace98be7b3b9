package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mealweek/mealweek/blob"
	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/metrics"
	"github.com/mealweek/mealweek/models"

	"gorm.io/gorm"
)

// AssetOwner identifies the relational row a blob column belongs to, so the
// orphan check can exclude the row currently being updated.
type AssetOwner struct {
	Kind EntityKind
	ID   uint
}

// AssetUpdate reports the outcome of an asset replacement.
type AssetUpdate struct {
	Filename string   `json:"filename"`
	URL      string   `json:"url"`
	Swept    []string `json:"swept,omitempty"`
	// Warning carries a non-fatal cleanup failure; the upload itself
	// succeeded and the database points at the new filename.
	Warning string `json:"warning,omitempty"`
}

// AssetService maps logical assets (recipe image, recipe pdf, collection
// images) onto versioned blob filenames. Replacement order is fixed: write
// the new blob, commit the row update, only then sweep stale versions. A
// crash mid-way leaves at worst an orphaned blob for the janitor, never a row
// pointing at a missing file.
type AssetService struct {
	DB    *gorm.DB
	Store blob.Store
}

func NewAssetService(db *gorm.DB, store blob.Store) *AssetService {
	return &AssetService{DB: db, Store: store}
}

// ReplaceRecipeImage uploads a new version of the recipe's image and sweeps
// the superseded versions.
func (s *AssetService) ReplaceRecipeImage(ctx context.Context, recipeID uint, data []byte, ext, contentType string) (*AssetUpdate, error) {
	var recipe models.Recipe
	if err := s.DB.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	owner := AssetOwner{Kind: KindRecipe, ID: recipeID}
	return s.replace(ctx, owner, "image_ref", recipe.ImageRef, &models.Recipe{}, data, ext, contentType)
}

// ReplaceRecipePDF uploads a new version of the recipe's pdf.
func (s *AssetService) ReplaceRecipePDF(ctx context.Context, recipeID uint, data []byte, contentType string) (*AssetUpdate, error) {
	var recipe models.Recipe
	if err := s.DB.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	owner := AssetOwner{Kind: KindRecipe, ID: recipeID}
	return s.replace(ctx, owner, "pdf_ref", recipe.PdfRef, &models.Recipe{}, data, "pdf", contentType)
}

// ReplaceCollectionImage uploads a new version of the collection's image;
// dark selects the dark-mode variant column.
func (s *AssetService) ReplaceCollectionImage(ctx context.Context, collectionID uint, dark bool, data []byte, ext, contentType string) (*AssetUpdate, error) {
	var collection models.Collection
	if err := s.DB.WithContext(ctx).First(&collection, collectionID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	column, current := "image_ref", collection.ImageRef
	if dark {
		column, current = "image_ref_dark", collection.ImageRefDark
	}
	owner := AssetOwner{Kind: KindCollection, ID: collectionID}
	return s.replace(ctx, owner, column, current, &models.Collection{}, data, ext, contentType)
}

func (s *AssetService) replace(ctx context.Context, owner AssetOwner, column, current string, model any, data []byte, ext, contentType string) (*AssetUpdate, error) {
	newName := ""
	if current != "" && s.IsOrphan(ctx, current, &owner) {
		// The current file is exclusively ours, so the next version can
		// reuse its base. A file shared with other rows (e.g. a stock
		// default) gets a fresh base instead; bumping a shared base
		// would collide with the other referencers' future versions.
		next, err := blob.NextVersion(current, ext)
		if err == nil {
			newName = next
		} else {
			// Legacy or hand-edited refs fall back to a fresh base.
			logger.Warn("asset: current ref unparseable, starting fresh base", "ref", current, "error", err)
		}
	}
	if newName == "" {
		newName = blob.FormatName(blob.NewBase(data), 1, strings.ToLower(ext))
	}

	url, err := s.Store.Put(ctx, newName, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Model(model).
		Where("id = ?", owner.ID).
		Update(column, newName).Error
	if err != nil {
		return nil, err
	}

	update := &AssetUpdate{Filename: newName, URL: url}
	s.sweepAfterReplace(ctx, owner, current, newName, update)
	return update, nil
}

// sweepAfterReplace reclaims stale versions once the row points at newName:
// the new name's own family first, then the old ref's family when the base
// changed. The row already references the new blob, so any failure here is
// downgraded to a warning.
func (s *AssetService) sweepAfterReplace(ctx context.Context, owner AssetOwner, current, newName string, update *AssetUpdate) {
	newBase, _, _, err := blob.ParseName(newName)
	if err != nil {
		return
	}
	swept, sweepErr := s.SweepStale(ctx, newBase, newName, &owner)
	update.Swept = swept
	if current != "" {
		if oldBase, _, _, err := blob.ParseName(current); err == nil && oldBase != newBase {
			oldSwept, oldErr := s.SweepStale(ctx, oldBase, "", &owner)
			update.Swept = append(update.Swept, oldSwept...)
			if sweepErr == nil {
				sweepErr = oldErr
			}
		}
	}
	if sweepErr != nil {
		metrics.BlobSweepFailures.Inc()
		logger.Warn("asset: stale sweep failed", "base", newBase, "error", sweepErr)
		update.Warning = fmt.Sprintf("stale asset cleanup failed: %v", sweepErr)
	}
}

// SweepStale enumerates stored blobs sharing base and deletes the orphans.
// keep names the just-written file, which is skipped outright; exclude names
// the just-updated row, which does not count as a referencer of old versions.
// Shared files (e.g. a stock placeholder referenced by many collections)
// survive because some other live row still references them.
func (s *AssetService) SweepStale(ctx context.Context, base, keep string, exclude *AssetOwner) ([]string, error) {
	names, err := s.Store.List(ctx, base)
	if err != nil {
		return nil, err
	}
	deleted := []string{}
	var firstErr error
	for _, name := range names {
		if name == keep {
			continue
		}
		// List is prefix-based; "abc" also matches "abcdef.jpg".
		// Only names parsing to exactly this base belong to the asset.
		nameBase, _, _, err := blob.ParseName(name)
		if err != nil || nameBase != base {
			continue
		}
		if !s.IsOrphan(ctx, name, exclude) {
			continue
		}
		ok, err := s.Store.Delete(ctx, name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			metrics.BlobsSwept.Inc()
			deleted = append(deleted, name)
		}
	}
	return deleted, firstErr
}

// IsOrphan reports whether no live row, other than the excluded one, still
// references the exact filename in any image/pdf column.
func (s *AssetService) IsOrphan(ctx context.Context, filename string, exclude *AssetOwner) bool {
	collections := s.DB.WithContext(ctx).Model(&models.Collection{}).
		Where("image_ref = ? OR image_ref_dark = ?", filename, filename)
	recipes := s.DB.WithContext(ctx).Model(&models.Recipe{}).
		Where("image_ref = ? OR pdf_ref = ?", filename, filename)
	if exclude != nil {
		switch exclude.Kind {
		case KindCollection:
			collections = collections.Where("id <> ?", exclude.ID)
		case KindRecipe:
			recipes = recipes.Where("id <> ?", exclude.ID)
		}
	}

	var count int64
	if err := collections.Count(&count).Error; err != nil {
		logger.Warn("asset: orphan check failed", "filename", filename, "error", err)
		return false
	}
	if count > 0 {
		return false
	}
	if err := recipes.Count(&count).Error; err != nil {
		logger.Warn("asset: orphan check failed", "filename", filename, "error", err)
		return false
	}
	return count == 0
}

// CleanupRef sweeps every version sharing the ref's base hash. Used after a
// recipe hard-delete, when no exclusion applies because the owning row is
// gone. Returns a warning message instead of an error; the relational delete
// has already committed.
func (s *AssetService) CleanupRef(ctx context.Context, ref string) string {
	base, _, _, err := blob.ParseName(ref)
	if err != nil {
		return ""
	}
	if _, err := s.SweepStale(ctx, base, "", nil); err != nil {
		metrics.BlobSweepFailures.Inc()
		logger.Warn("asset: post-delete cleanup failed", "ref", ref, "error", err)
		return fmt.Sprintf("asset cleanup failed for %s: %v", ref, err)
	}
	return ""
}

// SweepAll walks the whole store and removes every orphaned blob. Slow-path
// janitor work; per-base failures are logged and skipped.
func (s *AssetService) SweepAll(ctx context.Context) (int, error) {
	names, err := s.Store.List(ctx, "")
	if err != nil {
		return 0, err
	}
	bases := map[string]bool{}
	for _, name := range names {
		base, _, _, err := blob.ParseName(name)
		if err != nil {
			continue
		}
		bases[base] = true
	}
	total := 0
	for base := range bases {
		deleted, err := s.SweepStale(ctx, base, "", nil)
		if err != nil {
			metrics.BlobSweepFailures.Inc()
			logger.Warn("asset: janitor sweep failed for base", "base", base, "error", err)
			continue
		}
		total += len(deleted)
	}
	return total, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
