// Package metrics exposes Prometheus counters for the catalog core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CollectionsForked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealweek_collections_forked_total",
		Help: "Collections copied by the fork engine.",
	})
	RecipesForked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealweek_recipes_forked_total",
		Help: "Recipes copied by the fork engine.",
	})
	RecipesArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealweek_recipes_archived_total",
		Help: "Recipe deletes downgraded to archive by shopping history.",
	})
	RecipesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealweek_recipes_deleted_total",
		Help: "Recipes hard-deleted.",
	})
	IngredientsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealweek_ingredients_swept_total",
		Help: "Ingredient rows removed by the orphan sweep.",
	})
	BlobsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealweek_blobs_swept_total",
		Help: "Stale blob versions deleted.",
	})
	BlobSweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealweek_blob_sweep_failures_total",
		Help: "Blob cleanup attempts that failed (non-fatal).",
	})
)
