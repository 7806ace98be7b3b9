package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mealweek/mealweek/controllers"
	auth "github.com/mealweek/mealweek/middleware"
)

func SetupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Post("/auth/register", controllers.Register)
	r.Post("/auth/login", controllers.Login)
	r.Handle("/metrics", promhttp.Handler())

	// Household routes (JWT protected)
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Get("/collections", controllers.ListCollections)
		r.Post("/collections", controllers.CreateCollection)
		r.Get("/collections/{collection_id}", controllers.GetCollection)
		r.Patch("/collections/{collection_id}", controllers.UpdateCollection)
		r.Post("/collections/{collection_id}/image", controllers.UploadCollectionImage)

		r.Post("/collections/{collection_id}/subscribe", controllers.Subscribe)
		r.Delete("/collections/{collection_id}/subscribe", controllers.Unsubscribe)

		r.Post("/collections/{collection_id}/recipes", controllers.CreateRecipe)
		r.Get("/collections/{collection_id}/recipes/{recipe_id}", controllers.GetRecipe)
		r.Patch("/collections/{collection_id}/recipes/{recipe_id}", controllers.UpdateRecipe)
		r.Delete("/collections/{collection_id}/recipes/{recipe_id}", controllers.DeleteRecipe)
		r.Post("/collections/{collection_id}/recipes/{recipe_id}/image", controllers.UploadRecipeImage)
		r.Post("/collections/{collection_id}/recipes/{recipe_id}/pdf", controllers.UploadRecipePDF)

		r.Post("/plan", controllers.AddPlanEntry)
		r.Delete("/plan/{entry_id}", controllers.RemovePlanEntry)
		r.Post("/shopping", controllers.AddShoppingEntry)
		r.Patch("/shopping/{entry_id}/purchased", controllers.MarkShoppingEntryPurchased)
	})

	return r
}
