package controllers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mealweek/mealweek/config"
	"github.com/mealweek/mealweek/database"
	"github.com/mealweek/mealweek/logger"
	"github.com/mealweek/mealweek/models"
	"github.com/mealweek/mealweek/util"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string           `json:"token"`
	Household models.Household `json:"household"`
}

// Register creates a new household account and returns a token.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	household := models.Household{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}
	if err := database.DB.Create(&household).Error; err != nil {
		logger.Warn("Failed to create household", "email", req.Email, "error", err)
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	token, err := util.GenerateJWT(household.ID, household.Email, jwtSecret())
	if err != nil {
		logger.Error("Failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	logger.Info("Household registered", "household_id", household.ID)
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, Household: household})
}

// Login authenticates a household and returns a token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var household models.Household
	if err := database.DB.Where("email = ?", req.Email).First(&household).Error; err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(household.Password), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := util.GenerateJWT(household.ID, household.Email, jwtSecret())
	if err != nil {
		logger.Error("Failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Household: household})
}

func jwtSecret() []byte {
	return []byte(config.GetEnv("JWT_SECRET", "dev-secret"))
}
