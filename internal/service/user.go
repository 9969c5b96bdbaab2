package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

var (
	validUnits       = map[string]bool{"metric": true, "imperial": true}
	validDifficulty  = map[string]bool{"easy": true, "medium": true, "hard": true}
	validThemeValues = map[string]bool{"light": true, "dark": true, "system": true}
)

// UserService manages profiles and recipe-generation preferences.
type UserService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserService(db *gorm.DB, log *logger.Logger) *UserService {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserService{db: db, log: log}
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load user")
	}
	return &user, nil
}

// UpdateProfile changes names and username. An empty string clears a name.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *types.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		username := trimmedOrNil(req.Username)
		if username != nil {
			var count int64
			err := s.db.WithContext(ctx).Model(&models.User{}).
				Where("username = ? AND id <> ?", *username, userID).
				Count(&count).Error
			if err != nil {
				return nil, apperr.Persistence(err, "failed to check username")
			}
			if count > 0 {
				return nil, apperr.Validation("Username already taken")
			}
		}
		updates["username"] = username
	}
	if req.FirstName != nil {
		updates["first_name"] = trimmedOrNil(req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = trimmedOrNil(req.LastName)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperr.Persistence(err, "failed to update profile")
		}
	}
	return s.GetUser(ctx, userID)
}

// UpdatePreferences applies a partial update; fields left nil are untouched.
func (s *UserService) UpdatePreferences(ctx context.Context, userID uint, prefs *types.UserPreferences) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if prefs.Units != nil {
		if !validUnits[*prefs.Units] {
			return nil, apperr.Validation("Units must be metric or imperial")
		}
		updates["units"] = *prefs.Units
	}
	if prefs.DefaultServings != nil {
		if *prefs.DefaultServings < 1 || *prefs.DefaultServings > 20 {
			return nil, apperr.Validation("Default servings must be between 1 and 20")
		}
		updates["default_servings"] = *prefs.DefaultServings
	}
	if prefs.PreferredDifficulty != nil {
		d := strings.ToLower(*prefs.PreferredDifficulty)
		if d != "" && !validDifficulty[d] {
			return nil, apperr.Validation("Preferred difficulty must be easy, medium or hard")
		}
		updates["preferred_difficulty"] = trimmedOrNil(&d)
	}
	if prefs.MaxCookTime != nil {
		updates["max_cook_time"] = *prefs.MaxCookTime
	}
	if prefs.MaxPrepTime != nil {
		updates["max_prep_time"] = *prefs.MaxPrepTime
	}
	if prefs.ThemePreference != nil {
		if !validThemeValues[*prefs.ThemePreference] {
			return nil, apperr.Validation("Theme must be light, dark or system")
		}
		updates["theme_preference"] = *prefs.ThemePreference
	}
	if prefs.AdditionalPreferences != nil {
		updates["additional_preferences"] = trimmedOrNil(prefs.AdditionalPreferences)
	}
	if prefs.GroceryCategories != nil {
		updates["grocery_categories"] = datatypes.JSONSlice[string](normalizeList(prefs.GroceryCategories))
	}
	if prefs.DietaryRestrictions != nil {
		updates["dietary_restrictions"] = datatypes.JSONSlice[string](normalizeList(prefs.DietaryRestrictions))
	}
	if prefs.Allergens != nil {
		updates["allergens"] = datatypes.JSONSlice[string](normalizeList(prefs.Allergens))
	}
	if prefs.Dislikes != nil {
		updates["dislikes"] = datatypes.JSONSlice[string](normalizeList(prefs.Dislikes))
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperr.Persistence(err, "failed to update preferences")
		}
	}
	return s.GetUser(ctx, userID)
}

// DeleteAccount removes the user and everything they own. Recipes they generated stay, unowned.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lists := tx.Model(&models.ShoppingList{}).Select("id").Where("user_id = ?", userID)
		items := tx.Model(&models.ShoppingListItem{}).Select("id").Where("shopping_list_id IN (?)", lists)

		steps := []struct {
			model interface{}
			query string
			arg   interface{}
		}{
			{&models.ShoppingListRecipeBreakdown{}, "shopping_item_id IN (?)", items},
			{&models.ShoppingListItem{}, "shopping_list_id IN (?)", lists},
			{&models.ShoppingListRecipeAssociation{}, "shopping_list_id IN (?)", lists},
			{&models.ShoppingList{}, "user_id = ?", userID},
			{&models.SavedRecipe{}, "user_id = ?", userID},
			{&models.RecipeJob{}, "user_id = ?", userID},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.arg).Delete(step.model).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Recipe{}).Where("created_by_id = ?", userID).Update("created_by_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return apperr.Persistence(err, "failed to delete account")
	}

	s.log.Info("User account deleted", "user_id", userID)
	return nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	return out
}

// ToUserProfile renders the public profile of a user.
func ToUserProfile(u *models.User) types.UserProfile {
	return types.UserProfile{
		ID:         strconv.FormatUint(uint64(u.ID), 10),
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// ToUserPreferences renders the stored preferences.
func ToUserPreferences(u *models.User) types.UserPreferences {
	units := u.Units
	servings := u.DefaultServings
	theme := u.ThemePreference
	return types.UserPreferences{
		Units:                 &units,
		GroceryCategories:     u.GroceryCategories,
		DefaultServings:       &servings,
		PreferredDifficulty:   u.PreferredDifficulty,
		MaxCookTime:           u.MaxCookTime,
		MaxPrepTime:           u.MaxPrepTime,
		DietaryRestrictions:   u.DietaryRestrictions,
		Allergens:             u.Allergens,
		Dislikes:              u.Dislikes,
		AdditionalPreferences: u.AdditionalPreferences,
		ThemePreference:       &theme,
	}
}
