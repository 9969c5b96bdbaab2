package types

import "time"

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserProfile `json:"user"`
}

type UserProfile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   *string   `json:"username"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	FullName   string    `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UserPreferences doubles as the partial update body; nil fields are left untouched.
type UserPreferences struct {
	Units                 *string  `json:"units,omitempty"`
	GroceryCategories     []string `json:"grocery_categories,omitempty"`
	DefaultServings       *int     `json:"default_servings,omitempty"`
	PreferredDifficulty   *string  `json:"preferred_difficulty,omitempty"`
	MaxCookTime           *int     `json:"max_cook_time,omitempty"`
	MaxPrepTime           *int     `json:"max_prep_time,omitempty"`
	DietaryRestrictions   []string `json:"dietary_restrictions,omitempty"`
	Allergens             []string `json:"allergens,omitempty"`
	Dislikes              []string `json:"dislikes,omitempty"`
	AdditionalPreferences *string  `json:"additional_preferences,omitempty"`
	ThemePreference       *string  `json:"theme_preference,omitempty"`
}

type UserSettings struct {
	Profile     UserProfile     `json:"profile"`
	Preferences UserPreferences `json:"preferences"`
}
