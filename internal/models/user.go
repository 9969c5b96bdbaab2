package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username       *string   `gorm:"size:100;uniqueIndex" json:"username"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	IsVerified     bool      `gorm:"not null;default:false" json:"is_verified"`
	FirstName      *string   `gorm:"size:100" json:"first_name"`
	LastName       *string   `gorm:"size:100" json:"last_name"`

	// Recipe generation preferences
	Units                 string                      `gorm:"size:20;not null;default:metric" json:"units"`
	GroceryCategories     datatypes.JSONSlice[string] `json:"grocery_categories"`
	DefaultServings       int                         `gorm:"not null;default:4" json:"default_servings"`
	PreferredDifficulty   *string                     `gorm:"size:20" json:"preferred_difficulty"`
	MaxCookTime           *int                        `json:"max_cook_time"`
	MaxPrepTime           *int                        `json:"max_prep_time"`
	DietaryRestrictions   datatypes.JSONSlice[string] `json:"dietary_restrictions"`
	Allergens             datatypes.JSONSlice[string] `json:"allergens"`
	Dislikes              datatypes.JSONSlice[string] `json:"dislikes"`
	AdditionalPreferences *string                     `gorm:"type:text" json:"additional_preferences"`
	ThemePreference       string                      `gorm:"size:20;not null;default:system" json:"theme_preference"`
}

func (User) TableName() string {
	return "users"
}

// FullName falls back from first/last name to username to the email's local part.
func (u *User) FullName() string {
	first, last := deref(u.FirstName), deref(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case deref(u.Username) != "":
		return deref(u.Username)
	}
	return strings.SplitN(u.Email, "@", 2)[0]
}

// PreferenceContext renders the user's preferences as prompt lines for recipe generation.
func (u *User) PreferenceContext() string {
	var lines []string

	unitDesc := "lbs, oz, cups, tablespoons, °F"
	if u.Units == "metric" {
		unitDesc = "kg, g, ml, l, °C"
	}
	lines = append(lines, fmt.Sprintf("Use %s measurements (%s)", u.Units, unitDesc))
	lines = append(lines, fmt.Sprintf("Recipe should serve %d people", u.DefaultServings))

	if d := deref(u.PreferredDifficulty); d != "" {
		lines = append(lines, fmt.Sprintf("Prefer %s difficulty level recipes", d))
	}
	if u.MaxCookTime != nil {
		lines = append(lines, fmt.Sprintf("Maximum cooking time: %d minutes", *u.MaxCookTime))
	}
	if u.MaxPrepTime != nil {
		lines = append(lines, fmt.Sprintf("Maximum prep time: %d minutes", *u.MaxPrepTime))
	}
	if len(u.DietaryRestrictions) > 0 {
		lines = append(lines, "Dietary requirements: "+strings.Join(u.DietaryRestrictions, ", "))
	}
	if len(u.Allergens) > 0 {
		lines = append(lines, "MUST AVOID these allergens: "+strings.Join(u.Allergens, ", "))
	}
	if len(u.Dislikes) > 0 {
		lines = append(lines, "Avoid these ingredients if possible: "+strings.Join(u.Dislikes, ", "))
	}
	if p := deref(u.AdditionalPreferences); p != "" {
		lines = append(lines, "Additional preferences: "+p)
	}

	return "\n- " + strings.Join(lines, "\n- ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
