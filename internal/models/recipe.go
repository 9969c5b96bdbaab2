package models

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Recipe struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Title              string                      `gorm:"size:500;not null;index" json:"title"`
	Description        string                      `gorm:"type:text" json:"description"`
	PrepTime           *int                        `json:"prep_time"`
	CookTime           *int                        `json:"cook_time"`
	Servings           *int                        `json:"servings"`
	Difficulty         string                      `gorm:"size:20" json:"difficulty"`
	Instructions       datatypes.JSONSlice[string] `gorm:"not null" json:"instructions"`
	Tips               datatypes.JSONSlice[string] `json:"tips"`
	CuisineType        string                      `gorm:"size:100" json:"cuisine_type"`
	MealType           string                      `gorm:"size:50" json:"meal_type"`
	Tags               datatypes.JSONSlice[string] `json:"tags"`
	CaloriesPerServing *int                        `json:"calories_per_serving"`
	OriginalPrompt     string                      `gorm:"type:text;not null" json:"original_prompt"`
	LLMModel           string                      `gorm:"column:llm_model;size:100" json:"llm_model"`
	GenerationMetadata datatypes.JSON              `json:"generation_metadata"`
	CreatedByID        *uint                       `gorm:"index" json:"created_by_id"`
	ImageKey           string                      `gorm:"size:255" json:"-"`
	Ingredients        []RecipeIngredient          `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

// RecipeIngredient is one line of a recipe; Amount is free text such as "2", "1/2" or "to taste".
type RecipeIngredient struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	RecipeID    uint      `gorm:"not null;index" json:"recipe_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Amount      string    `gorm:"size:100;not null" json:"amount"`
	Unit        *string   `gorm:"size:50" json:"unit"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	Preparation *string   `gorm:"size:200" json:"preparation"`
	Notes       *string   `gorm:"size:500" json:"notes"`
	IsOptional  bool      `gorm:"not null;default:false" json:"is_optional"`
}

type SavedRecipe struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	RecipeID      uint      `gorm:"not null;index" json:"recipe_id"`
	IsFavorite    bool      `gorm:"not null;default:false" json:"is_favorite"`
	PersonalNotes *string   `gorm:"type:text" json:"personal_notes"`
	Rating        *int      `json:"rating"`
	TimesMade     int       `gorm:"not null;default:0" json:"times_made"`
	Recipe        Recipe    `gorm:"foreignKey:RecipeID" json:"-"`
}

// RecipeEmbedding lives only on postgres, where the vector extension is available.
type RecipeEmbedding struct {
	RecipeID  uint            `gorm:"primaryKey"`
	Embedding pgvector.Vector `gorm:"type:vector(64)"`
	UpdatedAt time.Time
}

func (RecipeEmbedding) TableName() string {
	return "recipe_embeddings"
}
