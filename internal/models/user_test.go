package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: strPtr("Ada")}).FullName())
	assert.Equal(t, "chef", (&User{Username: strPtr("chef"), Email: "c@example.com"}).FullName())
	assert.Equal(t, "cook", (&User{Email: "cook@example.com"}).FullName())
}

func TestPreferenceContext(t *testing.T) {
	u := &User{
		Units:               "metric",
		DefaultServings:     2,
		PreferredDifficulty: strPtr("easy"),
		MaxCookTime:         intPtr(30),
		DietaryRestrictions: datatypes.JSONSlice[string]{"vegetarian"},
		Allergens:           datatypes.JSONSlice[string]{"nuts", "shellfish"},
	}

	ctx := u.PreferenceContext()

	assert.Contains(t, ctx, "Use metric measurements (kg, g, ml, l, °C)")
	assert.Contains(t, ctx, "Recipe should serve 2 people")
	assert.Contains(t, ctx, "Prefer easy difficulty level recipes")
	assert.Contains(t, ctx, "Maximum cooking time: 30 minutes")
	assert.Contains(t, ctx, "Dietary requirements: vegetarian")
	assert.Contains(t, ctx, "MUST AVOID these allergens: nuts, shellfish")
	assert.NotContains(t, ctx, "Maximum prep time")
}

func TestJobEstimatedCompletion(t *testing.T) {
	job := &RecipeJob{Status: JobPending}
	assert.Equal(t, "2-3 minutes", *job.EstimatedCompletion())

	job.Status, job.Progress = JobProcessing, 30
	assert.Equal(t, "1-2 minutes", *job.EstimatedCompletion())

	job.Progress = 70
	assert.Equal(t, "30-60 seconds", *job.EstimatedCompletion())

	job.Status, job.Progress = JobCompleted, 100
	assert.Nil(t, job.EstimatedCompletion())
	assert.True(t, job.IsTerminal())
}

func TestJobUserPrompt(t *testing.T) {
	mod := "make it vegan"
	assert.Equal(t, "pasta", (&RecipeJob{JobType: JobTypeGenerate, Prompt: "pasta"}).UserPrompt())
	assert.Equal(t, mod, (&RecipeJob{JobType: JobTypeModify, ModificationPrompt: &mod}).UserPrompt())
}
