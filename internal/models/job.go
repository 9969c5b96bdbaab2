package models

import (
	"time"

	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

const (
	JobTypeGenerate = "generate"
	JobTypeModify   = "modify"
)

// RecipeJob tracks one asynchronous generation or modification request.
type RecipeJob struct {
	ID                 string         `gorm:"primaryKey;size:36" json:"id"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	Status             JobStatus      `gorm:"size:20;not null;default:pending" json:"status"`
	JobType            string         `gorm:"size:20;not null" json:"job_type"`
	Prompt             string         `gorm:"type:text;not null" json:"prompt"`
	Preferences        datatypes.JSON `json:"preferences"`
	OriginalRecipeID   *uint          `json:"original_recipe_id"`
	ModificationPrompt *string        `gorm:"type:text" json:"modification_prompt"`
	RecipeID           *uint          `json:"recipe_id"`
	ErrorMessage       *string        `gorm:"type:text" json:"error_message"`
	GenerationMetadata datatypes.JSON `json:"generation_metadata"`
	Progress           int            `gorm:"not null;default:0" json:"progress"`
	CreatedAt          time.Time      `json:"created_at"`
	StartedAt          *time.Time     `json:"started_at"`
	CompletedAt        *time.Time     `json:"completed_at"`
}

func (RecipeJob) TableName() string {
	return "recipe_jobs"
}

// IsTerminal reports whether the job can no longer change state.
func (j *RecipeJob) IsTerminal() bool {
	switch j.Status {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

// EstimatedCompletion is a coarse human hint derived from progress; nil once the job is terminal.
func (j *RecipeJob) EstimatedCompletion() *string {
	if j.IsTerminal() {
		return nil
	}
	var s string
	switch {
	case j.Progress == 0:
		s = "2-3 minutes"
	case j.Progress < 50:
		s = "1-2 minutes"
	default:
		s = "30-60 seconds"
	}
	return &s
}

// UserPrompt is the text the user submitted for either job type.
func (j *RecipeJob) UserPrompt() string {
	if j.JobType == JobTypeModify && j.ModificationPrompt != nil {
		return *j.ModificationPrompt
	}
	return j.Prompt
}
