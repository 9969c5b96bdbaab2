package types

import "time"

type JobCreateResponse struct {
	JobID               string `json:"job_id"`
	Status              string `json:"status"`
	Message             string `json:"message"`
	EstimatedCompletion string `json:"estimated_completion"`
	StatusURL           string `json:"status_url"`
	PollingInterval     int    `json:"polling_interval"`
}

type JobStatusResponse struct {
	JobID               string     `json:"job_id"`
	Status              string     `json:"status"`
	Progress            int        `json:"progress"`
	JobType             string     `json:"job_type"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at"`
	ErrorMessage        *string    `json:"error_message"`
	RecipeID            *string    `json:"recipe_id"`
	EstimatedCompletion *string    `json:"estimated_completion"`
}

type JobResultResponse struct {
	JobID              string                 `json:"job_id"`
	Status             string                 `json:"status"`
	Recipe             RecipeView             `json:"recipe"`
	GenerationMetadata map[string]interface{} `json:"generation_metadata"`
}
