package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/types"
)

// JobHandler serves /api/jobs.
type JobHandler struct {
	jobs    service.IJobService
	recipes service.IRecipeService
	log     *logger.Logger
}

func NewJobHandler(jobs service.IJobService, recipes service.IRecipeService, log *logger.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, recipes: recipes, log: log.With("handler", "jobs")}
}

func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth, limit gin.HandlerFunc) {
	jobs := router.Group("/jobs/recipes", requireAuth)
	{
		jobs.POST("/generate", limit, h.CreateGenerate)
		jobs.POST("/modify", limit, h.CreateModify)
		jobs.GET("/:job_id/status", h.Status)
		jobs.GET("/:job_id/result", h.Result)
		jobs.DELETE("/:job_id", h.Cancel)
	}
}

func (h *JobHandler) CreateGenerate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Prompt is required")
		return
	}
	job, err := h.jobs.CreateGenerateJob(c.Request.Context(), userID, req.Prompt, req.Preferences)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, service.ToJobCreateResponse(job))
}

func (h *JobHandler) CreateModify(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ModifyRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	recipeID, valid := req.RecipeID.Uint()
	if !valid {
		badRequest(c, "Invalid recipe ID format")
		return
	}
	job, err := h.jobs.CreateModifyJob(c.Request.Context(), userID, recipeID, req.ModificationPrompt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, service.ToJobCreateResponse(job))
}

func (h *JobHandler) Status(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	job, err := h.jobs.Status(c.Request.Context(), userID, c.Param("job_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, service.ToJobStatusResponse(job))
}

func (h *JobHandler) Result(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	job, recipe, err := h.jobs.Result(c.Request.Context(), userID, c.Param("job_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.JobResultResponse{
		JobID:              job.ID,
		Status:             string(job.Status),
		Recipe:             h.recipes.View(c.Request.Context(), recipe),
		GenerationMetadata: service.GenerationMetadata(recipe),
	})
}

func (h *JobHandler) Cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID := c.Param("job_id")
	if err := h.jobs.Cancel(c.Request.Context(), userID, jobID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job cancelled successfully", "job_id": jobID})
}
