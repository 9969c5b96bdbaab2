package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/recipewizard/backend/internal/apperr"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/models"
	"github.com/pageza/recipewizard/backend/internal/types"
)

const (
	jobCacheTTL       = 10 * time.Minute
	jobCacheKeyPrefix = "job:status:"

	JobPollingInterval = 3
)

var errShuttingDown = errors.New("server shutting down")

// JobCache holds recent job snapshots so status polling can skip the database.
type JobCache interface {
	Get(ctx context.Context, jobID string) (*models.RecipeJob, bool)
	Set(ctx context.Context, job *models.RecipeJob)
}

type RedisJobCache struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisJobCache(client *redis.Client, log *logger.Logger) *RedisJobCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisJobCache{client: client, log: log}
}

func (c *RedisJobCache) Get(ctx context.Context, jobID string) (*models.RecipeJob, bool) {
	data, err := c.client.Get(ctx, jobCacheKeyPrefix+jobID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Job cache read failed", "job_id", jobID, "error", err)
		}
		return nil, false
	}
	var job models.RecipeJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, false
	}
	return &job, true
}

func (c *RedisJobCache) Set(ctx context.Context, job *models.RecipeJob) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, jobCacheKeyPrefix+job.ID, data, jobCacheTTL).Err(); err != nil {
		c.log.Warn("Job cache write failed", "job_id", job.ID, "error", err)
	}
}

// JobService runs recipe generation in the background, one goroutine per job.
// The database row is authoritative; the cache only serves status reads.
type JobService struct {
	db        *gorm.DB
	generator *RecipeGenerator
	recipes   *RecipeService
	users     *UserService
	cache     JobCache
	log       *logger.Logger
	tracer    trace.Tracer

	baseCtx context.Context
	stop    context.CancelFunc
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewJobService creates a JobService. cache may be nil.
func NewJobService(db *gorm.DB, generator *RecipeGenerator, recipes *RecipeService, users *UserService, cache JobCache, log *logger.Logger) *JobService {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &JobService{
		db:        db,
		generator: generator,
		recipes:   recipes,
		users:     users,
		cache:     cache,
		log:       log,
		tracer:    otel.Tracer("recipewizard/jobs"),
		baseCtx:   ctx,
		stop:      stop,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// CreateGenerateJob queues a new recipe generation.
func (s *JobService) CreateGenerateJob(ctx context.Context, userID uint, prompt string, prefs *types.RecipePreferences) (*models.RecipeJob, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperr.Validation("Prompt is required")
	}
	job := &models.RecipeJob{
		ID:      uuid.NewString(),
		UserID:  userID,
		Status:  models.JobPending,
		JobType: models.JobTypeGenerate,
		Prompt:  prompt,
	}
	if prefs != nil {
		data, err := json.Marshal(prefs)
		if err != nil {
			return nil, apperr.Validation("Invalid preferences")
		}
		job.Preferences = datatypes.JSON(data)
	}
	return s.enqueue(ctx, job)
}

// CreateModifyJob queues a modification of a recipe the user owns.
func (s *JobService) CreateModifyJob(ctx context.Context, userID, recipeID uint, modification string) (*models.RecipeJob, error) {
	modification = strings.TrimSpace(modification)
	if modification == "" {
		return nil, apperr.Validation("Modification prompt is required")
	}
	original, err := s.recipes.GetOwnedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	job := &models.RecipeJob{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Status:             models.JobPending,
		JobType:            models.JobTypeModify,
		Prompt:             original.OriginalPrompt,
		OriginalRecipeID:   &original.ID,
		ModificationPrompt: &modification,
	}
	return s.enqueue(ctx, job)
}

func (s *JobService) enqueue(ctx context.Context, job *models.RecipeJob) (*models.RecipeJob, error) {
	if s.baseCtx.Err() != nil {
		return nil, apperr.Upstream(errShuttingDown, "Server is shutting down")
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, apperr.Persistence(err, "failed to create job")
	}

	jobCtx, cancel := context.WithCancel(s.baseCtx)
	s.mu.Lock()
	s.cancels[job.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.process(jobCtx, job.ID)

	s.log.Info("Recipe job queued", "job_id", job.ID, "job_type", job.JobType, "user_id", job.UserID)
	return job, nil
}

func (s *JobService) process(ctx context.Context, jobID string) {
	defer s.wg.Done()
	defer s.forget(jobID)

	ctx, span := s.tracer.Start(ctx, "JobService.process", trace.WithAttributes(attribute.String("job.id", jobID)))
	var err error
	defer func() { endSpan(span, err) }()

	var job models.RecipeJob
	if err = s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		s.log.Error("Job vanished before processing", "job_id", jobID, "error", err)
		return
	}
	span.SetAttributes(attribute.String("job.type", job.JobType))

	now := time.Now()
	if !s.transition(ctx, &job, map[string]interface{}{"status": models.JobProcessing, "started_at": now, "progress": 10}) {
		return
	}

	user, err := s.users.GetUser(ctx, job.UserID)
	if err != nil {
		s.fail(&job, err)
		return
	}
	s.transition(ctx, &job, map[string]interface{}{"progress": 30})

	var result *GenerationResult
	switch job.JobType {
	case models.JobTypeModify:
		var original *models.Recipe
		if job.OriginalRecipeID == nil {
			err = apperr.Validation("Modify job has no original recipe")
			break
		}
		original, err = s.recipes.GetRecipe(ctx, *job.OriginalRecipeID)
		if err == nil {
			result, err = s.generator.Modify(ctx, original, job.UserPrompt(), user)
		}
	default:
		var prefs *types.RecipePreferences
		if len(job.Preferences) > 0 {
			prefs = &types.RecipePreferences{}
			if jerr := json.Unmarshal(job.Preferences, prefs); jerr != nil {
				prefs = nil
			}
		}
		result, err = s.generator.Generate(ctx, job.Prompt, user, prefs)
	}
	if ctx.Err() != nil {
		s.interrupted(&job)
		return
	}
	if err != nil {
		s.fail(&job, err)
		return
	}
	s.transition(ctx, &job, map[string]interface{}{"progress": 70})

	recipe, err := s.recipes.CreateFromGeneration(ctx, job.UserID, job.UserPrompt(), result)
	if err != nil {
		s.fail(&job, err)
		return
	}

	meta, _ := json.Marshal(result.Metadata())
	done := time.Now()
	s.transition(ctx, &job, map[string]interface{}{
		"status":              models.JobCompleted,
		"recipe_id":           recipe.ID,
		"generation_metadata": datatypes.JSON(meta),
		"progress":            100,
		"completed_at":        done,
	})
	s.log.Info("Recipe job completed", "job_id", job.ID, "recipe_id", recipe.ID)
}

// transition applies updates while the job is still live. It reports false when the
// job was cancelled or finished elsewhere.
func (s *JobService) transition(ctx context.Context, job *models.RecipeJob, updates map[string]interface{}) bool {
	res := s.db.WithContext(context.WithoutCancel(ctx)).Model(&models.RecipeJob{}).
		Where("id = ? AND status IN ?", job.ID, []models.JobStatus{models.JobPending, models.JobProcessing}).
		Updates(updates)
	if res.Error != nil {
		s.log.Error("Failed to update job", "job_id", job.ID, "error", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}
	s.refresh(job)
	return true
}

func (s *JobService) refresh(job *models.RecipeJob) {
	if err := s.db.First(job, "id = ?", job.ID).Error; err != nil {
		return
	}
	if s.cache != nil {
		s.cache.Set(context.Background(), job)
	}
}

func (s *JobService) fail(job *models.RecipeJob, cause error) {
	msg := apperr.PublicMessage(cause)
	if apperr.KindOf(cause) == apperr.KindInternal {
		msg = cause.Error()
	}
	s.log.Warn("Recipe job failed", "job_id", job.ID, "error", cause)
	s.transition(context.Background(), job, map[string]interface{}{
		"status":        models.JobFailed,
		"error_message": msg,
		"progress":      100,
		"completed_at":  time.Now(),
	})
}

// interrupted handles a cancelled job context. User cancellation already wrote the
// cancelled status; shutdown did not, so the job is failed instead.
func (s *JobService) interrupted(job *models.RecipeJob) {
	if s.baseCtx.Err() != nil {
		s.fail(job, fmt.Errorf("job interrupted: %w", errShuttingDown))
	}
}

func (s *JobService) forget(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}
}

func (s *JobService) load(ctx context.Context, userID uint, jobID string) (*models.RecipeJob, error) {
	var job models.RecipeJob
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", jobID, userID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Job not found or you don't have permission to view it")
	}
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load job")
	}
	return &job, nil
}

// Status returns the job, preferring the cached snapshot.
func (s *JobService) Status(ctx context.Context, userID uint, jobID string) (*models.RecipeJob, error) {
	if s.cache != nil {
		if job, ok := s.cache.Get(ctx, jobID); ok && job.UserID == userID {
			return job, nil
		}
	}
	job, err := s.load(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, job)
	}
	return job, nil
}

// Result returns a completed job and the recipe it produced.
func (s *JobService) Result(ctx context.Context, userID uint, jobID string) (*models.RecipeJob, *models.Recipe, error) {
	job, err := s.load(ctx, userID, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job.Status != models.JobCompleted || job.RecipeID == nil {
		return nil, nil, apperr.Validation("Job is not completed yet. Current status: %s", job.Status)
	}
	recipe, err := s.recipes.GetRecipe(ctx, *job.RecipeID)
	if err != nil {
		return nil, nil, err
	}
	return job, recipe, nil
}

// Cancel stops a pending or running job.
func (s *JobService) Cancel(ctx context.Context, userID uint, jobID string) error {
	job, err := s.load(ctx, userID, jobID)
	if err != nil {
		return err
	}
	if job.Status == models.JobCompleted || job.Status == models.JobFailed || job.Status == models.JobCancelled {
		return apperr.Validation("Cannot cancel job with status: %s", job.Status)
	}
	s.transition(ctx, job, map[string]interface{}{
		"status":        models.JobCancelled,
		"completed_at":  time.Now(),
		"error_message": "Job cancelled by user",
	})

	s.mu.Lock()
	cancel, ok := s.cancels[jobID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	s.log.Info("Recipe job cancelled", "job_id", jobID, "user_id", userID)
	return nil
}

// Wait blocks until every running job has finished.
func (s *JobService) Wait() {
	s.wg.Wait()
}

// Shutdown cancels running jobs and waits for them, up to ctx's deadline.
func (s *JobService) Shutdown(ctx context.Context) error {
	s.stop()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ToJobStatusResponse renders a job for status polling.
func ToJobStatusResponse(job *models.RecipeJob) types.JobStatusResponse {
	resp := types.JobStatusResponse{
		JobID:               job.ID,
		Status:              string(job.Status),
		Progress:            job.Progress,
		JobType:             job.JobType,
		CreatedAt:           job.CreatedAt,
		StartedAt:           job.StartedAt,
		CompletedAt:         job.CompletedAt,
		ErrorMessage:        job.ErrorMessage,
		EstimatedCompletion: job.EstimatedCompletion(),
	}
	if job.RecipeID != nil {
		id := strconv.FormatUint(uint64(*job.RecipeID), 10)
		resp.RecipeID = &id
	}
	return resp
}

// ToJobCreateResponse is the acknowledgement returned when a job is queued.
func ToJobCreateResponse(job *models.RecipeJob) types.JobCreateResponse {
	msg := "Recipe generation started"
	if job.JobType == models.JobTypeModify {
		msg = "Recipe modification started"
	}
	return types.JobCreateResponse{
		JobID:               job.ID,
		Status:              string(job.Status),
		Message:             msg,
		EstimatedCompletion: "2-3 minutes",
		StatusURL:           fmt.Sprintf("/api/jobs/recipes/%s/status", job.ID),
		PollingInterval:     JobPollingInterval,
	}
}
