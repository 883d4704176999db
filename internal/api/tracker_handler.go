package api

import (
	"net/http"

	"weeklygrind/plan-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackerHandler serves the active plan and its per-day checklists.
type TrackerHandler struct {
	trackerService service.TrackerService
}

func NewTrackerHandler(trackerService service.TrackerService) *TrackerHandler {
	return &TrackerHandler{trackerService: trackerService}
}

type StartPlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type ExerciseCompletionRequest struct {
	DayNumber     *int   `json:"day_number" binding:"required"`
	DayExerciseID string `json:"day_exercise_id" binding:"required"`
}

type CompleteDayRequest struct {
	DayNumber *int `json:"day_number" binding:"required"`
}

// ActivePlan godoc
// @Summary The caller's active plan with completions
// @Description needs_setup is true when the caller has no active plan yet.
// @Tags Tracker
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ActivePlanResponse
// @Router /user-plans/active [get]
func (h *TrackerHandler) ActivePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := h.trackerService.ActivePlan(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapActivePlan(view))
}

// StartPlan godoc
// @Summary Make an owned plan the active plan
// @Description Resets the day pointer to day one.
// @Tags Tracker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartPlanRequest true "Plan to start"
// @Success 200 {object} UserPlanResponse "Existing user plan rebound"
// @Success 201 {object} UserPlanResponse "User plan created"
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /user-plans/start [post]
func (h *TrackerHandler) StartPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req StartPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "plan_id required")
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan_id")
		return
	}

	userPlan, created, err := h.trackerService.StartPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, mapUserPlan(userPlan))
}

// bindExerciseCompletion parses the path and body shared by the check and
// uncheck routes.
func bindExerciseCompletion(c *gin.Context) (userPlanID primitive.ObjectID, dayNumber int, exerciseID primitive.ObjectID, ok bool) {
	if userPlanID, ok = paramObjectID(c, "id"); !ok {
		return
	}
	var req ExerciseCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "day_number and day_exercise_id required")
		return userPlanID, 0, exerciseID, false
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.DayExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day_exercise_id")
		return userPlanID, 0, exerciseID, false
	}
	return userPlanID, *req.DayNumber, exerciseID, true
}

// MarkExerciseComplete godoc
// @Summary Check an exercise on a day's checklist
// @Description Checking an exercise twice is a no-op.
// @Tags Tracker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User plan ID"
// @Param body body ExerciseCompletionRequest true "Exercise to check"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /user-plans/{id}/exercise-complete [post]
func (h *TrackerHandler) MarkExerciseComplete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	userPlanID, dayNumber, exerciseID, ok := bindExerciseCompletion(c)
	if !ok {
		return
	}
	err := h.trackerService.MarkExerciseComplete(c.Request.Context(), userID, userPlanID, dayNumber, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MarkExerciseIncomplete godoc
// @Summary Uncheck an exercise on a day's in-progress checklist
// @Tags Tracker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User plan ID"
// @Param body body ExerciseCompletionRequest true "Exercise to uncheck"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /user-plans/{id}/exercise-uncomplete [post]
func (h *TrackerHandler) MarkExerciseIncomplete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	userPlanID, dayNumber, exerciseID, ok := bindExerciseCompletion(c)
	if !ok {
		return
	}
	err := h.trackerService.MarkExerciseIncomplete(c.Request.Context(), userID, userPlanID, dayNumber, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CompleteDay godoc
// @Summary Finalize a day and advance the day pointer
// @Tags Tracker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User plan ID"
// @Param body body CompleteDayRequest true "Day to finalize"
// @Success 200 {object} UserPlanResponse
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /user-plans/{id}/complete [post]
func (h *TrackerHandler) CompleteDay(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	userPlanID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req CompleteDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "day_number required")
		return
	}

	userPlan, err := h.trackerService.CompleteDay(c.Request.Context(), userID, userPlanID, *req.DayNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapUserPlan(userPlan))
}
