package api

import (
	"errors"
	"io"
	"net/http"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler serves plan editing: plans, their days and day exercises.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type CreatePlanRequest struct {
	Name          *string  `json:"name"`
	EquipmentTags []string `json:"equipment_tags"`
}

type UpdatePlanRequest struct {
	Name          *string   `json:"name"`
	EquipmentTags *[]string `json:"equipment_tags"`
}

type UpdateDayRequest struct {
	Type          *domain.DayType `json:"type"`
	Name          *string         `json:"name"`
	Duration      *string         `json:"duration"`
	RestContent   *string         `json:"rest_content"`
	HIITStructure *string         `json:"hiit_structure"`
	HIITNote      *string         `json:"hiit_note"`
}

type AddExerciseRequest struct {
	SectionTitle      string  `json:"section_title"`
	CustomName        string  `json:"custom_name"`
	LibraryExerciseID *string `json:"library_exercise_id"`
	SetsReps          string  `json:"sets_reps"`
	Notes             string  `json:"notes"`
	URL               string  `json:"url" binding:"omitempty,url"`
	Equipment         string  `json:"equipment"`
	IsHIITMove        bool    `json:"is_hiit_move"`
}

type UpdateExerciseRequest struct {
	CustomName        *string `json:"custom_name"`
	LibraryExerciseID *string `json:"library_exercise_id"`
	SectionTitle      *string `json:"section_title"`
	SetsReps          *string `json:"sets_reps"`
	Notes             *string `json:"notes"`
	URL               *string `json:"url" binding:"omitempty,url"`
	Equipment         *string `json:"equipment"`
	SortOrder         *int    `json:"sort_order" binding:"omitempty,min=0"`
	IsHIITMove        *bool   `json:"is_hiit_move"`
}

type DisplayNameResponse struct {
	Name string `json:"name"`
}

// optionalObjectID parses an optional hex id from a request body. An empty
// string counts as absent.
func optionalObjectID(c *gin.Context, field string, hex *string) (*primitive.ObjectID, bool) {
	if hex == nil || *hex == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(*hex)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+field)
		return nil, false
	}
	return &id, true
}

// --- Plans ---

// ListPlans godoc
// @Summary List the caller's plans, newest first
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PlanResponse
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlans(plans))
}

// CreatePlan godoc
// @Summary Create a plan from the default template
// @Description Name and equipment tags override the template when given.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreatePlanRequest false "Overrides"
// @Success 201 {object} PlanDetailResponse
// @Failure 400 {object} gin.H
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreatePlanRequest
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	detail, err := h.planService.CreatePlan(c.Request.Context(), userID, service.CreatePlanInput{
		Name:          req.Name,
		EquipmentTags: req.EquipmentTags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapPlanDetail(detail))
}

// GetPlan godoc
// @Summary Plan detail with days and resolved exercises
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} PlanDetailResponse
// @Failure 404 {object} gin.H
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	detail, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanDetail(detail))
}

// UpdatePlan godoc
// @Summary Rename a plan or replace its equipment tags
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body UpdatePlanRequest true "Fields to change"
// @Success 200 {object} PlanResponse
// @Failure 400 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /plans/{id} [patch]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, planID, service.PlanUpdate{
		Name:          req.Name,
		EquipmentTags: req.EquipmentTags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlan(plan))
}

// DeletePlan godoc
// @Summary Delete a plan with its days and exercises
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 404 {object} gin.H
// @Failure 409 {object} gin.H "Plan is active"
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPlan godoc
// @Summary Export a plan as JSON to object storage
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 201 {object} ExportResponse
// @Failure 404 {object} gin.H
// @Failure 503 {object} gin.H "Object storage not configured"
// @Router /plans/{id}/export [post]
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	result, err := h.planService.ExportPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := mapExport(&result.Export)
	resp.DownloadURL = result.DownloadURL
	resp.ExpiresAt = &result.ExpiresAt
	c.JSON(http.StatusCreated, resp)
}

// ListExports godoc
// @Summary Past exports of a plan, newest first
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {array} ExportResponse
// @Failure 404 {object} gin.H
// @Router /plans/{id}/exports [get]
func (h *PlanHandler) ListExports(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	exports, err := h.planService.ListExports(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]ExportResponse, len(exports))
	for i := range exports {
		resp[i] = mapExport(&exports[i])
	}
	c.JSON(http.StatusOK, resp)
}

// --- Days ---

// UpdateDay godoc
// @Summary Edit a plan day
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan day ID"
// @Param day body UpdateDayRequest true "Fields to change"
// @Success 200 {object} PlanDayResponse
// @Failure 400 {object} gin.H
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /plan-days/{id} [patch]
func (h *PlanHandler) UpdateDay(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	dayID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	day, err := h.planService.UpdateDay(c.Request.Context(), userID, dayID, service.DayUpdate{
		Type:          req.Type,
		Name:          req.Name,
		Duration:      req.Duration,
		RestContent:   req.RestContent,
		HIITStructure: req.HIITStructure,
		HIITNote:      req.HIITNote,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapDay(day))
}

// AddExercise godoc
// @Summary Append an exercise to a day
// @Description Exactly one of custom_name and library_exercise_id is required.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan day ID"
// @Param exercise body AddExerciseRequest true "Exercise"
// @Success 201 {object} ExerciseResponse
// @Failure 400 {object} gin.H
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /plan-days/{id}/exercises [post]
func (h *PlanHandler) AddExercise(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	dayID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	libraryID, ok := optionalObjectID(c, "library_exercise_id", req.LibraryExerciseID)
	if !ok {
		return
	}

	exercise, err := h.planService.AddExercise(c.Request.Context(), userID, dayID, service.NewExercise{
		SectionTitle:      req.SectionTitle,
		CustomName:        req.CustomName,
		LibraryExerciseID: libraryID,
		SetsReps:          req.SetsReps,
		Notes:             req.Notes,
		URL:               req.URL,
		Equipment:         req.Equipment,
		IsHIITMove:        req.IsHIITMove,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapExercise(exercise))
}

// --- Day exercises ---

// UpdateExercise godoc
// @Summary Swap or edit a day exercise
// @Description Setting library_exercise_id clears the custom name and vice versa.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Day exercise ID"
// @Param exercise body UpdateExerciseRequest true "Fields to change"
// @Success 200 {object} ExerciseResponse
// @Failure 400 {object} gin.H
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /day-exercises/{id} [patch]
func (h *PlanHandler) UpdateExercise(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	libraryID, ok := optionalObjectID(c, "library_exercise_id", req.LibraryExerciseID)
	if !ok {
		return
	}

	exercise, err := h.planService.UpdateExercise(c.Request.Context(), userID, exerciseID, service.ExerciseUpdate{
		CustomName:        req.CustomName,
		LibraryExerciseID: libraryID,
		SectionTitle:      req.SectionTitle,
		SetsReps:          req.SetsReps,
		Notes:             req.Notes,
		URL:               req.URL,
		Equipment:         req.Equipment,
		SortOrder:         req.SortOrder,
		IsHIITMove:        req.IsHIITMove,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapExercise(exercise))
}

// DeleteExercise godoc
// @Summary Remove a day exercise
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Day exercise ID"
// @Success 204
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /day-exercises/{id} [delete]
func (h *PlanHandler) DeleteExercise(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.planService.DeleteExercise(c.Request.Context(), userID, exerciseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExerciseDisplayName godoc
// @Summary Resolved name of one day exercise
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Day exercise ID"
// @Success 200 {object} DisplayNameResponse
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /day-exercises/{id}/display-name [get]
func (h *PlanHandler) ExerciseDisplayName(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	name, err := h.planService.ExerciseDisplayName(c.Request.Context(), userID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DisplayNameResponse{Name: name})
}
