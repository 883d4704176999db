package api

import (
	"time"

	"weeklygrind/plan-tracker/internal/domain"
	"weeklygrind/plan-tracker/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Responses ---

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type PlanResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	EquipmentTags []string  `json:"equipment_tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PlanDetailResponse is a plan with its days and resolved exercises.
type PlanDetailResponse struct {
	PlanResponse
	Days []DayResponse `json:"days"`
}

// PlanDayResponse is a day without its exercises, as returned by day edits.
type PlanDayResponse struct {
	ID            string         `json:"id"`
	PlanID        string         `json:"plan_id"`
	DayNumber     int            `json:"day_number"`
	Type          domain.DayType `json:"type"`
	Name          string         `json:"name"`
	Duration      string         `json:"duration"`
	RestContent   *string        `json:"rest_content"`
	HIITStructure *string        `json:"hiit_structure"`
	HIITNote      *string        `json:"hiit_note"`
}

// DayResponse always carries the exercise list, empty on rest days.
type DayResponse struct {
	PlanDayResponse
	Exercises []ExerciseResponse `json:"exercises"`
}

// ExerciseResponse flattens the exercise reference: exactly one of
// CustomName and LibraryExerciseID is non-null.
type ExerciseResponse struct {
	ID                string  `json:"id"`
	PlanDayID         string  `json:"plan_day_id"`
	SectionTitle      string  `json:"section_title"`
	CustomName        *string `json:"custom_name"`
	LibraryExerciseID *string `json:"library_exercise_id"`
	DisplayName       string  `json:"display_name"`
	SetsReps          string  `json:"sets_reps"`
	Notes             string  `json:"notes"`
	URL               string  `json:"url"`
	Equipment         string  `json:"equipment"`
	SortOrder         int     `json:"sort_order"`
	IsHIITMove        bool    `json:"is_hiit_move"`
}

type UserPlanResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	PlanID          string    `json:"plan_id"`
	CurrentDayIndex int       `json:"current_day_index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CompletionResponse struct {
	ID                   string     `json:"id"`
	UserPlanID           string     `json:"user_plan_id"`
	DayNumber            int        `json:"day_number"`
	CompletedAt          *time.Time `json:"completed_at"`
	CompletedExerciseIDs []string   `json:"completed_exercise_ids"`
}

// ActivePlanResponse. Checked maps day numbers to the exercise ids shown
// as done for that day.
type ActivePlanResponse struct {
	UserPlan    *UserPlanResponse    `json:"user_plan"`
	Plan        *PlanDetailResponse  `json:"plan"`
	Completions []CompletionResponse `json:"completions"`
	Checked     map[int][]string     `json:"checked"`
	NeedsSetup  bool                 `json:"needs_setup,omitempty"`
}

type ShareLinkResponse struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SharePreviewResponse leaves out the owner.
type SharePreviewResponse struct {
	Name          string        `json:"name"`
	EquipmentTags []string      `json:"equipment_tags"`
	ExpiresAt     time.Time     `json:"expires_at"`
	Days          []DayResponse `json:"days"`
}

type ExportResponse struct {
	ID          string     `json:"id"`
	PlanID      string     `json:"plan_id"`
	Size        int64      `json:"size"`
	CreatedAt   time.Time  `json:"created_at"`
	DownloadURL string     `json:"download_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type LibraryExerciseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Equipment   string `json:"equipment"`
	MuscleGroup string `json:"muscle_group"`
}

// --- Mappers ---

func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{ID: user.ID.Hex(), Email: user.Email, CreatedAt: user.CreatedAt}
}

func mapPlan(p *domain.Plan) PlanResponse {
	tags := p.EquipmentTags
	if tags == nil {
		tags = []string{}
	}
	return PlanResponse{
		ID:            p.ID.Hex(),
		OwnerID:       p.OwnerID.Hex(),
		Name:          p.Name,
		EquipmentTags: tags,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func mapPlans(plans []domain.Plan) []PlanResponse {
	resp := make([]PlanResponse, len(plans))
	for i := range plans {
		resp[i] = mapPlan(&plans[i])
	}
	return resp
}

func mapPlanDetail(detail *service.PlanDetail) *PlanDetailResponse {
	if detail == nil {
		return nil
	}
	return &PlanDetailResponse{PlanResponse: mapPlan(&detail.Plan), Days: mapDays(detail.Days)}
}

func mapDays(days []service.DayDetail) []DayResponse {
	resp := make([]DayResponse, len(days))
	for i, d := range days {
		day := DayResponse{PlanDayResponse: mapDay(&d.Day)}
		day.Exercises = make([]ExerciseResponse, len(d.Exercises))
		for j := range d.Exercises {
			day.Exercises[j] = mapExercise(&d.Exercises[j])
		}
		resp[i] = day
	}
	return resp
}

func mapDay(d *domain.PlanDay) PlanDayResponse {
	return PlanDayResponse{
		ID:            d.ID.Hex(),
		PlanID:        d.PlanID.Hex(),
		DayNumber:     d.DayNumber,
		Type:          d.Type,
		Name:          d.Name,
		Duration:      d.Duration,
		RestContent:   d.RestContent,
		HIITStructure: d.HIITStructure,
		HIITNote:      d.HIITNote,
	}
}

func mapExercise(e *service.ResolvedExercise) ExerciseResponse {
	resp := ExerciseResponse{
		ID:           e.ID.Hex(),
		PlanDayID:    e.PlanDayID.Hex(),
		SectionTitle: e.SectionTitle,
		DisplayName:  e.DisplayName,
		SetsReps:     e.SetsReps,
		Notes:        e.Notes,
		URL:          e.URL,
		Equipment:    e.Equipment,
		SortOrder:    e.SortOrder,
		IsHIITMove:   e.IsHIITMove,
	}
	if name, ok := e.Ref.CustomName(); ok {
		resp.CustomName = &name
	}
	if id, ok := e.Ref.LibraryID(); ok {
		hex := id.Hex()
		resp.LibraryExerciseID = &hex
	}
	return resp
}

func mapUserPlan(up *domain.UserPlan) *UserPlanResponse {
	if up == nil {
		return nil
	}
	return &UserPlanResponse{
		ID:              up.ID.Hex(),
		UserID:          up.UserID.Hex(),
		PlanID:          up.PlanID.Hex(),
		CurrentDayIndex: up.CurrentDayIndex,
		CreatedAt:       up.CreatedAt,
		UpdatedAt:       up.UpdatedAt,
	}
}

func mapActivePlan(view *service.ActivePlanView) ActivePlanResponse {
	resp := ActivePlanResponse{
		UserPlan:    mapUserPlan(view.UserPlan),
		Plan:        mapPlanDetail(view.Plan),
		Completions: []CompletionResponse{},
		Checked:     map[int][]string{},
		NeedsSetup:  view.NeedsSetup,
	}
	if view.Plan == nil {
		return resp
	}
	resp.Completions = make([]CompletionResponse, len(view.Completions))
	for i, c := range view.Completions {
		resp.Completions[i] = CompletionResponse{
			ID:                   c.ID.Hex(),
			UserPlanID:           c.UserPlanID.Hex(),
			DayNumber:            c.DayNumber,
			CompletedAt:          c.CompletedAt,
			CompletedExerciseIDs: hexIDs(c.ExerciseIDs),
		}
	}
	resp.Checked = make(map[int][]string, len(view.Checked))
	for day, ids := range view.Checked {
		resp.Checked[day] = hexIDs(ids)
	}
	return resp
}

func mapExport(e *domain.PlanExport) ExportResponse {
	return ExportResponse{ID: e.ID.Hex(), PlanID: e.PlanID.Hex(), Size: e.Size, CreatedAt: e.CreatedAt}
}

func mapLibrary(exercises []domain.LibraryExercise) []LibraryExerciseResponse {
	resp := make([]LibraryExerciseResponse, len(exercises))
	for i, e := range exercises {
		resp[i] = LibraryExerciseResponse{
			ID:          e.ID.Hex(),
			Name:        e.Name,
			Category:    e.Category,
			Equipment:   e.Equipment,
			MuscleGroup: e.MuscleGroup,
		}
	}
	return resp
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
