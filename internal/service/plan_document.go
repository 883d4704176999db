package service

import "time"

// PlanDocument is the portable JSON form of a plan tree used for exports
// and share previews. Ids are left out so a document describes content
// only.
type PlanDocument struct {
	Name          string        `json:"name"`
	EquipmentTags []string      `json:"equipment_tags"`
	ExportedAt    time.Time     `json:"exported_at"`
	Days          []DayDocument `json:"days"`
}

type DayDocument struct {
	DayNumber     int                `json:"day_number"`
	Type          string             `json:"type"`
	Name          string             `json:"name"`
	Duration      string             `json:"duration"`
	RestContent   string             `json:"rest_content,omitempty"`
	HIITStructure string             `json:"hiit_structure,omitempty"`
	HIITNote      string             `json:"hiit_note,omitempty"`
	Exercises     []ExerciseDocument `json:"exercises"`
}

type ExerciseDocument struct {
	SectionTitle string `json:"section_title"`
	Name         string `json:"name"`
	SetsReps     string `json:"sets_reps"`
	Notes        string `json:"notes,omitempty"`
	URL          string `json:"url,omitempty"`
	Equipment    string `json:"equipment,omitempty"`
	IsHIITMove   bool   `json:"is_hiit_move"`
}

// NewPlanDocument flattens a resolved plan tree.
func NewPlanDocument(detail *PlanDetail) PlanDocument {
	doc := PlanDocument{
		Name:          detail.Plan.Name,
		EquipmentTags: detail.Plan.EquipmentTags,
		ExportedAt:    time.Now().UTC(),
		Days:          make([]DayDocument, len(detail.Days)),
	}
	for i, d := range detail.Days {
		day := DayDocument{
			DayNumber:     d.Day.DayNumber,
			Type:          string(d.Day.Type),
			Name:          d.Day.Name,
			Duration:      d.Day.Duration,
			RestContent:   deref(d.Day.RestContent),
			HIITStructure: deref(d.Day.HIITStructure),
			HIITNote:      deref(d.Day.HIITNote),
			Exercises:     make([]ExerciseDocument, len(d.Exercises)),
		}
		for j, e := range d.Exercises {
			day.Exercises[j] = ExerciseDocument{
				SectionTitle: e.SectionTitle,
				Name:         e.DisplayName,
				SetsReps:     e.SetsReps,
				Notes:        e.Notes,
				URL:          e.URL,
				Equipment:    e.Equipment,
				IsHIITMove:   e.IsHIITMove,
			}
		}
		doc.Days[i] = day
	}
	return doc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
