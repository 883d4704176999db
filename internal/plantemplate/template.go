// Package plantemplate holds the built-in weekly plan every new user starts from.
package plantemplate

import "weeklygrind/plan-tracker/internal/domain"

// Exercise is one template exercise. Template exercises are always custom
// (named inline) rather than library references.
type Exercise struct {
	Name     string
	SetsReps string
	Notes    string
	IsHIIT   bool
}

type Section struct {
	Title     string
	Exercises []Exercise
}

type Day struct {
	DayNumber     int
	Name          string
	Type          domain.DayType
	Duration      string
	RestContent   string
	HIITStructure string
	HIITNote      string
	Sections      []Section
}

type Plan struct {
	Name          string
	EquipmentTags []string
	Days          []Day
}

// Default returns a fresh copy of the default plan. Callers may mutate it.
func Default() Plan {
	p := defaultPlan
	p.EquipmentTags = append([]string(nil), defaultPlan.EquipmentTags...)
	p.Days = make([]Day, len(defaultPlan.Days))
	for i, d := range defaultPlan.Days {
		d.Sections = make([]Section, len(defaultPlan.Days[i].Sections))
		for j, s := range defaultPlan.Days[i].Sections {
			s.Exercises = append([]Exercise(nil), s.Exercises...)
			d.Sections[j] = s
		}
		p.Days[i] = d
	}
	return p
}

// ExerciseCount is the number of exercises across all sections of d.
func (d Day) ExerciseCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Exercises)
	}
	return n
}
