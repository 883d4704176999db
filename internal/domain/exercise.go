// internal/domain/exercise.go
package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidExerciseRef is returned when an exercise references neither (or
// both) a custom name and a library entry.
var ErrInvalidExerciseRef = errors.New("exercise must reference exactly one of a custom name or a library exercise")

// LibraryExercise is shared, read-only reference data.
type LibraryExercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Equipment   string             `bson:"equipment" json:"equipment"`
	MuscleGroup string             `bson:"muscleGroup" json:"muscle_group"`
}

// ExerciseRefKind tags the variant held by an ExerciseRef.
type ExerciseRefKind string

const (
	ExerciseRefCustom  ExerciseRefKind = "custom"
	ExerciseRefLibrary ExerciseRefKind = "library"
)

// ExerciseRef is either Custom(name) or Library(id). The zero value is
// invalid; build one with CustomExercise or LibraryExerciseRef.
type ExerciseRef struct {
	kind       ExerciseRefKind
	customName string
	libraryID  primitive.ObjectID
}

// CustomExercise references a freeform exercise by name.
func CustomExercise(name string) ExerciseRef {
	return ExerciseRef{kind: ExerciseRefCustom, customName: strings.TrimSpace(name)}
}

// LibraryExerciseRef references an entry of the exercise library.
func LibraryExerciseRef(id primitive.ObjectID) ExerciseRef {
	return ExerciseRef{kind: ExerciseRefLibrary, libraryID: id}
}

func (r ExerciseRef) Kind() ExerciseRefKind { return r.kind }

// CustomName returns the name of a custom reference.
func (r ExerciseRef) CustomName() (string, bool) {
	if r.kind != ExerciseRefCustom {
		return "", false
	}
	return r.customName, true
}

// LibraryID returns the library id of a library reference.
func (r ExerciseRef) LibraryID() (primitive.ObjectID, bool) {
	if r.kind != ExerciseRefLibrary {
		return primitive.NilObjectID, false
	}
	return r.libraryID, true
}

// Validate enforces the one-of invariant on write.
func (r ExerciseRef) Validate() error {
	switch r.kind {
	case ExerciseRefCustom:
		if r.customName == "" {
			return ErrInvalidExerciseRef
		}
	case ExerciseRefLibrary:
		if r.libraryID.IsZero() {
			return ErrInvalidExerciseRef
		}
	default:
		return ErrInvalidExerciseRef
	}
	return nil
}

type exerciseRefDoc struct {
	Kind       ExerciseRefKind    `bson:"kind" json:"kind"`
	CustomName string             `bson:"customName,omitempty" json:"custom_name,omitempty"`
	LibraryID  primitive.ObjectID `bson:"libraryExerciseId,omitempty" json:"library_exercise_id,omitempty"`
}

func (r ExerciseRef) doc() exerciseRefDoc {
	return exerciseRefDoc{Kind: r.kind, CustomName: r.customName, LibraryID: r.libraryID}
}

func (r *ExerciseRef) fromDoc(d exerciseRefDoc) {
	r.kind, r.customName, r.libraryID = d.Kind, d.CustomName, d.LibraryID
}

func (r ExerciseRef) MarshalBSON() ([]byte, error) { return bson.Marshal(r.doc()) }

func (r *ExerciseRef) UnmarshalBSON(data []byte) error {
	var d exerciseRefDoc
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	r.fromDoc(d)
	return nil
}

func (r ExerciseRef) MarshalJSON() ([]byte, error) { return json.Marshal(r.doc()) }

func (r *ExerciseRef) UnmarshalJSON(data []byte) error {
	var d exerciseRefDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	r.fromDoc(d)
	return nil
}

// DayExercise places an exercise into a plan day.
type DayExercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanDayID    primitive.ObjectID `bson:"planDayId" json:"plan_day_id"`
	SectionTitle string             `bson:"sectionTitle" json:"section_title"`
	Ref          ExerciseRef        `bson:"ref" json:"ref"`
	SetsReps     string             `bson:"setsReps" json:"sets_reps"`
	Notes        string             `bson:"notes" json:"notes"`
	URL          string             `bson:"url,omitempty" json:"url,omitempty"`
	Equipment    string             `bson:"equipment,omitempty" json:"equipment,omitempty"`
	SortOrder    int                `bson:"sortOrder" json:"sort_order"`
	IsHIITMove   bool               `bson:"isHiitMove" json:"is_hiit_move"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updated_at"`
}
