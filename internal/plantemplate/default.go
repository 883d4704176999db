package plantemplate

import "weeklygrind/plan-tracker/internal/domain"

var defaultPlan = Plan{
	Name: "Weekly Grind",
	EquipmentTags: []string{
		"Hoist Power Rack",
		"Barbell + Plates",
		"Adjustable Dumbbells",
		"EZ Curl Bar",
		"Adjustable Bench",
		"TRX",
		"Resistance Bands",
		"Kettlebell",
		"Medicine Ball",
		"Ab Wheel",
		"Balance Disc",
	},
	Days: []Day{
		{
			DayNumber: 1,
			Name:      "Monday — Upper Body Push/Pull",
			Type:      domain.DayTypeUpper,
			Duration:  "55–65 min",
			Sections: []Section{
				{Title: "Warm-Up — 5 min", Exercises: []Exercise{
					{Name: "TRX Face Pulls", SetsReps: "2 × 15", Notes: "Activate rear delts"},
					{Name: "Band Pull-Aparts", SetsReps: "2 × 20", Notes: "Resistance band"},
					{Name: "Arm Circles + Shoulder Rolls", SetsReps: "30 sec each", Notes: "Bodyweight"},
				}},
				{Title: "Main Work", Exercises: []Exercise{
					{Name: "Barbell Bench Press", SetsReps: "4 × 6–8", Notes: "Rest 90 sec"},
					{Name: "Barbell Bent-Over Row", SetsReps: "4 × 8", Notes: "Rest 90 sec"},
					{Name: "Dumbbell Incline Press", SetsReps: "3 × 10", Notes: "Bench + DBs"},
					{Name: "TRX Row (feet elevated)", SetsReps: "3 × 12", Notes: "Control the negative"},
					{Name: "Dumbbell Lateral Raises", SetsReps: "3 × 15", Notes: "Slow, no swinging"},
					{Name: "EZ Bar Curl", SetsReps: "3 × 12", Notes: "Full range of motion"},
					{Name: "Tricep Pushdowns (band)", SetsReps: "3 × 15", Notes: "Resistance band"},
				}},
				{Title: "Finisher — Core", Exercises: []Exercise{
					{Name: "Ab Wheel Rollouts", SetsReps: "3 × 10", Notes: "Slow and controlled"},
					{Name: "TRX Plank Hold", SetsReps: "3 × 30 sec", Notes: "Feet in TRX straps"},
				}},
			},
		},
		{
			DayNumber:     2,
			Name:          "Tuesday — HIIT Metabolic Circuit",
			Type:          domain.DayTypeHIIT,
			Duration:      "30–40 min",
			HIITStructure: "Format: 4 rounds of the circuit below\nWork: 40 seconds ON / 20 seconds REST per exercise\nRound Rest: 90 seconds between full rounds\nWarm-up: 5 min light movement + dynamic stretching",
			HIITNote:      "Light–moderate weight on the clean & press — this is cardio, not a max lift. Push hard on intensity, keep form tight on swings. Cool down 5 min with foam roller and light stretching.",
			Sections: []Section{
				{Title: "Circuit (6 Moves)", Exercises: []Exercise{
					{Name: "Kettlebell Swings", SetsReps: "40 sec on / 20 off", IsHIIT: true},
					{Name: "TRX Jump Squats", SetsReps: "40 sec on / 20 off", IsHIIT: true},
					{Name: "Medicine Ball Slams", SetsReps: "40 sec on / 20 off", IsHIIT: true},
					{Name: "Barbell Clean & Press", SetsReps: "40 sec on / 20 off", IsHIIT: true},
					{Name: "Band Squat to Row", SetsReps: "40 sec on / 20 off", IsHIIT: true},
					{Name: "Balance Disc Burpees", SetsReps: "40 sec on / 20 off", IsHIIT: true},
				}},
			},
		},
		{
			DayNumber: 3,
			Name:      "Wednesday — Lower Body Strength",
			Type:      domain.DayTypeLower,
			Duration:  "55–65 min",
			Sections: []Section{
				{Title: "Warm-Up — 5 min", Exercises: []Exercise{
					{Name: "Hip Circle Mobilization", SetsReps: "2 × 10 each", Notes: "Bodyweight"},
					{Name: "Band Lateral Walks", SetsReps: "2 × 15 steps", Notes: "Resistance band"},
					{Name: "Goblet Squat (light KB)", SetsReps: "2 × 10", Notes: "Deep range of motion"},
				}},
				{Title: "Main Work", Exercises: []Exercise{
					{Name: "Barbell Back Squat", SetsReps: "4 × 6–8", Notes: "Rest 2 min, full depth"},
					{Name: "Romanian Deadlift (barbell)", SetsReps: "4 × 8–10", Notes: "Feel the hamstrings"},
					{Name: "Dumbbell Walking Lunges", SetsReps: "3 × 12 each leg", Notes: "Use open floor space"},
					{Name: "TRX Single-Leg Squat", SetsReps: "3 × 10 each", Notes: "TRX for assistance"},
					{Name: "Kettlebell Goblet Squat", SetsReps: "3 × 15", Notes: "Pause at bottom 1 sec"},
					{Name: "Standing Calf Raises (barbell)", SetsReps: "4 × 20", Notes: "Slow negative"},
				}},
				{Title: "Core + Stability Finisher", Exercises: []Exercise{
					{Name: "Balance Disc Single-Leg Stand", SetsReps: "3 × 45 sec each", Notes: "Eyes closed = harder"},
					{Name: "Ab Wheel Rollouts", SetsReps: "3 × 10", Notes: "Core stability"},
				}},
			},
		},
		{
			DayNumber:   4,
			Name:        "Thursday — Active Recovery",
			Type:        domain.DayTypeRest,
			Duration:    "Optional 20 min",
			RestContent: "Full rest or active recovery only. Light walk, foam rolling, TRX passive stretching, or yoga. Let your CNS recover before Friday's full-body session. Prioritize sleep and protein intake today.",
		},
		{
			DayNumber: 5,
			Name:      "Friday — Full Body Compound Power",
			Type:      domain.DayTypeFull,
			Duration:  "60–70 min",
			Sections: []Section{
				{Title: "Warm-Up — 5 min", Exercises: []Exercise{
					{Name: "TRX Squat + Row Combo", SetsReps: "2 × 10", Notes: "Full body activation"},
					{Name: "Band Shoulder Pass-Throughs", SetsReps: "2 × 10", Notes: "Mobility"},
					{Name: "Inchworms", SetsReps: "2 × 5", Notes: "Bodyweight"},
				}},
				{Title: "Main Compound Lifts (Heavy)", Exercises: []Exercise{
					{Name: "Deadlift (barbell)", SetsReps: "5 × 5", Notes: "Heaviest lift of week"},
					{Name: "Barbell Overhead Press", SetsReps: "4 × 6–8", Notes: "Rest 2 min"},
					{Name: "Barbell Row", SetsReps: "4 × 8", Notes: "Supinate grip"},
				}},
				{Title: "Accessory Work", Exercises: []Exercise{
					{Name: "Dumbbell Farmer's Carry", SetsReps: "3 × 40m", Notes: "Heavy as possible"},
					{Name: "TRX Push-Up (feet elevated)", SetsReps: "3 × 12", Notes: "Slow negative"},
					{Name: "Dumbbell Hammer Curls", SetsReps: "3 × 12", Notes: "Superset with triceps"},
					{Name: "Overhead Band Tricep Extension", SetsReps: "3 × 15", Notes: "Superset with curls"},
				}},
				{Title: "Core Finisher", Exercises: []Exercise{
					{Name: "Medicine Ball Russian Twists", SetsReps: "3 × 20", Notes: "Weighted, slow"},
					{Name: "TRX Pike", SetsReps: "3 × 12", Notes: "Feet in straps, hips high"},
					{Name: "Dead Bug (bodyweight)", SetsReps: "3 × 10 each", Notes: "Lower back protection"},
				}},
			},
		},
		{
			DayNumber:     6,
			Name:          "Saturday — HIIT Strength Intervals",
			Type:          domain.DayTypeHIIT,
			Duration:      "35–45 min",
			HIITStructure: "Format: Every Minute On the Minute (EMOM) — 20 minutes\nAlternating: Odd minutes = Exercise A → Even minutes = Exercise B\nThen: 10-minute Tabata finisher (20 sec on / 10 sec off)",
			HIITNote:      "Saturday's session is about max effort in minimum time. Go heavy on the hang cleans — this is your power day. Tabata should leave you gasping. Foam roll for 10 min after and you're done for the week.",
			Sections: []Section{
				{Title: "EMOM — 20 Minutes", Exercises: []Exercise{
					{Name: "A: Barbell Hang Clean (5 reps)", SetsReps: "Odd minutes — explosive", IsHIIT: true},
					{Name: "B: TRX Burpee (8 reps)", SetsReps: "Even minutes — conditioning", IsHIIT: true},
				}},
				{Title: "Tabata Finisher — 10 Minutes", Exercises: []Exercise{
					{Name: "Kettlebell Goblet Squat Jumps", SetsReps: "20 sec on / 10 sec off", IsHIIT: true},
					{Name: "Medicine Ball Chest Throw (wall)", SetsReps: "20 sec on / 10 sec off", IsHIIT: true},
					{Name: "Band Sprinter Pull", SetsReps: "20 sec on / 10 sec off", IsHIIT: true},
					{Name: "TRX Mountain Climbers", SetsReps: "20 sec on / 10 sec off", IsHIIT: true},
				}},
			},
		},
		{
			DayNumber:   7,
			Name:        "Sunday — Full Rest",
			Type:        domain.DayTypeRest,
			Duration:    "Zero",
			RestContent: "No training. Eat well, hydrate, sleep 8 hours. This is where the gains actually happen — supercompensation requires real rest. Prep your week, plan your lifts, and come back Monday locked in.",
		},
	},
}
