package catalog

import (
	"errors"
	"time"
)

var ErrCategoryNotFound = errors.New("exercise category not found")

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Exercise struct {
	ID           int       `json:"id"`
	CategoryID   int       `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type SeedCategory struct {
	Name        string
	Description string
	Exercises   []SeedExercise
}

type SeedExercise struct {
	Name        string
	Description string
}

// DefaultCatalog is inserted on first start when the catalog is empty.
var DefaultCatalog = []SeedCategory{
	{
		Name:        "Bodyweight",
		Description: "Exercises that need no equipment",
		Exercises: []SeedExercise{
			{"Burpee", "Full body conditioning"},
			{"Squat", "Lower body strength"},
			{"Lunge", "Lower body balance"},
			{"Jump Squat", "Explosive lower body"},
			{"Push-up", "Upper body strength"},
			{"Plank", "Core stability"},
			{"Mountain Climber", "Full body cardio"},
			{"Jumping Jack", "Full body cardio"},
			{"High Knees", "Lower body cardio"},
			{"Burpee Broad Jump", "Full body compound movement"},
		},
	},
	{
		Name:        "Dumbbell",
		Description: "Exercises with dumbbells",
		Exercises: []SeedExercise{
			{"Dumbbell Squat", "Squat holding dumbbells"},
			{"Dumbbell Lunge", "Lunge holding dumbbells"},
			{"Dumbbell Press", "Shoulder strength"},
			{"Dumbbell Row", "Back strength"},
			{"Dumbbell Curl", "Biceps"},
			{"Dumbbell Triceps Extension", "Triceps"},
		},
	},
	{
		Name:        "Kettlebell",
		Description: "Exercises with kettlebells",
		Exercises: []SeedExercise{
			{"Kettlebell Swing", "Kettlebell fundamental"},
			{"Kettlebell Goblet Squat", "Squat holding a kettlebell"},
			{"Kettlebell Turkish Get-up", "Full body compound movement"},
			{"Kettlebell Clean", "Explosive upper body"},
			{"Kettlebell Snatch", "Advanced full body"},
		},
	},
	{
		Name:        "Barbell",
		Description: "Exercises with a barbell",
		Exercises: []SeedExercise{
			{"Back Squat", "Squat with a barbell"},
			{"Deadlift", "Full body strength"},
			{"Bench Press", "Upper body strength"},
			{"Overhead Press", "Shoulder strength"},
			{"Barbell Row", "Back strength"},
		},
	},
	{
		Name:        "Other",
		Description: "Everything else",
	},
}
