package models

import "time"

// Recipe is the aggregate root for a dish: its ingredients, ordered
// instructions, and user ratings are loaded and saved together.
type Recipe struct {
	ID           int64
	Name         string
	Description  string
	Cuisine      string
	MealType     string
	CookingTime  time.Duration
	ImageURL     string
	Ingredients  []Ingredient
	Instructions []Instruction
	Ratings      []Rating
}

type Ingredient struct {
	ID       int64
	RecipeID int64
	Name     string
	Quantity string
}

type Instruction struct {
	ID       int64
	RecipeID int64
	Order    int
	Step     string
	Tip      string
}

type Rating struct {
	ID        int64
	RecipeID  int64
	UserID    string
	Stars     int
	Comment   string
	CreatedAt time.Time
}
