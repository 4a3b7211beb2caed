// Package client is the web front end's HTTP client for the back-end API.
// It translates API status codes back into the shared sentinel errors so the
// rest of the front end never inspects HTTP responses.
package client

import (
	"context"
	"time"
)

// TokenTriple mirrors the API's token payload.
type TokenTriple struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AuthPayload mirrors the API's auth response.
type AuthPayload struct {
	Token           TokenTriple `json:"token"`
	FullName        string      `json:"fullName"`
	Email           string      `json:"email"`
	ProfileImageURL string      `json:"profileImageUrl"`
	Roles           []string    `json:"roles"`
}

// RegisterForm carries the multipart registration fields.
type RegisterForm struct {
	FullName   string
	Email      string
	Password   string
	SecretCode string
	ImageName  string
	ImageData  []byte
}

// Recipe mirrors the API's recipe payload.
type Recipe struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Cuisine            string        `json:"cuisine"`
	MealType           string        `json:"mealType"`
	CookingTimeMinutes int           `json:"cookingTimeMinutes"`
	ImageURL           string        `json:"imageUrl"`
	Ingredients        []Ingredient  `json:"ingredients,omitempty"`
	Instructions       []Instruction `json:"instructions,omitempty"`
	Ratings            []Rating      `json:"ratings,omitempty"`
}

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type Instruction struct {
	Order int    `json:"order"`
	Step  string `json:"step"`
	Tip   string `json:"tip"`
}

type Rating struct {
	UserID    string    `json:"userId"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client is the front end's view of the API. Error mapping contract:
// ErrInvalidCredentials for rejected logins, ErrInvalidRefreshToken for
// rejected refreshes, ErrUpstreamUnavailable for transport failures and
// 5xx responses.
type Client interface {
	Register(ctx context.Context, form RegisterForm) (*AuthPayload, error)
	Login(ctx context.Context, email, password string) (*AuthPayload, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthPayload, error)
	Logout(ctx context.Context, refreshToken string) error

	ListRecipes(ctx context.Context, accessToken string) ([]Recipe, error)
	GetRecipe(ctx context.Context, accessToken string, id int64) (*Recipe, error)
	CreateRecipe(ctx context.Context, accessToken string, recipe *Recipe) (*Recipe, error)
	UpdateRecipe(ctx context.Context, accessToken string, recipe *Recipe) error
	DeleteRecipe(ctx context.Context, accessToken string, id int64) error
	AddRating(ctx context.Context, accessToken string, recipeID int64, stars int, comment string) error
}
