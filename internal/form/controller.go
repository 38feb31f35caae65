package form

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/cookingbylea/recipes/backend/internal/client"
	"github.com/cookingbylea/recipes/backend/internal/model"
)

// FallbackMessage is shown when the server gives no usable message
const FallbackMessage = "An unexpected error occurred"

// ErrSubmitInProgress is returned when Submit is called while a previous
// submission has not settled
var ErrSubmitInProgress = errors.New("submission already in progress")

// RecipeAPI is the part of the API client the forms use
type RecipeAPI interface {
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	CreateRecipe(ctx context.Context, payload client.Payload) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, payload client.Payload) (*model.Recipe, error)
}

// Outcome tells the caller what to do after a submission
type Outcome struct {
	Recipe       *model.Recipe
	ErrorMessage string
	ScrollToTop  bool
	Navigate     string
	Refresh      bool
}

// OK reports a successful submission
func (o Outcome) OK() bool {
	return o.ErrorMessage == ""
}

// Controller drives a create or update form
type Controller struct {
	api      RecipeAPI
	recipeID string

	mu         sync.Mutex
	form       Recipe
	submitting bool
	lastError  string
}

// NewCreateController starts an empty create form
func NewCreateController(api RecipeAPI) *Controller {
	return &Controller{api: api, form: NewRecipe()}
}

// NewUpdateController edits recipeID. Call Load before editing.
func NewUpdateController(api RecipeAPI, recipeID string) *Controller {
	return &Controller{api: api, recipeID: recipeID, form: NewRecipe()}
}

// Load fills an update form from the stored recipe
func (c *Controller) Load(ctx context.Context) error {
	if c.recipeID == "" {
		return nil
	}
	recipe, err := c.api.GetRecipe(ctx, c.recipeID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = FromModel(*recipe)
	return nil
}

// Edit applies fn to the form state
func (c *Controller) Edit(fn func(*Recipe)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.form)
}

// Form returns a copy of the current form state
func (c *Controller) Form() Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	form := c.form
	form.Ingredients = append([]string(nil), c.form.Ingredients...)
	return form
}

// Submitting reports whether a submission is in flight
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// ErrorMessage is the message of the last failed submission
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Submit sends the form. Failures are reported through the Outcome; the
// returned error is only ErrSubmitInProgress.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return Outcome{}, ErrSubmitInProgress
	}
	c.submitting = true
	form := c.form
	c.mu.Unlock()

	var (
		recipe *model.Recipe
		err    error
	)
	if c.recipeID == "" {
		recipe, err = c.api.CreateRecipe(ctx, form.CreatePayload())
	} else {
		recipe, err = c.api.UpdateRecipe(ctx, c.recipeID, form.UpdatePayload())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil {
		c.lastError = c.messageFor(err)
		return Outcome{ErrorMessage: c.lastError, ScrollToTop: true}, nil
	}

	c.lastError = ""
	return Outcome{Recipe: recipe, Navigate: "/", Refresh: true}, nil
}

func (c *Controller) messageFor(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		return FallbackMessage
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if c.recipeID == "" {
		return "Failed to create recipe"
	}
	return "Failed to update recipe"
}
