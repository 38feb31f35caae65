// Package form holds the state of the admin create and update forms and
// turns it into API submissions.
package form

import (
	"fmt"
	"strconv"

	"github.com/cookingbylea/recipes/backend/internal/client"
	"github.com/cookingbylea/recipes/backend/internal/model"
)

// Recipe is the editable state of a recipe form
type Recipe struct {
	Title       string
	Ingredients []string
	Preparation string
	Category    string
	Subcategory string
	IsHealthy   bool
	Image       *client.Image
}

// NewRecipe is an empty form with one blank ingredient row
func NewRecipe() Recipe {
	return Recipe{Ingredients: []string{""}}
}

// FromModel fills a form from a stored recipe. The image is left unset.
func FromModel(r model.Recipe) Recipe {
	return Recipe{
		Title:       r.Title,
		Ingredients: append([]string(nil), r.Ingredients...),
		Preparation: r.Preparation,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		IsHealthy:   r.IsHealthy,
	}
}

// AddIngredient appends a blank ingredient row
func (r *Recipe) AddIngredient() {
	r.Ingredients = append(r.Ingredients, "")
}

// RemoveIngredient drops row i. Removing the last row leaves an empty list.
func (r *Recipe) RemoveIngredient(i int) error {
	if i < 0 || i >= len(r.Ingredients) {
		return fmt.Errorf("ingredient %d out of range", i)
	}
	r.Ingredients = append(r.Ingredients[:i:i], r.Ingredients[i+1:]...)
	return nil
}

// SetIngredient replaces the value of row i
func (r *Recipe) SetIngredient(i int, value string) error {
	if i < 0 || i >= len(r.Ingredients) {
		return fmt.Errorf("ingredient %d out of range", i)
	}
	r.Ingredients[i] = value
	return nil
}

// CreatePayload sends every field
func (r Recipe) CreatePayload() client.Payload {
	var p client.Payload
	p.Add("title", r.Title)
	r.addIngredients(&p)
	p.Add("preparation", r.Preparation)
	p.Add("category", r.Category)
	p.Add("subcategory", r.Subcategory)
	p.Add("isHealthy", strconv.FormatBool(r.IsHealthy))
	p.Image = r.Image
	return p
}

// UpdatePayload sends only non-empty text fields, every ingredient, the
// health flag, and the image when one was picked.
func (r Recipe) UpdatePayload() client.Payload {
	var p client.Payload
	if r.Title != "" {
		p.Add("title", r.Title)
	}
	r.addIngredients(&p)
	if r.Preparation != "" {
		p.Add("preparation", r.Preparation)
	}
	if r.Category != "" {
		p.Add("category", r.Category)
	}
	if r.Subcategory != "" {
		p.Add("subcategory", r.Subcategory)
	}
	p.Add("isHealthy", strconv.FormatBool(r.IsHealthy))
	p.Image = r.Image
	return p
}

func (r Recipe) addIngredients(p *client.Payload) {
	for i, ingredient := range r.Ingredients {
		p.Add(fmt.Sprintf("ingredients[%d]", i), ingredient)
	}
}
