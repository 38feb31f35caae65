package gallery

import (
	"slices"
	"strings"

	"github.com/cookingbylea/recipes/backend/internal/model"
)

// PageSize is the number of recipes shown per gallery page
const PageSize = 32

// Page is one page of filtered recipes
type Page struct {
	State         State          `json:"state"`
	Recipes       []model.Recipe `json:"recipes"`
	Total         int            `json:"total"`
	TotalPages    int            `json:"totalPages"`
	Categories    []string       `json:"categories"`
	Subcategories []string       `json:"subcategories"`
}

// Run filters recipes by state and returns the requested page. The category
// lists are computed over the unfiltered set.
func Run(recipes []model.Recipe, state State) Page {
	filtered := Apply(recipes, state)
	return Page{
		State:         state,
		Recipes:       Paginate(filtered, state.Page),
		Total:         len(filtered),
		TotalPages:    TotalPages(len(filtered)),
		Categories:    Categories(recipes),
		Subcategories: Subcategories(recipes),
	}
}

// Apply runs the title search and then the active selection, keeping the
// input order. Category wins over subcategory, which wins over healthy.
func Apply(recipes []model.Recipe, state State) []model.Recipe {
	matches := Search(recipes, state.Query)

	var keep func(model.Recipe) bool
	switch {
	case state.Category != "":
		keep = func(r model.Recipe) bool { return r.Category == state.Category }
	case state.Subcategory != "":
		keep = func(r model.Recipe) bool { return r.Subcategory == state.Subcategory }
	case state.Healthy:
		keep = func(r model.Recipe) bool { return r.IsHealthy }
	default:
		return matches
	}

	out := make([]model.Recipe, 0, len(matches))
	for _, r := range matches {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps recipes whose title contains query, ignoring case. An empty
// query matches everything.
func Search(recipes []model.Recipe, query string) []model.Recipe {
	needle := strings.ToLower(query)
	out := make([]model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if strings.Contains(strings.ToLower(r.Title), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Paginate returns the 1-based page of recipes. Pages outside the range are
// empty rather than clamped.
func Paginate(recipes []model.Recipe, page int) []model.Recipe {
	start := (page - 1) * PageSize
	if page < 1 || start >= len(recipes) {
		return []model.Recipe{}
	}
	end := min(start+PageSize, len(recipes))
	return slices.Clone(recipes[start:end])
}

// TotalPages is ceil(n / PageSize)
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Categories lists distinct non-blank categories in first-seen order
func Categories(recipes []model.Recipe) []string {
	return distinct(recipes, func(r model.Recipe) string { return r.Category })
}

// Subcategories lists distinct non-blank subcategories in first-seen order
func Subcategories(recipes []model.Recipe) []string {
	return distinct(recipes, func(r model.Recipe) string { return r.Subcategory })
}

func distinct(recipes []model.Recipe, field func(model.Recipe) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range recipes {
		value := field(r)
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
