// Package gallery filters and pages the public recipe list.
//
// State is an immutable value. Every transition returns a new State and
// leaves the receiver untouched, so a State can be shared freely between
// the components rendering the same gallery.
package gallery

import (
	"net/url"
	"strconv"
	"strings"
)

// State is the current gallery selection. At most one of Category,
// Subcategory and Healthy is active when built through the transitions.
type State struct {
	Query       string `json:"query"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Healthy     bool   `json:"healthy,omitempty"`
	Page        int    `json:"page"`
}

// NewState is the unfiltered first page
func NewState() State {
	return State{Page: 1}
}

// SelectCategory filters by category. The search query is cleared.
func (s State) SelectCategory(category string) State {
	return State{Category: category, Page: 1}
}

// SelectSubcategory filters by subcategory. The search query is cleared.
func (s State) SelectSubcategory(subcategory string) State {
	return State{Subcategory: subcategory, Page: 1}
}

// SelectHealthy keeps only healthy recipes
func (s State) SelectHealthy() State {
	return State{Query: s.Query, Healthy: true, Page: 1}
}

// ResetFilters drops every selection and the search query
func (s State) ResetFilters() State {
	return NewState()
}

func (s State) Search(query string) State {
	s.Query = query
	s.Page = 1
	return s
}

func (s State) GoToPage(page int) State {
	s.Page = page
	return s
}

// HasSelection reports whether a category, subcategory or health filter is active
func (s State) HasSelection() bool {
	return s.Category != "" || s.Subcategory != "" || s.Healthy
}

// ParseState reads a State from query parameters q, category, subcategory,
// healthy and page. A missing or malformed page means page 1.
func ParseState(values url.Values) State {
	state := State{
		Query:       values.Get("q"),
		Category:    strings.TrimSpace(values.Get("category")),
		Subcategory: strings.TrimSpace(values.Get("subcategory")),
		Healthy:     values.Get("healthy") == "true",
		Page:        1,
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		state.Page = page
	}
	return state
}

// Values encodes the state as query parameters understood by ParseState
func (s State) Values() url.Values {
	values := url.Values{}
	if s.Query != "" {
		values.Set("q", s.Query)
	}
	if s.Category != "" {
		values.Set("category", s.Category)
	}
	if s.Subcategory != "" {
		values.Set("subcategory", s.Subcategory)
	}
	if s.Healthy {
		values.Set("healthy", "true")
	}
	if s.Page != 1 {
		values.Set("page", strconv.Itoa(s.Page))
	}
	return values
}
