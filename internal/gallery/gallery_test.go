package gallery

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookingbylea/recipes/backend/internal/model"
)

func numbered(n int) []model.Recipe {
	recipes := make([]model.Recipe, n)
	for i := range recipes {
		recipes[i] = model.Recipe{Title: fmt.Sprintf("Recipe %d", i+1), Category: "Mains"}
	}
	return recipes
}

func titles(recipes []model.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func TestPaginateFortyRecipes(t *testing.T) {
	recipes := numbered(40)

	page1 := Paginate(recipes, 1)
	page2 := Paginate(recipes, 2)
	page3 := Paginate(recipes, 3)

	require.Len(t, page1, 32)
	assert.Equal(t, "Recipe 1", page1[0].Title)
	assert.Equal(t, "Recipe 32", page1[31].Title)
	require.Len(t, page2, 8)
	assert.Equal(t, "Recipe 33", page2[0].Title)
	assert.Equal(t, "Recipe 40", page2[7].Title)
	assert.Empty(t, page3)
	assert.NotNil(t, page3)

	assert.Equal(t, 2, TotalPages(len(recipes)))
}

func TestPaginateOutOfRange(t *testing.T) {
	recipes := numbered(5)
	assert.Empty(t, Paginate(recipes, 0))
	assert.Empty(t, Paginate(recipes, -1))
	assert.Empty(t, Paginate(nil, 1))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(1))
	assert.Equal(t, 1, TotalPages(32))
	assert.Equal(t, 2, TotalPages(33))
}

func TestPageLengths(t *testing.T) {
	for _, n := range []int{0, 1, 31, 32, 33, 64, 65, 100} {
		recipes := numbered(n)
		total := TotalPages(n)
		assert.Equal(t, n == 0, total == 0, "n=%d", n)
		for p := 1; p <= total; p++ {
			want := min(PageSize, n-(p-1)*PageSize)
			assert.Len(t, Paginate(recipes, p), want, "n=%d page=%d", n, p)
		}
	}
}

func TestSearch(t *testing.T) {
	recipes := []model.Recipe{{Title: "Apple Tart"}, {Title: "Soup"}, {Title: "Tarte Tatin"}}

	assert.Equal(t, []string{"Apple Tart", "Tarte Tatin"}, titles(Search(recipes, "tart")))
	assert.Equal(t, []string{"Apple Tart", "Tarte Tatin"}, titles(Search(recipes, "TART")))
	assert.Len(t, Search(recipes, ""), 3)
	assert.Empty(t, Search(recipes, "pizza"))
}

func sampleRecipes() []model.Recipe {
	return []model.Recipe{
		{Title: "Apple Tart", Category: "Desserts", Subcategory: "Tarts", IsHealthy: false},
		{Title: "Green Salad", Category: "Starters", Subcategory: "Salads", IsHealthy: true},
		{Title: "Lentil Soup", Category: "Mains", Subcategory: "Soups", IsHealthy: true},
		{Title: "Tarte Tatin", Category: "Desserts", Subcategory: "Tarts", IsHealthy: false},
		{Title: "Fruit Salad", Category: "Desserts", Subcategory: "Salads", IsHealthy: true},
	}
}

func TestApplySelections(t *testing.T) {
	recipes := sampleRecipes()
	state := NewState()

	assert.Len(t, Apply(recipes, state), 5)
	assert.Equal(t, []string{"Apple Tart", "Tarte Tatin", "Fruit Salad"},
		titles(Apply(recipes, state.SelectCategory("Desserts"))))
	assert.Equal(t, []string{"Green Salad", "Fruit Salad"},
		titles(Apply(recipes, state.SelectSubcategory("Salads"))))
	assert.Equal(t, []string{"Green Salad", "Lentil Soup", "Fruit Salad"},
		titles(Apply(recipes, state.SelectHealthy())))

	t.Run("search narrows the selection", func(t *testing.T) {
		s := state.SelectCategory("Desserts").Search("salad")
		assert.Equal(t, []string{"Fruit Salad"}, titles(Apply(recipes, s)))
	})

	t.Run("category takes precedence", func(t *testing.T) {
		s := State{Category: "Mains", Subcategory: "Salads", Healthy: true, Page: 1}
		assert.Equal(t, []string{"Lentil Soup"}, titles(Apply(recipes, s)))
	})
}

func TestApplyIsPure(t *testing.T) {
	recipes := sampleRecipes()
	state := NewState().SelectHealthy().Search("s")

	first := Run(recipes, state)
	second := Run(recipes, state)
	assert.Equal(t, first, second)
	assert.Equal(t, sampleRecipes(), recipes)

	for _, r := range first.Recipes {
		assert.True(t, r.IsHealthy)
	}
}

func TestSelectionsAreMutuallyExclusive(t *testing.T) {
	base := NewState().SelectHealthy()

	s := base.SelectCategory("Desserts")
	assert.Equal(t, State{Category: "Desserts", Page: 1}, s)

	s = s.SelectSubcategory("Tarts")
	assert.Equal(t, State{Subcategory: "Tarts", Page: 1}, s)

	s = s.SelectHealthy()
	assert.Equal(t, State{Healthy: true, Page: 1}, s)

	s = s.SelectCategory("Mains").ResetFilters()
	assert.False(t, s.HasSelection())

	// the receiver is never modified
	assert.Equal(t, State{Healthy: true, Page: 1}, base)
}

func TestTransitionsResetPage(t *testing.T) {
	s := NewState().Search("tart").GoToPage(3)
	assert.Equal(t, 3, s.Page)

	assert.Equal(t, 1, s.SelectCategory("Desserts").Page)
	assert.Equal(t, 1, s.SelectSubcategory("Tarts").Page)
	assert.Equal(t, 1, s.SelectHealthy().Page)
	assert.Equal(t, 1, s.Search("pie").Page)

	assert.Empty(t, s.SelectCategory("Desserts").Query)
	assert.Empty(t, s.SelectSubcategory("Tarts").Query)
	assert.Equal(t, "tart", s.SelectHealthy().Query)
}

func TestRun(t *testing.T) {
	recipes := sampleRecipes()
	page := Run(recipes, NewState().SelectSubcategory("Salads"))

	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, []string{"Desserts", "Starters", "Mains"}, page.Categories)
	assert.Equal(t, []string{"Tarts", "Salads", "Soups"}, page.Subcategories)

	empty := Run(recipes, NewState().Search("pizza"))
	assert.Zero(t, empty.TotalPages)
	assert.Empty(t, empty.Recipes)
}

func TestCategoriesSkipBlank(t *testing.T) {
	recipes := []model.Recipe{{Category: "Mains"}, {Category: "  "}, {Category: "Mains", Subcategory: "Soups"}}
	assert.Equal(t, []string{"Mains"}, Categories(recipes))
	assert.Equal(t, []string{"Soups"}, Subcategories(recipes))
	assert.Equal(t, []string{}, Subcategories(nil))
}

func TestParseStateRoundTrip(t *testing.T) {
	state := NewState().SelectSubcategory("Tarts").Search("apple").GoToPage(2)
	assert.Equal(t, state, ParseState(state.Values()))

	parsed := ParseState(url.Values{"healthy": {"yes"}, "page": {"abc"}})
	assert.Equal(t, NewState(), parsed)
}
