package api

import (
	"mime/multipart"
	"regexp"
	"sort"
	"strconv"

	"github.com/cookingbylea/recipes/backend/internal/media"
)

var ingredientKey = regexp.MustCompile(`^ingredients\[(\d+)\]$`)

// recipeForm is a parsed multipart recipe submission
type recipeForm struct {
	values      map[string][]string
	ingredients []string
	image       *multipart.FileHeader
}

func parseRecipeForm(form *multipart.Form) *recipeForm {
	f := &recipeForm{values: form.Value}

	type indexed struct {
		index int
		value string
	}
	var items []indexed
	for key, values := range form.Value {
		m := ingredientKey.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		items = append(items, indexed{index: index, value: values[0]})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })
	for _, item := range items {
		f.ingredients = append(f.ingredients, item.value)
	}
	if len(f.ingredients) == 0 {
		f.ingredients = append(f.ingredients, form.Value["ingredients"]...)
	}

	if files := form.File["image"]; len(files) > 0 {
		f.image = files[0]
	}
	return f
}

// get returns the first value of a field
func (f *recipeForm) get(name string) string {
	if values := f.values[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// lookup returns the field only when it was sent
func (f *recipeForm) lookup(name string) *string {
	values, ok := f.values[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// healthy reports the isHealthy flag; only the literal "true" counts
func (f *recipeForm) healthy() *bool {
	raw := f.lookup("isHealthy")
	if raw == nil {
		return nil
	}
	v := *raw == "true"
	return &v
}

// openImage opens the uploaded image. The caller closes the returned file.
func (f *recipeForm) openImage() (*media.Object, multipart.File, error) {
	if f.image == nil {
		return nil, nil, nil
	}
	file, err := f.image.Open()
	if err != nil {
		return nil, nil, err
	}
	return &media.Object{
		Filename:    f.image.Filename,
		ContentType: f.image.Header.Get("Content-Type"),
		Size:        f.image.Size,
		Body:        file,
	}, file, nil
}
