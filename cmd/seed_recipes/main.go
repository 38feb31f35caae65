package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cookingbylea/recipes/backend/config"
	"github.com/cookingbylea/recipes/backend/internal/database"
	"github.com/cookingbylea/recipes/backend/internal/logging"
	"github.com/cookingbylea/recipes/backend/internal/media"
	"github.com/cookingbylea/recipes/backend/internal/model"
)

// SeedRecipe is one entry of a seed file
type SeedRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Preparation string   `json:"preparation"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	IsHealthy   bool     `json:"isHealthy"`
}

var demoRecipes = []SeedRecipe{
	{
		Title:       "Tarte Tatin",
		Ingredients: []string{"6 apples", "150 g sugar", "80 g butter", "1 puff pastry sheet"},
		Preparation: "1. Caramelise the sugar and butter. 2. Add the apple quarters. 3. Cover with pastry and bake 30 minutes. 4. Turn out while warm.",
		Category:    "Desserts",
		Subcategory: "Tarts",
	},
	{
		Title:       "Lemon Tart",
		Ingredients: []string{"1 shortcrust base", "4 lemons", "4 eggs", "120 g sugar", "100 g butter"},
		Preparation: "1. Blind bake the base. 2. Cook the lemon curd. 3. Fill and chill.",
		Category:    "Desserts",
		Subcategory: "Tarts",
	},
	{
		Title:       "Chocolate Mousse",
		Ingredients: []string{"200 g dark chocolate", "6 eggs", "1 pinch salt"},
		Preparation: "1. Melt the chocolate. 2. Whisk the whites with salt. 3. Fold together and chill 4 hours.",
		Category:    "Desserts",
		Subcategory: "Creams",
	},
	{
		Title:       "Lentil Soup",
		Ingredients: []string{"250 g green lentils", "1 carrot", "1 onion", "1 l vegetable stock"},
		Preparation: "1. Sweat the onion and carrot. 2. Add lentils and stock. 3. Simmer 25 minutes and blend half.",
		Category:    "Starters",
		Subcategory: "Soups",
		IsHealthy:   true,
	},
	{
		Title:       "Chickpea Salad",
		Ingredients: []string{"400 g chickpeas", "1 cucumber", "10 cherry tomatoes", "1 lemon", "olive oil"},
		Preparation: "1. Rinse the chickpeas. 2. Dice the vegetables. 3. Dress with lemon and oil.",
		Category:    "Starters",
		Subcategory: "Salads",
		IsHealthy:   true,
	},
	{
		Title:       "Roast Chicken",
		Ingredients: []string{"1 chicken", "1 lemon", "4 garlic cloves", "thyme", "butter"},
		Preparation: "1. Stuff the chicken with lemon and garlic. 2. Rub with butter and thyme. 3. Roast 1 hour 20 minutes at 190 C.",
		Category:    "Mains",
		Subcategory: "Poultry",
	},
	{
		Title:       "Baked Salmon",
		Ingredients: []string{"4 salmon fillets", "1 bunch dill", "1 lemon"},
		Preparation: "1. Season the fillets. 2. Top with dill and lemon slices. 3. Bake 12 minutes.",
		Category:    "Mains",
		Subcategory: "Fish",
		IsHealthy:   true,
	},
	{
		Title:       "Ratatouille",
		Ingredients: []string{"1 aubergine", "2 courgettes", "2 peppers", "4 tomatoes", "1 onion"},
		Preparation: "1. Cook each vegetable separately. 2. Combine with the tomatoes. 3. Simmer 40 minutes.",
		Category:    "Mains",
		Subcategory: "Vegetarian",
		IsHealthy:   true,
	},
}

func main() {
	file := flag.String("file", "", "JSON file with an array of recipes (defaults to the built-in demo set)")
	flag.Parse()

	if err := run(*file); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(file string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, shutdown, err := logging.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(ctx)

	seeds := demoRecipes
	if file != "" {
		if seeds, err = readSeeds(file); err != nil {
			return err
		}
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.MigrationsDir, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	created, err := seed(ctx, db, seeds, placeholderBase(cfg), time.Now())
	if err != nil {
		return err
	}

	logger.Info("Seeded recipes", slog.Int("created", created), slog.Int("skipped", len(seeds)-created))
	return nil
}

func readSeeds(path string) ([]SeedRecipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seeds []SeedRecipe
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return seeds, nil
}

func placeholderBase(cfg *config.Config) string {
	if cfg.MediaPublicURL != "" {
		return cfg.MediaPublicURL
	}
	return "https://placehold.co"
}

// seed inserts every recipe whose title is not taken yet. Images point at
// placeholder URLs in the media identifier format.
func seed(ctx context.Context, db *gorm.DB, seeds []SeedRecipe, imageBase string, now time.Time) (int, error) {
	created := 0
	for i, s := range seeds {
		recipe := model.Recipe{
			Title:       strings.TrimSpace(s.Title),
			Ingredients: model.StringList(s.Ingredients),
			Preparation: s.Preparation,
			Category:    s.Category,
			Subcategory: s.Subcategory,
			IsHealthy:   s.IsHealthy,
			ImageURL:    media.PublicURL(imageBase, media.NewIdentifier("seed", fmt.Sprintf("%d.jpg", i), now).Key()),
		}
		if recipe.Ingredients == nil {
			recipe.Ingredients = model.StringList{}
		}

		result := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
			Create(&recipe)
		if result.Error != nil {
			return created, fmt.Errorf("failed to seed %q: %w", recipe.Title, result.Error)
		}
		if result.RowsAffected > 0 {
			created++
		}
	}
	return created, nil
}
