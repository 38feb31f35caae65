package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cookingbylea/recipes/backend/internal/model"
)

const (
	recipeListKey       = "recipes:all"
	recipeGenerationKey = "recipes:generation"
)

// RecipeCache holds the full recipe list between mutations. Every Invalidate
// starts a new generation; SetAll only stores a list read under the
// generation it was given, so a read that raced a mutation is dropped.
type RecipeCache interface {
	GetAll(ctx context.Context) ([]model.Recipe, bool)
	Generation(ctx context.Context) string
	SetAll(ctx context.Context, generation string, recipes []model.Recipe)
	Invalidate(ctx context.Context)
}

var errStaleGeneration = errors.New("recipe list generation changed")

// RedisRecipeCache stores the recipe list as JSON in redis. Redis errors are
// logged and treated as a miss.
type RedisRecipeCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisRecipeCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisRecipeCache {
	return &RedisRecipeCache{redis: client, ttl: ttl, logger: logger}
}

func (c *RedisRecipeCache) GetAll(ctx context.Context) ([]model.Recipe, bool) {
	data, err := c.redis.Get(ctx, recipeListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "recipe cache read failed", "error", err)
		}
		return nil, false
	}

	var recipes []model.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		c.logger.WarnContext(ctx, "recipe cache entry is corrupt", "error", err)
		return nil, false
	}
	return recipes, true
}

// Generation returns the current generation token. Errors yield a token that
// SetAll will never match.
func (c *RedisRecipeCache) Generation(ctx context.Context) string {
	gen, err := c.redis.Get(ctx, recipeGenerationKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0"
	case err != nil:
		c.logger.WarnContext(ctx, "recipe cache generation read failed", "error", err)
		return ""
	}
	return gen
}

func (c *RedisRecipeCache) SetAll(ctx context.Context, generation string, recipes []model.Recipe) {
	if generation == "" {
		return
	}
	data, err := json.Marshal(recipes)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode recipe cache", "error", err)
		return
	}

	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, recipeGenerationKey).Result()
		if errors.Is(err, redis.Nil) {
			current = "0"
		} else if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recipeListKey, data, c.ttl)
			return nil
		})
		return err
	}, recipeGenerationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.logger.DebugContext(ctx, "skipped caching a stale recipe list")
	default:
		c.logger.WarnContext(ctx, "recipe cache write failed", "error", err)
	}
}

func (c *RedisRecipeCache) Invalidate(ctx context.Context) {
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, recipeGenerationKey)
		pipe.Del(ctx, recipeListKey)
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "recipe cache invalidation failed", "error", err)
	}
}
