package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/search/result"
)

var (
	errMissingTitle       = errors.New("missing title")
	errMissingIngredients = errors.New("missing ingredients")
)

// Format converts raw hits into display results. A hit that cannot be
// converted is logged and dropped; it never fails the whole set.
func Format(records []db.Record, keyPrefix string, logger *zap.Logger) []result.Result {
	results := make([]result.Result, 0, len(records))
	for _, rec := range records {
		res, err := formatRecord(rec, keyPrefix)
		if err != nil {
			logger.Warn("Dropping malformed search result", zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results
}

// formatRecord requires title and ingredients; instructions, features and
// score fall back to "", {} and 0.
func formatRecord(rec db.Record, keyPrefix string) (result.Result, error) {
	id := strings.TrimPrefix(rec.Key, keyPrefix)
	if id == "" {
		return result.Result{}, fmt.Errorf("empty id in key %q", rec.Key)
	}

	title, ok := rec.Fields["title"]
	if !ok {
		return result.Result{}, errMissingTitle
	}

	rawIngredients, ok := rec.Fields["ingredients"]
	if !ok {
		return result.Result{}, errMissingIngredients
	}
	var ingredients []string
	if err := json.Unmarshal([]byte(rawIngredients), &ingredients); err != nil {
		return result.Result{}, fmt.Errorf("decode ingredients: %w", err)
	}

	var features domrecipe.Features
	if raw := rec.Fields["features"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &features); err != nil {
			return result.Result{}, fmt.Errorf("decode features: %w", err)
		}
	}

	var score float64
	if raw, ok := rec.Fields[ScoreField]; ok {
		s, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return result.Result{}, fmt.Errorf("parse score: %w", err)
		}
		score = s
	}

	return result.New(id, title, ingredients, rec.Fields["instructions"], features, score), nil
}
