package result

import "github.com/kailas-cloud/cookbook/internal/domain/recipe"

// Result is a display-ready vector search hit.
type Result struct {
	id           string
	title        string
	ingredients  []string
	instructions string
	features     recipe.Features
	score        float64
}

// New creates a search result. Nil features become an empty map.
func New(
	id, title string, ingredients []string,
	instructions string, features recipe.Features, score float64,
) Result {
	if features == nil {
		features = recipe.Features{}
	}
	return Result{
		id: id, title: title, ingredients: ingredients,
		instructions: instructions, features: features, score: score,
	}
}

// ID returns the recipe identifier in hex form.
func (r Result) ID() string { return r.id }

// Title returns the recipe title.
func (r Result) Title() string { return r.title }

// Ingredients returns the ingredient list.
func (r Result) Ingredients() []string { return r.ingredients }

// Instructions returns the preparation text ("" when the record lacks it).
func (r Result) Instructions() string { return r.instructions }

// Features returns the attribute map (empty when the record lacks it).
func (r Result) Features() recipe.Features { return r.features }

// Cuisine returns the cuisine feature.
func (r Result) Cuisine() string { return r.features.Cuisine() }

// SimilarityScore returns the similarity score (0 when the record lacks it).
func (r Result) SimilarityScore() float64 { return r.score }
