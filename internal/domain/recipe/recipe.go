package recipe

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/cookbook/internal/domain"
)

// IngredientsLabel prefixes ingredient text before it is embedded, both for
// stored recipes and for search queries, so the two live in the same space.
const IngredientsLabel = "Ingredients: "

// MaxTitleLength bounds recipe titles.
const MaxTitleLength = 512

// Recipe is the recipe aggregate (immutable value object).
type Recipe struct {
	id           ID
	title        string
	ingredients  []string
	instructions string
	features     Features
	embedding    []float32
}

// New validates and creates a Recipe. Title and at least one ingredient are required.
func New(id ID, title string, ingredients []string, instructions string, features Features) (Recipe, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Recipe{}, fmt.Errorf("%w: title is required", domain.ErrInvalidRecipe)
	}
	if len(title) > MaxTitleLength {
		return Recipe{}, fmt.Errorf("%w: title too long (max %d)", domain.ErrInvalidRecipe, MaxTitleLength)
	}
	if len(ingredients) == 0 {
		return Recipe{}, fmt.Errorf("%w: at least one ingredient is required", domain.ErrInvalidRecipe)
	}
	if id.IsZero() {
		id = NewID()
	}
	return Reconstruct(id, title, ingredients, instructions, features, nil), nil
}

// Reconstruct creates a Recipe without validation (storage hydration).
func Reconstruct(
	id ID, title string, ingredients []string, instructions string,
	features Features, embedding []float32,
) Recipe {
	ing := make([]string, len(ingredients))
	copy(ing, ingredients)
	return Recipe{
		id:           id,
		title:        title,
		ingredients:  ing,
		instructions: instructions,
		features:     features.Clone(),
		embedding:    embedding,
	}
}

// ID returns the recipe identifier.
func (r Recipe) ID() ID { return r.id }

// Title returns the recipe title.
func (r Recipe) Title() string { return r.title }

// Ingredients returns the ingredient list.
func (r Recipe) Ingredients() []string { return r.ingredients }

// Instructions returns the preparation text, empty when missing.
func (r Recipe) Instructions() string { return r.instructions }

// Features returns the attribute map, never nil.
func (r Recipe) Features() Features { return r.features }

// Cuisine returns the cuisine feature, empty when unspecified.
func (r Recipe) Cuisine() string { return r.features.Cuisine() }

// Embedding returns the stored ingredient embedding.
func (r Recipe) Embedding() []float32 { return r.embedding }

// IngredientText is the text embedded for this recipe.
func (r Recipe) IngredientText() string {
	return IngredientsLabel + strings.Join(r.ingredients, ", ")
}

// WithEmbedding returns a copy carrying the given embedding.
func (r Recipe) WithEmbedding(vec []float32) Recipe {
	r.embedding = vec
	return r
}
