package recipe

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/cookbook/internal/domain"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
)

// recipeDoc is the stored JSON document shape.
type recipeDoc struct {
	ID           string         `json:"_id"`
	Title        *string        `json:"title"`
	Ingredients  []string       `json:"ingredients"`
	Instructions string         `json:"instructions,omitempty"`
	Features     map[string]any `json:"features,omitempty"`
	Embedding    []float32      `json:"voyage_embedding,omitempty"`
}

func buildDoc(r *domrecipe.Recipe) recipeDoc {
	title := r.Title()
	return recipeDoc{
		ID:           r.ID().String(),
		Title:        &title,
		Ingredients:  r.Ingredients(),
		Instructions: r.Instructions(),
		Features:     r.Features(),
		Embedding:    r.Embedding(),
	}
}

// parseDoc hydrates a Recipe from a JSON.GET reply. RedisJSON returns either the
// bare document or a one-element array when a JSONPath was requested.
func parseDoc(id domrecipe.ID, raw []byte) (domrecipe.Recipe, error) {
	var doc recipeDoc
	if len(raw) > 0 && raw[0] == '[' {
		var docs []recipeDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return domrecipe.Recipe{}, fmt.Errorf("%w: %w", domain.ErrInvalidRecipe, err)
		}
		if len(docs) == 0 {
			return domrecipe.Recipe{}, domain.ErrRecipeNotFound
		}
		doc = docs[0]
	} else if err := json.Unmarshal(raw, &doc); err != nil {
		return domrecipe.Recipe{}, fmt.Errorf("%w: %w", domain.ErrInvalidRecipe, err)
	}

	if doc.Title == nil {
		return domrecipe.Recipe{}, fmt.Errorf("%w: missing title", domain.ErrInvalidRecipe)
	}
	if doc.Ingredients == nil {
		return domrecipe.Recipe{}, fmt.Errorf("%w: missing ingredients", domain.ErrInvalidRecipe)
	}

	return domrecipe.Reconstruct(
		id, *doc.Title, doc.Ingredients, doc.Instructions,
		domrecipe.Features(doc.Features), doc.Embedding,
	), nil
}

// parseFields hydrates a Recipe from projected search fields. Array and object
// values arrive JSON-encoded; scalars arrive as plain strings.
func parseFields(id domrecipe.ID, fields map[string]string) (domrecipe.Recipe, error) {
	title, ok := fields["title"]
	if !ok {
		return domrecipe.Recipe{}, fmt.Errorf("%w: missing title", domain.ErrInvalidRecipe)
	}

	var ingredients []string
	if raw, ok := fields["ingredients"]; ok {
		if err := json.Unmarshal([]byte(raw), &ingredients); err != nil {
			return domrecipe.Recipe{}, fmt.Errorf("%w: ingredients: %w", domain.ErrInvalidRecipe, err)
		}
	}

	var features domrecipe.Features
	if raw, ok := fields["features"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &features); err != nil {
			return domrecipe.Recipe{}, fmt.Errorf("%w: features: %w", domain.ErrInvalidRecipe, err)
		}
	}

	return domrecipe.Reconstruct(id, title, ingredients, fields["instructions"], features, nil), nil
}
