package domain

import "errors"

var (
	// ErrRecipeNotFound signals that no recipe exists for a well-formed identifier.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrInvalidID signals a malformed recipe identifier.
	ErrInvalidID = errors.New("invalid recipe id")
	// ErrInvalidRecipe signals a recipe that fails validation.
	ErrInvalidRecipe = errors.New("invalid recipe")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexNotFound signals a missing search index.
	ErrIndexNotFound = errors.New("search index not found")
)
