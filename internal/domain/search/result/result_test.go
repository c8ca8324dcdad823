package result

import (
	"testing"

	"github.com/kailas-cloud/cookbook/internal/domain/recipe"
)

func TestNew(t *testing.T) {
	r := New("507f1f77bcf86cd799439011", "Curry", []string{"rice"}, "Cook.", recipe.Features{"cuisine": "Indian"}, 0.92)

	if r.ID() != "507f1f77bcf86cd799439011" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Title() != "Curry" || r.Instructions() != "Cook." {
		t.Errorf("unexpected fields: %+v", r)
	}
	if r.Cuisine() != "Indian" {
		t.Errorf("Cuisine() = %q", r.Cuisine())
	}
	if r.SimilarityScore() != 0.92 {
		t.Errorf("SimilarityScore() = %f", r.SimilarityScore())
	}
}

func TestNew_NilFeatures(t *testing.T) {
	r := New("id", "Toast", []string{"bread"}, "", nil, 0)
	if r.Features() == nil {
		t.Fatal("features must default to an empty map")
	}
	if len(r.Features()) != 0 {
		t.Errorf("expected empty features, got %v", r.Features())
	}
}
