package db

import (
	"errors"
	"testing"
)

func TestPipeline_Builder(t *testing.T) {
	p := NewPipeline("recipe_vector_index").
		VectorSearch(VectorSearch{
			Path: "voyage_embedding", QueryVector: []float32{0.1}, NumCandidates: 30, Limit: 10,
		}).
		Project(Field("title", "$.title"), Score("score"))

	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(p.Stages))
	}
	if p.Stages[0].stageName() != "$vectorSearch" || p.Stages[1].stageName() != "$project" {
		t.Errorf("unexpected stage names: %s, %s", p.Stages[0].stageName(), p.Stages[1].stageName())
	}
}

func TestPipeline_Validate(t *testing.T) {
	vs := VectorSearch{Path: "v", QueryVector: []float32{1}, NumCandidates: 3, Limit: 1}

	tests := []struct {
		name string
		p    *Pipeline
	}{
		{"no index", NewPipeline("").Limit(1)},
		{"no stages", NewPipeline("idx")},
		{"vector search not first", NewPipeline("idx").Limit(1).VectorSearch(vs)},
		{"empty vector", NewPipeline("idx").VectorSearch(VectorSearch{Path: "v", NumCandidates: 3, Limit: 1})},
		{"candidates below limit", NewPipeline("idx").VectorSearch(VectorSearch{
			Path: "v", QueryVector: []float32{1}, NumCandidates: 1, Limit: 5,
		})},
		{"empty project", NewPipeline("idx").Project()},
		{"unnamed field", NewPipeline("idx").Project(Field("", "$.x"))},
		{"empty group", NewPipeline("idx").Group("", "count")},
		{"empty sort", NewPipeline("idx").Sort("", true)},
		{"zero limit", NewPipeline("idx").Limit(0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if !errors.Is(err, ErrInvalidPipeline) {
				t.Fatalf("expected ErrInvalidPipeline, got %v", err)
			}
		})
	}
}

func TestProjectField_Helpers(t *testing.T) {
	f := IfNull("cuisine", "", "Unspecified")
	if f.Source() != "cuisine" {
		t.Errorf("Source() = %q, want cuisine", f.Source())
	}
	if !f.HasIfNull || f.IfNull != "Unspecified" {
		t.Errorf("unexpected IfNull field: %+v", f)
	}
	if s := Score("score"); s.Meta != MetaVectorScore {
		t.Errorf("Score meta = %q", s.Meta)
	}
}
