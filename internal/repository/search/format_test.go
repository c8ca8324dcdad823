package search

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/cookbook/internal/db"
)

func TestFormat_Defaults(t *testing.T) {
	records := []db.Record{{
		Key:    "cookbook:recipe:aaaaaaaaaaaaaaaaaaaaaaaa",
		Fields: map[string]string{"title": "Toast", "ingredients": `["bread"]`},
	}}

	results := Format(records, "cookbook:recipe:", zap.NewNop())
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Instructions() != "" {
		t.Errorf("instructions = %q, want empty", r.Instructions())
	}
	if r.Features() == nil || len(r.Features()) != 0 {
		t.Errorf("features = %v, want empty map", r.Features())
	}
	if r.SimilarityScore() != 0 {
		t.Errorf("score = %v, want 0", r.SimilarityScore())
	}
}

func TestFormat_DropsMalformedRecords(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	records := []db.Record{
		{Key: "cookbook:recipe:a", Fields: map[string]string{"ingredients": `["x"]`}},
		{Key: "cookbook:recipe:b", Fields: map[string]string{"title": "No ingredients"}},
		{Key: "cookbook:recipe:c", Fields: map[string]string{"title": "Bad", "ingredients": "{"}},
		{Key: "cookbook:recipe:d", Fields: map[string]string{"title": "Bad score", "ingredients": `[]`, "score": "NaNx"}},
		{Key: "cookbook:recipe:e", Fields: map[string]string{"title": "Good", "ingredients": `["y"]`, "score": "0.5"}},
	}

	results := Format(records, "cookbook:recipe:", logger)
	if len(results) != 1 || results[0].Title() != "Good" {
		t.Fatalf("expected only the well-formed record, got %+v", results)
	}
	if logs.Len() != 4 {
		t.Errorf("expected 4 warnings, got %d", logs.Len())
	}
}

func TestFormat_Empty(t *testing.T) {
	results := Format(nil, "cookbook:recipe:", zap.NewNop())
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", results)
	}
}
