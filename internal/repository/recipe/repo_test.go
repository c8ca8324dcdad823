package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/cookbook/internal/db"
	"github.com/kailas-cloud/cookbook/internal/domain"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
)

const testHex = "5f1d7c2b9a3e4f6a7b8c9d0e"

func mustID(t *testing.T) domrecipe.ID {
	t.Helper()
	id, err := domrecipe.ParseID(testHex)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		if key != "cookbook:recipe:"+testHex {
			t.Errorf("unexpected key %q", key)
		}
		return []byte(`{"_id":"` + testHex + `","title":"Pasta","ingredients":["flour","egg"],` +
			`"instructions":"Mix.","features":{"cuisine":"Italian"}}`), nil
	}

	r, err := repo.Get(context.Background(), mustID(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title() != "Pasta" || len(r.Ingredients()) != 2 || r.Cuisine() != "Italian" {
		t.Errorf("unexpected recipe: %+v", r)
	}
	if r.ID().String() != testHex {
		t.Errorf("id = %s", r.ID())
	}
}

func TestGet_ArrayReply(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`[{"title":"Soup","ingredients":["water"]}]`), nil
	}

	r, err := repo.Get(context.Background(), mustID(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title() != "Soup" {
		t.Errorf("title = %q", r.Title())
	}
	if r.Instructions() != "" || len(r.Features()) != 0 {
		t.Error("optional fields should default to empty")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), mustID(t))
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpJSONGet, Err: errors.New("timeout")}
	}

	_, err := repo.Get(context.Background(), mustID(t))
	if err == nil || errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("expected a store error, got %v", err)
	}
}

func TestGet_MissingTitle(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"ingredients":["water"]}`), nil
	}

	_, err := repo.Get(context.Background(), mustID(t))
	if !errors.Is(err, domain.ErrInvalidRecipe) {
		t.Errorf("expected ErrInvalidRecipe, got %v", err)
	}
}

// --- Save ---

func TestSave_WritesDocument(t *testing.T) {
	repo, ms := newTestRepo(t)

	rec := domrecipe.Reconstruct(mustID(t), "Pasta", []string{"flour"}, "",
		domrecipe.Features{"cuisine": "Italian"}, []float32{0.5})

	var stored map[string]any
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		if key != "cookbook:recipe:"+testHex || path != "$" {
			t.Errorf("unexpected key/path %q %q", key, path)
		}
		return json.Unmarshal(data, &stored)
	}

	if err := repo.Save(context.Background(), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored["_id"] != testHex || stored["title"] != "Pasta" {
		t.Errorf("unexpected document: %v", stored)
	}
	if _, ok := stored["voyage_embedding"]; !ok {
		t.Error("embedding should be stored")
	}
	if _, ok := stored["instructions"]; ok {
		t.Error("empty instructions should be omitted")
	}
}

// --- ListByTitle ---

func TestListByTitle_BuildsSortedPipeline(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.aggregateFn = func(_ context.Context, p *db.Pipeline) (*db.Result, error) {
		if p.Index != "recipe_vector_index" {
			t.Errorf("index = %q", p.Index)
		}
		var sorted, limited bool
		for _, st := range p.Stages {
			switch s := st.(type) {
			case db.Sort:
				sorted = s.Field == "title" && !s.Desc
			case db.Limit:
				limited = s.N == 20
			}
		}
		if !sorted || !limited {
			t.Errorf("expected title ASC sort with limit 20, got %+v", p.Stages)
		}
		return &db.Result{Total: 2, Records: []db.Record{
			{Key: "cookbook:recipe:" + testHex, Fields: map[string]string{
				"title": "Apple Pie", "ingredients": `["apple"]`, "features": `{"cuisine":"American"}`,
			}},
			{Key: "cookbook:recipe:bad", Fields: map[string]string{"title": "Broken"}},
		}}, nil
	}

	recipes, err := repo.ListByTitle(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected malformed key to be skipped, got %d recipes", len(recipes))
	}
	if recipes[0].Title() != "Apple Pie" || recipes[0].Cuisine() != "American" {
		t.Errorf("unexpected recipe: %+v", recipes[0])
	}
}

func TestListByTitle_SkipsUndecodableRecord(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.aggregateFn = func(context.Context, *db.Pipeline) (*db.Result, error) {
		return &db.Result{Records: []db.Record{
			{Key: "cookbook:recipe:" + testHex, Fields: map[string]string{"title": "X", "ingredients": "not json"}},
		}}, nil
	}

	recipes, err := repo.ListByTitle(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("expected record to be dropped, got %d", len(recipes))
	}
}

func TestListByTitle_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	recipes, err := repo.ListByTitle(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("expected empty list, got %d", len(recipes))
	}
}

func TestListByTitle_IndexMissing(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.aggregateFn = func(context.Context, *db.Pipeline) (*db.Result, error) {
		return nil, db.ErrIndexNotFound
	}

	_, err := repo.ListByTitle(context.Background(), 20)
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected domain.ErrIndexNotFound, got %v", err)
	}
}

// --- CuisineStats ---

func TestCuisineStats_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.aggregateFn = func(_ context.Context, p *db.Pipeline) (*db.Result, error) {
		if len(p.Stages) != 4 {
			t.Errorf("expected 4 stages, got %d", len(p.Stages))
		}
		return &db.Result{Records: []db.Record{
			{Fields: map[string]string{"cuisine": "Italian", "count": "3"}},
			{Fields: map[string]string{"cuisine": stats.Unspecified, "count": "2"}},
			{Fields: map[string]string{"cuisine": "Thai", "count": "x"}},
		}}, nil
	}

	rows, err := repo.CuisineStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Cuisine() != "Italian" || rows[0].Count() != 3 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Cuisine() != stats.Unspecified {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}

func TestCuisineStats_EmptyCuisineIsNotUnspecified(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.aggregateFn = func(context.Context, *db.Pipeline) (*db.Result, error) {
		return &db.Result{Records: []db.Record{
			{Fields: map[string]string{"cuisine": stats.Unspecified, "count": "4"}},
			{Fields: map[string]string{"cuisine": "", "count": "1"}},
		}}, nil
	}

	rows, err := repo.CuisineStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	unspecified := 0
	for _, r := range rows {
		if r.Cuisine() == stats.Unspecified {
			unspecified++
		}
	}
	if unspecified != 1 {
		t.Errorf("expected exactly one %s row, got %d", stats.Unspecified, unspecified)
	}
	if rows[1].Cuisine() != "" || rows[1].Count() != 1 {
		t.Errorf("expected empty cuisine kept as its own row, got %+v", rows[1])
	}
}

func TestCuisineStats_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.aggregateFn = func(context.Context, *db.Pipeline) (*db.Result, error) {
		return nil, &db.Error{Op: db.OpAggregate, Err: errors.New("boom")}
	}

	if _, err := repo.CuisineStats(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
