package recipe

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
)

type mockIndexStore struct {
	createFn func(ctx context.Context, def *db.IndexDefinition) error
	dropFn   func(ctx context.Context, name string) error
	existsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockIndexStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func (m *mockIndexStore) DropIndex(ctx context.Context, name string) error {
	if m.dropFn != nil {
		return m.dropFn(ctx, name)
	}
	return nil
}

func (m *mockIndexStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, name)
	}
	return true, nil
}

func newTestIndexManager(ms *mockIndexStore) *IndexManager {
	return NewIndexManager(ms, IndexConfig{
		Name:        "recipe_vector_index",
		KeyPrefix:   "cookbook:",
		VectorField: "voyage_embedding",
		Dimensions:  1024,
	}, zap.NewNop())
}

func TestIndexManager_Definition(t *testing.T) {
	def, err := newTestIndexManager(&mockIndexStore{}).Definition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.StorageType != db.StorageJSON {
		t.Errorf("storage = %q, want JSON", def.StorageType)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "cookbook:recipe:" {
		t.Errorf("prefixes = %v", def.Prefixes)
	}
	if len(def.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(def.Fields))
	}

	title := def.Fields[0]
	if title.Name != "$.title" || title.Attribute() != TitleAttr || !title.Sortable || !title.Unnormalize {
		t.Errorf("unexpected title field: %+v", title)
	}
	if cuisine := def.Fields[1]; cuisine.Type != db.IndexFieldTag || cuisine.Attribute() != CuisineAttr {
		t.Errorf("unexpected cuisine field: %+v", cuisine)
	}
	vec := def.Fields[2]
	if vec.Type != db.IndexFieldVector || vec.VectorDim != 1024 || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("unexpected vector field: %+v", vec)
	}
	if vec.VectorM != 16 || vec.VectorEFConstruct != 200 {
		t.Errorf("expected HNSW defaults, got M=%d EF=%d", vec.VectorM, vec.VectorEFConstruct)
	}
}

func TestIndexManager_EnsureCreates(t *testing.T) {
	var created string
	m := newTestIndexManager(&mockIndexStore{
		createFn: func(_ context.Context, def *db.IndexDefinition) error {
			created = def.Name
			return nil
		},
	})

	ok, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || created != "recipe_vector_index" {
		t.Errorf("expected index to be created, ok=%v name=%q", ok, created)
	}
}

func TestIndexManager_EnsureExisting(t *testing.T) {
	m := newTestIndexManager(&mockIndexStore{
		createFn: func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists },
	})

	ok, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("existing index should not fail: %v", err)
	}
	if ok {
		t.Error("expected created=false for existing index")
	}
}

func TestIndexManager_EnsureError(t *testing.T) {
	boom := errors.New("boom")
	m := newTestIndexManager(&mockIndexStore{
		createFn: func(context.Context, *db.IndexDefinition) error { return boom },
	})

	if _, err := m.Ensure(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestIndexManager_Drop(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{"dropped", nil, true, false},
		{"missing", db.ErrIndexNotFound, false, false},
		{"failure", errors.New("conn reset"), false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestIndexManager(&mockIndexStore{
				dropFn: func(context.Context, string) error { return tc.err },
			})
			got, err := m.Drop(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("Drop() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Drop() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIndexManager_Exists(t *testing.T) {
	m := newTestIndexManager(&mockIndexStore{
		existsFn: func(_ context.Context, name string) (bool, error) {
			return name == "recipe_vector_index", nil
		},
	})

	ok, err := m.Exists(context.Background())
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
}
