package db

import (
	"errors"
	"fmt"
)

// MetaVectorScore marks a projected field that receives the vector search score.
const MetaVectorScore = "vectorSearchScore"

// Stage is one step of a declarative pipeline.
type Stage interface {
	stageName() string
}

// VectorSearch is an approximate nearest-neighbour stage. It must be the first stage.
type VectorSearch struct {
	Path          string // vector attribute name in the index
	QueryVector   []float32
	NumCandidates int // candidates examined before truncating to Limit
	Limit         int
	Metric        DistanceMetric // metric the index was built with, used to derive similarity
}

// Project selects and renames fields.
type Project struct {
	Fields []ProjectField
}

// ProjectField is a single projected output field.
type ProjectField struct {
	Name string // output name
	Path string // source: JSONPath, attribute name, or empty for Name itself
	Meta string // MetaVectorScore to project the search score
	// IfNull substitutes a value when the source is missing.
	IfNull    string
	HasIfNull bool
}

// Group groups records by one field and counts each group.
type Group struct {
	By      string
	CountAs string
}

// Sort orders records by one field.
type Sort struct {
	Field string
	Desc  bool
}

// Limit truncates the output.
type Limit struct {
	N int
}

func (VectorSearch) stageName() string { return "$vectorSearch" }
func (Project) stageName() string      { return "$project" }
func (Group) stageName() string        { return "$group" }
func (Sort) stageName() string         { return "$sort" }
func (Limit) stageName() string        { return "$limit" }

// Pipeline is an ordered sequence of stages executed against one index.
type Pipeline struct {
	Index  string
	Stages []Stage
}

// NewPipeline starts a pipeline against the given index.
func NewPipeline(index string) *Pipeline {
	return &Pipeline{Index: index}
}

// VectorSearch appends a nearest-neighbour stage.
func (p *Pipeline) VectorSearch(vs VectorSearch) *Pipeline {
	p.Stages = append(p.Stages, vs)
	return p
}

// Project appends a projection stage.
func (p *Pipeline) Project(fields ...ProjectField) *Pipeline {
	p.Stages = append(p.Stages, Project{Fields: fields})
	return p
}

// Group appends a group-and-count stage.
func (p *Pipeline) Group(by, countAs string) *Pipeline {
	p.Stages = append(p.Stages, Group{By: by, CountAs: countAs})
	return p
}

// Sort appends a sort stage.
func (p *Pipeline) Sort(field string, desc bool) *Pipeline {
	p.Stages = append(p.Stages, Sort{Field: field, Desc: desc})
	return p
}

// Limit appends a limit stage.
func (p *Pipeline) Limit(n int) *Pipeline {
	p.Stages = append(p.Stages, Limit{N: n})
	return p
}

// Field is a shorthand for a plain projected field read from path.
func Field(name, path string) ProjectField {
	return ProjectField{Name: name, Path: path}
}

// IfNull is a shorthand for a projected field with a default for missing values.
func IfNull(name, path, def string) ProjectField {
	return ProjectField{Name: name, Path: path, IfNull: def, HasIfNull: true}
}

// Score is a shorthand for a field carrying the vector search score.
func Score(name string) ProjectField {
	return ProjectField{Name: name, Meta: MetaVectorScore}
}

// Source returns the field the value is read from.
func (f ProjectField) Source() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Name
}

// Validate checks structural rules shared by all backends.
func (p *Pipeline) Validate() error {
	if p.Index == "" {
		return fmt.Errorf("%w: index is required", ErrInvalidPipeline)
	}
	if len(p.Stages) == 0 {
		return fmt.Errorf("%w: at least one stage is required", ErrInvalidPipeline)
	}
	for i, s := range p.Stages {
		if err := validateStage(i, s); err != nil {
			return fmt.Errorf("%w: stage %d (%s): %w", ErrInvalidPipeline, i, s.stageName(), err)
		}
	}
	return nil
}

func validateStage(i int, s Stage) error {
	switch st := s.(type) {
	case VectorSearch:
		if i != 0 {
			return errors.New("must be the first stage")
		}
		if st.Path == "" {
			return errors.New("path is required")
		}
		if len(st.QueryVector) == 0 {
			return errors.New("query vector is required")
		}
		if st.Limit <= 0 {
			return errors.New("limit must be positive")
		}
		if st.NumCandidates < st.Limit {
			return errors.New("numCandidates must be >= limit")
		}
	case Project:
		if len(st.Fields) == 0 {
			return errors.New("at least one field is required")
		}
		for _, f := range st.Fields {
			if f.Name == "" {
				return errors.New("field name is required")
			}
		}
	case Group:
		if st.By == "" || st.CountAs == "" {
			return errors.New("group key and count field are required")
		}
	case Sort:
		if st.Field == "" {
			return errors.New("sort field is required")
		}
	case Limit:
		if st.N <= 0 {
			return errors.New("limit must be positive")
		}
	default:
		return fmt.Errorf("unsupported stage %T", s)
	}
	return nil
}
