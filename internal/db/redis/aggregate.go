package redis

import (
	"cmp"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/cookbook/internal/db"
)

const (
	// defaultScoreAlias names the KNN distance when no score field is projected.
	defaultScoreAlias = "__score"
	// defaultListLimit mirrors the FT.SEARCH default page size.
	defaultListLimit = 10
	// maxAggregateRows lifts the implicit FT.AGGREGATE row cap for ungrouped limits.
	maxAggregateRows = 10000
)

// Aggregate compiles a pipeline into a single FT.SEARCH or FT.AGGREGATE call.
//
// A pipeline starting with $vectorSearch becomes a KNN FT.SEARCH, one with a
// $group becomes FT.AGGREGATE with GROUPBY/REDUCE COUNT, anything else is a
// sorted FT.SEARCH over all documents. $ifNull defaults and score conversion
// are applied while decoding.
func (s *Store) Aggregate(ctx context.Context, p *db.Pipeline) (*db.Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pl, err := compile(p)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary(pl.op).Args(pl.args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: pl.op, Err: err}
	}

	if pl.op == db.OpAggregate {
		return pl.decodeAggregate(raw), nil
	}
	return pl.decodeSearch(raw)
}

// plan is a compiled pipeline: the command to send and how to decode its reply.
type plan struct {
	op      string
	args    []string
	project []db.ProjectField
	output  []db.ProjectField // applied to FT.AGGREGATE rows after grouping
	score   string // KNN score alias, empty without vector search
	metric  db.DistanceMetric
	group   *db.Group
	sort    *db.Sort
}

func compile(p *db.Pipeline) (*plan, error) {
	var (
		vs    *db.VectorSearch
		proj  *db.Project
		post  *db.Project // reshapes grouped rows
		group *db.Group
		order *db.Sort
		limit int
	)

	for _, st := range p.Stages {
		switch v := st.(type) {
		case db.VectorSearch:
			vs = &v
		case db.Project:
			switch {
			case group == nil && proj == nil:
				proj = &v
			case group != nil && post == nil:
				post = &v
			default:
				return nil, unsupported("at most one $project before and one after $group")
			}
		case db.Group:
			if group != nil {
				return nil, unsupported("only one $group is supported")
			}
			group = &v
		case db.Sort:
			if order != nil {
				return nil, unsupported("only one $sort is supported")
			}
			order = &v
		case db.Limit:
			if limit == 0 || v.N < limit {
				limit = v.N
			}
		}
	}

	pl := &plan{}
	if proj != nil {
		pl.project = proj.Fields
	}
	if post != nil {
		pl.output = post.Fields
	}

	for _, f := range pl.project {
		if f.Meta == db.MetaVectorScore {
			if vs == nil {
				return nil, unsupported("score projection requires $vectorSearch")
			}
			pl.score = f.Name
		}
	}

	switch {
	case group != nil:
		if vs != nil {
			return nil, unsupported("$vectorSearch cannot be combined with $group")
		}
		pl.compileAggregate(p.Index, group, order, limit)
	case vs != nil:
		if order != nil {
			return nil, unsupported("vector search results are ordered by score")
		}
		if pl.score == "" {
			pl.score = defaultScoreAlias
		}
		pl.compileKNN(p.Index, vs, limit)
	default:
		pl.compileList(p.Index, order, limit)
	}

	return pl, nil
}

func unsupported(msg string) error {
	return fmt.Errorf("%w: %s", db.ErrInvalidPipeline, msg)
}

func (pl *plan) compileKNN(index string, vs *db.VectorSearch, limit int) {
	k := vs.Limit
	if limit > 0 && limit < k {
		k = limit
	}

	pl.op = db.OpSearch
	pl.metric = vs.Metric

	query := fmt.Sprintf("*=>[KNN $K @%s $BLOB EF_RUNTIME $EF AS %s]", vs.Path, pl.score)
	pl.args = append([]string{index, query}, pl.returnArgs()...)
	pl.args = append(pl.args,
		"SORTBY", pl.score, "ASC",
		"LIMIT", "0", strconv.Itoa(k),
		"PARAMS", "6",
		"K", strconv.Itoa(k),
		"EF", strconv.Itoa(vs.NumCandidates),
		"BLOB", vectorToBytes(vs.QueryVector),
		"DIALECT", "2",
	)
}

func (pl *plan) compileList(index string, order *db.Sort, limit int) {
	if limit == 0 {
		limit = defaultListLimit
	}

	pl.op = db.OpSearch
	pl.args = append([]string{index, "*"}, pl.returnArgs()...)
	if order != nil {
		pl.args = append(pl.args, "SORTBY", order.Field, direction(order.Desc))
	}
	pl.args = append(pl.args, "LIMIT", "0", strconv.Itoa(limit), "DIALECT", "2")
}

func (pl *plan) compileAggregate(index string, g *db.Group, order *db.Sort, limit int) {
	pl.op = db.OpAggregate
	pl.group = g
	pl.sort = order

	args := []string{index, "*"}
	if load := pl.loadArgs(); len(load) > 0 {
		args = append(args, "LOAD", strconv.Itoa(len(load)))
		args = append(args, load...)
	}
	args = append(args, "GROUPBY", "1", "@"+g.By, "REDUCE", "COUNT", "0", "AS", g.CountAs)
	if order != nil {
		args = append(args, "SORTBY", "2", "@"+order.Field, direction(order.Desc))
	}
	if limit == 0 {
		limit = maxAggregateRows
	}
	pl.args = append(args, "LIMIT", "0", strconv.Itoa(limit))
}

// returnArgs builds the RETURN clause; the score is returned under its KNN alias.
func (pl *plan) returnArgs() []string {
	if len(pl.project) == 0 {
		return nil
	}
	var fields []string
	for _, f := range pl.project {
		switch {
		case f.Meta == db.MetaVectorScore:
			fields = append(fields, pl.score)
		case f.Source() != f.Name:
			fields = append(fields, f.Source(), "AS", f.Name)
		default:
			fields = append(fields, f.Name)
		}
	}
	return append([]string{"RETURN", strconv.Itoa(len(fields))}, fields...)
}

func (pl *plan) loadArgs() []string {
	var fields []string
	for _, f := range pl.project {
		if f.Source() != f.Name {
			fields = append(fields, f.Source(), "AS", f.Name)
		} else {
			fields = append(fields, "@"+f.Name)
		}
	}
	return fields
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// --- Result decoding ---

func (pl *plan) decodeSearch(raw []rueidis.RedisMessage) (*db.Result, error) {
	if len(raw) == 0 {
		return &db.Result{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	records := make([]db.Record, 0, len(raw)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		fields := parseFieldPairs(pairs)
		pl.convertScore(fields)
		pl.applyDefaults(fields)
		records = append(records, db.Record{Key: key, Fields: fields})
	}

	return &db.Result{Total: int(total), Records: records}, nil
}

// decodeAggregate reads FT.AGGREGATE rows: [count, row1, row2, ...]. Rows whose
// group key collapses once defaults are applied (a null group next to a literal
// default value) are merged and re-sorted.
func (pl *plan) decodeAggregate(raw []rueidis.RedisMessage) *db.Result {
	if len(raw) < 2 {
		return &db.Result{}
	}

	records := make([]db.Record, 0, len(raw)-1)
	seen := make(map[string]int, len(raw)-1)
	merged := false

	for _, row := range raw[1:] {
		pairs, err := row.ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(pairs)
		pl.applyDefaults(fields)
		fields = pl.reshape(fields)

		key, ok := fields[pl.group.By]
		if !ok {
			records = append(records, db.Record{Fields: fields})
			continue
		}
		if i, dup := seen[key]; dup {
			prev := records[i].Fields
			prev[pl.group.CountAs] = addCounts(prev[pl.group.CountAs], fields[pl.group.CountAs])
			merged = true
			continue
		}
		seen[key] = len(records)
		records = append(records, db.Record{Fields: fields})
	}

	if merged && pl.sort != nil {
		sortRecords(records, pl.sort)
	}

	return &db.Result{Total: len(records), Records: records}
}

// convertScore replaces the raw KNN distance with a similarity.
// Unparsable scores are left untouched for the caller to reject.
func (pl *plan) convertScore(fields map[string]string) {
	if pl.score == "" {
		return
	}
	raw, ok := fields[pl.score]
	if !ok {
		return
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	fields[pl.score] = strconv.FormatFloat(pl.metric.Similarity(d), 'f', -1, 64)
}

func (pl *plan) applyDefaults(fields map[string]string) {
	for _, f := range pl.project {
		if !f.HasIfNull {
			continue
		}
		if _, ok := fields[f.Name]; !ok {
			fields[f.Name] = f.IfNull
		}
	}
}

// reshape applies the post-group projection: renames, defaults and field selection.
func (pl *plan) reshape(fields map[string]string) map[string]string {
	if len(pl.output) == 0 {
		return fields
	}
	out := make(map[string]string, len(pl.output))
	for _, f := range pl.output {
		if v, ok := fields[f.Source()]; ok {
			out[f.Name] = v
		} else if f.HasIfNull {
			out[f.Name] = f.IfNull
		}
	}
	return out
}

func addCounts(a, b string) string {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA != nil || errB != nil {
		return a
	}
	return strconv.FormatInt(x+y, 10)
}

// sortRecords orders rows numerically when both values are numbers, lexically otherwise.
func sortRecords(records []db.Record, order *db.Sort) {
	slices.SortStableFunc(records, func(a, b db.Record) int {
		av, bv := a.Fields[order.Field], b.Fields[order.Field]
		var c int
		af, errA := strconv.ParseFloat(av, 64)
		bf, errB := strconv.ParseFloat(bv, 64)
		if errA == nil && errB == nil {
			c = cmp.Compare(af, bf)
		} else {
			c = cmp.Compare(av, bv)
		}
		if order.Desc {
			return -c
		}
		return c
	})
}

// parseFieldPairs turns a flat [name, value, ...] reply into a map. Nil values are skipped.
func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
