// Package benchmark compares a shot against percentile tables of reference
// cohorts and infers which club category the shot most resembles.
package benchmark

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/valyala/fastjson"
)

// Metric names a benchmarked measurement.
type Metric string

// Benchmarked metrics, in comparison order.
const (
	BallSpeed             Metric = "ball_speed"
	VerticalLaunchAngle   Metric = "vertical_launch_angle"
	HorizontalLaunchAngle Metric = "horizontal_launch_angle"
	TotalSpin             Metric = "total_spin"
	SpinAxis              Metric = "spin_axis"
)

// ProfessionalCohort is the cohort whose medians drive category inference.
const ProfessionalCohort = "pga_tour"

// Percentiles is one metric's distribution within a cohort. Any point may be
// missing from the source data.
type Percentiles struct {
	P10 *float64
	P25 *float64
	P50 *float64
	P75 *float64
	P90 *float64
}

// Cohort is a reference population within a category.
type Cohort struct {
	ID      string
	Metrics map[Metric]Percentiles
}

// Category groups cohorts for one club category.
type Category struct {
	Name    string
	Cohorts []Cohort
}

// CohortInfo describes a cohort in the table metadata.
type CohortInfo struct {
	ID    string
	Label string
}

// Meta is the descriptive header of a benchmark document.
type Meta struct {
	Source  string
	Units   string
	Cohorts []CohortInfo
}

// Table is an immutable benchmark table. Categories and cohorts keep the
// order they had in the source document; inference tie-breaks rely on it.
type Table struct {
	Meta       Meta
	Categories []Category
}

// Category returns the named category.
func (t *Table) Category(name string) (Category, bool) {
	return lo.Find(t.Categories, func(c Category) bool { return c.Name == name })
}

// Cohort returns the cohort with the given id.
func (c Category) Cohort(id string) (Cohort, bool) {
	return lo.Find(c.Cohorts, func(co Cohort) bool { return co.ID == id })
}

// Parse decodes a benchmark document of the form
//
//	{"meta": {...}, "benchmarks": {category: {cohort: {metric: {"p10": ...}}}}}
//
// preserving key order. Non-numeric percentile values are treated as missing.
func Parse(data []byte) (*Table, error) {
	var p fastjson.Parser
	doc, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	root, err := doc.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidTable)
	}

	t := &Table{Meta: parseMeta(doc.Get("meta"))}

	benchmarks := root.Get("benchmarks")
	if benchmarks == nil {
		return nil, ErrMissingBenchmarks
	}
	categories, err := benchmarks.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: benchmarks is not an object", ErrInvalidTable)
	}

	var parseErr error
	categories.Visit(func(name []byte, v *fastjson.Value) {
		if parseErr != nil {
			return
		}
		cat, err := parseCategory(string(name), v)
		if err != nil {
			parseErr = err
			return
		}
		t.Categories = append(t.Categories, cat)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return t, nil
}

func parseCategory(name string, v *fastjson.Value) (Category, error) {
	cat := Category{Name: name}
	cohorts, err := v.Object()
	if err != nil {
		return cat, fmt.Errorf("%w: category %q is not an object", ErrInvalidTable, name)
	}

	var parseErr error
	cohorts.Visit(func(id []byte, cv *fastjson.Value) {
		if parseErr != nil {
			return
		}
		metrics, err := cv.Object()
		if err != nil {
			parseErr = fmt.Errorf("%w: cohort %s/%s is not an object", ErrInvalidTable, name, id)
			return
		}
		cohort := Cohort{ID: string(id), Metrics: make(map[Metric]Percentiles)}
		metrics.Visit(func(metric []byte, mv *fastjson.Value) {
			if mv.Type() != fastjson.TypeObject {
				return
			}
			// An empty object is no data. A non-empty one without numbers
			// still compares, as "unknown".
			if obj, _ := mv.Object(); obj.Len() == 0 {
				return
			}
			cohort.Metrics[Metric(metric)] = Percentiles{
				P10: number(mv, "p10"),
				P25: number(mv, "p25"),
				P50: number(mv, "p50"),
				P75: number(mv, "p75"),
				P90: number(mv, "p90"),
			}
		})
		cat.Cohorts = append(cat.Cohorts, cohort)
	})
	return cat, parseErr
}

func parseMeta(v *fastjson.Value) Meta {
	var m Meta
	if v == nil || v.Type() != fastjson.TypeObject {
		return m
	}
	m.Source = string(v.GetStringBytes("source"))
	m.Units = string(v.GetStringBytes("units"))
	for _, c := range v.GetArray("cohorts") {
		m.Cohorts = append(m.Cohorts, CohortInfo{
			ID:    string(c.GetStringBytes("id")),
			Label: string(c.GetStringBytes("label")),
		})
	}
	return m
}

func number(v *fastjson.Value, key string) *float64 {
	f := v.Get(key)
	if f == nil || f.Type() != fastjson.TypeNumber {
		return nil
	}
	n, err := f.Float64()
	if err != nil {
		return nil
	}
	return &n
}
