package benchmark

import (
	"math"

	"github.com/okian/fairway/internal/domain/model"
)

// Percentile bands.
const (
	BandUnknown  = "unknown"
	BandBelowP10 = "below_p10"
	BandP10P25   = "p10_p25"
	BandP25P50   = "p25_p50"
	BandP50P75   = "p50_p75"
	BandP75P90   = "p75_p90"
	BandAboveP90 = "above_p90"
)

const minSpread = 1e-3

var (
	comparedMetrics  = []Metric{BallSpeed, VerticalLaunchAngle, HorizontalLaunchAngle, TotalSpin, SpinAxis}
	inferenceMetrics = []Metric{BallSpeed, VerticalLaunchAngle, TotalSpin}
)

// Values holds the raw measured value of each metric that is present.
type Values map[Metric]float64

// ValuesOf extracts benchmark values from a raw, unnormalized measurement.
func ValuesOf(m model.ShotMeasurement) Values {
	v := make(Values, len(comparedMetrics))
	set := func(k Metric, p *float64) {
		if p != nil {
			v[k] = *p
		}
	}
	set(BallSpeed, m.BallSpeed)
	set(VerticalLaunchAngle, m.VerticalLaunchAngle)
	set(HorizontalLaunchAngle, m.HorizontalLaunch)
	set(TotalSpin, m.TotalSpin)
	set(SpinAxis, m.SpinAxis)
	return v
}

// Entry is one metric compared against one cohort.
type Entry struct {
	Value float64  `json:"value"`
	Band  string   `json:"band"`
	P25   *float64 `json:"p25"`
	P50   *float64 `json:"p50"`
	P75   *float64 `json:"p75"`
}

// Comparison maps cohort id to metric to entry.
type Comparison map[string]map[Metric]Entry

// Band places v in the percentile chain using strict less-than, so a value
// equal to a percentile falls in the band above it. A gap anywhere in the
// chain yields BandUnknown.
func Band(v float64, p Percentiles) string {
	if p.P10 == nil || p.P25 == nil || p.P50 == nil || p.P75 == nil || p.P90 == nil {
		return BandUnknown
	}
	switch {
	case v < *p.P10:
		return BandBelowP10
	case v < *p.P25:
		return BandP10P25
	case v < *p.P50:
		return BandP25P50
	case v < *p.P75:
		return BandP50P75
	case v < *p.P90:
		return BandP75P90
	default:
		return BandAboveP90
	}
}

// InferCategory returns the category whose professional medians sit closest
// to the shot, measured in interquartile ranges. Only categories with a
// professional ball-speed median are eligible; a category that scores no
// metric is skipped. The first minimum in table order wins.
func (t *Table) InferCategory(vals Values) (string, bool) {
	best := ""
	bestScore := math.Inf(1)
	found := false

	for _, cat := range t.Categories {
		pro, ok := cat.Cohort(ProfessionalCohort)
		if !ok || pro.Metrics[BallSpeed].P50 == nil {
			continue
		}

		score, count := 0.0, 0
		for _, m := range inferenceMetrics {
			v, ok := vals[m]
			if !ok {
				continue
			}
			p, ok := pro.Metrics[m]
			if !ok || p.P25 == nil || p.P50 == nil || p.P75 == nil {
				continue
			}
			spread := math.Max(*p.P75-*p.P25, minSpread)
			score += math.Abs((v - *p.P50) / spread)
			count++
		}
		if count == 0 {
			continue
		}

		score /= float64(count)
		if !found || score < bestScore {
			best, bestScore, found = cat.Name, score, true
		}
	}
	return best, found
}

// Compare bands every present metric against every cohort of the category.
// Cohorts without a single comparable metric are omitted; an unknown or
// empty category yields an empty comparison.
func (t *Table) Compare(vals Values, category string) Comparison {
	out := Comparison{}
	if category == "" {
		return out
	}
	cat, ok := t.Category(category)
	if !ok {
		return out
	}

	for _, cohort := range cat.Cohorts {
		entries := make(map[Metric]Entry)
		for _, m := range comparedMetrics {
			v, ok := vals[m]
			if !ok {
				continue
			}
			p, ok := cohort.Metrics[m]
			if !ok {
				continue
			}
			entries[m] = Entry{Value: v, Band: Band(v, p), P25: p.P25, P50: p.P50, P75: p.P75}
		}
		if len(entries) > 0 {
			out[cohort.ID] = entries
		}
	}
	return out
}

// Window returns the interquartile window of a cohort metric. Either bound
// is nil when unknown.
func (t *Table) Window(category, cohort string, metric Metric) (p25, p75 *float64) {
	cat, ok := t.Category(category)
	if !ok {
		return nil, nil
	}
	co, ok := cat.Cohort(cohort)
	if !ok {
		return nil, nil
	}
	p := co.Metrics[metric]
	return p.P25, p.P75
}
