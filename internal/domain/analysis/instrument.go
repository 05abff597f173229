package analysis

import (
	"context"
	"time"

	"github.com/okian/fairway/pkg/metrics"
)

// Degradation reasons reported to metrics.
const (
	reasonMissingInputs    = "missing_inputs"
	reasonDegenerateFlight = "degenerate_flight"
	reasonUnclassified     = "unclassified"
	reasonNoCategory       = "no_category"
)

type instrumented struct {
	next Engine
}

// Instrument wraps an engine so every call records latency, the classified
// shape and any missing sections.
func Instrument(e Engine) Engine {
	return &instrumented{next: e}
}

func (i *instrumented) Analyze(ctx context.Context, in Input) Result {
	start := time.Now()
	res := i.next.Analyze(ctx, in)
	metrics.RecordAnalysisLatency(float64(time.Since(start).Microseconds()) / 1000)

	shapeName := ""
	if res.Inferred.ShotShape != nil {
		shapeName = *res.Inferred.ShotShape
	} else {
		metrics.RecordAnalysisDegraded(reasonUnclassified)
	}
	metrics.RecordShotAnalyzed(shapeName)

	switch {
	case len(res.Derived.TrajectoryNotes) > 0:
		metrics.RecordAnalysisDegraded(reasonMissingInputs)
	case res.Derived.Trajectory == nil:
		metrics.RecordAnalysisDegraded(reasonDegenerateFlight)
	}
	if res.Inferred.ClubCategory == nil {
		metrics.RecordAnalysisDegraded(reasonNoCategory)
	}
	return res
}
