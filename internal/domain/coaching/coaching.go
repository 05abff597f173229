// Package coaching picks the coaching tip that matches a classified shot.
package coaching

import (
	"strings"

	"github.com/samber/lo"
)

// shortCueCount is how many cues the short variant keeps.
const shortCueCount = 3

// handednessBoth marks a tip that applies to either hand.
const handednessBoth = "BOTH"

// Tip is one coaching record from the tips table.
type Tip struct {
	Shape          string   `json:"shape"`
	Handedness     string   `json:"handedness"`
	Priority       int      `json:"priority"`
	Diagnostics    []string `json:"diagnostics"`
	CoachingCues   []string `json:"coaching_cues"`
	QuickChecks    []string `json:"quick_checks"`
	PracticeDrills []string `json:"practice_drills"`
}

// Guidance is the coaching section of an analysis. Lists are never nil so
// they encode as empty arrays.
type Guidance struct {
	Diagnostics       []string `json:"diagnostics"`
	CoachingCues      []string `json:"coaching_cues"`
	QuickChecks       []string `json:"quick_checks"`
	PracticeDrills    []string `json:"practice_drills"`
	CoachingCuesShort []string `json:"coaching_cues_short"`
}

// Empty returns guidance with four empty lists.
func Empty() Guidance {
	return Guidance{
		Diagnostics:       []string{},
		CoachingCues:      []string{},
		QuickChecks:       []string{},
		PracticeDrills:    []string{},
		CoachingCuesShort: []string{},
	}
}

func (t Tip) appliesTo(shape, handedness string) bool {
	if t.Shape != shape {
		return false
	}
	h := strings.ToUpper(strings.TrimSpace(t.Handedness))
	return h == "" || h == handednessBoth || h == strings.ToUpper(handedness)
}

// Select returns the highest-priority tip for the shape and handedness. Among
// equal priorities the earliest tip wins. No match yields Empty.
func Select(tips []Tip, shape, handedness string) Guidance {
	matched := lo.Filter(tips, func(t Tip, _ int) bool {
		return t.appliesTo(shape, handedness)
	})
	if len(matched) == 0 {
		return Empty()
	}

	best := lo.MaxBy(matched, func(a, b Tip) bool { return a.Priority > b.Priority })

	g := Guidance{
		Diagnostics:    orEmpty(best.Diagnostics),
		CoachingCues:   orEmpty(best.CoachingCues),
		QuickChecks:    orEmpty(best.QuickChecks),
		PracticeDrills: orEmpty(best.PracticeDrills),
	}
	g.CoachingCuesShort = g.CoachingCues[:min(shortCueCount, len(g.CoachingCues))]
	return g
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
