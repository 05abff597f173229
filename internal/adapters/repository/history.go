package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/fairway/internal/domain/analysis"
	"github.com/okian/fairway/pkg/metrics"
)

// History keeps the newest shots in insertion order and ranks the ones with
// a trajectory in a treap keyed by carry distance.
//
// Ordering: carry DESC, then shot id ASC. "less" means ranks earlier, so an
// in-order traversal walks from the longest carry to the shortest.

const defaultCapacity = 1_000

// carryScale stores carry as integer centimetres so equal rounded carries
// compare equal.
const carryScale = 100

type carryFP int64

func toFixedPoint(x float64) carryFP {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return carryFP(math.Round(x * carryScale))
}

func toFloat(x carryFP) float64 {
	return float64(x) / carryScale
}

type stored struct {
	rec    Record
	carry  carryFP
	ranked bool
}

type node struct {
	id    string
	carry carryFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aCarry carryFP, aID string, bCarry carryFP, bID string) bool {
	if aCarry != bCarry {
		return aCarry > bCarry
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, carry carryFP) *node {
	if n == nil {
		return &node{id: id, carry: carry, prio: rand.Uint64(), size: 1}
	}
	if less(carry, id, n.carry, n.id) {
		n.left = insert(n.left, id, carry)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, carry)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, carry carryFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case carry == n.carry && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, carry)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, carry)
		}
	case less(carry, id, n.carry, n.id):
		n.left = deleteNode(n.left, id, carry)
	default:
		n.right = deleteNode(n.right, id, carry)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// HistoryStore is the in-memory Store.
type HistoryStore struct {
	mu       sync.RWMutex
	root     *node
	byID     map[string]*stored
	order    []string // ring of ids in insertion order
	next     int
	latest   string
	capacity int
	now      func() time.Time
}

var _ Store = (*HistoryStore)(nil)

// NewHistoryStore constructs an empty history.
func NewHistoryStore(opts ...Option) *HistoryStore {
	s := &HistoryStore{
		capacity: defaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]*stored, s.capacity)
	s.order = make([]string, s.capacity)

	metrics.UpdateHistorySize(0)
	return s
}

// Add stores res under id. Re-adding an id replaces the analysis and keeps
// its place in the eviction order.
func (s *HistoryStore) Add(_ context.Context, id string, res analysis.Result) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}

	rec := &stored{rec: Record{ID: id, StoredAt: s.now().UTC(), Result: res}}
	if t := res.Derived.Trajectory; t != nil {
		rec.carry, rec.ranked = toFixedPoint(t.CarryDistance), true
	}

	s.mu.Lock()
	if old, ok := s.byID[id]; ok {
		s.unrank(old)
	} else {
		if evict := s.order[s.next]; evict != "" {
			s.unrank(s.byID[evict])
			delete(s.byID, evict)
		}
		s.order[s.next] = id
		s.next = (s.next + 1) % s.capacity
	}
	s.byID[id] = rec
	if rec.ranked {
		s.root = insert(s.root, id, rec.carry)
	}
	s.latest = id
	size := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateHistorySize(size)
	return nil
}

// unrank removes a record from the treap. Must be called with s.mu held.
func (s *HistoryStore) unrank(st *stored) {
	if st != nil && st.ranked {
		s.root = deleteNode(s.root, st.rec.ID, st.carry)
	}
}

// Latest returns the most recently added record.
func (s *HistoryStore) Latest(_ context.Context) (Record, error) {
	defer observe(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.byID[s.latest]
	if !ok {
		return Record{}, ErrNotFound
	}
	return st.rec, nil
}

// Get returns the record stored under id.
func (s *HistoryStore) Get(_ context.Context, id string) (Record, error) {
	defer observe(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.byID[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st.rec, nil
}

// TopN returns the n longest carries in O(log n + k) expected time.
func (s *HistoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	defer observe(time.Now())

	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, nsize(s.root)))
	collectTopN(s.root, n, &nodes)

	out := make([]Entry, len(nodes))
	for i, nd := range nodes {
		out[i] = Entry{Carry: toFloat(nd.carry), Record: s.byID[nd.id].rec}
	}
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the number of stored shots.
func (s *HistoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Stats summarises the stored shots.
func (s *HistoryStore) Stats(_ context.Context) Stats {
	defer observe(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Count:      len(s.byID),
		Shapes:     map[string]int{},
		Categories: map[string]int{},
	}

	speeds := make([]float64, 0, len(s.byID))
	for _, rec := range s.byID {
		inf := rec.rec.Result.Inferred
		if inf.ShotShape != nil {
			st.Shapes[*inf.ShotShape]++
		}
		if inf.ClubCategory != nil {
			st.Categories[*inf.ClubCategory]++
		}
		if v := rec.rec.Result.Measured.BallSpeed; v != nil {
			speeds = append(speeds, *v)
		}
	}
	if len(speeds) > 0 {
		st.MeanBallSpeed = round2(stat.Mean(speeds, nil))
	}

	carries := make([]*node, 0, nsize(s.root))
	collectTopN(s.root, nsize(s.root), &carries)
	if len(carries) == 0 {
		return st
	}

	// Treap order is descending; Quantile needs ascending.
	x := make([]float64, len(carries))
	for i, nd := range carries {
		x[len(x)-1-i] = toFloat(nd.carry)
	}
	st.WithCarry = len(x)
	mean, std := stat.MeanStdDev(x, nil)
	st.MeanCarry = round2(mean)
	if len(x) > 1 {
		st.StdDevCarry = round2(std)
	}
	st.MedianCarry = stat.Quantile(0.5, stat.Empirical, x, nil)
	st.LongestCarry = floats.Max(x)
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func observe(start time.Time) {
	metrics.RecordHistoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

// assignRanksWithTies gives equal carries the same rank; the next distinct
// carry takes the next rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Carry != entries[i-1].Carry {
			rank++
		}
		entries[i].Rank = rank
	}
}
