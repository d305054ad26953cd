package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/okian/surfelo/internal/domain/ranking"
	"github.com/okian/surfelo/internal/domain/types"
	"github.com/okian/surfelo/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: rating DESC, then playerID ASC (deterministic).
// We implement a BST comparator where "less" means ranks earlier
// (i.e., higher rating ranks earlier). This makes in-order traversal
// produce the leaderboard from best to worst. Node priorities are a hash of
// the player id, so the tree stays balanced whatever order ratings arrive in.

// ratingScale controls fixed-point scaling from float64.
const ratingScale = 1_000_000_000 // 9 decimal places

type ratingFP int64

func toFixedPoint(x float64) ratingFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * ratingScale
	if scaled >= float64(math.MaxInt64) {
		return ratingFP(math.MaxInt64)
	}
	if scaled <= float64(math.MinInt64) {
		return ratingFP(math.MinInt64)
	}
	return ratingFP(math.Round(scaled))
}

func toFloat(x ratingFP) float64 {
	return float64(x) / ratingScale
}

// record stores the fixed-point rating plus display metadata for a player.
type record struct {
	rating  ratingFP
	name    string
	matches int
	last    time.Time
}

// treap node
type node struct {
	id     string
	rating ratingFP
	prio   uint64
	left   *node
	right  *node
	size   int
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

// less returns true if (aRating, aID) should appear before (bRating, bID)
// in the leaderboard (higher ranks first).
func less(aRating ratingFP, aID string, bRating ratingFP, bID string) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priority hashes id and mixes the bits so that ids sharing a prefix do
// not get correlated priorities.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	x := h.Sum64()
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func insert(n *node, id string, rating ratingFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, rating: rating, prio: prio, size: 1}
	}
	if less(rating, id, n.rating, n.id) {
		n.left = insert(n.left, id, rating, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rating, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, rating ratingFP) *node {
	if n == nil {
		return nil
	}
	if rating == n.rating && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, rating)
		}
	} else if less(rating, id, n.rating, n.id) {
		n.left = deleteNode(n.left, id, rating)
	} else {
		n.right = deleteNode(n.right, id, rating)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes rate strictly higher than rating.
func countAbove(n *node, rating ratingFP) int {
	count := 0
	for n != nil {
		if n.rating > rating {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order (highest ratings first).
func collectTopN(n *node, limit int, records map[string]record, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	collectTopN(n.left, limit, records, out)

	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, entryOf(n.id, rec))
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

func entryOf(id string, rec record) types.Entry {
	return types.Entry{
		PlayerID:      id,
		Name:          rec.name,
		Rating:        toFloat(rec.rating),
		Matches:       rec.matches,
		LastMatchDate: rec.last,
	}
}

// TreapStore is an order-statistics treap over one leaderboard.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	name string
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		name: "leaderboard",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.byID == nil {
		s.byID = make(map[string]record)
	}
	return s
}

// Load builds a store from entries. Invalid entries are rejected.
func Load(ctx context.Context, entries []types.Entry, opts ...Option) (*TreapStore, error) {
	s := NewTreapStore(append([]Option{WithCapacity(len(entries))}, opts...)...)
	for _, e := range entries {
		if err := s.Set(ctx, e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Set implements Store.Set with O(log n) expected time.
func (s *TreapStore) Set(ctx context.Context, e types.Entry) error {
	if e.PlayerID == "" || math.IsNaN(e.Rating) || math.IsInf(e.Rating, 0) {
		s.recordError("invalid_entry")
		return ErrInvalidEntry
	}
	nr := toFixedPoint(e.Rating)

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byID[e.PlayerID]; ok {
		s.root = deleteNode(s.root, e.PlayerID, old.rating)
	}
	s.byID[e.PlayerID] = record{rating: nr, name: e.Name, matches: e.Matches, last: e.LastMatchDate}
	s.root = insert(s.root, e.PlayerID, nr, priority(e.PlayerID))
	return nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[playerID]
	if !ok {
		s.recordError("not_found")
		return ErrNotFound
	}
	s.root = deleteNode(s.root, playerID, old.rating)
	delete(s.byID, playerID)
	return nil
}

// Rank returns the competition rank and rating for a player in O(log n).
func (s *TreapStore) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[playerID]
	if !ok {
		s.recordError("not_found")
		return types.Entry{}, ErrNotFound
	}
	e := entryOf(playerID, rec)
	e.Rank = countAbove(s.root, rec.rating) + 1
	return e, nil
}

// TopN returns the top N entries ordered by rating desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		s.recordError("invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, s.byID, &out)
	ranking.AssignRanks(out)
	return out, nil
}

// Count returns the total number of players.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Name returns the label given with WithName.
func (s *TreapStore) Name() string {
	return s.name
}

func (s *TreapStore) recordError(kind string) {
	metrics.RecordErrorByComponent("repository."+s.name, kind)
}
