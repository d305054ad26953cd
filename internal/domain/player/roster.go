package player

import (
	"sort"

	"github.com/okian/surfelo/internal/domain/model"
)

// Defaults used by NewRoster.
const (
	DefaultStartingRating = 1300.0
)

// DefaultSurfaces are the surfaces tracked when none are configured.
var DefaultSurfaces = []model.Surface{"Hard", "Clay", "Grass", "Carpet"}

// Roster owns every player state of a run, keyed by competitor id. It is
// not safe for concurrent use.
type Roster struct {
	surfaces []model.Surface
	valid    map[model.Surface]struct{}
	start    float64
	players  map[string]*State
}

// NewRoster creates an empty roster.
func NewRoster(opts ...Option) *Roster {
	r := &Roster{
		surfaces: append([]model.Surface(nil), DefaultSurfaces...),
		start:    DefaultStartingRating,
		players:  make(map[string]*State),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.valid = make(map[model.Surface]struct{}, len(r.surfaces))
	for _, s := range r.surfaces {
		r.valid[s] = struct{}{}
	}
	return r
}

// Surfaces returns the tracked surfaces in configuration order.
func (r *Roster) Surfaces() []model.Surface {
	return append([]model.Surface(nil), r.surfaces...)
}

// ValidSurface reports whether s is tracked. Matching is exact.
func (r *Roster) ValidSurface(s model.Surface) bool {
	_, ok := r.valid[s]
	return ok
}

// StartingRating is the rating every surface of a new player starts at.
func (r *Roster) StartingRating() float64 {
	return r.start
}

// Get returns the state for id.
func (r *Roster) Get(id string) (*State, bool) {
	s, ok := r.players[id]
	return s, ok
}

// GetOrCreate returns the state for id, creating it with starting ratings.
func (r *Roster) GetOrCreate(id string) *State {
	if s, ok := r.players[id]; ok {
		return s
	}
	s := newState(id, r.surfaces, r.start)
	r.players[id] = s
	return s
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.players)
}

// IDs returns all player ids in ascending order.
func (r *Roster) IDs() []string {
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every player in ascending id order.
func (r *Roster) Each(fn func(*State)) {
	for _, id := range r.IDs() {
		fn(r.players[id])
	}
}

// Clone returns a deep copy of the roster and every player in it.
func (r *Roster) Clone() *Roster {
	c := &Roster{
		surfaces: append([]model.Surface(nil), r.surfaces...),
		valid:    cloneMap(r.valid),
		start:    r.start,
		players:  make(map[string]*State, len(r.players)),
	}
	for id, s := range r.players {
		c.players[id] = s.Clone()
	}
	return c
}
