// Package memory is the in-process store. All tables live behind one lock so
// that name checks, foreign key checks and cascades are atomic with the write
// they guard. Foreign key and restrict rules match the postgres schema.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"pokereview/internal/models"
)

// Store holds every table and hands out per-entity repositories.
type Store struct {
	mu sync.RWMutex
	// txMu serializes transactions against each other and against writes
	// issued outside a transaction, so a rollback never discards them.
	txMu sync.Mutex
	t    tables
}

type tables struct {
	categories        map[int]models.Category
	countries         map[int]models.Country
	owners            map[int]models.Owner
	pokemon           map[int]models.Pokemon
	reviews           map[int]models.Review
	reviewers         map[int]models.Reviewer
	pokemonOwners     map[models.PokemonOwner]struct{}
	pokemonCategories map[models.PokemonCategory]struct{}
	seq               map[string]int
}

func newTables() tables {
	return tables{
		categories:        make(map[int]models.Category),
		countries:         make(map[int]models.Country),
		owners:            make(map[int]models.Owner),
		pokemon:           make(map[int]models.Pokemon),
		reviews:           make(map[int]models.Review),
		reviewers:         make(map[int]models.Reviewer),
		pokemonOwners:     make(map[models.PokemonOwner]struct{}),
		pokemonCategories: make(map[models.PokemonCategory]struct{}),
		seq:               make(map[string]int),
	}
}

func (t tables) clone() tables {
	return tables{
		categories:        maps.Clone(t.categories),
		countries:         maps.Clone(t.countries),
		owners:            maps.Clone(t.owners),
		pokemon:           maps.Clone(t.pokemon),
		reviews:           maps.Clone(t.reviews),
		reviewers:         maps.Clone(t.reviewers),
		pokemonOwners:     maps.Clone(t.pokemonOwners),
		pokemonCategories: maps.Clone(t.pokemonCategories),
		seq:               maps.Clone(t.seq),
	}
}

// nextID advances the identity counter of table. Counters survive deletes.
func (t tables) nextID(table string) int {
	t.seq[table]++
	return t.seq[table]
}

// New returns an empty store.
func New() *Store {
	return &Store{t: newTables()}
}

func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }
func (s *Store) Countries() *CountryRepo   { return &CountryRepo{s: s} }
func (s *Store) Owners() *OwnerRepo        { return &OwnerRepo{s: s} }
func (s *Store) Pokemon() *PokemonRepo     { return &PokemonRepo{s: s} }
func (s *Store) Reviews() *ReviewRepo      { return &ReviewRepo{s: s} }
func (s *Store) Reviewers() *ReviewerRepo  { return &ReviewerRepo{s: s} }

// Ping always succeeds; it lets the health check treat both stores alike.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// RunInTx runs fn as one unit of work. Every table is snapshotted first and
// restored if fn returns an error or panics.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.t.clone()
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.t = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			restore()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		restore()
		return err
	}
	return nil
}

// write takes the locks a mutation needs and returns the release func.
func (s *Store) write(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) read() func() {
	s.mu.RLock()
	return s.mu.RUnlock
}

// sortedValues returns the rows of m ordered by identity.
func sortedValues[T any](m map[int]T) []T {
	out := make([]T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}

// nameTaken reports whether any row's key, as produced by key, equals name
// after normalization.
func nameTaken[T any](m map[int]T, name string, key func(T) string) bool {
	want := models.NormalizeName(name)
	for _, row := range m {
		if models.NormalizeName(key(row)) == want {
			return true
		}
	}
	return false
}
