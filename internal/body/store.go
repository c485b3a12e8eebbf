package body

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Store owns every live body. Iteration order is insertion order and stays
// stable across calls unless the store is mutated; the engine relies on
// this for reproducible pairwise force summation.
//
// The store is not safe for concurrent use. Callers mutate it only between
// engine steps.
type Store struct {
	bodies []*Body
	index  map[uint64]*Body
	nextID uint64
}

func NewStore() *Store {
	return &Store{
		bodies: make([]*Body, 0, 16),
		index:  make(map[uint64]*Body),
	}
}

// Add validates spec, assigns a fresh id and returns it. Ids are never
// reused within a store's lifetime.
func (s *Store) Add(spec Spec) (uint64, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	s.nextID++
	b := &Body{
		ID:     s.nextID,
		Name:   spec.Name,
		Color:  spec.Color,
		Mass:   spec.Mass,
		Radius: spec.Radius,
		Pos:    r2.Vec{X: spec.X, Y: spec.Y},
		Vel:    r2.Vec{X: spec.VX, Y: spec.VY},
	}
	s.bodies = append(s.bodies, b)
	s.index[b.ID] = b
	return b.ID, nil
}

// Get returns the live body with the given id.
func (s *Store) Get(id uint64) (*Body, error) {
	b, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return b, nil
}

// Remove deletes the body with the given id, preserving the order of the
// remaining bodies.
func (s *Store) Remove(id uint64) error {
	if _, ok := s.index[id]; !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	delete(s.index, id)
	for i, b := range s.bodies {
		if b.ID == id {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			break
		}
	}
	return nil
}

// All returns the live bodies in insertion order. The slice is a fresh
// copy; the bodies themselves are shared.
func (s *Store) All() []*Body {
	out := make([]*Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

func (s *Store) Len() int {
	return len(s.bodies)
}

// Update applies a partial update to a live body, revalidating the same
// constraints as Add. On error the body is left unchanged.
func (s *Store) Update(id uint64, p Patch) error {
	b, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	next := Spec{
		Mass:   b.Mass,
		Radius: b.Radius,
		X:      b.Pos.X, Y: b.Pos.Y,
		VX: b.Vel.X, VY: b.Vel.Y,
	}
	if p.Mass != nil {
		next.Mass = *p.Mass
	}
	if p.Radius != nil {
		next.Radius = *p.Radius
	}
	if p.Pos != nil {
		next.X, next.Y = p.Pos.X, p.Pos.Y
	}
	if p.Vel != nil {
		next.VX, next.VY = p.Vel.X, p.Vel.Y
	}
	if err := next.Validate(); err != nil {
		return err
	}

	b.Mass = next.Mass
	b.Radius = next.Radius
	b.Pos = r2.Vec{X: next.X, Y: next.Y}
	b.Vel = r2.Vec{X: next.VX, Y: next.VY}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Color != nil {
		b.Color = *p.Color
	}
	return nil
}

// Clear removes every body. The id counter keeps counting so ids from
// before the clear stay stale forever.
func (s *Store) Clear() {
	s.bodies = s.bodies[:0]
	s.index = make(map[uint64]*Body)
}
