package body

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func validSpec() Spec {
	return Spec{Name: "test", Mass: 10, Radius: 2, X: 1, Y: 2, VX: 0.5, VY: -0.5}
}

func TestAddAssignsFreshIDs(t *testing.T) {
	s := NewStore()

	id1, err := s.Add(validSpec())
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id2, err := s.Add(validSpec())
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if id1 == id2 {
		t.Errorf("expected distinct ids, got %d twice", id1)
	}

	if err := s.Remove(id1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	id3, _ := s.Add(validSpec())
	if id3 == id1 {
		t.Errorf("id %d was reused after removal", id1)
	}
}

func TestAddRejectsInvalidSpecs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"zero mass", func(s *Spec) { s.Mass = 0 }},
		{"negative mass", func(s *Spec) { s.Mass = -5 }},
		{"zero radius", func(s *Spec) { s.Radius = 0 }},
		{"negative radius", func(s *Spec) { s.Radius = -1 }},
		{"nan position", func(s *Spec) { s.X = math.NaN() }},
		{"inf velocity", func(s *Spec) { s.VY = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			spec := validSpec()
			tt.mutate(&spec)
			if _, err := s.Add(spec); !errors.Is(err, ErrInvalidBody) {
				t.Errorf("expected ErrInvalidBody, got %v", err)
			}
			if s.Len() != 0 {
				t.Errorf("store should stay empty after rejected add")
			}
		})
	}
}

func TestGetAndRemoveUnknownID(t *testing.T) {
	s := NewStore()
	if _, err := s.Get(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from get, got %v", err)
	}
	if err := s.Remove(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from remove, got %v", err)
	}
}

func TestAllPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	names := []string{"a", "b", "c", "d"}
	for _, name := range names {
		spec := validSpec()
		spec.Name = name
		s.Add(spec)
	}

	all := s.All()
	if len(all) != len(names) {
		t.Fatalf("expected %d bodies, got %d", len(names), len(all))
	}
	for i, b := range all {
		if b.Name != names[i] {
			t.Errorf("position %d: expected %s, got %s", i, names[i], b.Name)
		}
	}

	// removal keeps the order of the remaining bodies
	s.Remove(all[1].ID)
	remaining := s.All()
	want := []string{"a", "c", "d"}
	for i, b := range remaining {
		if b.Name != want[i] {
			t.Errorf("after remove, position %d: expected %s, got %s", i, want[i], b.Name)
		}
	}
}

func TestUpdateRevalidates(t *testing.T) {
	s := NewStore()
	id, _ := s.Add(validSpec())

	bad := -1.0
	if err := s.Update(id, Patch{Mass: &bad}); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody, got %v", err)
	}
	b, _ := s.Get(id)
	if b.Mass != 10 {
		t.Errorf("failed update must not change the body, mass=%f", b.Mass)
	}

	good := 25.0
	pos := r2.Vec{X: 7, Y: 8}
	if err := s.Update(id, Patch{Mass: &good, Pos: &pos}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if b.Mass != 25 || b.Pos != pos {
		t.Errorf("update not applied: mass=%f pos=%v", b.Mass, b.Pos)
	}
}

func TestPushTrailEvictsOldest(t *testing.T) {
	b := &Body{}
	for i := 0; i < 10; i++ {
		b.PushTrail(r2.Vec{X: float64(i)}, 4)
	}
	if len(b.Trail) != 4 {
		t.Fatalf("expected trail capped at 4, got %d", len(b.Trail))
	}
	if b.Trail[0].X != 6 || b.Trail[3].X != 9 {
		t.Errorf("expected oldest evicted, got %v", b.Trail)
	}
}

func TestClearKeepsIDCounter(t *testing.T) {
	s := NewStore()
	id1, _ := s.Add(validSpec())
	s.Clear()
	if s.Len() != 0 {
		t.Fatal("clear should empty the store")
	}
	id2, _ := s.Add(validSpec())
	if id2 <= id1 {
		t.Errorf("ids must not restart after clear: %d then %d", id1, id2)
	}
}
