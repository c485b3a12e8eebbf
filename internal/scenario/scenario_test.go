package scenario

import (
	"math"
	"testing"
)

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	if len(names) != len(builders) {
		t.Fatalf("expected %d names, got %d", len(builders), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %s before %s", names[i-1], names[i])
		}
	}
}

func TestBuildUnknown(t *testing.T) {
	if _, err := Build("nope", 0); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestAllScenariosProduceValidSpecs(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			specs, err := Build(name, 7)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if len(specs) == 0 {
				t.Fatal("expected at least one body")
			}
			for i, s := range specs {
				if err := s.Validate(); err != nil {
					t.Errorf("spec %d (%s) invalid: %v", i, s.Name, err)
				}
			}
		})
	}
}

func TestBuildDeterministicForSeed(t *testing.T) {
	a, _ := Build("galaxies", 99)
	b, _ := Build("galaxies", 99)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("spec %d differs between builds with the same seed", i)
		}
	}
}

func TestSolarPlanetsOnCircularOrbits(t *testing.T) {
	specs, _ := Build("solar", 0)
	sun := specs[0]
	if sun.Name != "Sun" || sun.X != 0 || sun.Y != 0 {
		t.Fatalf("expected sun at origin first, got %+v", sun)
	}
	for _, p := range specs[1:] {
		want := math.Sqrt(sun.Mass / p.X)
		if math.Abs(p.VY-want) > 1e-12 {
			t.Errorf("%s: expected orbital speed %f, got %f", p.Name, want, p.VY)
		}
	}
}
