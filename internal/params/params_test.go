package params

import (
	"errors"
	"math"
	"testing"
)

func testStore() *Store {
	return NewStore(
		Spec{Name: "mass", Unit: "kg", Min: 0.1, Max: 20, Step: 0.1, Default: 1},
		Spec{Name: "angle", Unit: "°", Min: -90, Max: 90, Step: 1, Default: 30},
		Spec{Name: "gravity", Unit: "m/s²", Min: 1, Max: 25, Step: 0.01, Default: 9.81, Live: true},
	)
}

func TestStore_SetClamps(t *testing.T) {
	tests := []struct {
		name  string
		param string
		in    float64
		want  float64
	}{
		{"in range", "mass", 5, 5},
		{"below min", "mass", -3, 0.1},
		{"above max", "mass", 300, 20},
		{"angle low", "angle", -120, -90},
		{"angle snapped", "angle", 44.6, 45},
		{"nan uses default", "angle", math.NaN(), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore()
			got, err := s.Set(tt.param, tt.in)
			if err != nil {
				t.Fatalf("Set returned error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Set(%s, %v) = %v, want %v", tt.param, tt.in, got, tt.want)
			}
			if math.Abs(s.Get(tt.param)-tt.want) > 1e-9 {
				t.Errorf("Get(%s) = %v, want %v", tt.param, s.Get(tt.param), tt.want)
			}
		})
	}
}

func TestStore_GetUnknownNeverFails(t *testing.T) {
	s := testStore()
	if got := s.Get("nope"); got != 0 {
		t.Errorf("Get(unknown) = %v, want 0", got)
	}
	if _, err := s.Set("nope", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Set(unknown) err = %v", err)
	}
}

func TestStore_Lock(t *testing.T) {
	s := testStore()
	s.Lock()

	if _, err := s.Set("mass", 3); !errors.Is(err, ErrParameterLocked) {
		t.Fatalf("expected lock error, got %v", err)
	}
	if s.Get("mass") != 1 {
		t.Errorf("locked parameter changed to %v", s.Get("mass"))
	}

	if _, err := s.Set("gravity", 1.62); err != nil {
		t.Fatalf("live parameter rejected: %v", err)
	}
	if s.Get("gravity") != 1.62 {
		t.Errorf("live parameter = %v", s.Get("gravity"))
	}

	s.Unlock()
	if _, err := s.Set("mass", 3); err != nil {
		t.Errorf("unlocked Set failed: %v", err)
	}
}

func TestStore_Nudge(t *testing.T) {
	s := testStore()
	got, err := s.Nudge("angle", 5)
	if err != nil {
		t.Fatal(err)
	}
	if got != 35 {
		t.Errorf("Nudge = %v, want 35", got)
	}
	got, _ = s.Nudge("angle", -1000)
	if got != -90 {
		t.Errorf("Nudge past min = %v, want -90", got)
	}
}

func TestStore_ApplyAndClone(t *testing.T) {
	s := testStore()
	if err := s.Apply(map[string]float64{"mass": 2, "unknown": 9}); err != nil {
		t.Fatal(err)
	}
	c := s.Clone()
	c.Set("mass", 7)
	if s.Get("mass") != 2 {
		t.Errorf("clone shares values with original")
	}
	s.ResetDefaults()
	if s.Get("mass") != 1 {
		t.Errorf("ResetDefaults mass = %v", s.Get("mass"))
	}
}
