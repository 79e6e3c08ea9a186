package core

import (
	"math"
	"testing"
)

func TestVec3_BasicOperations(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	if got := a.Add(b); got != NewVec3(5, 7, 9) {
		t.Errorf("Add: expected (5,7,9), got %v", got)
	}
	if got := b.Subtract(a); got != NewVec3(3, 3, 3) {
		t.Errorf("Subtract: expected (3,3,3), got %v", got)
	}
	if got := a.Multiply(2); got != NewVec3(2, 4, 6) {
		t.Errorf("Multiply: expected (2,4,6), got %v", got)
	}
	if got := a.MultiplyVec(b); got != NewVec3(4, 10, 18) {
		t.Errorf("MultiplyVec: expected (4,10,18), got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: expected 32, got %v", got)
	}
}

func TestVec3_Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := NewVec3(0, 0, 1)

	if got := x.Cross(y); got != z {
		t.Errorf("x cross y: expected %v, got %v", z, got)
	}
	if got := y.Cross(x); got != z.Negate() {
		t.Errorf("y cross x: expected %v, got %v", z.Negate(), got)
	}
	// Cross product is perpendicular to both inputs
	a := NewVec3(1, 2, 3)
	b := NewVec3(-2, 1, 0.5)
	c := a.Cross(b)
	if math.Abs(c.Dot(a)) > 1e-12 || math.Abs(c.Dot(b)) > 1e-12 {
		t.Errorf("cross product not perpendicular: %v", c)
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalize()
	if math.Abs(v.Length()-1.0) > 1e-12 {
		t.Errorf("normalized length should be 1, got %v", v.Length())
	}
	if v.Subtract(NewVec3(0.6, 0.8, 0)).Length() > 1e-12 {
		t.Errorf("expected (0.6, 0.8, 0), got %v", v)
	}

	// Zero vector normalizes to zero instead of NaN
	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("expected zero vector, got %v", zero)
	}
}

func TestVec3_Axis(t *testing.T) {
	v := NewVec3(1, 2, 3)
	for axis, expected := range []float64{1, 2, 3} {
		if got := v.Axis(axis); got != expected {
			t.Errorf("Axis(%d): expected %v, got %v", axis, expected, got)
		}
	}
}

func TestVec3_Luminance(t *testing.T) {
	white := NewVec3(1, 1, 1)
	if math.Abs(white.Luminance()-1.0) > 1e-12 {
		t.Errorf("white luminance should be 1, got %v", white.Luminance())
	}
	green := NewVec3(0, 1, 0)
	if math.Abs(green.Luminance()-0.587) > 1e-12 {
		t.Errorf("green luminance should be 0.587, got %v", green.Luminance())
	}
	if (Vec3{}).Luminance() != 0 {
		t.Error("black luminance should be 0")
	}
}

func TestVec3_Clamp(t *testing.T) {
	v := NewVec3(-0.5, 0.5, 1.5).Clamp(0, 1)
	if v != NewVec3(0, 0.5, 1) {
		t.Errorf("expected (0, 0.5, 1), got %v", v)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if NewVec3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if NewVec3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}

func TestVec3_IsBlack(t *testing.T) {
	if !(Vec3{}).IsBlack() {
		t.Error("zero vector should be black")
	}
	if NewVec3(0, 0, 1e-9).IsBlack() {
		t.Error("non-zero vector should not be black")
	}
}

func TestVec3_GammaCorrect(t *testing.T) {
	v := NewVec3(0.25, 1.0, 0.0).GammaCorrect(2.0)
	expected := NewVec3(0.5, 1.0, 0.0)
	if v.Subtract(expected).Length() > 1e-12 {
		t.Errorf("expected %v, got %v", expected, v)
	}
}
