package types

import (
	"math"
	"testing"
)

func TestVec3Ops(t *testing.T) {
	v1 := XYZ(1, 2, 3)
	v2 := XYZ(4, -5, 6)

	if got := v1.Add(v2); got != XYZ(5, -3, 9) {
		t.Fatalf("expected Add to return (5, -3, 9); got %v", got)
	}
	if got := v1.Sub(v2); got != XYZ(-3, 7, -3) {
		t.Fatalf("expected Sub to return (-3, 7, -3); got %v", got)
	}
	if got := v1.Dot(v2); got != 12 {
		t.Fatalf("expected Dot to return 12; got %f", got)
	}
	if got := XYZ(1, 0, 0).Cross(XYZ(0, 1, 0)); got != XYZ(0, 0, 1) {
		t.Fatalf("expected Cross to return (0, 0, 1); got %v", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := XYZ(3, 0, 4).Normalize()
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Fatalf("expected normalized vector to have unit length; got %f", n.Len())
	}

	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Fatalf("expected zero vector to normalize to zero; got %v", got)
	}
}

func TestMinMaxVec3(t *testing.T) {
	v1 := XYZ(1, 5, -2)
	v2 := XYZ(3, -1, -2)

	if got := MinVec3(v1, v2); got != XYZ(1, -1, -2) {
		t.Fatalf("expected min to be (1, -1, -2); got %v", got)
	}
	if got := MaxVec3(v1, v2); got != XYZ(3, 5, -2) {
		t.Fatalf("expected max to be (3, 5, -2); got %v", got)
	}
}
