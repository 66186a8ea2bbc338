package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 2, -7}
	if got := a.Min(b); got != (Vec3{1, 2, -7}) {
		t.Errorf("Vec3.Min() = %v", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -2}) {
		t.Errorf("Vec3.Max() = %v", got)
	}
	if got := a.MaxComponent(); got != 5 {
		t.Errorf("Vec3.MaxComponent() = %v, want 5", got)
	}
}

func TestMat34Identity(t *testing.T) {
	m := IdentityMat34()
	v := Vec3{1, 2, 3}
	if got := m.MulVec3(v); got != v {
		t.Errorf("identity transform changed point: %v", got)
	}
}

func TestMat34Translation(t *testing.T) {
	m := IdentityMat34().WithTranslation(Vec3{5, -1, 2})
	got := m.MulVec3(Vec3{1, 1, 1})
	want := Vec3{6, 0, 3}
	if got != want {
		t.Errorf("Mat34.MulVec3() = %v, want %v", got, want)
	}
	if m.Translation() != (Vec3{5, -1, 2}) {
		t.Errorf("Mat34.Translation() = %v", m.Translation())
	}
}

func TestMat34Mul(t *testing.T) {
	a := IdentityMat34().WithTranslation(Vec3{1, 0, 0})
	b := IdentityMat34().WithTranslation(Vec3{0, 2, 0})
	got := a.Mul(b).MulVec3(Vec3{})
	want := Vec3{1, 2, 0}
	if got != want {
		t.Errorf("Mat34.Mul() translation = %v, want %v", got, want)
	}
}
