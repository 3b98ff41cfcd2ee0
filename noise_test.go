package vfx

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCurlNoiseDeterministic(t *testing.T) {
	p := mgl32.Vec3{1.7, -2.3, 0.9}
	a := curlNoise(p, curlEpsilon)
	b := curlNoise(p, curlEpsilon)
	if a != b {
		t.Errorf("curl noise must be a pure function: %v != %v", a, b)
	}
}

func TestCurlNoiseVariesAcrossSpace(t *testing.T) {
	a := curlNoise(mgl32.Vec3{0.3, 0.4, 0.5}, curlEpsilon)
	b := curlNoise(mgl32.Vec3{5.1, -3.7, 2.2}, curlEpsilon)
	if a.Sub(b).Len() < 1e-6 {
		t.Errorf("distant samples should differ, got %v and %v", a, b)
	}
}

func TestCurlNoiseFinite(t *testing.T) {
	points := []mgl32.Vec3{
		{0, 0, 0},
		{100.5, -250.25, 17.75},
		{-0.001, 0.001, 0},
		{1e4, 1e4, 1e4},
	}
	for _, p := range points {
		c := curlNoise(p, curlEpsilon)
		for i := 0; i < 3; i++ {
			v := float64(c[i])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("curl at %v produced non-finite component %v", p, c)
			}
		}
	}
}

// Central-difference operators commute, so the numerical curl should be
// divergence-free up to float roundoff.
func TestCurlNoiseDivergenceFree(t *testing.T) {
	const h = 0.01
	points := []mgl32.Vec3{
		{0.3, 0.4, 0.5},
		{2.7, -1.3, 3.1},
		{-4.2, 0.6, -2.8},
	}
	for _, p := range points {
		div := float32(0)
		for axis := 0; axis < 3; axis++ {
			hi := p
			lo := p
			hi[axis] += h
			lo[axis] -= h
			div += (curlNoise(hi, curlEpsilon)[axis] - curlNoise(lo, curlEpsilon)[axis]) / (2 * h)
		}
		if div > 1e-2 || div < -1e-2 {
			t.Errorf("divergence at %v = %f, want ~0", p, div)
		}
	}
}

func TestHash11Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		h := hash11(float32(i) * 0.37)
		if h < 0 || h >= 1 {
			t.Fatalf("hash11 out of [0,1): %f", h)
		}
	}
}

func TestValueNoiseRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		f := float32(i) * 0.173
		v := valueNoise(f, -f*0.7, f*1.3)
		if v < -1.001 || v > 1.001 {
			t.Fatalf("value noise out of [-1,1]: %f", v)
		}
	}
}
