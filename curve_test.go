package vfx

import (
	"testing"
)

func TestCurveSampleEdgesExact(t *testing.T) {
	c := NewCurveTexture(8)
	c.BakeChannel(CurveChannelSize, func(p float32) float32 { return 0.25 + p*0.5 })

	// Sampling at 0 and 1 must return the edge texels exactly, no
	// extrapolation.
	s0 := c.Sample(0)
	if s0.Size != 0.25 {
		t.Errorf("sample(0) size = %f, want 0.25", s0.Size)
	}
	s1 := c.Sample(1)
	if s1.Size != 0.75 {
		t.Errorf("sample(1) size = %f, want 0.75", s1.Size)
	}
}

func TestCurveSampleClampsOutOfRange(t *testing.T) {
	c := NewCurveTexture(8)
	c.BakeChannel(CurveChannelOpacity, func(p float32) float32 { return 1 - p })

	below := c.Sample(-0.5)
	above := c.Sample(1.5)
	if below.Opacity != c.Sample(0).Opacity {
		t.Errorf("sample below range should clamp to first texel")
	}
	if above.Opacity != c.Sample(1).Opacity {
		t.Errorf("sample above range should clamp to last texel")
	}
}

func TestCurveSampleInterpolatesBetweenTexels(t *testing.T) {
	c := NewCurveTexture(2)
	c.SetTexels([]float32{
		0, 0, 0, 0, // texel 0
		1, 1, 1, 1, // texel 1
	})

	s := c.Sample(0.5)
	if s.Size != 0.5 || s.Opacity != 0.5 || s.Velocity != 0.5 || s.RotationSpeed != 0.5 {
		t.Errorf("midpoint sample should be 0.5 on all channels, got %+v", s)
	}
}

func TestCurveChannelFlags(t *testing.T) {
	c := NewCurveTexture(4)
	if c.Enabled(CurveChannelVelocity) {
		t.Errorf("fresh curve should have no enabled channels")
	}
	c.BakeChannel(CurveChannelVelocity, func(p float32) float32 { return p })
	if !c.Enabled(CurveChannelVelocity) {
		t.Errorf("baking a channel should enable it")
	}
	c.SetEnabled(CurveChannelVelocity, false)
	if c.Enabled(CurveChannelVelocity) {
		t.Errorf("SetEnabled(false) should clear the flag")
	}
}

func TestDefaultCurveFadesOpacity(t *testing.T) {
	c := DefaultCurveTexture()
	if got := c.Sample(0).Opacity; got != 1 {
		t.Errorf("default curve opacity at 0 = %f, want 1", got)
	}
	if got := c.Sample(1).Opacity; got != 0 {
		t.Errorf("default curve opacity at 1 = %f, want 0", got)
	}
	if got := c.Sample(0.5).Size; got != 1 {
		t.Errorf("default curve size should stay flat at 1, got %f", got)
	}
}
