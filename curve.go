package vfx

import (
	"math"
)

// CurveTextureWidth is the baked LUT resolution. 64 texels over a [0,1]
// progress range is indistinguishable from the analytic curve after the
// bilinear blend.
const CurveTextureWidth = 64

type CurveChannel uint32

const (
	CurveChannelSize CurveChannel = 1 << iota
	CurveChannelOpacity
	CurveChannelVelocity
	CurveChannelRotationSpeed
)

// CurveSample is one bilinear lookup: all four channels at a progress value.
type CurveSample struct {
	Size          float32
	Opacity       float32
	Velocity      float32
	RotationSpeed float32
}

// CurveTexture is a 4-channel lookup table over particle progress
// (0 = just spawned, 1 = dead). Channels are packed RGBA: size, opacity,
// velocity, rotation speed.
type CurveTexture struct {
	width   int
	data    []float32 // width*4, texel-major
	enabled CurveChannel
}

func NewCurveTexture(width int) *CurveTexture {
	if width < 2 {
		width = 2
	}
	t := &CurveTexture{
		width: width,
		data:  make([]float32, width*4),
	}
	for i := 0; i < width; i++ {
		t.data[i*4+0] = 1
		t.data[i*4+1] = 1
		t.data[i*4+2] = 1
		t.data[i*4+3] = 1
	}
	return t
}

// DefaultCurveTexture bakes the stock curves: flat size, linear fade-out
// opacity, flat velocity and rotation speed.
func DefaultCurveTexture() *CurveTexture {
	t := NewCurveTexture(CurveTextureWidth)
	t.BakeChannel(CurveChannelOpacity, func(p float32) float32 { return 1 - p })
	t.enabled = CurveChannelOpacity
	return t
}

func (t *CurveTexture) Width() int { return t.width }

func (t *CurveTexture) Enabled(c CurveChannel) bool { return t.enabled&c != 0 }

func (t *CurveTexture) SetEnabled(c CurveChannel, on bool) {
	if on {
		t.enabled |= c
	} else {
		t.enabled &^= c
	}
}

// BakeChannel fills one channel by evaluating f at each texel center and
// marks the channel enabled.
func (t *CurveTexture) BakeChannel(c CurveChannel, f func(progress float32) float32) {
	ch := channelIndex(c)
	for i := 0; i < t.width; i++ {
		p := float32(i) / float32(t.width-1)
		t.data[i*4+ch] = f(p)
	}
	t.enabled |= c
}

// SetTexels replaces the raw RGBA data. len(texels) must be width*4.
func (t *CurveTexture) SetTexels(texels []float32) bool {
	if len(texels) != t.width*4 {
		return false
	}
	copy(t.data, texels)
	return true
}

// Texels exposes the raw data for device upload. Callers must not mutate.
func (t *CurveTexture) Texels() []float32 { return t.data }

// Sample does a clamped bilinear lookup; no wraparound, sampling at 0 or 1
// returns the edge texel exactly.
func (t *CurveTexture) Sample(progress float32) CurveSample {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	x := progress * float32(t.width-1)
	idx0 := int(math.Floor(float64(x)))
	if idx0 > t.width-1 {
		idx0 = t.width - 1
	}
	idx1 := idx0 + 1
	if idx1 > t.width-1 {
		idx1 = t.width - 1
	}
	frac := x - float32(idx0)

	a := t.data[idx0*4 : idx0*4+4]
	b := t.data[idx1*4 : idx1*4+4]
	return CurveSample{
		Size:          lerp32(a[0], b[0], frac),
		Opacity:       lerp32(a[1], b[1], frac),
		Velocity:      lerp32(a[2], b[2], frac),
		RotationSpeed: lerp32(a[3], b[3], frac),
	}
}

func channelIndex(c CurveChannel) int {
	switch c {
	case CurveChannelSize:
		return 0
	case CurveChannelOpacity:
		return 1
	case CurveChannelVelocity:
		return 2
	default:
		return 3
	}
}
