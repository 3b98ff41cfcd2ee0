package vfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Deterministic noise used by the turbulence step. Every function here is a
// pure function of its arguments and is mirrored line for line in
// shaders/sim.wgsl; both backends must agree within float tolerance, so keep
// the two in lockstep when changing anything.

func fract32(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

func sin32(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

// hash11 maps a scalar to [0,1).
func hash11(x float32) float32 {
	return fract32(sin32(x*12.9898) * 43758.5453)
}

// hash31 maps a lattice point to [0,1).
func hash31(x, y, z float32) float32 {
	return fract32(sin32(x*127.1+y*311.7+z*74.7) * 43758.5453)
}

func fade32(t float32) float32 {
	return t * t * (3 - 2*t)
}

func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// valueNoise is trilinearly interpolated lattice noise in [-1,1].
func valueNoise(x, y, z float32) float32 {
	ix := float32(math.Floor(float64(x)))
	iy := float32(math.Floor(float64(y)))
	iz := float32(math.Floor(float64(z)))
	fx := fade32(x - ix)
	fy := fade32(y - iy)
	fz := fade32(z - iz)

	c000 := hash31(ix, iy, iz)
	c100 := hash31(ix+1, iy, iz)
	c010 := hash31(ix, iy+1, iz)
	c110 := hash31(ix+1, iy+1, iz)
	c001 := hash31(ix, iy, iz+1)
	c101 := hash31(ix+1, iy, iz+1)
	c011 := hash31(ix, iy+1, iz+1)
	c111 := hash31(ix+1, iy+1, iz+1)

	bottom := lerp32(lerp32(c000, c100, fx), lerp32(c010, c110, fx), fy)
	top := lerp32(lerp32(c001, c101, fx), lerp32(c011, c111, fx), fy)
	return lerp32(bottom, top, fz)*2 - 1
}

// Offsets decorrelate the three potential fields.
var (
	curlOffsetY = mgl32.Vec3{31.341, 17.923, 43.615}
	curlOffsetZ = mgl32.Vec3{12.793, 57.264, 23.921}
)

func potentialX(p mgl32.Vec3) float32 {
	return valueNoise(p.X(), p.Y(), p.Z())
}

func potentialY(p mgl32.Vec3) float32 {
	q := p.Add(curlOffsetY)
	return valueNoise(q.X(), q.Y(), q.Z())
}

func potentialZ(p mgl32.Vec3) float32 {
	q := p.Add(curlOffsetZ)
	return valueNoise(q.X(), q.Y(), q.Z())
}

// curlNoise returns a divergence-free vector field: the curl of three offset
// potentials, with derivatives taken by central differences at eps.
func curlNoise(p mgl32.Vec3, eps float32) mgl32.Vec3 {
	inv := 1.0 / (2 * eps)

	dzdy := (potentialZ(mgl32.Vec3{p.X(), p.Y() + eps, p.Z()}) - potentialZ(mgl32.Vec3{p.X(), p.Y() - eps, p.Z()})) * inv
	dydz := (potentialY(mgl32.Vec3{p.X(), p.Y(), p.Z() + eps}) - potentialY(mgl32.Vec3{p.X(), p.Y(), p.Z() - eps})) * inv

	dxdz := (potentialX(mgl32.Vec3{p.X(), p.Y(), p.Z() + eps}) - potentialX(mgl32.Vec3{p.X(), p.Y(), p.Z() - eps})) * inv
	dzdx := (potentialZ(mgl32.Vec3{p.X() + eps, p.Y(), p.Z()}) - potentialZ(mgl32.Vec3{p.X() - eps, p.Y(), p.Z()})) * inv

	dydx := (potentialY(mgl32.Vec3{p.X() + eps, p.Y(), p.Z()}) - potentialY(mgl32.Vec3{p.X() - eps, p.Y(), p.Z()})) * inv
	dxdy := (potentialX(mgl32.Vec3{p.X(), p.Y() + eps, p.Z()}) - potentialX(mgl32.Vec3{p.X(), p.Y() - eps, p.Z()})) * inv

	return mgl32.Vec3{dzdy - dydz, dxdz - dzdx, dydx - dxdy}
}
