package vfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Numeric guards. Clamping before normalization keeps degenerate inputs from
// ever producing NaN or Inf.
const (
	minAttractorDist    float32 = 0.01
	minAttractorLen     float32 = 0.001
	minActiveStrength   float32 = 0.001
	minActiveTurbulence float32 = 0.001
	curlEpsilon         float32 = 0.1
)

// Per-axis offsets mixed into the rotation-speed hash so the three axes of
// one particle decorrelate.
var rotHashOffsets = [3]float32{0, 19.19, 37.33}

// particleState is one store row lifted into registers for the step.
type particleState struct {
	Pos  mgl32.Vec3
	Vel  mgl32.Vec3
	Life float32
	Fade float32
	Size float32
	Rot  mgl32.Vec3
}

func easeProgress(kind EasingKind, p float32) float32 {
	switch kind {
	case EasingIn:
		return p * p
	case EasingOut:
		return 1 - (1-p)*(1-p)
	case EasingInOut:
		if p < 0.5 {
			return 2 * p * p
		}
		f := -2*p + 2
		return 1 - f*f/2
	default:
		return p
	}
}

// attractorForce returns the force one attractor applies at pos, zero for
// attractors with negligible strength.
func attractorForce(att *Attractor, pos mgl32.Vec3) mgl32.Vec3 {
	s := att.Strength
	if s <= minActiveStrength && s >= -minActiveStrength {
		return mgl32.Vec3{}
	}

	to := att.Position.Sub(pos)
	dist := to.Len()
	if dist < minAttractorDist {
		dist = minAttractorDist
	}

	var falloff float32
	if att.Radius > minActiveStrength {
		falloff = 1 - dist/att.Radius
		if falloff < 0 {
			falloff = 0
		}
	} else {
		falloff = 1 / (dist*dist + 1)
	}

	var dir mgl32.Vec3
	if att.Kind == AttractorVortex {
		// Tangential: perpendicular to both the spin axis and the radial
		// direction, clamped so a particle on the axis stays finite.
		tan := att.Axis.Cross(to)
		l := tan.Len()
		if l < minAttractorLen {
			l = minAttractorLen
		}
		dir = tan.Mul(1 / l)
	} else {
		dir = to.Mul(1 / dist)
	}

	return dir.Mul(s * falloff)
}

// stepParticle advances one live particle by dt. It is a pure function of
// (state, config, curve, index): both backends invoke exactly this logic, the
// sequential one directly and the device one via its WGSL mirror, which is
// what guarantees equivalent trajectories. Step order is fixed; gravity,
// turbulence and attractors all mutate the same velocity before the single
// integration, and collision sees the post-integration position.
func stepParticle(st particleState, cfg *SimulationConfig, curve *CurveTexture, index int, dt float32) particleState {
	// 1. Gravity, scaled up for large particles when configured.
	st.Vel = st.Vel.Add(cfg.Gravity.Mul(dt * (1 + st.Size*cfg.SizeGravityScale)))

	// 2. Speed scale from the velocity curve or the friction easing ramp.
	progress := 1 - st.Life
	var speedScale float32
	if cfg.VelocityCurveEnabled {
		speedScale = curve.Sample(progress).Velocity
	} else {
		eased := easeProgress(cfg.FrictionEasing, progress)
		intensity := lerp32(cfg.FrictionStart, cfg.FrictionEnd, eased)
		speedScale = 1 - intensity*0.9
	}

	// 3. Turbulence.
	if cfg.Turbulence.Intensity > minActiveTurbulence {
		phase := cfg.Turbulence.TimePhase
		q := mgl32.Vec3{
			st.Pos.X()*cfg.Turbulence.Frequency + phase + cfg.Seed,
			st.Pos.Y()*cfg.Turbulence.Frequency + phase*0.7 + cfg.Seed,
			st.Pos.Z()*cfg.Turbulence.Frequency + phase*1.3 + cfg.Seed,
		}
		curl := curlNoise(q, curlEpsilon)
		st.Vel = st.Vel.Add(curl.Mul(cfg.Turbulence.Intensity * dt))
	}

	// 4. Attractors.
	for i := range cfg.Attractors {
		f := attractorForce(&cfg.Attractors[i], st.Pos)
		st.Vel = st.Vel.Add(f.Mul(dt))
	}

	// 5. Integration.
	st.Pos = st.Pos.Add(st.Vel.Mul(dt * speedScale))

	// 6. Plane collision.
	if cfg.Collision.Enabled && st.Pos.Y() < cfg.Collision.PlaneY {
		if cfg.Collision.Die {
			// Death is terminal within the tick: keep the updated velocity
			// and horizontal position, skip rotation and decay.
			st.Life = 0
			st.Pos[1] = DeadSentinelY
			return st
		}
		st.Pos[1] = cfg.Collision.PlaneY
		vy := st.Vel.Y()
		if vy < 0 {
			vy = -vy
		}
		st.Vel[1] = vy * cfg.Collision.Bounce
		st.Vel[0] *= cfg.Collision.Friction
		st.Vel[2] *= cfg.Collision.Friction
	}

	// 7. Rotation.
	if cfg.NeedsRotation {
		rotScale := float32(1)
		if cfg.RotationSpeedCurveEnabled {
			rotScale = curve.Sample(progress).RotationSpeed
		}
		for a := 0; a < 3; a++ {
			h := hash11(float32(index) + rotHashOffsets[a])
			speed := lerp32(cfg.RotationSpeedMin[a], cfg.RotationSpeedMax[a], h)
			st.Rot[a] += speed * rotScale * dt
		}
	}

	// 8. Lifetime decay.
	newLife := st.Life - st.Fade*dt
	if newLife <= 0 {
		st.Life = 0
		st.Pos[1] = DeadSentinelY
	} else {
		st.Life = newLife
	}
	return st
}
