package shaders

import (
	_ "embed"
)

//go:embed sim.wgsl
var SimWGSL string

//go:embed points.wgsl
var PointsWGSL string
