package lightpillar

import "math"

// Ray-march and field constants shared by the CPU evaluator and the Kage
// program. Changing one here means changing fieldShaderSrc too.
const (
	MarchSteps      = 100
	marchStartDepth = 0.1
	marchMaxDepth   = 50.0
	marchEpsilon    = 0.001
	cameraZ         = -10.0
	timeTwist       = 0.3  // radians per unit of effect time
	warpIterations  = 4
	warpTwist       = 0.4  // radians per warp iteration
	blendRadius     = 1.0  // smooth-max k
	pillarCore      = 0.2  // cosine-field core radius
	stepScale       = 0.15 // field value -> step length
	stepBias        = 0.01
	gradientBand    = 15.0
	ditherScale     = 1.0 / 15.0
	eulerE          = 2.718281828459045
)

// Uniforms is the full per-frame parameter set of the field program. The same
// values drive the GPU program and the CPU evaluator.
type Uniforms struct {
	Time           float64
	Resolution     Vec2 // device pixels
	Pointer        Vec2 // [-1,1]², +Y up
	TopColor       Color
	BottomColor    Color
	Intensity      float64
	Interactive    bool
	GlowAmount     float64
	PillarWidth    float64
	PillarHeight   float64
	NoiseIntensity float64
	PillarRotation float64 // degrees
}

// MarchResult is the outcome of marching a single ray.
type MarchResult struct {
	R, G, B float64 // accumulated, before tone mapping
	Steps   int     // iterations executed, at most MarchSteps
	Depth   float64 // depth reached
	Hit     bool    // terminated on the surface epsilon
}

// Terminated reports whether the march stopped before exhausting the
// iteration budget.
func (m MarchResult) Terminated() bool {
	return m.Steps < MarchSteps
}

// rotate2 rotates (x, y) counter-clockwise by a radians.
func rotate2(x, y, a float64) (float64, float64) {
	s, c := math.Sincos(a)
	return x*c - y*s, x*s + y*c
}

func length2(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}

// smoothMin is a quadratic polynomial smooth minimum with blend radius k.
func smoothMin(a, b, k float64) float64 {
	k4 := k * 4
	h := math.Max(k4-math.Abs(a-b), 0)
	return math.Min(a, b) - h*h*0.25/k4
}

// smoothMax is the mirror of smoothMin.
func smoothMax(a, b, k float64) float64 {
	return -smoothMin(-a, -b, k)
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

// warp applies the domain warp: a fixed twist of the xz plane followed by a
// cosine displacement at doubling frequency and halving amplitude.
func warp(x, y, z, t float64) (float64, float64, float64) {
	freq, amp := 1.0, 1.0
	for i := 0; i < warpIterations; i++ {
		x, z = rotate2(x, z, warpTwist)
		phase := t * float64(i) * 2
		dx := math.Cos(z*freq - phase)
		dy := math.Cos(x*freq - phase)
		dz := math.Cos(y*freq - phase)
		x += dx * amp
		y += dy * amp
		z += dz * amp
		freq *= 2
		amp *= 0.5
	}
	return x, y, z
}

// rayAngle is the horizontal rotation applied to every sample. The pointer
// only steers the view when interaction is on and the pointer is non-zero.
func (u *Uniforms) rayAngle() float64 {
	if u.Interactive && u.Pointer.Len() > 0 {
		return u.Pointer.X * 2 * math.Pi
	}
	return u.Time * timeTwist
}

// March casts the camera ray through the aspect-corrected coordinate uv
// (before pillar rotation) and accumulates glow along it.
func (u *Uniforms) March(uvX, uvY float64) MarchResult {
	uvX, uvY = rotate2(uvX, uvY, u.PillarRotation*math.Pi/180)

	inv := 1 / math.Sqrt(uvX*uvX+uvY*uvY+1)
	dx, dy, dz := uvX*inv, uvY*inv, inv

	angle := u.rayAngle()
	top, bot := u.TopColor, u.BottomColor

	var res MarchResult
	depth := marchStartDepth
	for i := 0; i < MarchSteps; i++ {
		res.Steps = i + 1

		px, py, pz := dx*depth, dy*depth, cameraZ+dz*depth
		px, pz = rotate2(px, pz, angle)

		wx, _, wz := warp(px, py*u.PillarHeight, pz, u.Time)
		field := length2(math.Cos(wx), math.Cos(wz)) - pillarCore
		bound := length2(px, pz) - u.PillarWidth
		field = smoothMax(bound, field, blendRadius)
		field = math.Abs(field)*stepScale + stepBias

		g := smoothstep(-gradientBand, gradientBand, py)
		glow := 1 / field
		res.R += (bot.R + (top.R-bot.R)*g) * glow
		res.G += (bot.G + (top.G-bot.G)*g) * glow
		res.B += (bot.B + (top.B-bot.B)*g) * glow

		if field < marchEpsilon {
			res.Hit = true
			break
		}
		if depth > marchMaxDepth {
			break
		}
		depth += field
	}
	res.Depth = depth
	return res
}

// dither is a deterministic hash of a fragment coordinate in [0, 1).
func dither(fx, fy float64) float64 {
	rx := eulerE * math.Sin(eulerE*fx)
	ry := eulerE * math.Sin(eulerE*fy)
	v := rx * ry * (1 + fx)
	return v - math.Floor(v)
}

// Shade evaluates the final color of the fragment at (fx, fy), measured in
// device pixels from the bottom-left corner with pixel centers at .5.
func (u *Uniforms) Shade(fx, fy float64) Color {
	w, h := u.Resolution.X, u.Resolution.Y
	if w <= 0 || h <= 0 {
		return Color{A: 1}
	}
	uvX := (fx*2 - w) / h
	uvY := (fy*2 - h) / h

	m := u.March(uvX, uvY)

	norm := u.GlowAmount / (u.PillarWidth / 3)
	r := math.Tanh(m.R * norm)
	g := math.Tanh(m.G * norm)
	b := math.Tanh(m.B * norm)

	n := dither(fx, fy) * ditherScale * u.NoiseIntensity
	r -= n
	g -= n
	b -= n

	return Color{
		R: clamp01(r * u.Intensity),
		G: clamp01(g * u.Intensity),
		B: clamp01(b * u.Intensity),
		A: 1,
	}
}

// ShadePixel shades the pixel at column x, row y of an image whose rows run
// top to bottom, matching what the GPU program produces for that pixel.
func (u *Uniforms) ShadePixel(x, y int) Color {
	return u.Shade(float64(x)+0.5, u.Resolution.Y-(float64(y)+0.5))
}
