package lightpillar

// fieldShaderSrc is the Kage port of Uniforms.Shade. Kage has no bool
// uniforms or tanh, so Interactive is a 0/1 float and tanh is built from exp.
// Ebitengine expects premultiplied output; alpha is always 1.
const fieldShaderSrc = `//kage:unit pixels
package main

var Time float
var Resolution vec2
var Pointer vec2
var TopColor vec3
var BottomColor vec3
var Intensity float
var Interactive float
var GlowAmount float
var PillarWidth float
var PillarHeight float
var NoiseIntensity float
var PillarRotation float

const Pi = 3.141592653589793
const E = 2.718281828459045

func rotate2(v vec2, a float) vec2 {
	c := cos(a)
	s := sin(a)
	return vec2(v.x*c-v.y*s, v.x*s+v.y*c)
}

func smoothMin(a float, b float, k float) float {
	k4 := k * 4.0
	h := max(k4-abs(a-b), 0.0)
	return min(a, b) - h*h*0.25/k4
}

func smoothMax(a float, b float, k float) float {
	return -smoothMin(-a, -b, k)
}

func warp(pos vec3, t float) vec3 {
	p := pos
	freq := 1.0
	amp := 1.0
	for i := 0; i < 4; i++ {
		xz := rotate2(vec2(p.x, p.z), 0.4)
		p = vec3(xz.x, p.y, xz.y)
		phase := t * float(i) * 2.0
		p += cos(vec3(p.z, p.x, p.y)*freq-phase) * amp
		freq *= 2.0
		amp *= 0.5
	}
	return p
}

func tanh3(v vec3) vec3 {
	e := exp(2.0 * clamp(v, vec3(-15.0), vec3(15.0)))
	return (e - 1.0) / (e + 1.0)
}

func dither(coord vec2) float {
	r := E * sin(E*coord)
	return fract(r.x * r.y * (1.0 + coord.x))
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	frag := vec2(dstPos.x, Resolution.y-dstPos.y)
	uv := (frag*2.0 - Resolution) / Resolution.y
	uv = rotate2(uv, PillarRotation*Pi/180.0)

	dir := normalize(vec3(uv.x, uv.y, 1.0))

	angle := Time * 0.3
	if Interactive > 0.5 && length(Pointer) > 0.0 {
		angle = Pointer.x * Pi * 2.0
	}

	acc := vec3(0.0)
	depth := 0.1
	for i := 0; i < 100; i++ {
		pos := vec3(0.0, 0.0, -10.0) + dir*depth
		pxz := rotate2(vec2(pos.x, pos.z), angle)
		pos = vec3(pxz.x, pos.y, pxz.y)

		w := warp(vec3(pos.x, pos.y*PillarHeight, pos.z), Time)
		field := length(cos(vec2(w.x, w.z))) - 0.2
		bound := length(vec2(pos.x, pos.z)) - PillarWidth
		field = smoothMax(bound, field, 1.0)
		field = abs(field)*0.15 + 0.01

		grad := mix(BottomColor, TopColor, smoothstep(-15.0, 15.0, pos.y))
		acc += grad / field

		if field < 0.001 || depth > 50.0 {
			break
		}
		depth += field
	}

	c := tanh3(acc * GlowAmount / (PillarWidth / 3.0))
	c = c - vec3(dither(frag)/15.0*NoiseIntensity)
	c = clamp(c*Intensity, vec3(0.0), vec3(1.0))
	return vec4(c, 1.0)
}
`
