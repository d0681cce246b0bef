// Package snow implements the procedural snow field: the per-pixel
// evaluator, the parameter set it consumes and the snapshot store that hands
// parameters to the render context.
package snow

import "math"

// Vec2 is an aspect-corrected surface coordinate.
type Vec2 struct {
	X, Y float64
}

// Hash matrix, column-major.
var hashMatrix = [3][3]float64{
	{13.323122, 23.5112, 21.71123},
	{21.1212, 28.7312, 11.9312},
	{21.8112, 14.7212, 61.3934},
}

const (
	layerConstant = 31.189
	layerOffset   = 7.238917
	hashBias      = 31415.9
)

// UV maps the centre of pixel (x, y) of a w×h surface, origin top-left, to
// the bottom-left-origin coordinate the field is defined on: u in [0, 1],
// v in [0, h/w].
func UV(x, y, w, h int) Vec2 {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	fw, fh := float64(w), float64(h)
	return Vec2{
		X: (float64(x) + 0.5) / fw,
		Y: (fh - float64(y) - 0.5) / fw,
	}
}

// Intensity returns the accumulated snow coverage in [0, 1] at uv after t
// seconds.
func Intensity(uv Vec2, t float64, p Parameters) float64 {
	layers := min(p.Layers, MaxLayers)
	dof := 5 * math.Sin(t*0.1)

	acc := 0.0
	for i := 0; i < layers; i++ {
		fi := float64(i)

		qx := uv.X * (1 + fi*p.Depth)
		qy := uv.Y * (1 + fi*p.Depth)
		qx += qy * (p.Width*fract(fi*layerOffset) - p.Width*0.5)
		qy += p.Speed * t / (1 + fi*p.Depth*0.03)

		rx, ry := cellHash(math.Floor(qx), math.Floor(qy), layerConstant+fi)

		sx := math.Abs(fract(qx) - 0.5 + 0.9*rx - 0.45)
		sy := math.Abs(fract(qy) - 0.5 + 0.9*ry - 0.45)
		sx += 0.01 * math.Abs(2*fract(10*qy)-1)
		sy += 0.01 * math.Abs(2*fract(10*qx)-1)
		d := 0.6*math.Max(sx-sy, sx+sy) + math.Max(sx, sy) - 0.01

		edge := 0.005 + 0.05*math.Min(0.5*math.Abs(fi-5-dof), 1)

		c := smoothstep(edge, -edge, d) * (rx / (1 + 0.02*fi*p.Depth))
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		acc += c
	}
	return clamp01(acc)
}

// Evaluate returns the output colour at uv: white mixed toward the flake
// colour by the snow intensity, with the configured opacity as alpha.
func Evaluate(uv Vec2, t float64, p Parameters) RGBA {
	k := Intensity(uv, t, p)
	c := mix(white, p.FlakeColor, k)
	return RGBA{R: c.R, G: c.G, B: c.B, A: p.Opacity}
}

// cellHash hashes the integer cell n = (cx, cy, layer) to two values in
// [0, 1). It only needs the x and y components of the full 3-vector hash.
func cellHash(cx, cy, layer float64) (float64, float64) {
	mx := math.Floor(cx)*0.00001 + fract(cx)
	my := math.Floor(cy)*0.00001 + fract(cy)
	mz := math.Floor(layer)*0.00001 + fract(layer)

	px := hashMatrix[0][0]*mx + hashMatrix[1][0]*my + hashMatrix[2][0]*mz
	py := hashMatrix[0][1]*mx + hashMatrix[1][1]*my + hashMatrix[2][1]*mz

	return fract((hashBias + mx) / fract(px)), fract((hashBias + my) / fract(py))
}

func fract(v float64) float64 {
	return v - math.Floor(v)
}

// smoothstep follows the GLSL definition, including reversed edges.
func smoothstep(e0, e1, x float64) float64 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
