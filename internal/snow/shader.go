package snow

import _ "embed"

// ShaderSource is the field evaluator as a Kage fragment shader. It takes the
// uniform block produced by Uniforms.Map.
//
//go:embed snow.kage
var ShaderSource []byte
