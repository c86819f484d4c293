package renderer

import (
	"strconv"

	"autumn3d/scene"
)

// SamplerNames returns the shader sampler name for each texture, in order.
// Diffuse textures are numbered 1, 2, 3... Every other type always gets the
// suffix "1", so two textures of the same non-diffuse type share a name.
func SamplerNames(textures []scene.Texture) []string {
	names := make([]string, len(textures))
	diffuse := 0
	for i, tex := range textures {
		number := "1"
		if tex.Type == scene.TextureDiffuse {
			diffuse++
			number = strconv.Itoa(diffuse)
		}
		names[i] = tex.Type + number
	}
	return names
}
