package voxelize

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder registration

	"github.com/wwmodding/vxlkit/pkg/math"
	"github.com/wwmodding/vxlkit/pkg/mesh"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

// Texture samples a decoded image by UV coordinate for per-voxel
// coloring.
type Texture struct {
	img image.Image
}

// LoadTexture decodes the image at path (PNG, JPEG or BMP).
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	return &Texture{img: img}, nil
}

// Sample returns the texel at uv. Coordinates wrap, and V is flipped:
// mesh UVs put the origin at the bottom-left, images at the top-left.
func (t *Texture) Sample(uv math.Vec2) vxl.RGB {
	b := t.img.Bounds()
	u := wrap(uv.X)
	v := wrap(uv.Y)
	x := b.Min.X + int(u*float32(b.Dx()-1)+0.5)
	y := b.Min.Y + int((1-v)*float32(b.Dy()-1)+0.5)

	r, g, bl, _ := t.img.At(x, y).RGBA()
	return vxl.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)}
}

func wrap(v float32) float32 {
	v -= float32(int(v))
	if v < 0 {
		v += 1
	}
	return v
}

// fallbackColor is used for cells no triangle claimed (interior fill).
var fallbackColor = vxl.RGB{R: 128, G: 128, B: 128}

// Colorize assigns a palette index to every occupied cell of a result
// by sampling the texture at the claiming triangle's UV centroid.
// Cells without a claiming triangle or without UVs get the fallback
// gray. It returns the number of texture-sampled cells.
func Colorize(res *Result, m *mesh.Mesh, tex *Texture, mapper *vxl.ColorMapper) int {
	sampled := 0
	g := res.Grid
	for z := 0; z < g.DimZ; z++ {
		for y := 0; y < g.DimY; y++ {
			for x := 0; x < g.DimX; x++ {
				v, ok := g.At(x, y, z)
				if !ok {
					continue
				}
				rgb := fallbackColor
				if tri := res.SourceAt(x, y, z); tri >= 0 {
					if uv, ok := m.UVCentroid(int(tri)); ok {
						rgb = tex.Sample(uv)
						sampled++
					}
				}
				v.Color = mapper.Map(rgb)
				g.Set(x, y, z, v)
			}
		}
	}
	return sampled
}
