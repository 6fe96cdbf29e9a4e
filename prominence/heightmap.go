package prominence

import (
	"image"

	"github.com/chaos-io/pixel3d/pixel"
)

// HeightMapOptions 深度图的后处理选项
type HeightMapOptions struct {
	// Blur 3x3 高斯模糊（仅消噪），边缘一圈保持原值
	Blur bool
	// Smooth 轻 S 曲线（smoothstep）
	Smooth bool
	// Levels Z 台阶数，<= 1 表示不量化
	Levels int
}

// HeightMap 生成深度图：每个网格单元一个像素，灰度 = 255 * prominence / exaggeration
func (e Engine) HeightMap(g *pixel.Grid, opts HeightMapOptions) *image.Gray {
	w, h := g.Width(), g.Height()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for p, c := range g.All() {
		out.Pix[p.Y*out.Stride+p.X] = uint8(e.Normalized(c)*255 + 0.5)
	}

	if opts.Blur && w > 2 && h > 2 {
		out = blur3x3(out)
	}

	if opts.Smooth {
		var lut [256]uint8
		for i := 0; i < 256; i++ {
			x := float64(i) / 255.0
			y := x * x * (3 - 2*x) // smoothstep
			lut[i] = uint8(y*255 + 0.5)
		}
		for i, v := range out.Pix {
			out.Pix[i] = lut[v]
		}
	}

	if opts.Levels > 1 {
		step := 256 / opts.Levels
		if step < 1 {
			step = 1
		}
		for i, v := range out.Pix {
			out.Pix[i] = uint8((int(v) / step) * step)
		}
	}
	return out
}

// blur3x3 轻度高斯模糊
func blur3x3(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	copy(dst.Pix, src.Pix)

	k := [3][3]int{
		{1, 2, 1},
		{2, 4, 2},
		{1, 2, 1},
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			sum := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sum += int(src.Pix[(y+ky)*src.Stride+x+kx]) * k[ky+1][kx+1]
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum >> 4)
		}
	}
	return dst
}
