package pixel

import (
	"errors"
	"fmt"
	"image"
	"iter"

	"golang.org/x/image/draw"
)

var ErrInvalidBlockSize = errors.New("invalid block size")

// Grid H × V 的颜色网格，按行存储，创建后不可修改
type Grid struct {
	width, height int
	colors        []Color
}

// NewGrid 用现成的颜色构造网格，len(colors) 必须等于 width*height
func NewGrid(width, height int, colors []Color) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid size %dx%d: %w", width, height, ErrInvalidBlockSize)
	}
	if len(colors) != width*height {
		return nil, fmt.Errorf("grid size %dx%d does not match %d colors", width, height, len(colors))
	}
	cs := make([]Color, len(colors))
	copy(cs, colors)
	return &Grid{width: width, height: height, colors: cs}, nil
}

// Width 列数（H）
func (g *Grid) Width() int { return g.width }

// Height 行数（V）
func (g *Grid) Height() int { return g.height }

// Len 网格单元数
func (g *Grid) Len() int { return len(g.colors) }

// At 返回 (x,y) 处的颜色，越界时 ok 为 false
func (g *Grid) At(x, y int) (Color, bool) {
	if !g.Contains(x, y) {
		return Color{}, false
	}
	return g.colors[y*g.width+x], true
}

func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// All 按行优先顺序遍历所有单元
func (g *Grid) All() iter.Seq2[image.Point, Color] {
	return func(yield func(image.Point, Color) bool) {
		for i, c := range g.colors {
			if !yield(image.Pt(i%g.width, i/g.width), c) {
				return
			}
		}
	}
}

// Map 对每个单元做颜色变换，返回新的网格
func (g *Grid) Map(fn func(Color) Color) *Grid {
	cs := make([]Color, len(g.colors))
	for i, c := range g.colors {
		cs[i] = fn(c)
	}
	return &Grid{width: g.width, height: g.height, colors: cs}
}

// Image 每个单元一个像素的 NRGBA 图
func (g *Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.width, g.height))
	for i, c := range g.colors {
		n := c.NRGBA()
		off := (i/g.width)*img.Stride + (i%g.width)*4
		img.Pix[off+0] = n.R
		img.Pix[off+1] = n.G
		img.Pix[off+2] = n.B
		img.Pix[off+3] = n.A
	}
	return img
}

// Preview 把网格按 scale 倍最近邻放大，得到像素化预览图
func (g *Grid) Preview(scale int) *image.NRGBA {
	src := g.Image()
	if scale <= 1 {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, g.width*scale, g.height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Dimensions 计算网格尺寸：floor(w/blockSize) × floor(h/blockSize)，余下的行列丢弃
func Dimensions(bounds image.Rectangle, blockSize int) (h, v int, err error) {
	if blockSize <= 0 {
		return 0, 0, fmt.Errorf("block size %d: %w", blockSize, ErrInvalidBlockSize)
	}
	h, v = bounds.Dx()/blockSize, bounds.Dy()/blockSize
	if h == 0 || v == 0 {
		return 0, 0, fmt.Errorf("block size %d for %dx%d image gives a %dx%d grid: %w",
			blockSize, bounds.Dx(), bounds.Dy(), h, v, ErrInvalidBlockSize)
	}
	return h, v, nil
}

// Blocks 惰性遍历每个块，每块只取一个像素（块中心，最近邻，不做平均）
// blockSize 非法时什么都不产出，调用方应先用 Dimensions 校验
func Blocks(img image.Image, blockSize int) iter.Seq2[image.Point, Color] {
	return func(yield func(image.Point, Color) bool) {
		b := img.Bounds()
		h, v, err := Dimensions(b, blockSize)
		if err != nil {
			return
		}
		sample := sampler(img)
		off := blockSize / 2
		for y := 0; y < v; y++ {
			py := b.Min.Y + y*blockSize + off
			for x := 0; x < h; x++ {
				px := b.Min.X + x*blockSize + off
				if !yield(image.Pt(x, y), sample(px, py)) {
					return
				}
			}
		}
	}
}

// sampler 针对常见图像类型直接读 Pix，其它类型走 At
func sampler(img image.Image) func(x, y int) Color {
	switch m := img.(type) {
	case *image.NRGBA:
		return func(x, y int) Color {
			i := m.PixOffset(x, y)
			return FromNRGBA(m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3])
		}
	case *image.RGBA:
		return func(x, y int) Color {
			i := m.PixOffset(x, y)
			a := float64(m.Pix[i+3])
			if a == 0 {
				return Color{}
			}
			return Color{
				R: float64(m.Pix[i]) / a,
				G: float64(m.Pix[i+1]) / a,
				B: float64(m.Pix[i+2]) / a,
				A: a / 255,
			}
		}
	default:
		return func(x, y int) Color {
			return FromColor(img.At(x, y))
		}
	}
}

// Extract 把图像缩减成颜色网格
func Extract(img image.Image, blockSize int) (*Grid, error) {
	if img == nil {
		return nil, errors.New("extract: nil image")
	}
	h, v, err := Dimensions(img.Bounds(), blockSize)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	colors := make([]Color, 0, h*v)
	for _, c := range Blocks(img, blockSize) {
		colors = append(colors, c)
	}
	return &Grid{width: h, height: v, colors: colors}, nil
}
