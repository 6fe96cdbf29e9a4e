package palette

import (
	"fmt"
	"image"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/chaos-io/pixel3d/pixel"
)

// Method 调色板提取方式
type Method int

const (
	DominantColor Method = iota
	KMeans
)

func (m Method) String() string {
	switch m {
	case KMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParseMethod 未知名字返回 DominantColor 和错误
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kmeans", "k-means":
		return KMeans, nil
	case "dominantcolor", "dominant", "":
		return DominantColor, nil
	}
	return DominantColor, fmt.Errorf("unknown palette method %q", name)
}

// maxSamples kmeans 的采样上限
const maxSamples = 12000

type weighted struct {
	col    colorful.Color
	weight float64
}

// Extract 从图片里取 k 个有代表性的颜色，kmeans 没有结果时退回 dominantcolor
func Extract(img image.Image, k int, method Method) ([]pixel.Color, error) {
	if k <= 0 {
		return nil, fmt.Errorf("palette size must be > 0, got %d", k)
	}
	var cands []weighted
	if method == KMeans {
		cands = kmeansCandidates(img, k)
	}
	if len(cands) == 0 {
		cands = dominantCandidates(img, k)
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("no colors found in %v image", img.Bounds())
	}
	picked := diverse(cands, k)
	out := make([]pixel.Color, len(picked))
	for i, c := range picked {
		out[i] = pixel.Color{R: c.R, G: c.G, B: c.B, A: 1}
	}
	return out, nil
}

func dominantCandidates(img image.Image, k int) []weighted {
	found := dominantcolor.FindWeight(img, max(24, k*8))
	out := make([]weighted, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		out = append(out, weighted{col: col.Clamped(), weight: math.Max(c.Weight, 1e-6)})
	}
	return out
}

func kmeansCandidates(img image.Image, k int) []weighted {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(w*h, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := pixel.FromColor(img.At(x, y))
			if c.A == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{c.R, c.G, c.B})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(dataset, min(max(k*4, k+2), len(dataset)))
	if err != nil {
		return nil
	}
	// 人数多的簇在前
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})
	out := make([]weighted, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		out = append(out, weighted{col: col, weight: float64(len(c.Observations))})
	}
	return out
}

// diverse 先取权重最大的颜色，之后每次取 "到已选颜色的最小 Lab 距离 × 权重" 最大的候选
func diverse(cands []weighted, k int) []colorful.Color {
	k = min(k, len(cands))
	maxW := 0.0
	first := 0
	for i, c := range cands {
		if c.weight > maxW {
			maxW, first = c.weight, i
		}
	}
	picked := []colorful.Color{cands[first].col}
	used := make([]bool, len(cands))
	used[first] = true
	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			d := math.Inf(1)
			for _, p := range picked {
				d = math.Min(d, c.col.DistanceLab(p))
			}
			if score := d * math.Sqrt(c.weight/maxW); score > bestScore {
				best, bestScore = i, score
			}
		}
		used[best] = true
		picked = append(picked, cands[best].col)
	}
	return picked
}

// Nearest 按 Lab 距离找最接近的调色板颜色，保留原来的 alpha
func Nearest(c pixel.Color, palette []pixel.Color) pixel.Color {
	if len(palette) == 0 {
		return c
	}
	best := palette[0]
	bestD := c.DistanceLab(best)
	for _, p := range palette[1:] {
		if d := c.DistanceLab(p); d < bestD {
			best, bestD = p, d
		}
	}
	best.A = c.A
	return best
}

// Quantize 每个格子替换成最接近的调色板颜色
func Quantize(g *pixel.Grid, palette []pixel.Color) *pixel.Grid {
	return g.Map(func(c pixel.Color) pixel.Color {
		return Nearest(c, palette)
	})
}
