package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/chaos-io/pixel3d/config"
	"github.com/chaos-io/pixel3d/geometry"
	"github.com/chaos-io/pixel3d/palette"
	"github.com/chaos-io/pixel3d/pixel"
	"github.com/chaos-io/pixel3d/preprocess"
	"github.com/chaos-io/pixel3d/scene"
	"github.com/chaos-io/pixel3d/stl"
)

// Result 一次处理的全部产物
type Result struct {
	Grid *pixel.Grid
	// Palette 未量化时为空
	Palette   []pixel.Color
	Model     *scene.Model
	Catalog   *geometry.Catalog
	HeightMap *image.Gray
	relief    config.Relief
}

// Pipeline 图片 → 预处理 → 网格 → (调色板量化) → 场景
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	pre    *preprocess.Preprocessor
}

// New cfg 为 nil 时使用 config.Default()
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		pre:    cfg.Preprocessor(logger),
	}
}

func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Run progress 可为 nil
func (p *Pipeline) Run(ctx context.Context, img image.Image, progress func(int)) (*Result, error) {
	prepared, err := p.pre.Prepare(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	grid, err := pixel.Extract(prepared, p.cfg.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("extract grid: %w", err)
	}

	res := &Result{Grid: grid, relief: p.cfg.Relief}
	if k := p.cfg.Palette.Size; k > 0 {
		colors, err := palette.Extract(prepared, k, p.cfg.PaletteMethod(p.logger))
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		res.Palette = colors
		res.Grid = palette.Quantize(grid, colors)
	}

	opts, err := p.cfg.SceneOptions(p.logger)
	if err != nil {
		return nil, err
	}
	opts.Progress = progress
	asm, err := scene.NewAssembler(opts)
	if err != nil {
		return nil, err
	}
	res.Model, err = asm.Assemble(ctx, res.Grid)
	if err != nil {
		return nil, err
	}
	res.Catalog = asm.Catalog()
	res.HeightMap = opts.Engine.HeightMap(res.Grid, p.cfg.HeightMapOptions())

	p.logger.Debug("pipeline done",
		"id", res.Model.ID.String(),
		"grid", fmt.Sprintf("%dx%d", res.Grid.Width(), res.Grid.Height()),
		"nodes", len(res.Model.Nodes),
		"skipped", len(res.Model.Skipped),
		"palette", len(res.Palette))
	return res, nil
}

// WriteSTL 写出场景网格
func (r *Result) WriteSTL(w io.Writer) (int, error) {
	return stl.WriteScene(w, r.Model, r.Catalog)
}

// WriteRelief 用高度图写出浮雕网格
func (r *Result) WriteRelief(w io.Writer) (int, error) {
	return stl.WriteHeightField(w, r.HeightMap, r.relief.Width, r.relief.Thickness, r.relief.BaseThickness)
}

// Preview 放大的网格颜色预览
func (r *Result) Preview() *image.NRGBA {
	return r.Grid.Preview(max(1, r.relief.PreviewScale))
}
