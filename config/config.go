package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/chaos-io/pixel3d/geometry"
	"github.com/chaos-io/pixel3d/palette"
	"github.com/chaos-io/pixel3d/preprocess"
	"github.com/chaos-io/pixel3d/prominence"
	"github.com/chaos-io/pixel3d/scene"
	"github.com/chaos-io/pixel3d/shape"
)

// Config 一次处理的设置快照，枚举项都是字符串，解析失败时用默认值
type Config struct {
	BlockSize  int        `toml:"block_size"`
	Workers    int        `toml:"workers"`
	MaxNodes   int        `toml:"max_nodes"`
	Prominence Prominence `toml:"prominence"`
	Shape      Shape      `toml:"shape"`
	Palette    Palette    `toml:"palette"`
	Preprocess Preprocess `toml:"preprocess"`
	Relief     Relief     `toml:"relief"`
	Geometry   Geometry   `toml:"geometry"`
	Server     Server     `toml:"server"`
}

type Prominence struct {
	Source       string  `toml:"source"`
	Exaggeration float64 `toml:"exaggeration"`
	Invert       bool    `toml:"invert"`
}

type Shape struct {
	Selector   string  `toml:"selector"`
	SideLength float64 `toml:"side_length"`
	ColorMode  string  `toml:"color_mode"`

	ConeTop    string `toml:"cone_top"`
	ConeBottom string `toml:"cone_bottom"`
	ConeInvert bool   `toml:"cone_invert"`

	ChamferRadius    float64 `toml:"chamfer_radius"`
	StarApexCount    int     `toml:"star_apex_count"`
	StarBaseRatio    float64 `toml:"star_base_ratio"`
	NGonVertexCount  int     `toml:"ngon_vertex_count"`
	EllipseRatio     float64 `toml:"ellipse_ratio"`
	DiamondRatio     float64 `toml:"diamond_ratio"`
	ArrowInset       float64 `toml:"arrow_inset"`
	FlowerPetalCount int     `toml:"flower_petal_count"`
	TorusPipeRatio   float64 `toml:"torus_pipe_ratio"`
	TubeInnerRatio   float64 `toml:"tube_inner_ratio"`

	CapBall  string `toml:"cap_ball"`
	CapColor string `toml:"cap_color"`

	RadiatingLineCount int `toml:"radiating_line_count"`

	RandomIntensity string `toml:"random_intensity"`
	RandomSpread    string `toml:"random_spread"`
	RandomShape     string `toml:"random_shape"`
	RandomShowBase  bool   `toml:"random_show_base"`
	Seed            uint64 `toml:"seed"`

	SpherePlusShape string `toml:"sphere_plus_shape"`
	BoxPlusShape    string `toml:"box_plus_shape"`

	StackShapes      []string `toml:"stack_shapes"`
	HueShapes        []string `toml:"hue_shapes"`
	SaturationShapes []string `toml:"saturation_shapes"`
	BrightnessShapes []string `toml:"brightness_shapes"`

	MeshSphere    bool    `toml:"mesh_sphere"`
	MeshLineWidth float64 `toml:"mesh_line_width"`
}

type Palette struct {
	// Size 0 表示不量化
	Size   int    `toml:"size"`
	Method string `toml:"method"`
}

type Preprocess struct {
	MaxSize     int  `toml:"max_size"`
	CropAlpha   bool `toml:"crop_alpha"`
	Premultiply bool `toml:"premultiply"`
	// Remover 抠图服务地址，为空时不去背景
	Remover string `toml:"remover"`
}

type Relief struct {
	Width          float64 `toml:"width"`
	Thickness      float64 `toml:"thickness"`
	BaseThickness  float64 `toml:"base_thickness"`
	Blur           bool    `toml:"blur"`
	Smooth         bool    `toml:"smooth"`
	Levels         int     `toml:"levels"`
	PreviewScale   int     `toml:"preview_scale"`
	WriteHeightMap bool    `toml:"write_height_map"`
}

type Geometry struct {
	EllipseOversample float64 `toml:"ellipse_oversample"`
	FlattenTolerance  float64 `toml:"flatten_tolerance"`
	Segments          int     `toml:"segments"`
	Rings             int     `toml:"rings"`
}

type Server struct {
	Addr string `toml:"addr"`
	// TTL 结果缓存时间，time.ParseDuration 格式
	TTL string `toml:"ttl"`
	// Purge 清理任务的 cron 表达式
	Purge        string `toml:"purge"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Default 参考档位：块大小 10、亮度、exaggeration 1.0、Block
func Default() *Config {
	p := shape.DefaultParameters()
	g := geometry.DefaultConfig()
	return &Config{
		BlockSize: 10,
		Workers:   1,
		Prominence: Prominence{
			Source:       prominence.Brightness.String(),
			Exaggeration: prominence.ExaggerationNormal,
		},
		Shape: Shape{
			Selector:           shape.Block.String(),
			SideLength:         p.SideLength,
			ColorMode:          p.ColorMode.String(),
			ConeTop:            p.ConeTop.String(),
			ConeBottom:         p.ConeBottom.String(),
			ChamferRadius:      p.ChamferRadius,
			StarApexCount:      p.StarApexCount,
			StarBaseRatio:      p.StarBaseRatio,
			NGonVertexCount:    p.NGonVertexCount,
			EllipseRatio:       p.EllipseRatio,
			DiamondRatio:       p.DiamondRatio,
			ArrowInset:         p.ArrowInset,
			FlowerPetalCount:   p.FlowerPetalCount,
			TorusPipeRatio:     p.TorusPipeRatio,
			TubeInnerRatio:     p.TubeInnerRatio,
			CapBall:            p.CapBall.String(),
			CapColor:           p.CapColor.String(),
			RadiatingLineCount: p.RadiatingLineCount,
			RandomIntensity:    p.RandomIntensity.String(),
			RandomSpread:       p.RandomSpread.String(),
			RandomShape:        p.RandomShape.String(),
			RandomShowBase:     p.RandomShowBase,
			SpherePlusShape:    p.SpherePlusShape.String(),
			BoxPlusShape:       p.BoxPlusShape.String(),
			StackShapes:        []string{shape.Block.String()},
			MeshSphere:         p.MeshSphere,
			MeshLineWidth:      p.MeshLineWidth,
		},
		Palette:    Palette{Method: palette.DominantColor.String()},
		Preprocess: Preprocess{MaxSize: preprocess.DefaultMaxSize},
		Relief: Relief{
			Width:          30,
			Thickness:      2,
			BaseThickness:  1,
			PreviewScale:   8,
			WriteHeightMap: true,
		},
		Geometry: Geometry{
			EllipseOversample: g.EllipseOversample,
			FlattenTolerance:  g.FlattenTolerance,
			Segments:          g.Segments,
			Rings:             g.Rings,
		},
		Server: Server{
			Addr:         ":8080",
			TTL:          "10m",
			Purge:        "@every 1m",
			MaxBodyBytes: 32 << 20,
		},
	}
}

// Decode 在默认值之上解码 TOML，未出现的键保持默认
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	d := toml.NewDecoder(r)
	if err := d.Decode(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Merge 在 c 的副本上解码 TOML 覆盖项，c 本身不变
func (c *Config) Merge(r io.Reader) (*Config, error) {
	out := c.Clone()
	if err := toml.NewDecoder(r).Decode(out); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return out, nil
}

// Clone 深拷贝
func (c *Config) Clone() *Config {
	out := *c
	out.Shape.StackShapes = slices.Clone(c.Shape.StackShapes)
	out.Shape.HueShapes = slices.Clone(c.Shape.HueShapes)
	out.Shape.SaturationShapes = slices.Clone(c.Shape.SaturationShapes)
	out.Shape.BrightnessShapes = slices.Clone(c.Shape.BrightnessShapes)
	return &out
}

// Encode 写出 TOML，CLI 用来导出当前配置
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// soft 把解析失败当软错误：记录警告并继续用默认值
type soft struct {
	logger *slog.Logger
}

func (s soft) check(key, value string, err error, def fmt.Stringer) {
	if err != nil {
		s.logger.Warn("invalid config value, using default", "key", key, "value", value, "default", def.String())
	}
}

func parseSelector(s soft, key, value string, def shape.Selector) shape.Selector {
	sel, err := shape.ParseSelector(value)
	if err != nil {
		s.check(key, value, err, def)
		return def
	}
	return sel
}

// parseList 丢掉未知和不能出现在列表里的形状
func parseList(s soft, key string, values []string, allowed func(shape.Selector) bool) []shape.Selector {
	out := make([]shape.Selector, 0, len(values))
	for _, v := range values {
		sel, err := shape.ParseSelector(v)
		if err == nil && !allowed(sel) {
			err = fmt.Errorf("%s not allowed in %s", sel, key)
		}
		if err != nil {
			s.logger.Warn("invalid config list entry, dropped", "key", key, "value", v, "err", err)
			continue
		}
		out = append(out, sel)
	}
	return out
}

func single(sel shape.Selector) bool {
	return sel.Capability().Build == shape.BuildsOne
}

func concrete(sel shape.Selector) bool {
	return sel.Category() != shape.Varying
}

// Parameters 把 [shape] 段解析成 shape.Parameters
func (c *Config) Parameters(logger *slog.Logger) shape.Parameters {
	s := soft{logger: orNop(logger)}
	d := shape.DefaultParameters()
	cs := c.Shape
	p := d

	p.SideLength = cs.SideLength
	var err error
	if p.ColorMode, err = shape.ParseColorMode(cs.ColorMode); err != nil {
		s.check("shape.color_mode", cs.ColorMode, err, d.ColorMode)
	}
	if p.ConeTop, err = shape.ParseConeSize(cs.ConeTop); err != nil {
		p.ConeTop = shape.ConeOther
		s.check("shape.cone_top", cs.ConeTop, err, p.ConeTop)
	}
	if p.ConeBottom, err = shape.ParseConeSize(cs.ConeBottom); err != nil {
		p.ConeBottom = shape.ConeOther
		s.check("shape.cone_bottom", cs.ConeBottom, err, p.ConeBottom)
	}
	p.ConeInvert = cs.ConeInvert

	p.ChamferRadius = cs.ChamferRadius
	p.StarApexCount = cs.StarApexCount
	p.StarBaseRatio = cs.StarBaseRatio
	p.NGonVertexCount = cs.NGonVertexCount
	p.EllipseRatio = cs.EllipseRatio
	p.DiamondRatio = cs.DiamondRatio
	p.ArrowInset = cs.ArrowInset
	p.FlowerPetalCount = cs.FlowerPetalCount
	p.TorusPipeRatio = cs.TorusPipeRatio
	p.TubeInnerRatio = cs.TubeInnerRatio

	if p.CapBall, err = shape.ParseBallLocation(cs.CapBall); err != nil {
		s.check("shape.cap_ball", cs.CapBall, err, d.CapBall)
	}
	if p.CapColor, err = shape.ParseCapColor(cs.CapColor); err != nil {
		s.check("shape.cap_color", cs.CapColor, err, d.CapColor)
	}

	p.RadiatingLineCount = d.RadiatingLineCount
	switch cs.RadiatingLineCount {
	case 4, 8, 12:
		p.RadiatingLineCount = cs.RadiatingLineCount
	default:
		s.logger.Warn("invalid config value, using default", "key", "shape.radiating_line_count",
			"value", cs.RadiatingLineCount, "default", d.RadiatingLineCount)
	}

	if p.RandomIntensity, err = shape.ParseIntensity(cs.RandomIntensity); err != nil {
		s.check("shape.random_intensity", cs.RandomIntensity, err, d.RandomIntensity)
	}
	if p.RandomSpread, err = shape.ParseSpread(cs.RandomSpread); err != nil {
		s.check("shape.random_spread", cs.RandomSpread, err, d.RandomSpread)
	}
	p.RandomShape = parseSelector(s, "shape.random_shape", cs.RandomShape, d.RandomShape)
	if !single(p.RandomShape) {
		s.check("shape.random_shape", cs.RandomShape, fmt.Errorf("not a single shape"), d.RandomShape)
		p.RandomShape = d.RandomShape
	}
	p.RandomShowBase = cs.RandomShowBase
	p.Seed = cs.Seed

	p.SpherePlusShape = parseSelector(s, "shape.sphere_plus_shape", cs.SpherePlusShape, d.SpherePlusShape)
	if !single(p.SpherePlusShape) {
		s.check("shape.sphere_plus_shape", cs.SpherePlusShape, fmt.Errorf("not a single shape"), d.SpherePlusShape)
		p.SpherePlusShape = d.SpherePlusShape
	}
	p.BoxPlusShape = parseSelector(s, "shape.box_plus_shape", cs.BoxPlusShape, d.BoxPlusShape)
	if !single(p.BoxPlusShape) {
		s.check("shape.box_plus_shape", cs.BoxPlusShape, fmt.Errorf("not a single shape"), d.BoxPlusShape)
		p.BoxPlusShape = d.BoxPlusShape
	}

	p.StackShapes = parseList(s, "shape.stack_shapes", cs.StackShapes, single)
	p.HueShapes = parseList(s, "shape.hue_shapes", cs.HueShapes, concrete)
	p.SaturationShapes = parseList(s, "shape.saturation_shapes", cs.SaturationShapes, concrete)
	p.BrightnessShapes = parseList(s, "shape.brightness_shapes", cs.BrightnessShapes, concrete)

	p.MeshSphere = cs.MeshSphere
	p.MeshLineWidth = cs.MeshLineWidth
	return p
}

// Engine 解析 [prominence] 段；exaggeration 不合法是硬错误
func (c *Config) Engine(logger *slog.Logger) (prominence.Engine, error) {
	s := soft{logger: orNop(logger)}
	src, err := prominence.ParseHeightSource(c.Prominence.Source)
	if err != nil {
		s.check("prominence.source", c.Prominence.Source, err, src)
	}
	return prominence.NewEngine(src, c.Prominence.Exaggeration, c.Prominence.Invert)
}

func (c *Config) Catalog() (*geometry.Catalog, error) {
	return geometry.NewCatalog(geometry.Config{
		EllipseOversample: c.Geometry.EllipseOversample,
		FlattenTolerance:  c.Geometry.FlattenTolerance,
		Segments:          c.Geometry.Segments,
		Rings:             c.Geometry.Rings,
	})
}

// PaletteMethod 解析 [palette] 段的方法
func (c *Config) PaletteMethod(logger *slog.Logger) palette.Method {
	m, err := palette.ParseMethod(c.Palette.Method)
	if err != nil {
		soft{logger: orNop(logger)}.check("palette.method", c.Palette.Method, err, m)
	}
	return m
}

// Preprocessor 按 [preprocess] 段构造预处理器
func (c *Config) Preprocessor(logger *slog.Logger) *preprocess.Preprocessor {
	p := &preprocess.Preprocessor{
		MaxSize:     c.Preprocess.MaxSize,
		CropAlpha:   c.Preprocess.CropAlpha,
		Premultiply: c.Preprocess.Premultiply,
	}
	if c.Preprocess.Remover != "" {
		r := preprocess.NewRemoteRemover(c.Preprocess.Remover)
		r.Logger = logger
		p.Remover = r
	}
	return p
}

// SceneOptions 转成一次组装用的 scene.Options
func (c *Config) SceneOptions(logger *slog.Logger) (scene.Options, error) {
	engine, err := c.Engine(logger)
	if err != nil {
		return scene.Options{}, err
	}
	catalog, err := c.Catalog()
	if err != nil {
		return scene.Options{}, err
	}
	s := soft{logger: orNop(logger)}
	return scene.Options{
		Engine:     engine,
		Selector:   parseSelector(s, "shape.selector", c.Shape.Selector, shape.Block),
		Parameters: c.Parameters(logger),
		Catalog:    catalog,
		Workers:    c.Workers,
		Logger:     logger,
		MaxNodes:   c.MaxNodes,
	}, nil
}

func orNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}

// HeightMapOptions [relief] 段里和高度图相关的选项
func (c *Config) HeightMapOptions() prominence.HeightMapOptions {
	return prominence.HeightMapOptions{
		Blur:   c.Relief.Blur,
		Smooth: c.Relief.Smooth,
		Levels: c.Relief.Levels,
	}
}
