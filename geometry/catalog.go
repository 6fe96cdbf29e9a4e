package geometry

import "fmt"

// Config 目录的不可变配置，构造 Catalog 时传入
type Config struct {
	// EllipseOversample 椭圆类图形的建模放大倍数 K，返回的 Rescale 为 1/K
	EllipseOversample float64
	// FlattenTolerance 曲线展平的绝对容差（建模坐标）
	FlattenTolerance float64
	// Segments 旋转体的圆周分段数
	Segments int
	// Rings 球体/胶囊半球的纬度分段数
	Rings int
}

func DefaultConfig() Config {
	return Config{
		EllipseOversample: 1000,
		FlattenTolerance:  0.1,
		Segments:          24,
		Rings:             12,
	}
}

// Catalog 纯函数式的形状目录，可以被多个 goroutine 共享
type Catalog struct {
	cfg Config
}

func NewCatalog(cfg Config) (*Catalog, error) {
	if !(cfg.EllipseOversample >= 1) {
		return nil, fmt.Errorf("ellipse oversample must be >= 1, got %v", cfg.EllipseOversample)
	}
	if !(cfg.FlattenTolerance > 0) {
		return nil, fmt.Errorf("flatten tolerance must be > 0, got %v", cfg.FlattenTolerance)
	}
	if cfg.Segments < 3 {
		return nil, fmt.Errorf("segments must be >= 3, got %d", cfg.Segments)
	}
	if cfg.Rings < 2 {
		return nil, fmt.Errorf("rings must be >= 2, got %d", cfg.Rings)
	}
	return &Catalog{cfg: cfg}, nil
}

// Default 使用 DefaultConfig 的目录
func Default() *Catalog {
	return &Catalog{cfg: DefaultConfig()}
}

func (c *Catalog) Config() Config {
	return c.cfg
}
