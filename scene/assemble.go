package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chaos-io/pixel3d/geometry"
	"github.com/chaos-io/pixel3d/pixel"
	"github.com/chaos-io/pixel3d/prominence"
	"github.com/chaos-io/pixel3d/shape"
)

var (
	// ErrResourceExhausted 实例数超过 Options.MaxNodes
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrCanceled 组装被 context 取消，部分结果已丢弃
	ErrCanceled = errors.New("assembly canceled")
)

type Options struct {
	Engine     prominence.Engine
	Selector   shape.Selector
	Parameters shape.Parameters
	// Catalog 为 nil 时使用 geometry.Default()
	Catalog *geometry.Catalog
	// Workers 按行分片的并发数，<= 1 时串行
	Workers int
	// Progress 百分比变化时调用，成功结束时最后一次为 100
	Progress func(percent int)
	Logger   *slog.Logger
	// MaxNodes 实例总数上限，0 表示不限制
	MaxNodes int
}

type Assembler struct {
	opts       Options
	dispatcher *shape.Dispatcher
	logger     *slog.Logger
}

func NewAssembler(opts Options) (*Assembler, error) {
	engine, err := prominence.NewEngine(opts.Engine.Source, opts.Engine.Exaggeration, opts.Engine.Invert)
	if err != nil {
		return nil, fmt.Errorf("prominence engine: %w", err)
	}
	if opts.Catalog == nil {
		opts.Catalog = geometry.Default()
	}
	d, err := shape.NewDispatcher(opts.Catalog, engine, opts.Parameters)
	if err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Workers > runtime.GOMAXPROCS(0) {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = newNopLogger()
	}
	opts.Engine = engine
	return &Assembler{opts: opts, dispatcher: d, logger: logger}, nil
}

func (a *Assembler) Catalog() *geometry.Catalog {
	return a.opts.Catalog
}

// cellResult 每个格子独占一个槽位，各个 worker 之间没有共享写
type cellResult struct {
	node *Node
	skip *Skip
}

// Assemble 按行优先遍历所有格子生成场景；格子之间检查取消，取消或失败时不返回部分结果
func (a *Assembler) Assemble(ctx context.Context, g *pixel.Grid) (*Model, error) {
	if g == nil || g.Len() == 0 {
		return nil, fmt.Errorf("empty grid: %w", pixel.ErrInvalidBlockSize)
	}
	w, h := g.Width(), g.Height()
	results := make([]cellResult, g.Len())
	progress := newProgress(g.Len(), a.opts.Progress)
	var total atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	workers := min(a.opts.Workers, h)
	for k := 0; k < workers; k++ {
		eg.Go(func() error {
			for y := k; y < h; y += workers {
				for x := 0; x < w; x++ {
					if err := ctx.Err(); err != nil {
						return err
					}
					r := a.cell(g, x, y)
					if r.node != nil && a.opts.MaxNodes > 0 {
						if n := total.Add(int64(len(r.node.Instances))); n > int64(a.opts.MaxNodes) {
							return fmt.Errorf("%d instances exceed the limit of %d: %w", n, a.opts.MaxNodes, ErrResourceExhausted)
						}
					}
					results[y*w+x] = r
					progress.done()
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		return nil, err
	}

	m := &Model{ID: ksuid.New(), Width: w, Height: h, SideLength: a.opts.Parameters.SideLength, Nodes: make([]Node, 0, len(results))}
	for _, r := range results {
		switch {
		case r.node != nil:
			m.Nodes = append(m.Nodes, *r.node)
		case r.skip != nil:
			m.Skipped = append(m.Skipped, *r.skip)
		}
	}
	progress.finish()
	a.logger.Debug("scene assembled", "id", m.ID.String(), "width", w, "height", h,
		"nodes", len(m.Nodes), "instances", m.Instances(), "skipped", len(m.Skipped))
	return m, nil
}

// cell 处理一个格子：算高度、解析形状、分派、放置。出错的格子记为跳过
func (a *Assembler) cell(g *pixel.Grid, x, y int) cellResult {
	c, _ := g.At(x, y)
	p := a.opts.Engine.Of(c)
	sel := a.dispatcher.Resolve(a.opts.Selector, c)
	req := shape.Request{Selector: sel, Color: c, Prominence: p, X: x, Y: y}

	if sel.Capability().RequiresNeighbor {
		if x >= g.Width()-1 || y >= g.Height()-1 {
			return cellResult{}
		}
		right, _ := g.At(x+1, y)
		below, _ := g.At(x, y+1)
		belowRight, _ := g.At(x+1, y+1)
		req.Neighbors = &shape.Neighbors{Right: right, Below: below, BelowRight: belowRight}
	}

	parts, err := a.dispatcher.Dispatch(req)
	if err != nil {
		a.logger.Warn("skip cell", "x", x, "y", y, "selector", sel.String(), "err", err)
		return cellResult{skip: &Skip{X: x, Y: y, Selector: sel, Err: err}}
	}

	s := a.opts.Parameters.SideLength
	logical := r3.Vec{
		X: float64(x) - float64(g.Width())/2,
		Y: float64(y) - float64(g.Height())/2,
		Z: p,
	}
	base := r3.Vec{X: logical.X * s, Y: logical.Y * s}
	normalized := a.opts.Engine.Normalized(c)

	node := &Node{X: x, Y: y, Selector: sel, Color: c, Prominence: p, Logical: logical, Instances: make([]Instance, len(parts))}
	for i, part := range parts {
		node.Instances[i] = Instance{
			Selector:    part.Selector,
			Geometry:    part.Geometry,
			Position:    r3.Add(base, part.Offset),
			Orientation: part.Geometry.Orient(part.Orientation),
			Scale:       part.Geometry.RescaleOrUnit(),
			Color:       a.opts.Parameters.ColorMode.Apply(part.Color, normalized),
		}
	}
	return cellResult{node: node}
}

// progress 把完成的格子数换算成百分比，只在整数百分比前进时回调
type progress struct {
	mu    sync.Mutex
	total int
	count int
	last  int
	fn    func(int)
}

func newProgress(total int, fn func(int)) *progress {
	return &progress{total: total, last: -1, fn: fn}
}

func (p *progress) done() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	pct := p.count * 100 / p.total
	if pct > p.last && pct < 100 {
		p.last = pct
		p.fn(pct)
	}
}

func (p *progress) finish() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = 100
	p.fn(100)
}
