package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/chaos-io/pixel3d/config"
	nhttp "github.com/chaos-io/pixel3d/util/http"
)

type Options struct {
	// Config 每次请求的基础配置，请求里的覆盖项在它的副本上生效；nil 时使用 config.Default()
	Config *config.Config
	Logger *slog.Logger
	// Client 下载 url 图片用，nil 时使用 nhttp.NewHTTPClient()
	Client nhttp.IClient
	// Now 测试用时钟
	Now func() time.Time
}

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	client nhttp.IClient
	cache  *cache
	cron   *cron.Cron
	engine *gin.Engine
}

func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ttl, err := time.ParseDuration(cfg.Server.TTL)
	if err != nil {
		return nil, fmt.Errorf("server.ttl %q: %w", cfg.Server.TTL, err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("server.ttl %q must be positive", cfg.Server.TTL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client := opts.Client
	if client == nil {
		client = nhttp.NewHTTPClient()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		client: client,
		cache:  newCache(ttl, opts.Now),
		cron:   cron.New(),
	}
	if _, err := s.cron.AddFunc(cfg.Server.Purge, s.purge); err != nil {
		return nil, fmt.Errorf("server.purge %q: %w", cfg.Server.Purge, err)
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cached": s.cache.len()})
	})

	v1 := r.Group("/v1")
	v1.POST("/relief", s.create)
	v1.GET("/relief/:id", s.summary)
	v1.GET("/relief/:id/stl", s.stl)
	v1.GET("/relief/:id/heightmap.png", s.heightMap)
	v1.GET("/relief/:id/preview.png", s.preview)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) purge() {
	if n := s.cache.purge(); n > 0 {
		s.logger.Debug("purged expired results", "count", n)
	}
}

// Run 启动清理任务并监听 addr（为空时用配置里的地址），ctx 结束后优雅退出
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = s.cfg.Server.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.cron.Start()
	defer func() {
		<-s.cron.Stop().Done()
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}
