package main

import (
	"context"
	"flag"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"

	"github.com/chaos-io/pixel3d/config"
	"github.com/chaos-io/pixel3d/pipeline"
	"github.com/chaos-io/pixel3d/server"
	"github.com/chaos-io/pixel3d/stl"
	"github.com/chaos-io/pixel3d/util"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "图片路径或 http(s) 地址")
		configPath = flag.String("config", "", "TOML 配置文件")
		outputDir  = flag.String("out", "./output", "输出目录")
		selector   = flag.String("shape", "", "覆盖 shape.selector")
		blockSize  = flag.Int("block", 0, "覆盖 block_size")
		workers    = flag.Int("workers", 0, "覆盖 workers")
		relief     = flag.Bool("relief", false, "同时输出高度图浮雕 STL")
		serveAddr  = flag.String("serve", "", "以 HTTP 服务方式运行，例如 :8080")
		dumpConfig = flag.Bool("dump-config", false, "打印当前配置后退出")
		verbose    = flag.Bool("v", false, "输出 debug 日志")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal("Failed to load config: ", err)
		}
	}
	if *selector != "" {
		cfg.Shape.Selector = *selector
	}
	if *blockSize > 0 {
		cfg.BlockSize = *blockSize
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	if *dumpConfig {
		if err := cfg.Encode(os.Stdout); err != nil {
			log.Fatal("Failed to encode config: ", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serveAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		s, err := server.New(server.Options{Config: cfg, Logger: logger})
		if err != nil {
			log.Fatal("Failed to create server: ", err)
		}
		if err := s.Run(ctx, *serveAddr); err != nil {
			log.Fatal("Server stopped: ", err)
		}
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := os.MkdirAll(*outputDir, os.ModePerm); err != nil {
		log.Fatal("Failed to create output dir: ", err)
	}

	img, err := loadImage(ctx, *inputPath)
	if err != nil {
		log.Fatal("Failed to load image: ", err)
	}

	last := -10
	res, err := pipeline.New(cfg, logger).Run(ctx, img, func(p int) {
		if p/10 != last/10 {
			log.Printf("assembling %d%%", p)
		}
		last = p
	})
	if err != nil {
		log.Fatal("Failed to build scene: ", err)
	}
	if n := len(res.Model.Skipped); n > 0 {
		log.Printf("%d cells skipped", n)
	}

	name := ksuid.New().String()
	previewPath := filepath.Join(*outputDir, name+"_preview.png")
	if err := util.SaveImage(previewPath, res.Preview()); err != nil {
		log.Fatal("Failed to write preview: ", err)
	}
	if cfg.Relief.WriteHeightMap {
		depthPath := filepath.Join(*outputDir, name+"_depth_map.png")
		if err := util.SaveImage(depthPath, res.HeightMap); err != nil {
			log.Fatal("Failed to write depth map: ", err)
		}
		log.Println("Depth map:", depthPath)
	}

	stlPath := filepath.Join(*outputDir, name+".stl")
	facets, err := stl.WriteFile(stlPath, res.WriteSTL)
	if err != nil {
		log.Fatal("Failed to generate STL: ", err)
	}
	log.Printf("STL: %s (%d nodes, %d facets)", stlPath, len(res.Model.Nodes), facets)

	if *relief {
		reliefPath := filepath.Join(*outputDir, name+"_relief.stl")
		if _, err := stl.WriteFile(reliefPath, res.WriteRelief); err != nil {
			log.Fatal("Failed to generate relief STL: ", err)
		}
		log.Println("Relief STL:", reliefPath)
	}

	log.Println("Done! Preview:", previewPath)
}

func loadImage(ctx context.Context, path string) (image.Image, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return util.DownloadImage(ctx, path)
	}
	return util.OpenImage(path)
}
