package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"

	"github.com/chaos-io/pixel3d/config"
	"github.com/chaos-io/pixel3d/pipeline"
	"github.com/chaos-io/pixel3d/pixel"
	"github.com/chaos-io/pixel3d/preprocess"
	"github.com/chaos-io/pixel3d/scene"
	"github.com/chaos-io/pixel3d/util"
)

const maxFormMemory = 8 << 20

var errNoImage = errors.New("image file or url is required")

type skipResp struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Selector string `json:"selector"`
	Error    string `json:"error"`
}

type summaryResp struct {
	ID         string     `json:"id"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	SideLength float64    `json:"side_length"`
	Nodes      int        `json:"nodes"`
	Instances  int        `json:"instances"`
	Skipped    []skipResp `json:"skipped"`
	Palette    []string   `json:"palette,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

func summaryOf(r *pipeline.Result, expires time.Time) summaryResp {
	m := r.Model
	resp := summaryResp{
		ID:         m.ID.String(),
		Width:      m.Width,
		Height:     m.Height,
		SideLength: m.SideLength,
		Nodes:      len(m.Nodes),
		Instances:  m.Instances(),
		Skipped:    make([]skipResp, 0, len(m.Skipped)),
		ExpiresAt:  expires,
	}
	for _, sk := range m.Skipped {
		resp.Skipped = append(resp.Skipped, skipResp{X: sk.X, Y: sk.Y, Selector: sk.Selector.String(), Error: sk.Err.Error()})
	}
	for _, c := range r.Palette {
		resp.Palette = append(resp.Palette, c.Hex())
	}
	return resp
}

// statusOf 管线错误对应的状态码
func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, scene.ErrResourceExhausted):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pixel.ErrInvalidBlockSize), errors.Is(err, preprocess.ErrNoForeground):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scene.ErrCanceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	s.logger.Warn("request failed", "path", c.FullPath(), "status", status, "err", err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// create POST /v1/relief
//
//	multipart：image=<文件> 或 url=<图片地址>
//	可选 config=<TOML 覆盖项>、selector、block_size
func (s *Server) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes)
	if err := parseForm(c.Request); err != nil {
		s.fail(c, badRequest(err), fmt.Errorf("parse form: %w", err))
		return
	}

	cfg, err := s.requestConfig(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	img, status, err := s.requestImage(c)
	if err != nil {
		s.fail(c, status, err)
		return
	}

	res, err := pipeline.New(cfg, s.logger).Run(c.Request.Context(), img, nil)
	if err != nil {
		s.fail(c, statusOf(err), err)
		return
	}

	expires := s.cache.put(res.Model.ID, res)
	c.JSON(http.StatusCreated, summaryOf(res, expires))
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func badRequest(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (s *Server) requestConfig(c *gin.Context) (*config.Config, error) {
	cfg := s.cfg.Clone()
	if raw := c.PostForm("config"); raw != "" {
		merged, err := s.cfg.Merge(strings.NewReader(raw))
		if err != nil {
			return nil, err
		}
		cfg = merged
	}
	if sel := c.PostForm("selector"); sel != "" {
		cfg.Shape.Selector = sel
	}
	if bs := c.PostForm("block_size"); bs != "" {
		n, err := strconv.Atoi(bs)
		if err != nil {
			return nil, fmt.Errorf("block_size %q: %w", bs, err)
		}
		cfg.BlockSize = n
	}
	return cfg, nil
}

func (s *Server) requestImage(c *gin.Context) (image.Image, int, error) {
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("open upload: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		img, _, err := util.DecodeImage(f)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		return img, 0, nil
	}

	if url := c.PostForm("url"); url != "" {
		img, err := util.DownloadImageWith(c.Request.Context(), s.client, url)
		if err != nil {
			return nil, http.StatusBadGateway, err
		}
		return img, 0, nil
	}
	return nil, http.StatusBadRequest, errNoImage
}

// lookup 解析 :id 并读缓存，失败时已写好响应
func (s *Server) lookup(c *gin.Context) (entry, bool) {
	id, err := ksuid.Parse(c.Param("id"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("id %q: %w", c.Param("id"), err))
		return entry{}, false
	}
	e, ok := s.cache.get(id)
	if !ok {
		s.fail(c, http.StatusNotFound, fmt.Errorf("result %s not found or expired", id))
		return entry{}, false
	}
	return e, true
}

// summary GET /v1/relief/:id
func (s *Server) summary(c *gin.Context) {
	if e, ok := s.lookup(c); ok {
		c.JSON(http.StatusOK, summaryOf(e.result, e.expires))
	}
}

// stl GET /v1/relief/:id/stl?kind=scene|relief
func (s *Server) stl(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	res := e.result

	var buf bytes.Buffer
	var err error
	switch kind := c.DefaultQuery("kind", "scene"); kind {
	case "scene":
		_, err = res.WriteSTL(&buf)
	case "relief":
		_, err = res.WriteRelief(&buf)
	default:
		s.fail(c, http.StatusBadRequest, fmt.Errorf("unknown kind %q", kind))
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.stl"`, res.Model.ID))
	c.Data(http.StatusOK, "model/stl", buf.Bytes())
}

func (s *Server) heightMap(c *gin.Context) {
	if e, ok := s.lookup(c); ok {
		s.png(c, e.result.HeightMap)
	}
}

func (s *Server) preview(c *gin.Context) {
	if e, ok := s.lookup(c); ok {
		s.png(c, e.result.Preview())
	}
}

func (s *Server) png(c *gin.Context, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
