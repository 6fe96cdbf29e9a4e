package preprocess

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	nhttp "github.com/chaos-io/pixel3d/util/http"
	"github.com/chaos-io/pixel3d/util/http/mocks"
)

func filled(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// subject 透明画布上一块不透明矩形
func subject(w, h int, r image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

type fakeRemover struct {
	calls int
	err   error
}

func (f *fakeRemover) Remove(_ context.Context, img image.Image) (image.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	b := img.Bounds()
	return subject(b.Dx(), b.Dy(), image.Rect(b.Dx()/4, b.Dy()/4, b.Dx()/2, b.Dy()/2)), nil
}

func TestResizeWithinMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		w, h    int
		maxSize int
		wantW   int
		wantH   int
	}{
		{"横图缩小", 200, 100, 50, 50, 25},
		{"竖图缩小", 30, 90, 45, 15, 45},
		{"不超过上限", 40, 20, 64, 40, 20},
		{"上限为0不缩放", 40, 20, 0, 40, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := resizeWithinMax(filled(tt.w, tt.h, color.NRGBA{A: 255}), tt.maxSize)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}

func TestToNRGBA_Origin(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(5, 5, 9, 8))
	src.Set(5, 5, color.RGBA{R: 255, A: 255})
	got := toNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 4, 3), got.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(0, 0))

	// 总是副本
	n := filled(2, 2, color.NRGBA{A: 255})
	assert.NotSame(t, n, toNRGBA(n))
}

func TestAlphaBBox(t *testing.T) {
	t.Parallel()

	img := subject(20, 10, image.Rect(3, 2, 8, 9))
	bbox, err := alphaBBox(img, alphaThreshold)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(3, 2, 8, 9), bbox)

	_, err = alphaBBox(image.NewNRGBA(image.Rect(0, 0, 4, 4)), alphaThreshold)
	assert.ErrorIs(t, err, ErrNoForeground)
}

func TestCropSquare(t *testing.T) {
	t.Parallel()

	img := subject(20, 10, image.Rect(0, 0, 12, 4))
	got := cropSquare(img, image.Rect(0, 0, 12, 4))
	assert.Equal(t, image.Rect(0, 0, 12, 12), got.Bounds())
	// 主体宽 12 高 4，竖直居中，上下超出原图的部分透明
	assert.Equal(t, uint8(0), got.NRGBAAt(6, 0).A)
	assert.Equal(t, uint8(255), got.NRGBAAt(6, 6).A)
	assert.Equal(t, uint8(0), got.NRGBAAt(6, 11).A)
}

func TestPremultiply(t *testing.T) {
	t.Parallel()

	img := filled(1, 1, color.NRGBA{R: 255, G: 100, B: 0, A: 127})
	premultiply(img)
	got := img.NRGBAAt(0, 0)
	assert.InDelta(t, 127, int(got.R), 1)
	assert.InDelta(t, 49, int(got.G), 1)
	assert.Equal(t, uint8(0), got.B)
	assert.Equal(t, uint8(127), got.A)
}

func TestPreprocessor_Prepare(t *testing.T) {
	t.Parallel()

	t.Run("不透明图片调用去背景", func(t *testing.T) {
		t.Parallel()
		rem := &fakeRemover{}
		p := &Preprocessor{Remover: rem, MaxSize: 32, CropAlpha: true}
		got, err := p.Prepare(context.Background(), filled(64, 64, color.NRGBA{R: 1, A: 255}))
		require.NoError(t, err)
		assert.Equal(t, 1, rem.calls)
		// 缩到 32，主体 [8,16) 裁成 8x8
		assert.Equal(t, image.Rect(0, 0, 8, 8), got.Bounds())
	})

	t.Run("已有透明信息不调用去背景", func(t *testing.T) {
		t.Parallel()
		rem := &fakeRemover{}
		p := &Preprocessor{Remover: rem, CropAlpha: true}
		got, err := p.Prepare(context.Background(), subject(10, 10, image.Rect(2, 2, 6, 4)))
		require.NoError(t, err)
		assert.Zero(t, rem.calls)
		assert.Equal(t, image.Rect(0, 0, 4, 4), got.Bounds())
	})

	t.Run("去背景失败", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		p := &Preprocessor{Remover: &fakeRemover{err: boom}}
		_, err := p.Prepare(context.Background(), filled(4, 4, color.NRGBA{A: 255}))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("完全透明无法裁剪", func(t *testing.T) {
		t.Parallel()
		p := &Preprocessor{CropAlpha: true}
		_, err := p.Prepare(context.Background(), image.NewNRGBA(image.Rect(0, 0, 4, 4)))
		assert.ErrorIs(t, err, ErrNoForeground)
	})

	t.Run("空图片", func(t *testing.T) {
		t.Parallel()
		_, err := NewPreprocessor().Prepare(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)))
		assert.Error(t, err)
	})

	t.Run("不修改输入", func(t *testing.T) {
		t.Parallel()
		in := filled(2, 2, color.NRGBA{R: 200, A: 100})
		p := &Preprocessor{Premultiply: true}
		got, err := p.Prepare(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, uint8(200), in.NRGBAAt(0, 0).R)
		assert.Less(t, got.NRGBAAt(0, 0).R, uint8(200))
	})
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRemoteRemover_Mock(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cli := mocks.NewMockIClient(ctrl)
	cut := subject(4, 4, image.Rect(1, 1, 3, 3))
	cli.EXPECT().
		DoHTTPRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *nhttp.RequestParam) error {
			assert.Equal(t, "http://rembg.local/remove", p.RequestURI)
			assert.Equal(t, "POST", p.Method)
			assert.Contains(t, p.Header["Content-Type"], "multipart/form-data")
			_, err := p.Response.(io.Writer).Write(pngBytes(t, cut))
			return err
		})

	r := NewRemoteRemover("http://rembg.local/remove").WithClient(cli)
	got, err := r.Remove(context.Background(), filled(4, 4, color.NRGBA{A: 255}))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), toNRGBA(got).NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(255), toNRGBA(got).NRGBAAt(1, 1).A)
}

func TestRemoteRemover_Server(t *testing.T) {
	t.Parallel()

	cut := subject(6, 6, image.Rect(2, 2, 4, 4))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer func() {
			_ = file.Close()
		}()
		in, err := png.Decode(file)
		assert.NoError(t, err)
		assert.Equal(t, 6, in.Bounds().Dx())
		assert.Equal(t, "png", r.FormValue("format"))
		_, _ = w.Write(pngBytes(t, cut))
	}))
	defer server.Close()

	p := &Preprocessor{Remover: NewRemoteRemover(server.URL), CropAlpha: true}
	got, err := p.Prepare(context.Background(), filled(6, 6, color.NRGBA{G: 9, A: 255}))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
}

func TestRemoteRemover_Errors(t *testing.T) {
	t.Parallel()

	_, err := (&RemoteRemover{}).Remove(context.Background(), filled(1, 1, color.NRGBA{A: 255}))
	assert.Error(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("model offline"))
	}))
	defer server.Close()

	_, err = NewRemoteRemover(server.URL).Remove(context.Background(), filled(1, 1, color.NRGBA{A: 255}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}
