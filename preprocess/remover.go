package preprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"mime/multipart"
	"time"

	nhttp "github.com/chaos-io/pixel3d/util/http"
)

type BackgroundRemover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// RemoteRemover 把图片以 multipart 上传到抠图服务，服务返回带 alpha 的 PNG
//
//	curl -X POST "$ENDPOINT" -F "image=@input.png"
type RemoteRemover struct {
	Endpoint string
	Timeout  time.Duration
	// Logger 为 nil 时不打日志
	Logger *slog.Logger

	cli nhttp.IClient
}

func NewRemoteRemover(endpoint string) *RemoteRemover {
	return &RemoteRemover{
		Endpoint: endpoint,
		Timeout:  time.Minute,
		cli:      nhttp.NewHTTPClient(),
	}
}

// WithClient 替换 HTTP 客户端
func (r *RemoteRemover) WithClient(cli nhttp.IClient) *RemoteRemover {
	r.cli = cli
	return r
}

func (r *RemoteRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if r.Endpoint == "" {
		return nil, errors.New("remote remover: empty endpoint")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "input.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	_ = writer.WriteField("format", "png")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	resp := &bytes.Buffer{}
	reqParam := &nhttp.RequestParam{
		RequestURI: r.Endpoint,
		Method:     "POST",
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   resp,
		Timeout:    r.Timeout,
	}
	if err := r.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if r.Logger != nil {
		r.Logger.Debug("get the response", "endpoint", r.Endpoint, "bytes", resp.Len())
	}

	out, _, err := image.Decode(resp)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
