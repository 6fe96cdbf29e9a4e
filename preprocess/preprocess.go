package preprocess

import (
	"context"
	"fmt"
	"image"
)

// DefaultMaxSize 最长边上限
const DefaultMaxSize = 1024

// alphaThreshold alpha 超过 80% 的像素算作主体
const alphaThreshold = 0.8

type Preprocessor struct {
	// Remover 为 nil 时不去背景
	Remover BackgroundRemover
	// MaxSize <= 0 不缩放
	MaxSize int
	// CropAlpha 有透明信息时按主体裁成正方形
	CropAlpha bool
	// Premultiply 预乘 alpha，透明背景变黑
	Premultiply bool
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		MaxSize: DefaultMaxSize,
	}
}

// Prepare 把任意输入图片变成
//
//	尺寸 ≤ MaxSize
//	没有透明信息且配置了 Remover 时先去背景
//	CropAlpha 时主体被裁成正方形并居中
//	Premultiply 时已乘 alpha
//
// 输入图片不会被修改
func (p *Preprocessor) Prepare(ctx context.Context, input image.Image) (*image.NRGBA, error) {
	if input == nil || input.Bounds().Empty() {
		return nil, fmt.Errorf("prepare: empty image")
	}

	// 转为 NRGBA 副本
	src := toNRGBA(input)

	// 1. 缩放
	src = resizeWithinMax(src, p.MaxSize)

	// 2. 背景去除
	hasAlpha := hasUsefulAlpha(src)
	if !hasAlpha && p.Remover != nil {
		removed, err := p.Remover.Remove(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("remove background: %w", err)
		}
		src = toNRGBA(removed)
		hasAlpha = hasUsefulAlpha(src)
	}

	// 3. Alpha Bounding Box + 正方形中心裁剪
	if p.CropAlpha && hasAlpha {
		bbox, err := alphaBBox(src, alphaThreshold)
		if err != nil {
			return nil, fmt.Errorf("crop: %w", err)
		}
		src = cropSquare(src, bbox)
	}

	// 4. 预乘 Alpha
	if p.Premultiply {
		premultiply(src)
	}

	return src, nil
}
