package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension 存储图片的最大宽 / 高
	MaxDimension = 1600
	// JPEGQuality 重新编码的 JPEG 质量
	JPEGQuality = 82
)

// ErrUnsupportedFormat 非 JPEG / PNG 图片
var ErrUnsupportedFormat = errors.New("仅支持 JPEG 或 PNG 图片")

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result 处理后的图片
type Result struct {
	Data []byte
	MIME string
	Ext  string
}

// Normalize 校验并规范化凭证图片
// 以文件头识别格式（不信任客户端 Content-Type），超过 MaxDimension 时等比缩小，统一输出 JPEG
func Normalize(data []byte) (*Result, error) {
	if !allowedMIME[http.DetectContentType(data)] {
		return nil, ErrUnsupportedFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("编码 JPEG 失败: %w", err)
	}

	return &Result{Data: buf.Bytes(), MIME: "image/jpeg", Ext: ".jpg"}, nil
}

func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = h * maxDim / w
	} else {
		newW = w * maxDim / h
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
