package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/pkg/imaging"
)

var (
	ErrUploadDisabled = errors.New("附件上传未启用")
	ErrUploadInvalid  = errors.New("仅支持 JPEG 或 PNG 图片")
	ErrUploadEmpty    = errors.New("上传文件为空")
)

// UploadService 凭证附件上传
type UploadService interface {
	UploadProof(ctx context.Context, data []byte) (*dto.UploadProofResponse, error)
}

type uploadService struct {
	uploader ProofUploader
	logger   *zap.Logger
}

// NewUploadService 创建 UploadService 实例
// uploader 为 nil 时上传接口返回 ErrUploadDisabled
func NewUploadService(uploader ProofUploader, logger *zap.Logger) UploadService {
	return &uploadService{uploader: uploader, logger: logger}
}

// UploadProof 压缩图片后写入对象存储，返回可直接填入 proof_url 的地址
func (s *uploadService) UploadProof(ctx context.Context, data []byte) (*dto.UploadProofResponse, error) {
	if s.uploader == nil {
		return nil, ErrUploadDisabled
	}
	if len(data) == 0 {
		return nil, ErrUploadEmpty
	}

	img, err := imaging.Normalize(data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return nil, ErrUploadInvalid
		}
		return nil, err
	}

	url, err := s.uploader.Put(ctx, img.Data, img.MIME, img.Ext)
	if err != nil {
		s.logger.Error("上传凭证附件失败", zap.Int("bytes", len(img.Data)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("凭证附件已上传",
		zap.Int("original_bytes", len(data)),
		zap.Int("stored_bytes", len(img.Data)),
	)

	return &dto.UploadProofResponse{URL: url}, nil
}
