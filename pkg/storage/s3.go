package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"relief-hub/backend/config"
)

// objectPutter s3.Client 中本包用到的子集，便于测试替换
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ProofStore 凭证附件存储（S3 兼容对象存储）
type ProofStore struct {
	client        objectPutter
	bucket        string
	prefix        string
	publicBaseURL string
}

// NewProofStore 使用默认 AWS 凭证链创建存储
// 凭证来源：环境变量 / 共享配置文件 / 实例角色
func NewProofStore(ctx context.Context, cfg *config.StorageConfig) (*ProofStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	return newProofStore(s3.NewFromConfig(awsCfg), cfg), nil
}

func newProofStore(client objectPutter, cfg *config.StorageConfig) *ProofStore {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &ProofStore{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		publicBaseURL: base,
	}
}

// Put 上传凭证图片并返回公开访问 URL
// 对象键形如 proofs/2026/10/<uuid>.jpg
func (s *ProofStore) Put(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	now := time.Now().UTC()
	key := path.Join(s.prefix, now.Format("2006"), now.Format("01"), uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("上传对象失败: %w", err)
	}

	return s.publicBaseURL + "/" + key, nil
}
