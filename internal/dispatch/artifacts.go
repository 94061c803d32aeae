package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emailvalidation9-a11y/backend/pkg/config"
	"github.com/google/uuid"
)

// ArtifactRef 指向一份已归档的结果文件
type ArtifactRef struct {
	Path        string
	DownloadURL string
	ExpiresAt   *time.Time
}

// ArtifactStore 归档作业完成后的结果CSV。对象存储是外部协作方，这里只
// 定义边界；本地文件实现供开发与测试使用。
type ArtifactStore interface {
	Put(ctx context.Context, jobID uint64, data []byte) (*ArtifactRef, error)
}

type FileArtifactStore struct {
	dir string
	ttl time.Duration
}

func NewFileArtifactStore(cfg config.ArtifactsConfig) (*FileArtifactStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts dir: %w", err)
	}
	return &FileArtifactStore{dir: cfg.Dir, ttl: cfg.TTL}, nil
}

func (s *FileArtifactStore) Put(ctx context.Context, jobID uint64, data []byte) (*ArtifactRef, error) {
	name := fmt.Sprintf("job-%d-%s.csv", jobID, uuid.NewString())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, err
	}
	ref := &ArtifactRef{
		Path:        path,
		DownloadURL: "/results/" + name,
	}
	if s.ttl > 0 {
		expires := time.Now().Add(s.ttl)
		ref.ExpiresAt = &expires
	}
	return ref, nil
}
