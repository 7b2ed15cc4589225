package agent

import (
	"context"
	"net/http"
	"time"

	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/logger"
)

// Result 验收结果。验收只是建议性的，置信度与证据供发起人参考，
// 不直接驱动任何链上状态变更。
type Result struct {
	Kind            string                 `json:"kind"`
	ConfidenceScore int                    `json:"confidenceScore"`
	Summary         string                 `json:"summary"`
	Details         map[string]interface{} `json:"details"`
	EvidenceCid     string                 `json:"evidenceCid"`
}

// EvidenceStore 验收结果的归档存储
type EvidenceStore interface {
	UploadJSON(ctx context.Context, name string, data interface{}) (string, error)
}

// Service 验收代理：代码、设计、文档三类分析器的共同载体
type Service struct {
	geminiKey   string
	githubToken string
	store       EvidenceStore
	client      *http.Client
}

// New 创建验收代理服务
func New(cfg config.AgentConfig, store EvidenceStore) *Service {
	return &Service{
		geminiKey:   cfg.GeminiApiKey,
		githubToken: cfg.GithubToken,
		store:       store,
		// 外部分析可能耗时数十秒
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

// archive 把验收结果固定到IPFS。归档失败只记日志，
// 验收结果本身照常返回。
func (s *Service) archive(ctx context.Context, name string, result *Result) {
	cid, err := s.store.UploadJSON(ctx, name, result)
	if err != nil {
		logger.Warn("Failed to archive agent result %s: %v", name, err)
		return
	}
	result.EvidenceCid = cid
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
