package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/errs"
	"github.com/tidwall/gjson"
)

// Service 证据存储适配器，经Pinata把JSON对象固定到IPFS。
// 内容寻址意味着重复上传同一对象得到同一CID，重复调用是安全的。
type Service struct {
	apiUrl    string
	apiKey    string
	secretKey string
	gateway   string
	client    *http.Client
}

// New 创建证据存储适配器
func New(cfg config.IpfsConfig) *Service {
	return &Service{
		apiUrl:    cfg.ApiUrl,
		apiKey:    cfg.ApiKey,
		secretKey: cfg.SecretKey,
		gateway:   cfg.Gateway,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured 是否配置了Pinata凭据
func (s *Service) Configured() bool {
	return s.apiKey != "" && s.secretKey != ""
}

// UploadJSON 上传JSON对象，返回CID
func (s *Service) UploadJSON(ctx context.Context, name string, data interface{}) (string, error) {
	if !s.Configured() {
		return "", errs.New(errs.KindUnavailable, "ipfs not configured - missing pinata credentials")
	}
	if name == "" {
		name = fmt.Sprintf("evidence-%d", time.Now().Unix())
	}

	payload, err := json.Marshal(map[string]interface{}{
		"pinataContent":  data,
		"pinataMetadata": map[string]string{"name": name},
	})
	if err != nil {
		return "", errs.Wrap(errs.KindValidation, "failed to encode evidence payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiUrl+"/pinning/pinJSONToIPFS", bytes.NewReader(payload))
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "failed to build pinata request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("pinata_api_key", s.apiKey)
	req.Header.Set("pinata_secret_api_key", s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "pinata upload failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "failed to read pinata response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.Newf(errs.KindTransport, "pinata upload failed: status %d: %s", resp.StatusCode, body)
	}

	cid := gjson.GetBytes(body, "IpfsHash").String()
	if cid == "" {
		return "", errs.New(errs.KindTransport, "pinata response missing IpfsHash")
	}
	return cid, nil
}

// Fetch 按CID从网关取回内容
func (s *Service) Fetch(ctx context.Context, cid string) ([]byte, error) {
	if cid == "" {
		return nil, errs.New(errs.KindValidation, "cid is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.GatewayURL(cid), nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "failed to build gateway request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "ipfs fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errs.Newf(errs.KindNotFound, "cid not found: %s", cid)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Newf(errs.KindTransport, "ipfs fetch failed: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// GatewayURL CID到网关URL的确定性推导
func (s *Service) GatewayURL(cid string) string {
	return fmt.Sprintf("%s/%s", s.gateway, cid)
}
