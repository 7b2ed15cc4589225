package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/blues/wcs/internal/errs"
	"github.com/tidwall/gjson"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

var confidencePattern = regexp.MustCompile(`(?i)confidence[:\s]+(\d{1,3})`)

// score 调用Gemini给出分析结论与0-100置信度。
// 未配置API key时退化为50分中性结论，而不是报错。
func (s *Service) score(ctx context.Context, prompt string) (string, int, error) {
	if s.geminiKey == "" {
		return "AI analysis unavailable - Gemini not configured", 50, nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", 0, err
	}

	url := fmt.Sprintf("%s?key=%s", geminiEndpoint, s.geminiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", 0, errs.Wrap(errs.KindTransport, "failed to build gemini request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, errs.Wrap(errs.KindTransport, "gemini request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, errs.Wrap(errs.KindTransport, "failed to read gemini response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, errs.Newf(errs.KindTransport, "gemini request failed: status %d: %s", resp.StatusCode, body)
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", 0, errs.New(errs.KindTransport, "gemini response contained no analysis text")
	}

	// 约定模型在结论里带一行 CONFIDENCE: NN，解析不到就取中性值
	confidence := 50
	if m := confidencePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			confidence = clampConfidence(v)
		}
	}

	return text, confidence, nil
}
