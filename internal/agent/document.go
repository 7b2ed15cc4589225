package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/wcs/internal/errs"
)

// 文档正文送审的截断上限
const maxDocumentBytes = 20 * 1024

// DocumentInput 文档验收输入
type DocumentInput struct {
	DocSpec      string `json:"docSpec"`
	DocumentUrl  string `json:"documentUrl"`
	DocumentText string `json:"documentText"`
}

// AnalyzeDocument 验收文档交付物是否符合写作要求
func (s *Service) AnalyzeDocument(ctx context.Context, input DocumentInput) (*Result, error) {
	if input.DocSpec == "" {
		return nil, errs.New(errs.KindValidation, "docSpec is required")
	}

	text := input.DocumentText
	if text == "" && input.DocumentUrl != "" {
		fetched, err := s.fetchDocument(ctx, input.DocumentUrl)
		if err != nil {
			return nil, err
		}
		text = fetched
	}
	if text == "" {
		return nil, errs.New(errs.KindValidation, "documentText or documentUrl is required")
	}
	if len(text) > maxDocumentBytes {
		text = text[:maxDocumentBytes] + "\n...(truncated)"
	}

	prompt := fmt.Sprintf(`You are reviewing a document against a writing brief.

Writing brief:
%s

Document:
%s

Judge whether the document satisfies the brief. Reply with a short assessment
and finish with a line "CONFIDENCE: NN" where NN is 0-100.`,
		input.DocSpec, text)

	summary, confidence, err := s.score(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Kind:            "document",
		ConfidenceScore: confidence,
		Summary:         summary,
		Details: map[string]interface{}{
			"documentUrl":   input.DocumentUrl,
			"documentBytes": len(text),
		},
	}
	s.archive(ctx, fmt.Sprintf("agent-document-%d", time.Now().Unix()), result)
	return result, nil
}

func (s *Service) fetchDocument(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "failed to build document request", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "failed to fetch document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", errs.Newf(errs.KindNotFound, "document not found: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.Newf(errs.KindTransport, "document fetch failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "failed to read document body", err)
	}
	return string(body), nil
}
