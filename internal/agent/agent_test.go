package agent

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullStore struct{}

func (nullStore) UploadJSON(ctx context.Context, name string, data interface{}) (string, error) {
	return "QmArchived", nil
}

func newTestService() *Service {
	return New(config.AgentConfig{}, nullStore{})
}

func TestScoreFallbackWithoutKey(t *testing.T) {
	summary, confidence, err := newTestService().score(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 50, confidence)
	assert.Contains(t, summary, "not configured")
}

func TestConfidencePattern(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Looks good.\nCONFIDENCE: 85", 85},
		{"confidence: 7", 7},
		{"Confidence 100", 100},
		{"CONFIDENCE: 999", 100}, // 超界截断
		{"no marker at all", 50},
	}
	for _, tt := range tests {
		confidence := 50
		if m := confidencePattern.FindStringSubmatch(tt.text); m != nil {
			confidence = clampConfidence(atoiMust(t, m[1]))
		}
		assert.Equal(t, tt.want, confidence, "text %q", tt.text)
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0, clampConfidence(-5))
	assert.Equal(t, 0, clampConfidence(0))
	assert.Equal(t, 73, clampConfidence(73))
	assert.Equal(t, 100, clampConfidence(250))
}

func TestAnalyzeCodeValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeCode(ctx, CodeInput{PrUrl: "https://github.com/o/r/pull/1"})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	for _, url := range []string{
		"",
		"https://gitlab.com/o/r/pull/1",
		"https://github.com/o/r/issues/1",
		"not a url",
	} {
		_, err := svc.AnalyzeCode(ctx, CodeInput{TaskSpec: "spec", PrUrl: url})
		require.Error(t, err, "url %q", url)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	}
}

func TestPrUrlPattern(t *testing.T) {
	m := prUrlPattern.FindStringSubmatch("https://github.com/octo/demo/pull/42")
	require.NotNil(t, m)
	assert.Equal(t, "octo", m[1])
	assert.Equal(t, "demo", m[2])
	assert.Equal(t, "42", m[3])
}

func TestAnalyzeDesignValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeDesign(ctx, DesignInput{SubmittedImages: []string{"https://x/img.png"}})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.AnalyzeDesign(ctx, DesignInput{DesignSpec: "spec"})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestAnalyzeDesignFallback(t *testing.T) {
	result, err := newTestService().AnalyzeDesign(context.Background(), DesignInput{
		DesignSpec:      "a landing page mock",
		SubmittedImages: []string{"https://x/img.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "design", result.Kind)
	assert.Equal(t, 50, result.ConfidenceScore)
	assert.Equal(t, "QmArchived", result.EvidenceCid)
}

func TestAnalyzeDocumentValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.AnalyzeDocument(ctx, DocumentInput{DocumentText: "text"})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.AnalyzeDocument(ctx, DocumentInput{DocSpec: "spec"})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestAnalyzeDocumentTruncates(t *testing.T) {
	long := make([]byte, maxDocumentBytes+100)
	for i := range long {
		long[i] = 'a'
	}

	result, err := newTestService().AnalyzeDocument(context.Background(), DocumentInput{
		DocSpec:      "spec",
		DocumentText: string(long),
	})
	require.NoError(t, err)
	assert.Equal(t, "document", result.Kind)
	assert.Equal(t, 50, result.ConfidenceScore)
}

func TestServiceTimeoutConfigured(t *testing.T) {
	svc := New(config.AgentConfig{GeminiApiKey: "k"}, nullStore{})
	require.IsType(t, &http.Client{}, svc.client)
	assert.Equal(t, 90*time.Second, svc.client.Timeout)
}

func atoiMust(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
