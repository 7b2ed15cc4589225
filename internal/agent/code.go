package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/blues/wcs/internal/errs"
	"github.com/tidwall/gjson"
)

var prUrlPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// CodeInput 代码验收输入
type CodeInput struct {
	TaskSpec string `json:"taskSpec"`
	PrUrl    string `json:"prUrl"`
}

// AnalyzeCode 验收一个GitHub PR是否完成了约定任务
func (s *Service) AnalyzeCode(ctx context.Context, input CodeInput) (*Result, error) {
	if input.TaskSpec == "" {
		return nil, errs.New(errs.KindValidation, "taskSpec is required")
	}
	m := prUrlPattern.FindStringSubmatch(input.PrUrl)
	if m == nil {
		return nil, errs.Newf(errs.KindValidation, "invalid GitHub pull request url: %q", input.PrUrl)
	}
	owner, repo, number := m[1], m[2], m[3]

	prInfo, err := s.fetchGithub(ctx, fmt.Sprintf("https://api.github.com/repos/%s/%s/pulls/%s", owner, repo, number))
	if err != nil {
		return nil, err
	}
	filesInfo, err := s.fetchGithub(ctx, fmt.Sprintf("https://api.github.com/repos/%s/%s/pulls/%s/files", owner, repo, number))
	if err != nil {
		return nil, err
	}

	var files []string
	gjson.ParseBytes(filesInfo).ForEach(func(_, f gjson.Result) bool {
		patch := f.Get("patch").String()
		if len(patch) > 500 {
			patch = patch[:500] + "\n...(truncated)"
		}
		files = append(files, fmt.Sprintf("%s (%s, +%d -%d)\n%s",
			f.Get("filename").String(), f.Get("status").String(),
			f.Get("additions").Int(), f.Get("deletions").Int(), patch))
		return len(files) < 20
	})

	prompt := fmt.Sprintf(`You are reviewing a GitHub pull request against a task specification.

Task specification:
%s

Pull request: %s
Title: %s
State: %s, merged: %v
Description:
%s

Changed files:
%s

Judge whether the pull request fulfils the task specification. Reply with a short
assessment and finish with a line "CONFIDENCE: NN" where NN is 0-100.`,
		input.TaskSpec, input.PrUrl,
		gjson.GetBytes(prInfo, "title").String(),
		gjson.GetBytes(prInfo, "state").String(),
		gjson.GetBytes(prInfo, "merged").Bool(),
		gjson.GetBytes(prInfo, "body").String(),
		strings.Join(files, "\n---\n"))

	summary, confidence, err := s.score(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Kind:            "code",
		ConfidenceScore: confidence,
		Summary:         summary,
		Details: map[string]interface{}{
			"prUrl":        input.PrUrl,
			"prTitle":      gjson.GetBytes(prInfo, "title").String(),
			"prState":      gjson.GetBytes(prInfo, "state").String(),
			"merged":       gjson.GetBytes(prInfo, "merged").Bool(),
			"changedFiles": gjson.GetBytes(filesInfo, "#").Int(),
		},
	}
	s.archive(ctx, fmt.Sprintf("agent-code-%d", time.Now().Unix()), result)
	return result, nil
}

// fetchGithub 读取GitHub REST API，token可选
func (s *Service) fetchGithub(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "failed to build github request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.githubToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.githubToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "github request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "failed to read github response", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errs.Newf(errs.KindNotFound, "github resource not found: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Newf(errs.KindTransport, "github request failed: status %d", resp.StatusCode)
	}
	return body, nil
}
