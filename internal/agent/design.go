package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blues/wcs/internal/errs"
)

// DesignInput 设计验收输入
type DesignInput struct {
	DesignSpec      string   `json:"designSpec"`
	SubmittedImages []string `json:"submittedImages"`
	FigmaUrl        string   `json:"figmaUrl"`
}

// AnalyzeDesign 验收设计交付物是否符合设计要求
func (s *Service) AnalyzeDesign(ctx context.Context, input DesignInput) (*Result, error) {
	if input.DesignSpec == "" {
		return nil, errs.New(errs.KindValidation, "designSpec is required")
	}
	if len(input.SubmittedImages) == 0 && input.FigmaUrl == "" {
		return nil, errs.New(errs.KindValidation, "submittedImages or figmaUrl is required")
	}

	var deliverables []string
	for _, img := range input.SubmittedImages {
		deliverables = append(deliverables, "image: "+img)
	}
	if input.FigmaUrl != "" {
		deliverables = append(deliverables, "figma: "+input.FigmaUrl)
	}

	prompt := fmt.Sprintf(`You are reviewing design deliverables against a design brief.

Design brief:
%s

Submitted deliverables:
%s

Judge whether the deliverables plausibly satisfy the brief based on the listed
references. Reply with a short assessment and finish with a line
"CONFIDENCE: NN" where NN is 0-100.`,
		input.DesignSpec, strings.Join(deliverables, "\n"))

	summary, confidence, err := s.score(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Kind:            "design",
		ConfidenceScore: confidence,
		Summary:         summary,
		Details: map[string]interface{}{
			"imageCount": len(input.SubmittedImages),
			"figmaUrl":   input.FigmaUrl,
		},
	}
	s.archive(ctx, fmt.Sprintf("agent-design-%d", time.Now().Unix()), result)
	return result, nil
}
