// Package optimizer orchestrates the end-to-end resume optimization flow:
// load the resume, request rewritten sections from the generative service,
// splice them into the document, save, and score keyword coverage.
package optimizer

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/Guna1610/resume-optimizer/pkg/docx"
	"github.com/Guna1610/resume-optimizer/pkg/genai"
	"github.com/Guna1610/resume-optimizer/pkg/rewrite"
	"github.com/Guna1610/resume-optimizer/pkg/scorer"
)

// Request holds the inputs for a single optimization run.
type Request struct {
	ResumePath     string
	JobText        string
	ProjectLibrary string
	OutputPath     string
}

// Result reports what an optimization run produced.
type Result struct {
	OutputPath      string
	SkippedSections []string
	KeywordMatch    float64
}

// sectionOrder is the order sections are rewritten in. Later sections see the
// document as modified by earlier ones, so SUMMARY goes first while its
// original template paragraphs still exist.
var sectionOrder = []string{ //nolint:gochecknoglobals // fixed rewrite ordering
	rewrite.SectionSummary,
	rewrite.SectionSkills,
	rewrite.SectionProjects,
}

// Optimize runs the full pipeline and writes the tailored resume to
// req.OutputPath. Sections whose headings are absent from the resume are
// skipped and reported in the result rather than treated as failures.
func Optimize(ctx context.Context, client *genai.Client, req Request) (result Result, err error) {
	_, err = os.Stat(req.ResumePath)
	if err != nil {
		err = errors.Wrapf(err, "resume file not found: %s", req.ResumePath)
		return result, err
	}

	doc, err := docx.Load(req.ResumePath)
	if err != nil {
		err = errors.Wrap(err, "failed to load resume")
		return result, err
	}

	resumeText := doc.Text()

	sections, err := client.OptimizeSections(ctx, resumeText, req.JobText, req.ProjectLibrary)
	if err != nil {
		err = errors.Wrap(err, "failed to generate optimized sections")
		return result, err
	}

	content := map[string]string{
		rewrite.SectionSummary:  sections.Summary,
		rewrite.SectionSkills:   sections.Skills,
		rewrite.SectionProjects: sections.Projects,
	}

	for _, name := range sectionOrder {
		if !rewrite.ReplaceSection(doc, name, content[name]) {
			result.SkippedSections = append(result.SkippedSections, name)
		}
	}

	err = doc.Save(req.OutputPath)
	if err != nil {
		err = errors.Wrapf(err, "failed to save optimized resume: %s", req.OutputPath)
		return result, err
	}

	result.OutputPath = req.OutputPath
	result.KeywordMatch = scorer.KeywordMatch(req.JobText, doc.Text())

	return result, err
}
