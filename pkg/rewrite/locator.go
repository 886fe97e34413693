// Package rewrite locates named sections in a resume document and replaces
// their bodies with newly generated text while preserving the original
// paragraph styles, bullet numbering, fonts and spacing.
package rewrite

import (
	"strings"

	"github.com/Guna1610/resume-optimizer/pkg/docx"
)

// knownHeadings is the fixed set of section headings recognized in the
// resume layout, compared after whitespace collapsing and uppercasing.
var knownHeadings = map[string]struct{}{
	"SUMMARY":                          {},
	"SKILLS":                           {},
	"PROJECT EXPERIENCE":               {},
	"WORK EXPERIENCE":                  {},
	"POTENTIAL PUBLICATIONS":           {},
	"EDUCATION":                        {},
	"ACHIEVEMENTS":                     {},
	"EXTRA & CO-CURRICULAR ACTIVITIES": {},
}

// normalizeHeading collapses interior whitespace and uppercases for
// comparison against the known-headings set.
func normalizeHeading(text string) (normalized string) {
	normalized = strings.ToUpper(strings.Join(strings.Fields(text), " "))
	return normalized
}

// isSectionHeading reports whether a paragraph terminates a section: either
// it uses a Word heading style, or its normalized text is a known heading.
func isSectionHeading(doc *docx.Document, p *docx.Paragraph) (heading bool) {
	styleName := strings.ToLower(doc.StyleName(p))
	if strings.HasPrefix(styleName, "heading") {
		heading = true
		return heading
	}

	_, heading = knownHeadings[normalizeHeading(p.Text())]
	return heading
}

// FindSectionBounds locates the paragraph span of a named section. start is
// the index of the heading paragraph; end is the index of the next heading
// paragraph, or the paragraph count when the section runs to the end of the
// document. found is false when the heading does not appear, which callers
// treat as "section absent" rather than an error.
func FindSectionBounds(doc *docx.Document, sectionName string) (start, end int, found bool) {
	paragraphs := doc.Paragraphs()
	target := normalizeHeading(sectionName)

	start = -1
	for i, p := range paragraphs {
		if normalizeHeading(p.Text()) == target {
			start = i
			break
		}
	}
	if start < 0 {
		return start, end, found
	}

	found = true
	end = len(paragraphs)
	for j := start + 1; j < len(paragraphs); j++ {
		if isSectionHeading(doc, paragraphs[j]) {
			end = j
			break
		}
	}

	return start, end, found
}
