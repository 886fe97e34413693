package rewrite

import (
	"strings"
	"unicode"

	"github.com/Guna1610/resume-optimizer/pkg/docx"
)

// Section names handled by ReplaceSection.
const (
	SectionSummary  = "SUMMARY"
	SectionSkills   = "SKILLS"
	SectionProjects = "PROJECT EXPERIENCE"
)

const fontFamily = "Times New Roman"

// Formatting knobs, in points. Fallback indents apply to SKILLS bullets when
// no bullet template exists anywhere in the document.
const (
	skillsLeftIndentPt    = 12
	skillsHangingIndentPt = 6

	headingSpaceAfterPt       = 12
	projectTitleSpaceBeforePt = 6
	projectTitleSpaceAfterPt  = 4
	projectBulletSpaceAfterPt = 2
	projectBlockSpaceAfterPt  = 12
)

// titleUpperRatio is the uppercase-ratio threshold above which a line is
// treated as a project title. A short all-caps bullet can misclassify; that
// is an accepted limitation of the heuristic, not a tunable.
const titleUpperRatio = 0.65

var titlePrefixes = []string{"•", "-", "–", "*"}

var bulletPrefixes = []string{"•", "●", "◦", "▪", "‣", "·", "-", "–", "—", "*"}

// LooksLikeTitle reports whether a line reads as a project title: at least
// four characters, mostly-uppercase letters, and no leading bullet glyph.
func LooksLikeTitle(line string) (title bool) {
	t := strings.TrimSpace(line)
	if len([]rune(t)) < 4 {
		return title
	}

	letters := 0
	upper := 0
	for _, r := range t {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return title
	}
	if float64(upper)/float64(letters) <= titleUpperRatio {
		return title
	}

	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(t, prefix) {
			return title
		}
	}

	title = true
	return title
}

// CleanLeadingBullet strips one leading bullet glyph, dash or asterisk plus
// any following whitespace, so text inserted into a paragraph that already
// carries Word numbering does not render a double bullet.
func CleanLeadingBullet(text string) (cleaned string) {
	cleaned = strings.TrimLeft(text, " \t")
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimLeft(cleaned[len(prefix):], " \t")
			break
		}
	}
	return cleaned
}

func startsWithBulletGlyph(line string) (bulleted bool) {
	t := strings.TrimSpace(line)
	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(t, prefix) {
			bulleted = true
			return bulleted
		}
	}
	return bulleted
}

// sectionTemplates holds the style donors captured from the existing section
// body. Capture must happen before deletion: removing paragraphs invalidates
// both indices and the span the templates come from.
type sectionTemplates struct {
	title        *docx.Paragraph
	bullet       *docx.Paragraph
	skillsBullet *docx.Paragraph
	skillsText   *docx.Paragraph
	text         *docx.Paragraph
}

func captureTemplates(paragraphs []*docx.Paragraph, heading *docx.Paragraph, start, end int, section string) (templates sectionTemplates) {
	switch section {
	case SectionSkills:
		for k := start + 1; k < end; k++ {
			p := paragraphs[k]
			if strings.TrimSpace(p.Text()) == "" {
				continue
			}
			if p.HasNumbering() && templates.skillsBullet == nil {
				templates.skillsBullet = p
			}
			if templates.skillsText == nil {
				templates.skillsText = p
			}
			if templates.skillsBullet != nil && templates.skillsText != nil {
				break
			}
		}
		if templates.skillsText == nil {
			templates.skillsText = heading
		}

	case SectionProjects:
		for k := start + 1; k < end; k++ {
			p := paragraphs[k]
			if strings.TrimSpace(p.Text()) == "" {
				continue
			}
			if p.HasNumbering() && templates.bullet == nil {
				templates.bullet = p
			}
			if !p.HasNumbering() && templates.title == nil {
				templates.title = p
			}
			if templates.title != nil && templates.bullet != nil {
				break
			}
		}
		if templates.title == nil {
			templates.title = heading
		}
		if templates.bullet == nil {
			templates.bullet = templates.title
		}

	default:
		if start+1 < end {
			templates.text = paragraphs[start+1]
		} else {
			templates.text = heading
		}
	}

	return templates
}

// ReplaceSection replaces the body of a named section with new multi-line
// content, keeping the heading paragraph and donating styles from the old
// body to the new paragraphs. It reports false, without touching the
// document, when the section heading is absent.
func ReplaceSection(doc *docx.Document, sectionName, newContent string) (replaced bool) {
	start, end, found := FindSectionBounds(doc, sectionName)
	if !found {
		return replaced
	}
	replaced = true

	paragraphs := doc.Paragraphs()
	heading := paragraphs[start]
	section := normalizeHeading(sectionName)

	templates := captureTemplates(paragraphs, heading, start, end, section)

	// Delete old content in reverse so earlier indices stay valid. The
	// heading itself is never deleted.
	for idx := end - 1; idx > start; idx-- {
		doc.RemoveParagraph(paragraphs[idx])
	}

	if section == SectionProjects {
		heading.SetSpaceAfter(docx.Pt(headingSpaceAfterPt))
	}

	var lines []string
	for _, line := range strings.Split(newContent, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " \t\r"))
		}
	}

	switch section {
	case SectionProjects:
		insertProjects(doc, heading, templates, lines)
	case SectionSkills:
		insertSkills(doc, heading, templates, lines)
	default:
		insertSummary(doc, heading, templates, lines)
	}

	return replaced
}

// insertProjects writes alternating title and bullet paragraphs. The last
// bullet of each project block gets block-separator spacing so consecutive
// projects stay visually separated without blank paragraphs.
func insertProjects(doc *docx.Document, heading *docx.Paragraph, templates sectionTemplates, lines []string) {
	anchor := heading
	inBlock := false
	firstProject := true
	var lastBullet *docx.Paragraph

	for i, line := range lines {
		p := doc.InsertParagraphAfter(anchor)

		if LooksLikeTitle(line) {
			// Close the previous block on its last bullet.
			if inBlock && lastBullet != nil {
				lastBullet.SetSpaceAfter(docx.Pt(projectBlockSpaceAfterPt))
				inBlock = false
				lastBullet = nil
			}

			p.CopyFormatFrom(templates.title)
			run := p.AddRun(strings.TrimSpace(line))
			run.SetBold(true)
			p.ForceFont(fontFamily, docx.HalfPoints(12))

			if firstProject {
				p.SetSpaceBefore(0)
			} else {
				p.SetSpaceBefore(docx.Pt(projectTitleSpaceBeforePt))
			}
			p.SetSpaceAfter(docx.Pt(projectTitleSpaceAfterPt))
			firstProject = false
		} else {
			p.CopyFormatFrom(templates.bullet)
			p.CopyNumberingFrom(templates.bullet)
			p.AddRun(CleanLeadingBullet(line))
			p.ForceFont(fontFamily, docx.HalfPoints(12))
			p.SetSpaceAfter(docx.Pt(projectBulletSpaceAfterPt))
			inBlock = true
			lastBullet = p
		}

		if i == len(lines)-1 && inBlock && lastBullet != nil {
			lastBullet.SetSpaceAfter(docx.Pt(projectBlockSpaceAfterPt))
		}

		anchor = p
	}
}

// insertSkills writes every line as a bullet, bolding the category prefix
// before the first colon. Numbering comes from the section's own bullet
// template, any bullet elsewhere in the document, or fixed fallback indents.
func insertSkills(doc *docx.Document, heading *docx.Paragraph, templates sectionTemplates, lines []string) {
	textTemplate := templates.skillsText
	if textTemplate == nil {
		textTemplate = heading
	}
	bulletTemplate := templates.skillsBullet
	if bulletTemplate == nil {
		bulletTemplate = textTemplate
	}

	anchor := heading
	for _, line := range lines {
		p := doc.InsertParagraphAfter(anchor)
		p.CopyFormatFrom(textTemplate)

		if bulletTemplate.HasNumbering() {
			p.CopyNumberingFrom(bulletTemplate)
			p.CopyFormatFrom(bulletTemplate)
		} else {
			borrowed := false
			for _, candidate := range doc.Paragraphs() {
				if candidate.HasNumbering() {
					p.CopyNumberingFrom(candidate)
					p.CopyFormatFrom(candidate)
					borrowed = true
					break
				}
			}
			if !borrowed {
				p.SetIndent(docx.Pt(skillsLeftIndentPt), docx.Pt(skillsHangingIndentPt))
			}
		}

		text := CleanLeadingBullet(line)
		if colon := strings.Index(text, ":"); colon >= 0 {
			category := strings.TrimSpace(text[:colon])
			rest := strings.TrimSpace(text[colon+1:])
			run := p.AddRun(category + ": ")
			run.SetBold(true)
			p.AddRun(rest)
		} else {
			p.AddRun(strings.TrimSpace(text))
		}

		// Force the family only; Skills keeps the size the style provides.
		p.ForceFont(fontFamily, 0)

		anchor = p
	}
}

// insertSummary writes plain paragraphs cloned from the first body paragraph
// of the old section, carrying numbering only when the template had it or
// the line itself arrives bullet-prefixed.
func insertSummary(doc *docx.Document, heading *docx.Paragraph, templates sectionTemplates, lines []string) {
	anchor := heading
	for _, line := range lines {
		p := doc.InsertParagraphAfter(anchor)
		p.CopyFormatFrom(templates.text)
		if templates.text.HasNumbering() || startsWithBulletGlyph(line) {
			p.CopyNumberingFrom(templates.text)
		}
		p.AddRun(CleanLeadingBullet(line))
		p.ForceFont(fontFamily, 0)
		anchor = p
	}
}
