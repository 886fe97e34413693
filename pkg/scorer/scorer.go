// Package scorer gives a rough measure of how much of a job description's
// keyword vocabulary a resume covers. It is an overlap ratio, not an ATS
// simulation; treat it as a before/after signal rather than a grade.
package scorer

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9+#.]+`)

// KeywordMatch returns the percentage of distinct job-description tokens
// that also appear in the resume text. Tokens are lowercased and shorter
// than three characters are ignored; + # . stay part of a token so terms
// like C++, C# and .NET survive.
func KeywordMatch(jobText, resumeText string) (score float64) {
	jobTokens := tokenize(jobText)
	if len(jobTokens) == 0 {
		return score
	}

	resumeTokens := tokenize(resumeText)

	matched := 0
	for token := range jobTokens {
		if _, found := resumeTokens[token]; found {
			matched++
		}
	}

	score = 100.0 * float64(matched) / float64(len(jobTokens))
	return score
}

func tokenize(text string) (tokens map[string]struct{}) {
	tokens = make(map[string]struct{})
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(token) > 2 {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}
