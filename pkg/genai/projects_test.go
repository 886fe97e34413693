package genai

import (
	"strings"
	"testing"
)

func TestIsProjectTitleLine(t *testing.T) {
	tests := []struct {
		line  string
		title bool
	}{
		{"MACHINE LEARNING PIPELINE", true},
		{"Fraud Detection Platform", true}, // title-cased counts too
		{"• Built a pipeline using Spark", false},
		{"- reduced costs by 20%", false},
		{"built a streaming pipeline for events", false},
		{"", false},
		{"   ", false},
		{"2024", false},
	}

	for _, tt := range tests {
		if got := IsProjectTitleLine(tt.line); got != tt.title {
			t.Errorf("IsProjectTitleLine(%q) = %v, want %v", tt.line, got, tt.title)
		}
	}
}

func TestSplitProjectBlocks(t *testing.T) {
	text := strings.Join([]string{
		"PROJECT ONE",
		"• bullet 1a",
		"",
		"",
		"• bullet 1b",
		"",
		"PROJECT TWO",
		"• bullet 2a",
		"",
	}, "\n")

	blocks := SplitProjectBlocks(text)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}

	// Consecutive blanks collapse to one; trailing blanks are trimmed.
	expected := []string{"PROJECT ONE", "• bullet 1a", "", "• bullet 1b"}
	if len(blocks[0]) != len(expected) {
		t.Fatalf("Expected first block %v, got %v", expected, blocks[0])
	}
	for i, line := range expected {
		if blocks[0][i] != line {
			t.Errorf("Block line %d: expected %q, got %q", i, line, blocks[0][i])
		}
	}

	if blocks[1][0] != "PROJECT TWO" {
		t.Errorf("Expected second block to start with its title, got %q", blocks[1][0])
	}
}

func TestSplitProjectBlocksLeadingBullets(t *testing.T) {
	text := "• stray bullet before any title\nPROJECT ONE\n• bullet 1a"

	blocks := SplitProjectBlocks(text)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0][0] != "• stray bullet before any title" {
		t.Errorf("Expected stray bullets to form their own block, got %v", blocks[0])
	}
}

func TestKeepTopProjects(t *testing.T) {
	text := strings.Join([]string{
		"PROJECT ONE", "• bullet 1a", "• bullet 1b",
		"PROJECT TWO", "• bullet 2a",
		"PROJECT THREE", "• bullet 3a",
		"PROJECT FOUR", "• bullet 4a",
	}, "\n")

	got := KeepTopProjects(text, 3)

	if strings.Contains(got, "PROJECT FOUR") {
		t.Errorf("Expected fourth project dropped, got: %q", got)
	}

	// Original order and bullet text preserved verbatim.
	one := strings.Index(got, "PROJECT ONE")
	two := strings.Index(got, "PROJECT TWO")
	three := strings.Index(got, "PROJECT THREE")
	if one < 0 || two < 0 || three < 0 || !(one < two && two < three) {
		t.Errorf("Expected first three projects in order, got: %q", got)
	}
	if !strings.Contains(got, "• bullet 1b") {
		t.Errorf("Expected bullets preserved verbatim, got: %q", got)
	}
}

func TestKeepTopProjectsFewerThanLimit(t *testing.T) {
	text := "PROJECT ONE\n• bullet 1a"

	got := KeepTopProjects(text, 3)
	if got != text {
		t.Errorf("Expected short input unchanged, got: %q", got)
	}
}
