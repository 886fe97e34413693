package optimizer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Guna1610/resume-optimizer/pkg/docx"
	"github.com/Guna1610/resume-optimizer/pkg/genai"
)

func paragraphXML(text string) (xml string) {
	xml = "<w:p><w:r><w:t>" + text + "</w:t></w:r></w:p>"
	return xml
}

func bulletXML(text string) (xml string) {
	xml = `<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="2"/></w:numPr></w:pPr>` +
		"<w:r><w:t>" + text + "</w:t></w:r></w:p>"
	return xml
}

// writeResume builds a small resume .docx on disk and returns its path.
func writeResume(t *testing.T, dir string, sections ...string) (path string) {
	t.Helper()

	docXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + strings.Join(sections, "") + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create archive entry: %v", err)
	}
	_, err = w.Write([]byte(docXML))
	if err != nil {
		t.Fatalf("Failed to write archive entry: %v", err)
	}
	err = zw.Close()
	if err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}

	path = filepath.Join(dir, "resume.docx")
	err = os.WriteFile(path, buf.Bytes(), 0600)
	if err != nil {
		t.Fatalf("Failed to write resume file: %v", err)
	}
	return path
}

// mockGemini serves a fixed sections payload in the Gemini response shape.
func mockGemini(t *testing.T, fields map[string]string) (server *httptest.Server) {
	t.Helper()

	payload, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	envelope := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": string(payload)},
					},
				},
			},
		},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("Failed to marshal envelope: %v", err)
	}

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	return server
}

func TestOptimize(t *testing.T) {
	tmpDir := t.TempDir()
	resumePath := writeResume(t, tmpDir,
		paragraphXML("SUMMARY"),
		paragraphXML("Old summary."),
		paragraphXML("SKILLS"),
		bulletXML("Old: skills"),
		paragraphXML("PROJECT EXPERIENCE"),
		paragraphXML("OLD PROJECT"),
		bulletXML("Did old things"),
		paragraphXML("EDUCATION"),
		paragraphXML("BS in CS"),
	)

	server := mockGemini(t, map[string]string{
		"summary":  "Kubernetes engineer with Python expertise.",
		"skills":   "• Languages: Python, Go. ",
		"projects": "CLUSTER AUTOSCALER\n• Automated Kubernetes scaling with Python",
	})
	defer server.Close()

	client := genai.NewClient("test-key", "")
	client.SetEndpoint(server.URL)

	req := Request{
		ResumePath: resumePath,
		JobText:    "Looking for Kubernetes and Python experience",
		OutputPath: filepath.Join(tmpDir, "out.docx"),
	}

	result, err := Optimize(context.Background(), client, req)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if result.OutputPath != req.OutputPath {
		t.Errorf("Expected output path %s, got %s", req.OutputPath, result.OutputPath)
	}
	if len(result.SkippedSections) != 0 {
		t.Errorf("Expected no skipped sections, got %v", result.SkippedSections)
	}
	if result.KeywordMatch <= 0 {
		t.Errorf("Expected positive keyword match, got %f", result.KeywordMatch)
	}

	out, err := docx.Load(req.OutputPath)
	if err != nil {
		t.Fatalf("Failed to load optimized document: %v", err)
	}
	text := out.Text()

	for _, want := range []string{
		"Kubernetes engineer with Python expertise.",
		"Languages: Python, Go.",
		"CLUSTER AUTOSCALER",
		"Automated Kubernetes scaling with Python",
		"EDUCATION", // untouched section survives
		"BS in CS",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected optimized document to contain %q, text: %q", want, text)
		}
	}

	if strings.Contains(text, "Old summary.") {
		t.Error("Expected old summary to be replaced")
	}
}

func TestOptimizeMissingResume(t *testing.T) {
	client := genai.NewClient("test-key", "")

	_, err := Optimize(context.Background(), client, Request{
		ResumePath: "/nonexistent/resume.docx",
		JobText:    "jd",
		OutputPath: filepath.Join(t.TempDir(), "out.docx"),
	})
	if err == nil {
		t.Fatal("Expected error for missing resume, got nil")
	}
	if !strings.Contains(err.Error(), "resume file not found") {
		t.Errorf("Expected resume-not-found error, got: %v", err)
	}
}

func TestOptimizeSkipsAbsentSections(t *testing.T) {
	tmpDir := t.TempDir()
	resumePath := writeResume(t, tmpDir,
		paragraphXML("SUMMARY"),
		paragraphXML("Old summary."),
		paragraphXML("PROJECT EXPERIENCE"),
		bulletXML("Did old things"),
	)

	server := mockGemini(t, map[string]string{
		"summary":  "New summary.",
		"skills":   "• Languages: Go. ",
		"projects": "NEW PROJECT\n• Did new things",
	})
	defer server.Close()

	client := genai.NewClient("test-key", "")
	client.SetEndpoint(server.URL)

	result, err := Optimize(context.Background(), client, Request{
		ResumePath: resumePath,
		JobText:    "jd text",
		OutputPath: filepath.Join(tmpDir, "out.docx"),
	})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if len(result.SkippedSections) != 1 || result.SkippedSections[0] != "SKILLS" {
		t.Errorf("Expected SKILLS to be reported skipped, got %v", result.SkippedSections)
	}
}

func TestOptimizeGenerationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	resumePath := writeResume(t, tmpDir, paragraphXML("SUMMARY"), paragraphXML("text"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := genai.NewClient("test-key", "")
	client.SetEndpoint(server.URL)

	_, err := Optimize(context.Background(), client, Request{
		ResumePath: resumePath,
		JobText:    "jd",
		OutputPath: filepath.Join(tmpDir, "out.docx"),
	})
	if err == nil {
		t.Fatal("Expected error when generation fails, got nil")
	}

	// The document must not be written on failure.
	_, statErr := os.Stat(filepath.Join(tmpDir, "out.docx"))
	if !os.IsNotExist(statErr) {
		t.Error("Expected no output file after generation failure")
	}
}
