package jd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFetchFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "jd.txt")
	testContent := "Looking for a Go engineer with Kubernetes experience."

	err := os.WriteFile(testFile, []byte(testContent), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	content, err := fetchFromFile(testFile)
	if err != nil {
		t.Fatalf("Failed to fetch from file: %v", err)
	}

	if content != testContent {
		t.Errorf("Expected content '%s', got '%s'", testContent, content)
	}
}

func TestFetchFromFileNonexistent(t *testing.T) {
	_, err := fetchFromFile("/nonexistent/jd.txt")
	if err == nil {
		t.Error("Expected error fetching nonexistent file, got nil")
	}
}

func TestFetchFromFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	emptyFile := filepath.Join(tmpDir, "empty.txt")

	err := os.WriteFile(emptyFile, []byte(""), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err = fetchFromFile(emptyFile)
	if err == nil {
		t.Fatal("Expected error fetching empty file, got nil")
	}
	if !strings.Contains(err.Error(), "file is empty") {
		t.Errorf("Expected 'file is empty' error, got: %v", err)
	}
}

func TestFetchFromURL(t *testing.T) {
	testContent := "<html><body><h1>Staff Engineer</h1><p>Build data pipelines in Go.</p></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "resume-optimizer/1.0" {
			t.Errorf("Expected User-Agent 'resume-optimizer/1.0', got '%s'", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testContent))
	}))
	defer server.Close()

	ctx := context.Background()
	content, err := fetchFromURL(ctx, server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}

	if !strings.Contains(content, "Build data pipelines in Go.") {
		t.Errorf("Expected page text in content, got '%s'", content)
	}

	// Should have stripped HTML tags.
	if strings.Contains(content, "<h1>") {
		t.Error("Expected HTML to be stripped")
	}
}

func TestFetchFromURL404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ctx := context.Background()
	_, err := fetchFromURL(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error for 404 response, got nil")
	}
	if !strings.Contains(err.Error(), "status: 404") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}

func TestFetchFromURLTimeout(t *testing.T) {
	// Create a server that takes too long.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		_, _ = w.Write([]byte("too slow"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := fetchFromURL(ctx, server.URL)
	if err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestFetchWithContext(t *testing.T) {
	// A plain file path goes to disk.
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "jd.txt")
	testContent := "Senior engineer, Python and SQL"

	err := os.WriteFile(testFile, []byte(testContent), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	ctx := context.Background()
	content, err := FetchWithContext(ctx, testFile)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}

	if content != testContent {
		t.Errorf("Expected '%s', got '%s'", testContent, content)
	}
}

func TestFetchWithContextURL(t *testing.T) {
	// An http(s) input goes over the network.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Remote posting</body></html>"))
	}))
	defer server.Close()

	ctx := context.Background()
	content, err := FetchWithContext(ctx, server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch from URL: %v", err)
	}

	if content != "Remote posting" {
		t.Errorf("Expected 'Remote posting', got '%s'", content)
	}
}

func TestFetchJobDescription(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "jd.txt")

	err := os.WriteFile(testFile, []byte("We need Go and Kafka skills"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	content, err := Fetch(testFile)
	if err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}

	if content != "We need Go and Kafka skills" {
		t.Errorf("Unexpected content: '%s'", content)
	}
}

func TestFetchProjectLibrary(t *testing.T) {
	// The fetcher also serves the project library, which keeps its line
	// structure intact for the title/bullet splitter downstream.
	library := "CLUSTER AUTOSCALER\n• Automated node scaling\n\nDATA PIPELINE\n• Built ingestion in Go"

	tmpDir := t.TempDir()
	libFile := filepath.Join(tmpDir, "projects.txt")
	err := os.WriteFile(libFile, []byte(library), 0600)
	if err != nil {
		t.Fatalf("Failed to create library file: %v", err)
	}

	content, err := Fetch(libFile)
	if err != nil {
		t.Fatalf("Failed to fetch project library: %v", err)
	}
	if content != library {
		t.Errorf("Expected library preserved verbatim, got '%s'", content)
	}

	// And from a URL, the way the --projects flag allows.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(library))
	}))
	defer server.Close()

	content, err = Fetch(server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch project library from URL: %v", err)
	}
	if !strings.Contains(content, "CLUSTER AUTOSCALER") || !strings.Contains(content, "• Built ingestion in Go") {
		t.Errorf("Expected library titles and bullets from URL, got '%s'", content)
	}
}

func TestStripBasicHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple tags",
			input:    "<p>Hiring <strong>Go engineers</strong></p>",
			expected: "Hiring Go engineers",
		},
		{
			name:     "script tags dropped with content",
			input:    "<p>Role</p><script>trackViews()</script><p>Details</p>",
			expected: "RoleDetails",
		},
		{
			name:     "style tags dropped with content",
			input:    "<style>.posting{color:red}</style><p>Requirements</p>",
			expected: "Requirements",
		},
		{
			name:     "no HTML",
			input:    "Plain job description",
			expected: "Plain job description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := stripBasicHTML(tt.input)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}
