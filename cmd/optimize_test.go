package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Guna1610/resume-optimizer/pkg/config"
)

// setProjectsFlag swaps the package-level flag value for one test.
func setProjectsFlag(t *testing.T, value string) {
	t.Helper()
	old := projectsFile
	projectsFile = value
	t.Cleanup(func() { projectsFile = old })
}

func TestLoadProjectLibraryFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	libPath := filepath.Join(tmpDir, "projects.txt")
	libContent := "CLUSTER AUTOSCALER\n• Automated node scaling"

	err := os.WriteFile(libPath, []byte(libContent), 0600)
	if err != nil {
		t.Fatalf("Failed to write library file: %v", err)
	}

	setProjectsFlag(t, libPath)

	library, err := loadProjectLibrary(config.Config{})
	if err != nil {
		t.Fatalf("Failed to load project library: %v", err)
	}
	if library != libContent {
		t.Errorf("Expected library %q, got %q", libContent, library)
	}
}

func TestLoadProjectLibraryFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("DATA PIPELINE\n• Built ingestion in Go"))
	}))
	defer server.Close()

	setProjectsFlag(t, server.URL)

	library, err := loadProjectLibrary(config.Config{})
	if err != nil {
		t.Fatalf("Failed to load project library from URL: %v", err)
	}
	if !strings.Contains(library, "DATA PIPELINE") {
		t.Errorf("Expected library content from URL, got %q", library)
	}
}

func TestLoadProjectLibraryFlagError(t *testing.T) {
	setProjectsFlag(t, "/nonexistent/projects.txt")

	_, err := loadProjectLibrary(config.Config{})
	if err == nil {
		t.Fatal("Expected error for unreadable --projects path, got nil")
	}
	if !strings.Contains(err.Error(), "failed to load project library") {
		t.Errorf("Expected project-library error, got: %v", err)
	}
}

func TestLoadProjectLibraryConfigDefaultTolerated(t *testing.T) {
	setProjectsFlag(t, "")

	library, err := loadProjectLibrary(config.Config{ProjectLibrary: "/nonexistent/projects.txt"})
	if err != nil {
		t.Fatalf("Expected unreadable config default to be tolerated, got: %v", err)
	}
	if library != "" {
		t.Errorf("Expected empty library, got %q", library)
	}
}

func TestLoadProjectLibraryUnset(t *testing.T) {
	setProjectsFlag(t, "")

	library, err := loadProjectLibrary(config.Config{})
	if err != nil {
		t.Fatalf("Expected no error with no library configured, got: %v", err)
	}
	if library != "" {
		t.Errorf("Expected empty library, got %q", library)
	}
}

func TestResolveOutputPath(t *testing.T) {
	old := outputPath
	t.Cleanup(func() { outputPath = old })

	outputPath = ""
	cfg := config.Config{Defaults: config.DefaultConfig{OutputDir: "/tmp/out"}}
	if got := resolveOutputPath(cfg, "/home/user/resume.docx"); got != "/tmp/out/resume_optimized.docx" {
		t.Errorf("Expected derived output path, got %q", got)
	}

	outputPath = "custom.docx"
	if got := resolveOutputPath(cfg, "/home/user/resume.docx"); got != "custom.docx" {
		t.Errorf("Expected flag to win, got %q", got)
	}
}
