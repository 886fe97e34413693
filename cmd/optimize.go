package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Guna1610/resume-optimizer/pkg/config"
	"github.com/Guna1610/resume-optimizer/pkg/genai"
	"github.com/Guna1610/resume-optimizer/pkg/jd"
	"github.com/Guna1610/resume-optimizer/pkg/optimizer"
)

//nolint:gochecknoglobals // Cobra boilerplate
var projectsFile string

//nolint:gochecknoglobals // Cobra boilerplate
var outputPath string

//nolint:gochecknoglobals // Cobra boilerplate
var optimizeCmd = &cobra.Command{
	Use:   "optimize <resume.docx> <jd-file-or-url>",
	Short: "Rewrite resume sections to match a job description",
	Long: `Optimize a .docx resume against a job description.

The job description can be provided as:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)

Example:
  resume-optimizer optimize resume.docx jd.txt
  resume-optimizer optimize resume.docx https://example.com/jobs/123 --projects projects.txt
  resume-optimizer optimize resume.docx jd.txt -o tailored.docx`,
	Args: cobra.ExactArgs(2),
	RunE: runOptimize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().StringVar(&projectsFile, "projects", "", "Project library file or URL to draw replacement projects from (default from config)")
	optimizeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default <resume>_optimized.docx)")
}

func runOptimize(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resumePath := args[0]
	jdInput := args[1]

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	if getVerbose() {
		fmt.Printf("Loading job description from: %s\n", jdInput)
	}

	var jobText string
	jobText, err = jd.Fetch(jdInput)
	if err != nil {
		err = errors.Wrap(err, "failed to fetch job description")
		return err
	}

	if getVerbose() {
		fmt.Printf("Job description loaded (%d characters)\n", len(jobText))
	}

	var projectLibrary string
	projectLibrary, err = loadProjectLibrary(cfg)
	if err != nil {
		return err
	}

	client := genai.NewClient(cfg.GoogleAPIKey, cfg.GetModel())

	req := optimizer.Request{
		ResumePath:     resumePath,
		JobText:        jobText,
		ProjectLibrary: projectLibrary,
		OutputPath:     resolveOutputPath(cfg, resumePath),
	}

	var result optimizer.Result
	result, err = runWithSpinner(ctx, client, req)
	if err != nil {
		return err
	}

	for _, section := range result.SkippedSections {
		color.Yellow("Warning: section %q not found in resume, skipped", section)
	}

	color.Green("Optimized resume saved to %s", result.OutputPath)
	fmt.Printf("Keyword match with job description: %.1f%%\n", result.KeywordMatch)

	return err
}

// runWithSpinner runs the optimization with a progress spinner unless in
// verbose mode, where plain log lines read better.
func runWithSpinner(ctx context.Context, client *genai.Client, req optimizer.Request) (result optimizer.Result, err error) {
	var s *spinner.Spinner
	if getVerbose() {
		fmt.Println("Optimizing resume sections with Gemini...")
	} else {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Prefix = "Optimizing resume sections "
		s.Start()
	}

	result, err = optimizer.Optimize(ctx, client, req)

	if s != nil {
		s.Stop()
	}

	if err != nil {
		err = errors.Wrap(err, "optimization failed")
		return result, err
	}

	return result, err
}

// loadProjectLibrary fetches the project library named by the --projects
// flag or the config, a file path or URL like the job description. The
// library is optional: an unreadable config default just means no extra
// projects to draw from.
func loadProjectLibrary(cfg config.Config) (library string, err error) {
	source := projectsFile
	fromFlag := source != ""
	if source == "" {
		source = cfg.ProjectLibrary
	}
	if source == "" {
		return library, err
	}

	content, fetchErr := jd.Fetch(source)
	if fetchErr != nil {
		if fromFlag {
			err = errors.Wrapf(fetchErr, "failed to load project library: %s", source)
			return library, err
		}
		if getVerbose() {
			fmt.Printf("Project library %s not readable, continuing without it\n", source)
		}
		return library, err
	}

	library = content
	return library, err
}

// resolveOutputPath picks the output file: the --output flag, or the resume
// filename with an _optimized suffix in the configured output directory.
func resolveOutputPath(cfg config.Config, resumePath string) (path string) {
	if outputPath != "" {
		path = outputPath
		return path
	}

	base := filepath.Base(resumePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + "_optimized" + ext
	path = filepath.Join(cfg.Defaults.OutputDir, name)
	return path
}
