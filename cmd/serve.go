package cmd

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Guna1610/resume-optimizer/pkg/config"
	"github.com/Guna1610/resume-optimizer/pkg/genai"
	"github.com/Guna1610/resume-optimizer/pkg/server"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the optimizer as an HTTP service",
	Long: `Run an HTTP server exposing the optimizer.

POST /api/optimize accepts a multipart form with a "resume" .docx file, a job
description as a "jd" field or "jd_file" upload, and an optional "projects"
upload, and responds with the optimized document.

Example:
  resume-optimizer serve --addr :8080`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	logger := newServerLogger()
	if getVerbose() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	client := genai.NewClient(cfg.GoogleAPIKey, cfg.GetModel())

	srv := server.New(client, logger)

	err = srv.ListenAndServe(serveAddr)
	if err != nil {
		return err
	}

	return err
}

func newServerLogger() (logger zerolog.Logger) {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger = zerolog.New(output).With().Timestamp().Str("app", "resume-optimizer").Logger()
	return logger
}
