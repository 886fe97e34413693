// Package server exposes the optimizer over HTTP so the tool can run as a
// small service instead of a one-shot CLI.
package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Guna1610/resume-optimizer/pkg/genai"
	"github.com/Guna1610/resume-optimizer/pkg/optimizer"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// maxUploadBytes bounds the multipart form size for /api/optimize.
const maxUploadBytes = 32 << 20

// Server handles resume optimization requests over HTTP.
type Server struct {
	client *genai.Client
	logger zerolog.Logger
	router *mux.Router
}

// New creates a server around the given generation client.
func New(client *genai.Client, logger zerolog.Logger) (s *Server) {
	s = &Server{
		client: client,
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/optimize", s.handleOptimize).Methods("POST")
	r.Use(s.logRequests)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server on addr and blocks until it exits.
func (s *Server) ListenAndServe(addr string) (err error) {
	s.logger.Info().Str("addr", addr).Msg("listening")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	err = httpServer.ListenAndServe()
	if err != nil {
		err = errors.Wrapf(err, "server failed on %s", addr)
		return err
	}

	return err
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleOptimize accepts a multipart form with a "resume" .docx file, a job
// description as either a "jd" text field or a "jd_file" upload, and an
// optional "projects" upload, and responds with the optimized document.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxUploadBytes)
	if err != nil {
		s.clientError(w, http.StatusBadRequest, "failed to parse multipart form: %v", err)
		return
	}

	tmpDir, err := os.MkdirTemp("", "resume-optimizer-*")
	if err != nil {
		s.serverError(w, errors.Wrap(err, "failed to create temp dir"))
		return
	}
	defer os.RemoveAll(tmpDir)

	resumePath, err := s.saveUpload(r, "resume", filepath.Join(tmpDir, "resume.docx"))
	if err != nil {
		s.clientError(w, http.StatusBadRequest, "missing or unreadable \"resume\" file: %v", err)
		return
	}

	jobText, err := s.jobDescription(r)
	if err != nil {
		s.clientError(w, http.StatusBadRequest, "%v", err)
		return
	}

	projectLibrary, err := s.projectLibrary(r)
	if err != nil {
		s.clientError(w, http.StatusBadRequest, "unreadable \"projects\" file: %v", err)
		return
	}

	req := optimizer.Request{
		ResumePath:     resumePath,
		JobText:        jobText,
		ProjectLibrary: projectLibrary,
		OutputPath:     filepath.Join(tmpDir, "optimized.docx"),
	}

	result, err := optimizer.Optimize(r.Context(), s.client, req)
	if err != nil {
		s.serverError(w, errors.Wrap(err, "optimization failed"))
		return
	}

	output, err := os.ReadFile(result.OutputPath)
	if err != nil {
		s.serverError(w, errors.Wrap(err, "failed to read optimized document"))
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="optimized.docx"`)
	w.Header().Set("X-Keyword-Match", fmt.Sprintf("%.1f", result.KeywordMatch))
	if len(result.SkippedSections) > 0 {
		w.Header().Set("X-Skipped-Sections", strings.Join(result.SkippedSections, ", "))
	}
	_, _ = w.Write(output)
}

// saveUpload writes the named form file to dst and returns dst.
func (s *Server) saveUpload(r *http.Request, field, dst string) (path string, err error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		err = errors.Wrapf(err, "form file %q", field)
		return path, err
	}
	defer file.Close()

	out, err := os.Create(dst)
	if err != nil {
		err = errors.Wrapf(err, "failed to create %s", dst)
		return path, err
	}
	defer out.Close()

	_, err = io.Copy(out, file)
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s", dst)
		return path, err
	}

	path = dst
	return path, err
}

// jobDescription pulls the JD from the "jd" text field, falling back to a
// "jd_file" upload.
func (s *Server) jobDescription(r *http.Request) (jobText string, err error) {
	jobText = strings.TrimSpace(r.FormValue("jd"))
	if jobText != "" {
		return jobText, err
	}

	file, _, ferr := r.FormFile("jd_file")
	if ferr != nil {
		err = errors.New("job description required: provide a \"jd\" field or \"jd_file\" upload")
		return jobText, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		err = errors.Wrap(err, "failed to read jd_file")
		return jobText, err
	}

	jobText = strings.TrimSpace(string(data))
	if jobText == "" {
		err = errors.New("jd_file is empty")
		return jobText, err
	}

	return jobText, err
}

// projectLibrary reads the optional "projects" upload or form field.
func (s *Server) projectLibrary(r *http.Request) (library string, err error) {
	file, _, ferr := r.FormFile("projects")
	if ferr != nil {
		library = r.FormValue("projects")
		return library, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		err = errors.Wrap(err, "failed to read projects upload")
		return library, err
	}

	library = string(data)
	return library, err
}

func (s *Server) clientError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Warn().Msg(msg)
	http.Error(w, msg, status)
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error().Err(err).Msg("internal error")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
