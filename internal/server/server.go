// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness probe
//	GET  /recipes          registered recipes as JSON
//	POST /render           render the scene in the request body
//
// The request body is a scene description. Its encoding is taken from the
// "input" query parameter or the Content-Type header and defaults to TOML.
// The "format" query parameter selects the output (svg by default);
// "grid_lines", "detailed", "scale", "width", "height" and "refresh" map to
// the pipeline options of the same name.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/scenegrid/pkg/errors"
	sceneio "github.com/matzehuels/scenegrid/pkg/io"
	"github.com/matzehuels/scenegrid/pkg/observability"
	"github.com/matzehuels/scenegrid/pkg/pipeline"
)

// Response headers describing a render.
const (
	HeaderCache     = "X-Scenegrid-Cache"
	HeaderSceneHash = "X-Scenegrid-Scene"
)

// DefaultMaxBodyBytes limits the size of scene descriptions.
const DefaultMaxBodyBytes = 1 << 20

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// Server serves render requests from a pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes limits request bodies to n bytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithTimeout bounds the time spent on one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New returns a server rendering through runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  runner.Logger,
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes of s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Get("/recipes", s.handleRecipes)
	r.Post("/render", s.handleRender)
	return r
}

// observe reports every request to the HTTP hooks and the log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type recipeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Arity       string `json:"arity"`
	Trait       string `json:"trait"`
}

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	var out []recipeInfo
	for _, rc := range s.runner.Dispatcher.Registry().List() {
		out = append(out, recipeInfo{
			Name:        rc.Name,
			Description: rc.Description,
			Arity:       rc.Arity.String(),
			Trait:       rc.Trait.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("read body: %w", err))
		return
	}

	opts, err := renderOptions(r, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	format := opts.Formats[0]
	cacheStatus := "miss"
	if result.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set(HeaderCache, cacheStatus)
	w.Header().Set(HeaderSceneHash, result.SceneHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// renderOptions maps the query of r onto pipeline options.
func renderOptions(r *http.Request, body []byte) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Source:    string(body),
		Format:    inputFormat(q.Get("input"), r.Header.Get("Content-Type")),
		Formats:   []string{pipeline.FormatSVG},
		GridLines: q.Get("grid_lines") == "true",
		Detailed:  q.Get("detailed") == "true",
		Refresh:   q.Get("refresh") == "true",
	}
	if f := q.Get("format"); f != "" {
		if err := pipeline.ValidateFormat(f); err != nil {
			return opts, err
		}
		opts.Formats = []string{f}
	}
	for name, dst := range map[string]*float64{"scale": &opts.Scale, "width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("%s: %q is not a number", name, v)
		}
		*dst = f
	}
	if len(body) == 0 {
		return opts, fmt.Errorf("empty scene description")
	}
	return opts, nil
}

// inputFormat picks the scene encoding from an explicit name or a media type.
func inputFormat(explicit, contentType string) string {
	if explicit != "" {
		return explicit
	}
	switch ct := strings.ToLower(contentType); {
	case strings.Contains(ct, "yaml"):
		return string(sceneio.FormatYAML)
	case strings.Contains(ct, "json"):
		return string(sceneio.FormatJSON)
	default:
		return string(sceneio.FormatTOML)
	}
}

// statusOf maps pipeline errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeUnknownRecipe):
		return http.StatusNotFound
	case errors.CategoryOf(errors.GetCode(err)) == errors.CategoryInput:
		return http.StatusBadRequest
	case errors.IsAmbiguousTarget(err), errors.IsStructural(err):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
