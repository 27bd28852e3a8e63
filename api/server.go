// Package api provides HTTP API capabilities for the stmtsense extractor.
// This is a capability module that can be enabled via the CLI or used programmatically.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/aqlanhadi/stmtsense/extractor"
	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/aqlanhadi/stmtsense/extractor/source"
	"github.com/aqlanhadi/stmtsense/summarize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Config holds the API server configuration
type Config struct {
	Port            string        `mapstructure:"port"`
	DefaultTextOnly bool          `mapstructure:"default_text_only"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	AllowedTypes    []string      `mapstructure:"allowed_types"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	// RateLimit is requests per second across all clients; zero disables it.
	RateLimit         float64 `mapstructure:"rate_limit"`
	RateBurst         int     `mapstructure:"rate_burst"`
	SummaryMaxTokens  int     `mapstructure:"summary_max_tokens"`
	InsightsMaxTokens int     `mapstructure:"insights_max_tokens"`

	Logger log.FieldLogger `mapstructure:"-"`
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:           ":8080",
		MaxUploadBytes: 5 << 20,
		AllowedTypes: []string{
			source.MIMEPDF,
			source.MIMECSV,
			source.MIMEExcelCSV,
			source.MIMEXLSX,
		},
		AllowedOrigins:    []string{"*"},
		RequestTimeout:    60 * time.Second,
		RateLimit:         10,
		RateBurst:         20,
		SummaryMaxTokens:  200,
		InsightsMaxTokens: 300,
	}
}

// Server represents the HTTP API server
type Server struct {
	config    Config
	mux       *http.ServeMux
	handler   http.Handler
	extractor *extractor.Extractor
	completer summarize.Completer
	metrics   *metrics
	logger    log.FieldLogger
	allowed   map[string]bool
}

// New creates a new API server. completer may be nil, in which case the
// summarize and insights endpoints answer 503.
func New(cfg Config, ext *extractor.Extractor, completer summarize.Completer) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	s := &Server{
		config:    cfg,
		mux:       http.NewServeMux(),
		extractor: ext,
		completer: completer,
		metrics:   newMetrics(),
		logger:    logger,
		allowed:   make(map[string]bool, len(cfg.AllowedTypes)),
	}
	for _, t := range cfg.AllowedTypes {
		s.allowed[t] = true
	}
	s.registerRoutes()

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}

	var h http.Handler = s.mux
	h = rateLimit(limiter)(h)
	h = withCORS(cfg.AllowedOrigins)(h)
	h = logRequests(logger, s.metrics)(h)
	h = requestID(h)
	h = recovery(logger)(h)
	s.handler = h

	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/summarize", s.handleSummarize)
	s.mux.HandleFunc("/insights", s.handleInsights)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.logger.WithField("addr", s.config.Port).Info("starting server")

	srv := &http.Server{
		Addr:              s.config.Port,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract handles statement extraction requests
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	opts := s.parseExtractOptions(r)
	doc.Profile = common.ProfileID(opts.Profile)

	if opts.TextOnly {
		s.handleTextOnlyExtract(w, doc)
		return
	}

	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	statement, err := s.extractor.Process(ctx, doc)
	if err != nil {
		s.writeExtractError(w, r, doc, err)
		return
	}
	s.metrics.extractions.WithLabelValues(string(statement.Profile), outcome(statement)).Inc()

	if opts.TransactionOnly {
		writeJSON(w, http.StatusOK, statement.Transactions)
		return
	}

	output := extractor.CreateFinalOutput(statement, false, opts.StatementOnly).(map[string]interface{})
	if !statement.Found() {
		output["transactions"] = []common.Transaction{}
		output["message"] = common.ErrNoTransactionsFound.Error()
	}
	writeJSON(w, http.StatusOK, output)
}

// handleSummarize extracts an uploaded statement and asks the model for a summary.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.completer == nil {
		writeError(w, http.StatusServiceUnavailable, "summarizer is not configured")
		return
	}

	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	doc.Profile = common.ProfileID(s.parseExtractOptions(r).Profile)

	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	statement, err := s.extractor.Process(ctx, doc)
	if err != nil {
		s.writeExtractError(w, r, doc, err)
		return
	}
	s.metrics.extractions.WithLabelValues(string(statement.Profile), outcome(statement)).Inc()

	if !statement.Found() {
		writeError(w, http.StatusUnprocessableEntity, common.ErrNoTransactionsFound.Error())
		return
	}

	prompt := summarize.BuildSummaryPrompt(statement.Transactions)
	summary, err := s.completer.Complete(ctx, prompt, s.config.SummaryMaxTokens)
	if err != nil {
		s.writeCompleterError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary":      summary,
		"transactions": statement.Transactions,
	})
}

type insightsRequest struct {
	Transactions []common.Transaction `json:"transactions"`
	Prompt       string               `json:"prompt"`
}

// handleInsights analyses transactions the caller already has.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.completer == nil {
		writeError(w, http.StatusServiceUnavailable, "summarizer is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	var req insightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var prompt string
	switch {
	case len(req.Transactions) > 0:
		prompt = summarize.BuildInsightsPrompt(req.Transactions)
	case req.Prompt != "":
		prompt = req.Prompt
	default:
		writeError(w, http.StatusBadRequest, "no prompt or transactions provided")
		return
	}

	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	insights, err := s.completer.Complete(ctx, prompt, s.config.InsightsMaxTokens)
	if err != nil {
		s.writeCompleterError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insights": insights})
}

// ExtractOptions holds the options for extraction
type ExtractOptions struct {
	StatementOnly   bool
	TransactionOnly bool
	TextOnly        bool
	Profile         string
}

// parseExtractOptions extracts options from the HTTP request
func (s *Server) parseExtractOptions(r *http.Request) ExtractOptions {
	textOnly := coalesce(r.FormValue("text_only"), r.URL.Query().Get("text_only"))
	return ExtractOptions{
		StatementOnly:   r.FormValue("statement_only") == "true" || r.URL.Query().Get("statement_only") == "true",
		TransactionOnly: r.FormValue("transaction_only") == "true" || r.URL.Query().Get("transaction_only") == "true",
		TextOnly:        textOnly == "true" || (textOnly == "" && s.config.DefaultTextOnly),
		Profile:         coalesce(r.FormValue("profile"), r.URL.Query().Get("profile")),
	}
}

// handleTextOnlyExtract handles text-only extraction mode
func (s *Server) handleTextOnlyExtract(w http.ResponseWriter, doc common.Document) {
	text, err := s.extractor.Text(doc)
	if err != nil {
		s.writeExtractError(w, nil, doc, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"filename": doc.Filename,
		"text":     text,
	})
}

// readUpload pulls the statement out of a multipart request and checks its
// size and type. It writes the error response itself when it returns false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (common.Document, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return common.Document{}, false
		}
		writeError(w, http.StatusBadRequest, "could not parse multipart form: "+err.Error())
		return common.Document{}, false
	}

	file, header, err := formFile(r, "file", "statement")
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not get uploaded file: "+err.Error())
		return common.Document{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read file: "+err.Error())
		return common.Document{}, false
	}

	contentType := source.ContentType(header.Header.Get("Content-Type"), header.Filename, data)
	if !s.allowed[contentType] {
		writeError(w, http.StatusUnsupportedMediaType, (&common.UnsupportedContentTypeError{ContentType: contentType}).Error())
		return common.Document{}, false
	}

	return common.Document{
		Data:        data,
		ContentType: contentType,
		Filename:    header.Filename,
	}, true
}

func formFile(r *http.Request, fields ...string) (multipart.File, *multipart.FileHeader, error) {
	var err error
	for _, field := range fields {
		var (
			file   multipart.File
			header *multipart.FileHeader
		)
		file, header, err = r.FormFile(field)
		if err == nil {
			return file, header, nil
		}
	}
	return nil, nil, err
}

func (s *Server) pipelineContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.config.RequestTimeout)
}

func (s *Server) writeExtractError(w http.ResponseWriter, r *http.Request, doc common.Document, err error) {
	var (
		unreadable  *common.UnreadableError
		unsupported *common.UnsupportedContentTypeError
	)

	fields := log.Fields{"filename": doc.Filename, "error": err}
	if r != nil {
		fields["request_id"] = RequestIDFrom(r.Context())
	}
	s.logger.WithFields(fields).Warn("extraction failed")

	switch {
	case errors.As(err, &unsupported):
		s.metrics.extractions.WithLabelValues(string(doc.Profile), "unsupported").Inc()
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &unreadable):
		s.metrics.extractions.WithLabelValues(string(doc.Profile), "unreadable").Inc()
		writeError(w, http.StatusUnprocessableEntity, unreadable.Reason)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "extraction timed out")
	default:
		s.metrics.extractions.WithLabelValues(string(doc.Profile), "error").Inc()
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeCompleterError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithFields(log.Fields{
		"request_id": RequestIDFrom(r.Context()),
		"error":      err,
	}).Error("completion failed")

	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusGatewayTimeout, "summarizer timed out")
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func outcome(statement common.Statement) string {
	if statement.Found() {
		return "ok"
	}
	return "empty"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
