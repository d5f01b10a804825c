// Package http exposes the report generation endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"alert-reporting/internal/audit"
	"alert-reporting/internal/auth"
	"alert-reporting/internal/observability/metrics"
	"alert-reporting/internal/report/application"
	"alert-reporting/internal/report/domain"
	"alert-reporting/internal/report/render"
)

// Handler serves the generate endpoints.
type Handler struct {
	pipeline *application.Pipeline
	auditor  audit.Logger
	logger   *log.Logger
}

// NewHandler constructs the report HTTP handler. auditor may be nil when
// audit logging is disabled.
func NewHandler(pipeline *application.Pipeline, auditor audit.Logger, logger *log.Logger) (*Handler, error) {
	if pipeline == nil {
		return nil, errors.New("report handler: nil pipeline")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{pipeline: pipeline, auditor: auditor, logger: logger}, nil
}

// RegisterRoutes mounts the generate endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/generate_alert_pdf/{eventID}", h.generate("pdf"))
	r.Get("/generate_alert_xlsx/{eventID}", h.generate("xlsx"))
}

func (h *Handler) generate(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		result := metrics.ResultSuccess
		defer func() {
			metrics.ObserveReportGenerate(format, result, time.Since(start))
		}()

		eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
		if err != nil {
			result = metrics.ResultError
			http.Error(w, "invalid event id", http.StatusBadRequest)
			return
		}

		doc, err := h.pipeline.Generate(r.Context(), application.GenerateRequest{
			EventID: eventID,
			Token:   auth.TokenFromContext(r.Context()),
			Format:  format,
		})
		if err != nil {
			result = metrics.ResultError
			h.logger.Printf("report: generate %s event=%d: %v", format, eventID, err)
			http.Error(w, statusText(err), statusCode(err))
			return
		}

		h.logAudit(r, format, eventID, doc)

		// PDFs open in the browser; other formats download.
		disposition := "attachment"
		if doc.ContentType == "application/pdf" {
			disposition = "inline"
		}
		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Disposition", disposition+"; filename="+doc.Filename)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Bytes)
	}
}

func (h *Handler) logAudit(r *http.Request, format string, eventID int64, doc *application.Document) {
	if h.auditor == nil {
		return
	}
	metadata, _ := json.Marshal(map[string]any{
		"format":    format,
		"bytes":     len(doc.Bytes),
		"report_id": doc.ReportID,
		"has_map":   doc.HasMap,
	})
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Action:       "report.generate",
		ResourceType: "alert_event",
		ResourceID:   strconv.FormatInt(eventID, 10),
		Metadata:     metadata,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if err := h.auditor.Log(r.Context(), entry); err != nil {
		h.logger.Printf("report: audit log: %v", err)
	}
}

// statusCode maps pipeline failures to response codes: missing upstream
// records are 404, upstream outages 502, upstream timeouts 504, renderer
// failures 500.
func statusCode(err error) int {
	var renderErr *render.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func statusText(err error) string {
	switch statusCode(err) {
	case http.StatusNotFound:
		return "not found"
	case http.StatusGatewayTimeout:
		return "upstream timeout"
	case http.StatusBadGateway:
		return "upstream failure"
	default:
		return "internal error"
	}
}
