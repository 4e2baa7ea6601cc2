package server

import (
	"math"
	"net/http"

	"github.com/jonathan/careerpilot/internal/ingestion"
	"github.com/jonathan/careerpilot/internal/parsing"
	"github.com/jonathan/careerpilot/internal/types"
	"go.uber.org/zap"
)

// handleAnalyzeResume handles POST /api/resume/analyze. It parses a single
// PDF without storing anything. GitHub enrichment failures are logged and
// leave github_summary null.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	docs, err := s.readUploads(w, r, "file")
	if err != nil {
		s.failure(w, "failed to read upload", err)
		return
	}
	if len(docs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	doc := docs[0]
	if ingestion.DetectKind(doc.Filename, doc.Data) != ingestion.KindPDF {
		s.errorResponse(w, http.StatusBadRequest, "Please upload a PDF file!")
		return
	}

	text := ingestion.ExtractText(doc.Filename, doc.Data)
	parsed := parsing.ParseResume(text)

	analysis := types.ResumeAnalysis{
		Filename:   doc.Filename,
		SizeKB:     math.Round(float64(len(doc.Data))/1024*100) / 100,
		ParsedData: parsed,
		Summary:    parsing.Summarize(parsed),
		Domain:     parsing.DetectDomain(parsed.Skills),
	}

	if s.github != nil && len(parsed.GitHub) > 0 {
		summary, err := s.github.Summarize(r.Context(), parsed.GitHub[0])
		if err != nil {
			s.logger.Warn("github summary failed", zap.String("url", parsed.GitHub[0]), zap.Error(err))
		} else {
			analysis.GitHubSummary = summary
		}
	}

	s.jsonResponse(w, http.StatusOK, analysis)
}
