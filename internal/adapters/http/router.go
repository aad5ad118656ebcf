// Package httpadapter exposes the verification pipeline over a small JSON
// HTTP API.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/ports"
	"github.com/mverdier/admission-verifier/internal/observability/metrics"
)

type Router struct {
	service    string
	upload     ports.FileIngestor
	files      ports.FileReader
	admission  ports.AdmissionNormalizer
	transcript ports.TranscriptNormalizer
	indexer    ports.RecordIndexer
	reconciler ports.Reconciler
	mappings   ports.MappingRepository
	metrics    *metrics.HTTPServerMetrics
}

func NewRouter(
	service string,
	upload ports.FileIngestor,
	files ports.FileReader,
	admission ports.AdmissionNormalizer,
	transcript ports.TranscriptNormalizer,
	indexer ports.RecordIndexer,
	reconciler ports.Reconciler,
	mappings ports.MappingRepository,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		service:    service,
		upload:     upload,
		files:      files,
		admission:  admission,
		transcript: transcript,
		indexer:    indexer,
		reconciler: reconciler,
		mappings:   mappings,
		metrics:    m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/files", rt.uploadFile)
	mux.HandleFunc("/v1/files/", rt.fileSubtree)
	mux.HandleFunc("/v1/mappings", rt.handleMappings)
	mux.HandleFunc("/v1/reconcile", rt.reconcile)
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	kind, ok := domain.ParseFileKind(r.FormValue("kind"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "form field 'kind' must be 'admission' or 'transcript'"})
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	stored, err := rt.upload.Upload(r.Context(), fileHeader.Filename, kind, file)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordFileUploaded(rt.service, string(kind))
	}

	writeJSON(w, http.StatusAccepted, stored)
}

// fileSubtree routes /v1/files/{id}, /v1/files/{id}/normalize and
// /v1/files/{id}/records.
func (rt *Router) fileSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/files/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file id is required"})
		return
	}

	switch action {
	case "":
		rt.getFileByID(w, r, id)
	case "normalize":
		rt.normalizeFile(w, r, id)
	case "records":
		rt.getRecords(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func (rt *Router) getFileByID(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, err := rt.files.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (rt *Router) normalizeFile(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, err := rt.files.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	switch file.Kind {
	case domain.FileKindAdmission:
		counts, err := rt.admission.NormalizeFile(r.Context(), id)
		if rt.metrics != nil {
			rt.metrics.RecordNormalization(rt.service, string(file.Kind), err)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, counts)
	case domain.FileKindTranscript:
		counts, err := rt.transcript.NormalizeFile(r.Context(), id)
		if rt.metrics != nil {
			rt.metrics.RecordNormalization(rt.service, string(file.Kind), err)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, counts)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file kind cannot be normalized"})
	}
}

func (rt *Router) getRecords(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	records, err := rt.indexer.IndexedRecords(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (rt *Router) handleMappings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		rt.putMapping(w, r)
	case http.MethodGet:
		rt.getMapping(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) putMapping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdmissionFileID  string `json:"admission_file_id"`
		TranscriptFileID string `json:"transcript_file_id"`
		Entries          []struct {
			AdmissionIndex  int    `json:"admission_index"`
			AdmissionLabel  string `json:"admission_label"`
			TranscriptIndex int    `json:"transcript_index"`
			TranscriptLabel string `json:"transcript_label"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.AdmissionFileID == "" || req.TranscriptFileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "admission_file_id and transcript_file_id are required"})
		return
	}

	entries := make([]domain.FieldMappingEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		if e.AdmissionIndex < 0 || e.TranscriptIndex < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mapping indices must be non-negative"})
			return
		}
		entries = append(entries, domain.FieldMappingEntry{
			AdmissionFileID:  req.AdmissionFileID,
			TranscriptFileID: req.TranscriptFileID,
			AdmissionIndex:   e.AdmissionIndex,
			AdmissionLabel:   e.AdmissionLabel,
			TranscriptIndex:  e.TranscriptIndex,
			TranscriptLabel:  e.TranscriptLabel,
		})
	}

	if err := rt.mappings.Replace(r.Context(), req.AdmissionFileID, req.TranscriptFileID, entries); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries_count": len(entries)})
}

func (rt *Router) getMapping(w http.ResponseWriter, r *http.Request) {
	admissionFileID := r.URL.Query().Get("admission_file_id")
	transcriptFileID := r.URL.Query().Get("transcript_file_id")
	if admissionFileID == "" || transcriptFileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "admission_file_id and transcript_file_id are required"})
		return
	}

	entries, err := rt.mappings.ListForFilePair(r.Context(), admissionFileID, transcriptFileID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.FieldMappingEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (rt *Router) reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		AdmissionFileID  string `json:"admission_file_id"`
		TranscriptFileID string `json:"transcript_file_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.AdmissionFileID == "" || req.TranscriptFileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "admission_file_id and transcript_file_id are required"})
		return
	}

	start := time.Now()
	summaries, err := rt.reconciler.Reconcile(r.Context(), req.AdmissionFileID, req.TranscriptFileID)
	if rt.metrics != nil {
		rt.metrics.RecordReconciliation(rt.service, len(summaries), time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		for _, s := range summaries {
			rt.metrics.RecordVerificationOutcome(rt.service, string(s.Status))
		}
	}
	if summaries == nil {
		summaries = []domain.ComparisonSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
