package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/admission-review/pkg/common/logger"
	"github.com/synaptica-ai/admission-review/pkg/guideline"
)

// multipartMemory is how much of a multipart upload is held in memory before
// spilling to disk.
const multipartMemory = 8 << 20

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

type HTTPHandler struct {
	service    *Service
	guidelines *guideline.Service
}

func NewHTTPHandler(service *Service, guidelines *guideline.Service) *HTTPHandler {
	return &HTTPHandler{service: service, guidelines: guidelines}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/analyze", h.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/analyze-with-guideline", h.handleAnalyzeWithGuideline).Methods(http.MethodPost)
	router.HandleFunc("/analyze-with-profile/{name}", h.handleAnalyzeWithProfile).Methods(http.MethodPost)
	router.HandleFunc("/guideline-profiles/{name}", h.handleSaveProfile).Methods(http.MethodPut)
	router.HandleFunc("/guideline-profiles/{name}", h.handleGetProfile).Methods(http.MethodGet)
}

type analyzeRequest struct {
	Note string `json:"note"`
}

func decodeNote(r *http.Request) (string, error) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", ValidationError{reason: fmt.Errorf("invalid request body: %w", err)}
	}
	return req.Note, nil
}

// readUpload returns the bytes of a required multipart file field.
func readUpload(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, ValidationError{reason: fmt.Errorf("%s file required: %w", field, err)}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ValidationError{reason: fmt.Errorf("read %s: %w", field, err)}
	}
	return data, nil
}

func (h *HTTPHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	note, err := decodeNote(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Analyze(r.Context(), note))
}

func (h *HTTPHandler) handleAnalyzeWithGuideline(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.writeError(w, ValidationError{reason: fmt.Errorf("invalid multipart body: %w", err)})
		return
	}
	if _, ok := r.MultipartForm.Value["doctor_note"]; !ok {
		h.writeError(w, ValidationError{reason: errors.New("doctor_note field required")})
		return
	}
	document, err := readUpload(r, "guideline")
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.service.AnalyzeWithGuideline(r.Context(), r.FormValue("doctor_note"), document))
}

func (h *HTTPHandler) handleAnalyzeWithProfile(w http.ResponseWriter, r *http.Request) {
	note, err := decodeNote(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	bundle, err := h.service.AnalyzeWithProfile(r.Context(), note, mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *HTTPHandler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.writeError(w, ValidationError{reason: fmt.Errorf("invalid multipart body: %w", err)})
		return
	}
	document, err := readUpload(r, "guideline")
	if err != nil {
		h.writeError(w, err)
		return
	}

	profile, err := h.guidelines.SaveProfile(r.Context(), mux.Vars(r)["name"], document)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *HTTPHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.guidelines.Profile(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidationError(err), errors.Is(err, guideline.ErrInvalidProfileName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, guideline.ErrProfileNotFound):
		http.Error(w, "guideline profile not found", http.StatusNotFound)
	case errors.Is(err, guideline.ErrProfilesDisabled):
		http.Error(w, "guideline profiles are not enabled", http.StatusServiceUnavailable)
	default:
		logger.Log.WithError(err).Error("admission review request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
