/*
handlers.go - HTTP API handlers for the funding eligibility engine

PURPOSE:
  Exposes the assessor, validator, course catalogue and postcode resolver
  via REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic. Nothing is persisted on this path.

ENDPOINTS:
  Streams:
    GET    /api/streams                    Rule table in definition order

  Assessment:
    POST   /api/validate                   Validation result (always 200)
    POST   /api/assessments                Validate then evaluate

  Courses:
    GET    /api/courses?q=                 Search (all courses when q is absent)
    GET    /api/courses/{lar}              One course
    POST   /api/courses/{lar}/assessments  Assessment plus funded options

  Postcodes:
    GET    /api/postcodes/{postcode}       Funding authority

  Scenarios:
    GET    /api/scenarios                  Demo learners
    POST   /api/scenarios/{id}/assess      Assess a demo learner

ARCHITECTURE:
  Handler struct holds all dependencies. Everything it holds is read-only
  after construction, so handlers are safe for concurrent requests.

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (funding.Validator)
  3. Evaluate (funding.Assessor)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON or learning aim reference
  - 404: Unknown course, postcode or scenario
  - 422: Learner or course fails validation (details = formatted errors)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo learners
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/funding-engine/courses"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/generic"
	"github.com/warp/funding-engine/postcode"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Assessor  *funding.Assessor
	Validator *funding.Validator
	Catalogue *courses.Catalogue
	Postcodes *postcode.Resolver

	logger  *zap.Logger
	metrics *Metrics
	db      Pinger
	now     func() time.Time
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithDatabase makes /healthz check the store.
func WithDatabase(db Pinger) Option {
	return func(h *Handler) {
		h.db = db
	}
}

// WithClock sets the clock used for response timestamps and default start dates.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler creates a handler. postcodes may be nil when no mapping is loaded.
func NewHandler(assessor *funding.Assessor, validator *funding.Validator, catalogue *courses.Catalogue, postcodes *postcode.Resolver, opts ...Option) *Handler {
	h := &Handler{
		Assessor:  assessor,
		Validator: validator,
		Catalogue: catalogue,
		Postcodes: postcodes,
		logger:    zap.NewNop(),
		metrics:   NewMetrics(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// =============================================================================
// STREAM HANDLERS
// =============================================================================

// ListStreams returns the rule table in definition order.
func (h *Handler) ListStreams(w http.ResponseWriter, r *http.Request) {
	rules := h.Assessor.Streams()
	dtos := make([]StreamDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = StreamDTO{ID: rule.ID, Title: rule.Title, Priority: rule.Priority}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ASSESSMENT HANDLERS
// =============================================================================

// Validate reports validation results without evaluating.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp := ValidateResponse{
		Learner:      h.Validator.Learner(req.Learner),
		Completeness: funding.CheckCompleteness(req.Learner),
	}
	errs := append(generic.ValidationErrors{}, resp.Learner.Errors...)
	if req.Qualification != nil {
		qv := h.Validator.Qualification(*req.Qualification)
		resp.Qualification = &qv
		errs = append(errs, qv.Errors...)
	}
	resp.IsValid = len(errs) == 0
	resp.Formatted = funding.FormatValidationErrors(errs)

	writeJSON(w, http.StatusOK, resp)
}

// CreateAssessment validates the learner (and optional qualification) and evaluates.
func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	learner, ok := h.validLearner(w, r, req.Learner)
	if !ok {
		return
	}

	var qual *funding.QualificationProfile
	if req.Qualification != nil {
		qv := h.Validator.Qualification(*req.Qualification)
		if !qv.IsValid {
			h.rejectInput(w, r, qv.Errors)
			return
		}
		qual = qv.Sanitized
	}

	assessment := h.Assessor.Evaluate(*learner, qual)
	h.metrics.observeAssessment("direct", assessment)
	h.metrics.AssessmentLatency.Observe(time.Since(start).Seconds())
	h.logAssessment(r, assessment)

	writeJSON(w, http.StatusOK, h.wrap(assessment))
}

// =============================================================================
// COURSE HANDLERS
// =============================================================================

// SearchCourses returns courses matching ?q=, or the whole catalogue without it.
func (h *Handler) SearchCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		found []courses.Course
		err   error
	)
	if r.URL.Query().Has("q") {
		found, err = h.Catalogue.Search(ctx, r.URL.Query().Get("q"))
	} else {
		found, err = h.Catalogue.List(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search courses", err)
		return
	}

	dtos := make([]CourseDTO, len(found))
	for i, c := range found {
		dtos[i] = toCourseDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCourse returns one course by learning aim reference.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, ok := h.findCourse(w, r, chi.URLParam(r, "lar"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(course))
}

// AssessForCourse evaluates the learner against a catalogue course and
// lists every stream with the course's funding.
func (h *Handler) AssessForCourse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	course, ok := h.findCourse(w, r, chi.URLParam(r, "lar"))
	if !ok {
		return
	}

	var req CourseAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startDate := generic.DateOf(h.now())
	if req.StartDate != "" {
		d, err := generic.ParseDate(req.StartDate)
		if err != nil {
			h.rejectInput(w, r, generic.ValidationErrors{{Field: "startDate", Message: "Start date must be a date in YYYY-MM-DD format"}})
			return
		}
		startDate = d
	}

	learner, ok := h.validLearner(w, r, req.Learner)
	if !ok {
		return
	}

	assessment := h.Assessor.Evaluate(*learner, course.Profile())
	h.metrics.observeAssessment("course", assessment)
	h.metrics.AssessmentLatency.Observe(time.Since(start).Seconds())
	h.logAssessment(r, assessment, zap.String("course", course.Ref()))

	options := courses.FundedOptions(course, assessment, startDate)
	writeJSON(w, http.StatusOK, CourseAssessmentResponse{
		AssessmentResponse: h.wrap(assessment),
		Course:             toCourseDTO(course),
		StartDate:          startDate,
		Options:            options,
		Available:          courses.AvailableOptions(options),
	})
}

// =============================================================================
// POSTCODE HANDLERS
// =============================================================================

// LookupPostcode returns the funding authority for a postcode.
func (h *Handler) LookupPostcode(w http.ResponseWriter, r *http.Request) {
	pc := chi.URLParam(r, "postcode")
	authority, ok := h.Postcodes.Resolve(pc)
	if !ok {
		writeError(w, http.StatusNotFound, "Postcode not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, PostcodeDTO{
		Postcode:   pc,
		Normalized: postcode.Normalize(pc),
		Authority:  authority,
	})
}

// Health reports liveness and the size of the loaded reference data.
// It answers 503 when the database does not respond.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"streams":   len(h.Assessor.Streams()),
		"postcodes": h.Postcodes.Len(),
	}
	if h.db == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		resp["status"] = "unavailable"
		resp["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["database"] = "ok"
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// validLearner writes a 422 and returns false when the learner is invalid.
func (h *Handler) validLearner(w http.ResponseWriter, r *http.Request, raw funding.RawLearner) (*funding.LearnerProfile, bool) {
	lv := h.Validator.Learner(raw)
	if !lv.IsValid {
		h.rejectInput(w, r, lv.Errors)
		return nil, false
	}
	return lv.Sanitized, true
}

func (h *Handler) rejectInput(w http.ResponseWriter, r *http.Request, errs generic.ValidationErrors) {
	h.metrics.observeRejection(errs.Fields())
	h.logger.Info("input rejected",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Strings("fields", errs.Fields()),
	)
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "Validation failed",
		Code:    "validation_failed",
		Details: funding.FormatValidationErrors(errs),
	})
}

func (h *Handler) findCourse(w http.ResponseWriter, r *http.Request, ref string) (courses.Course, bool) {
	course, err := h.Catalogue.Get(r.Context(), ref)
	switch {
	case err == nil:
		return course, true
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Course not found", nil)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid learning aim reference", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to load course", err)
	}
	return courses.Course{}, false
}

func (h *Handler) wrap(a funding.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:         uuid.NewString(),
		CreatedAt:  h.now().UTC(),
		Assessment: a,
	}
}

func (h *Handler) logAssessment(r *http.Request, a funding.Assessment, fields ...zap.Field) {
	fields = append(fields,
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("eligible_streams", a.Summary.TotalEligible),
		zap.String("primary", string(a.Summary.Primary)),
	)
	h.logger.Debug("assessment evaluated", fields...)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
