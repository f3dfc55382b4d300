package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"rentals/internal/reservations/service"
	"rentals/internal/reservations/validator"
	apperrors "rentals/pkg/errors"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
)

type AvailabilityResponse struct {
	ResourceID    string     `json:"resource_id"`
	CheckIn       time.Time  `json:"check_in"`
	CheckOut      time.Time  `json:"check_out"`
	Available     bool       `json:"available"`
	Reason        string     `json:"reason"`
	ConflictingID string     `json:"conflicting_reservation_id,omitempty"`
	FullDay       *time.Time `json:"full_day,omitempty"`
	Occupancy     int        `json:"occupancy,omitempty"`
}

type SearchResponse struct {
	CheckIn   time.Time       `json:"check_in"`
	CheckOut  time.Time       `json:"check_out"`
	Available map[string]bool `json:"available"`
}

type ReservationHandler struct {
	service   service.ReservationService
	codec     *service.HandleCodec
	validator *validator.ReservationValidator
	log       *logger.Logger
}

func NewReservationHandler(svc service.ReservationService, codec *service.HandleCodec, v *validator.ReservationValidator, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service:   svc,
		codec:     codec,
		validator: v,
		log:       log,
	}
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	checkIn, checkOut, err := httputil.ExtractInterval(r)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	verdict, err := h.service.CheckAvailability(r.Context(), id, checkIn, checkOut)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	resp := AvailabilityResponse{
		ResourceID: id,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Available:  verdict.Available,
		Reason:     string(verdict.Reason),
		Occupancy:  verdict.Occupancy,
	}
	if verdict.Conflict != nil {
		resp.ConflictingID = verdict.Conflict.ID
	}
	if !verdict.FullDay.IsZero() {
		day := verdict.FullDay
		resp.FullDay = &day
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilitySearch
	if !h.decode(w, r, "Search", &req) {
		return
	}
	req.ResourceIDs = sanitizer.NormalizeIDs(req.ResourceIDs)
	if err := h.validator.ValidateSearch(&req); err != nil {
		h.writeError(w, "Search", validationError("Availability search validation failed", err))
		return
	}

	available, err := h.service.CheckMany(r.Context(), req.ResourceIDs, req.CheckIn, req.CheckOut)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, SearchResponse{CheckIn: req.CheckIn, CheckOut: req.CheckOut, Available: available}); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Hold(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.HoldRequest
	if !h.decode(w, r, "Hold", &req) {
		return
	}
	req.ResourceID = sanitizer.NormalizeID(req.ResourceID)
	req.GuestID = sanitizer.NormalizeID(req.GuestID)
	if err := h.validator.ValidateHold(&req); err != nil {
		h.writeError(w, "Hold", validationError("Hold request validation failed", err))
		return
	}

	handle, err := h.service.RequestForResource(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Hold", err)
		return
	}

	token, err := h.codec.Encode(handle)
	if err != nil {
		h.log.Error("Failed to encode hold token", "resource_id", req.ResourceID, "error", err)
		if releaseErr := h.service.Release(r.Context(), handle); releaseErr != nil {
			h.log.Warn("Failed to release unencodable hold", "resource_id", req.ResourceID, "error", releaseErr)
		}
		h.writeError(w, "Hold", apperrors.Internal("Failed to issue hold token", err))
		return
	}

	if err := httputil.WriteCreated(w, handle.View(token)); err != nil {
		h.log.Error("failed to write created response", "handler", "Hold", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Commit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	handle, ok := h.handle(w, ps, "Commit")
	if !ok {
		return
	}

	var req model.CommitRequest
	if !h.decode(w, r, "Commit", &req) {
		return
	}
	if err := h.validator.ValidateCommit(&req); err != nil {
		h.writeError(w, "Commit", validationError("Commit request validation failed", err))
		return
	}

	reservation, err := h.service.Commit(r.Context(), handle, service.CommitInput{
		Amount:           req.Amount,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		h.writeError(w, "Commit", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Commit", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	handle, ok := h.handle(w, ps, "Release")
	if !ok {
		return
	}

	if err := h.service.Release(r.Context(), handle); err != nil {
		h.writeError(w, "Release", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/resources/id/:id/availability", h.Availability)
	router.POST("/api/v1/availability/search", h.Search)
	router.POST("/api/v1/holds", h.Hold)
	router.POST("/api/v1/holds/:token/commit", h.Commit)
	router.DELETE("/api/v1/holds/:token", h.Release)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
}

func (h *ReservationHandler) handle(w http.ResponseWriter, ps httprouter.Params, name string) (*service.PendingHandle, bool) {
	handle, err := h.codec.Decode(ps.ByName("token"))
	if err != nil {
		h.log.Debug("Rejected hold token", "handler", name, "error", err)
		h.writeError(w, name, apperrors.InvalidInput("Invalid hold token").WithCause(err))
		return nil, false
	}
	return handle, true
}

func (h *ReservationHandler) decode(w http.ResponseWriter, r *http.Request, name string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, name, apperrors.InvalidInput("Invalid request body"))
		return false
	}
	return true
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"errors": verrs})
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
