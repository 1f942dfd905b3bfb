package handler

import (
	"errors"
	"interviewroom/internal/model"
	"interviewroom/internal/service"
	"interviewroom/internal/transport/rest/middleware"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// InterviewHandler handles the /v1/interview endpoints
type InterviewHandler struct {
	roomSvc      *service.RoomService
	admissionSvc *service.AdmissionService
	logger       *slog.Logger
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(roomSvc *service.RoomService, admissionSvc *service.AdmissionService, logger *slog.Logger) *InterviewHandler {
	return &InterviewHandler{
		roomSvc:      roomSvc,
		admissionSvc: admissionSvc,
		logger:       logger,
	}
}

type JoinRequest struct {
	RoomID string     `json:"roomId"`
	Role   model.Role `json:"role"`
}

type AssignProblemRequest struct {
	RoomID    string `json:"roomId"`
	ProblemID string `json:"problemId"`
}

// ParticipantRequest is the body of approve and reject
type ParticipantRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type AddInterviewerRequest struct {
	RoomID           string `json:"roomId"`
	NewInterviewerID string `json:"newInterviewerId"`
}

type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type rejectResponse struct {
	Success bool `json:"success"`
	Removed bool `json:"removed"`
}

// Create handles POST /v1/interview/create
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"roomId": room.ID})
}

// Join handles POST /v1/interview/join
func (h *InterviewHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req JoinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" {
		writeError(w, http.StatusBadRequest, "roomId is required")
		return
	}

	outcome, err := h.admissionSvc.Join(r.Context(), req.RoomID, userID, req.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// Status handles GET /v1/interview/{roomId}
func (h *InterviewHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.admissionSvc.GetStatus(r.Context(), mux.Vars(r)["roomId"], userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AssignProblem handles POST /v1/interview/assign-problem
func (h *InterviewHandler) AssignProblem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AssignProblemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" || req.ProblemID == "" {
		writeError(w, http.StatusBadRequest, "roomId and problemId are required")
		return
	}

	if err := h.roomSvc.AssignProblem(r.Context(), req.RoomID, req.ProblemID, userID); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Approve handles POST /v1/interview/approve
func (h *InterviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeParticipantRequest(w, r)
	if !ok {
		return
	}

	if err := h.admissionSvc.Approve(r.Context(), req.RoomID, req.UserID, userID); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Reject handles POST /v1/interview/reject
func (h *InterviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeParticipantRequest(w, r)
	if !ok {
		return
	}

	removed, err := h.admissionSvc.Reject(r.Context(), req.RoomID, req.UserID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rejectResponse{Success: true, Removed: removed})
}

// Pending handles GET /v1/interview/{roomId}/pending
func (h *InterviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pending, err := h.admissionSvc.ListPending(r.Context(), mux.Vars(r)["roomId"], userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pending)
}

// AddInterviewer handles POST /v1/interview/add-interviewer
func (h *InterviewHandler) AddInterviewer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddInterviewerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" || req.NewInterviewerID == "" {
		writeError(w, http.StatusBadRequest, "roomId and newInterviewerId are required")
		return
	}

	if err := h.roomSvc.AddInterviewer(r.Context(), req.RoomID, req.NewInterviewerID, userID); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// End handles POST /v1/interview/end
func (h *InterviewHandler) End(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" {
		writeError(w, http.StatusBadRequest, "roomId is required")
		return
	}

	if err := h.roomSvc.EndRoom(r.Context(), req.RoomID, userID); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func decodeParticipantRequest(w http.ResponseWriter, r *http.Request) (ParticipantRequest, bool) {
	var req ParticipantRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.RoomID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "roomId and userId are required")
		return req, false
	}
	return req, true
}

// fail translates service errors into HTTP responses. Unknown errors are
// logged and hidden from the client.
func (h *InterviewHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, service.ErrInvalidRole.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, service.ErrRoomNotFound.Error())
	case errors.Is(err, service.ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, service.ErrParticipantNotFound.Error())
	case errors.Is(err, service.ErrRoomEnded):
		writeError(w, http.StatusGone, service.ErrRoomEnded.Error())
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", middleware.GetUserID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
