package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	appMatch "github.com/match-hub/match-hub/internal/application/match"
)

type applyRequest struct {
	Message string `json:"message"`
}

type decisionResponse struct {
	Message  string `json:"message"`
	TeamName string `json:"teamName"`
}

func (s *Server) registerPost(w http.ResponseWriter, r *http.Request) {
	var req appMatch.RegisterPostInput
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", err.Error())
		return
	}
	post, err := s.matchSvc.RegisterPost(r.Context(), callerID(r), req)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	var teamID *uuid.UUID
	if v := r.URL.Query().Get("teamId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid teamId")
			return
		}
		teamID = &id
	}
	limit, offset := parseLimitOffset(r, 20, 100)
	posts, err := s.matchSvc.ListOpenPosts(r.Context(), teamID, limit, offset)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  posts,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseUUIDParam(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid postId")
		return
	}
	post, err := s.matchSvc.GetPost(r.Context(), postID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseUUIDParam(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid postId")
		return
	}
	if err := s.matchSvc.DeletePost(r.Context(), postID, callerID(r)); err != nil {
		respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyToMatch(w http.ResponseWriter, r *http.Request) {
	postID, err := parseUUIDParam(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid postId")
		return
	}
	var req applyRequest
	// The message is optional, so is the body.
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", err.Error())
		return
	}
	app, err := s.matchSvc.ApplyToMatch(r.Context(), postID, callerID(r), req.Message)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

func (s *Server) cancelApplication(w http.ResponseWriter, r *http.Request) {
	postID, err := parseUUIDParam(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid postId")
		return
	}
	if err := s.matchSvc.CancelApplication(r.Context(), postID, callerID(r)); err != nil {
		respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listApplicants(w http.ResponseWriter, r *http.Request) {
	postID, err := parseUUIDParam(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid postId")
		return
	}
	applicants, err := s.matchSvc.ListApplicants(r.Context(), postID, callerID(r))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": applicants})
}

func (s *Server) acceptApplication(w http.ResponseWriter, r *http.Request) {
	postID, applicationID, ok := decisionParams(w, r)
	if !ok {
		return
	}
	teamName, err := s.matchSvc.AcceptApplication(r.Context(), postID, applicationID, callerID(r))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, decisionResponse{Message: "match application accepted", TeamName: teamName})
}

func (s *Server) rejectApplication(w http.ResponseWriter, r *http.Request) {
	postID, applicationID, ok := decisionParams(w, r)
	if !ok {
		return
	}
	teamName, err := s.matchSvc.RejectApplication(r.Context(), postID, applicationID, callerID(r))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, decisionResponse{Message: "match application rejected", TeamName: teamName})
}

func decisionParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	postID, err := parseUUIDParam(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid postId")
		return uuid.Nil, uuid.Nil, false
	}
	applicationID, err := parseUUIDParam(r, "applicationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid applicationId")
		return uuid.Nil, uuid.Nil, false
	}
	return postID, applicationID, true
}
