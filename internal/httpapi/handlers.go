package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/identity"
	"github.com/sadaqat12/snapconnect/internal/lifecycle"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
)

var errAdminOnly = apperrors.WrapWithCode(apperrors.ErrNotAuthorized, "admin_only", "admin access required")

type openConversationRequest struct {
	Participants []string `json:"participants"`
}

type sendSnapRequest struct {
	RecipientIDs []string `json:"recipientIds"`
	MediaPath    string   `json:"mediaPath"`
	Body         string   `json:"body"`
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Body           string `json:"body"`
	MediaPath      string `json:"mediaPath"`
}

type postStoryRequest struct {
	Audience  []string `json:"audience"`
	MediaPath string   `json:"mediaPath"`
	Body      string   `json:"body"`
}

type itemsResponse struct {
	Items []*domain.ContentItem `json:"items"`
}

type viewResponse struct {
	AlreadyExpired bool                `json:"alreadyExpired"`
	Changed        bool                `json:"changed"`
	Eligible       bool                `json:"eligible"`
	Item           *domain.ContentItem `json:"item,omitempty"`
}

type saveResponse struct {
	AlreadyExpired bool                `json:"alreadyExpired"`
	Saved          bool                `json:"saved"`
	Item           *domain.ContentItem `json:"item,omitempty"`
}

type readResponse struct {
	AlreadyExpired bool `json:"alreadyExpired"`
	Changed        bool `json:"changed"`
}

func currentUser(r *http.Request) string {
	id, _ := identity.UserFromContext(r.Context())
	return id
}

func (s *Server) openConversation(w http.ResponseWriter, r *http.Request) {
	var req openConversationRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	conv, err := s.lifecycle.OpenConversation(r.Context(), currentUser(r), req.Participants)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, conv)
}

func (s *Server) sendSnap(w http.ResponseWriter, r *http.Request) {
	var req sendSnapRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.send(w, r, lifecycle.SendRequest{
		Kind:         domain.KindSnap,
		CreatorID:    currentUser(r),
		RecipientIDs: req.RecipientIDs,
		MediaPath:    req.MediaPath,
		Body:         req.Body,
	})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.send(w, r, lifecycle.SendRequest{
		Kind:           domain.KindChatMessage,
		CreatorID:      currentUser(r),
		ConversationID: req.ConversationID,
		Body:           req.Body,
		MediaPath:      req.MediaPath,
	})
}

func (s *Server) send(w http.ResponseWriter, r *http.Request, req lifecycle.SendRequest) {
	item, err := s.lifecycle.Send(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) postStory(w http.ResponseWriter, r *http.Request) {
	var req postStoryRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.lifecycle.PostStory(r.Context(), currentUser(r), req.Audience, req.MediaPath, req.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) listScope(w http.ResponseWriter, r *http.Request) {
	items, err := s.lifecycle.ListScope(r.Context(), mux.Vars(r)["scopeID"], currentUser(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		items = []*domain.ContentItem{}
	}
	s.writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (s *Server) markViewed(w http.ResponseWriter, r *http.Request) {
	res, err := s.lifecycle.MarkViewed(r.Context(), mux.Vars(r)["itemID"], currentUser(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewResponse{
		AlreadyExpired: res.AlreadyExpired,
		Changed:        res.Changed,
		Eligible:       res.Eligible,
		Item:           res.Item,
	})
}

func (s *Server) toggleSaved(w http.ResponseWriter, r *http.Request) {
	res, err := s.lifecycle.ToggleSaved(r.Context(), mux.Vars(r)["itemID"], currentUser(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saveResponse{
		AlreadyExpired: res.AlreadyExpired,
		Saved:          res.Saved,
		Item:           res.Item,
	})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	res, err := s.lifecycle.MarkRead(r.Context(), mux.Vars(r)["itemID"], currentUser(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, readResponse{AlreadyExpired: res.AlreadyExpired, Changed: res.Changed})
}

func (s *Server) leaveScope(w http.ResponseWriter, r *http.Request) {
	res, err := s.lifecycle.LeaveScope(r.Context(), mux.Vars(r)["scopeID"], currentUser(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// streamScope authorizes before upgrading so refusals are plain HTTP errors.
func (s *Server) streamScope(w http.ResponseWriter, r *http.Request) {
	scopeID := mux.Vars(r)["scopeID"]
	userID := currentUser(r)

	if _, err := s.lifecycle.AuthorizeScope(r.Context(), scopeID, userID); err != nil {
		s.writeError(w, err)
		return
	}

	err := s.streamer.Serve(w, r, func(handler realtime.Handler) (func(), error) {
		return s.lifecycle.SubscribeToScope(r.Context(), scopeID, userID, handler)
	})
	if err != nil {
		s.logger.Warn("Event stream ended with error", "scope_id", scopeID, "user_id", userID, "error", err)
	}
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	if !s.config.IsAdmin(currentUser(r)) {
		s.writeError(w, errAdminOnly)
		return
	}

	res, err := s.lifecycle.Sweep(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}
