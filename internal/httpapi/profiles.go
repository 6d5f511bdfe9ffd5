package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/guruji-labs/guruji/internal/profile"
)

type createProfileRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if snap.Profiles == nil {
		snap.Profiles = []profile.Profile{}
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "profile name is required")
		return
	}

	snap, err := s.store.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	p := profile.Profile{
		ID:              uuid.NewString(),
		Name:            name,
		ActivityLog:     map[string]int{},
		CompletedTopics: map[string][]string{},
		CreatedAt:       time.Now().UTC(),
	}
	snap.Profiles = append(snap.Profiles, p)
	if snap.ActiveID == "" {
		snap.ActiveID = p.ID
	}

	if err := s.store.Save(r.Context(), snap); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleSelectProfile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_profile_id", "missing profile id")
		return
	}

	snap, err := s.store.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	found := false
	for i := range snap.Profiles {
		if snap.Profiles[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "profile_not_found", "no profile with that id")
		return
	}

	snap.ActiveID = id
	if err := s.store.Save(r.Context(), snap); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
