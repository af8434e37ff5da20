package api

import (
	"net/http"

	"github.com/talentflow/ats/internal/entities"
)

type upsertTemplateRequest struct {
	Subject   string `json:"subject" validate:"required"`
	BodyHTML  string `json:"bodyHtml" validate:"required"`
	CreatedBy string `json:"createdBy"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {

	templates, err := s.templates.All(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, templates)
}

// handleUpsertTemplate replaces the active template for a stage. The
// stage key comes from the path so there is always exactly one active
// template per stage.
func (s *Server) handleUpsertTemplate(w http.ResponseWriter, r *http.Request) {

	var req upsertTemplateRequest
	if !s.decode(w, r, &req) {
		return
	}

	template := entities.NewEmailTemplate(r.PathValue("stage"), req.Subject,
		req.BodyHTML, req.CreatedBy)

	if err := s.templates.Upsert(r.Context(), template); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, template)
}
