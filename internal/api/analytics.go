package api

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {

	snapshot, err := s.snapshotter.Dashboard(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, snapshot)
}
