package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/export"
	"github.com/talentflow/ats/internal/logger"
	"github.com/talentflow/ats/internal/metrics"
	"github.com/talentflow/ats/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// handleExportCandidates streams the candidate list as a CSV or xlsx
// download. Filters mirror the list endpoint, so the export matches
// whatever view the caller has on screen.
func (s *Server) handleExportCandidates(w http.ResponseWriter, r *http.Request) {

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatXLSX {
		s.respondError(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	filter := repositories.CandidateFilter{
		JobID: r.URL.Query().Get("jobId"),
		Stage: r.URL.Query().Get("stage"),
	}
	candidates, err := s.candidates.Get(r.Context(), filter)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if len(candidates) == 0 {
		s.respondError(w, http.StatusNotFound, export.ErrNothingToExport.Error())
		return
	}

	jobs, err := s.jobs.Get(r.Context(), "")
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	jobsByID := lo.KeyBy(jobs, func(job entities.Job) string { return job.ID })

	rows := lo.Map(candidates, func(candidate entities.Candidate, _ int) export.Row {
		jobTitle, stageLabel := "", ""
		if job, ok := jobsByID[candidate.JobID]; ok {
			jobTitle = job.Title
			stageLabel = job.DisplayStage(candidate.CurrentStage).Label
		}
		return export.NewRow(candidate, jobTitle, stageLabel)
	})

	filename := export.Filename(format, time.Now())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteCSV(w, rows)
	case export.FormatXLSX:
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteWorkbook(w, rows)
	}
	if err != nil {
		// Headers are already out; all that is left is to log.
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).
			Errorf("export failed: %v", errors.Wrap(err, format))
		return
	}

	metrics.ExportsCounter.WithLabelValues(format).Inc()
}
