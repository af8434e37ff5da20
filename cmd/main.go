package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/talentflow/ats/internal/analytics"
	"github.com/talentflow/ats/internal/api"
	"github.com/talentflow/ats/internal/clients/resend"
	"github.com/talentflow/ats/internal/config"
	"github.com/talentflow/ats/internal/logger"
	"github.com/talentflow/ats/internal/metrics"
	"github.com/talentflow/ats/internal/repositories"
	"github.com/talentflow/ats/internal/services"
	"github.com/talentflow/ats/internal/storage"
	log "github.com/sirupsen/logrus"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Server.MetricsAddress)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()

	jobs := repositories.NewJobsRepository(dbContext.DB, bus)
	candidates := repositories.NewCandidatesRepository(dbContext.DB, bus)
	activities := repositories.NewActivitiesRepository(dbContext.DB, bus)
	templates := repositories.NewTemplatesRepository(dbContext.DB, bus)
	interviews := repositories.NewInterviewsRepository(dbContext.DB, bus)

	mailClient := resend.NewClient(cfg.Notifier.FunctionsURL)
	mailClient.SetRateLimit(cfg.Notifier.MaxRequestsPerSecond)

	notifier, err := services.NewStageNotifier(bus, templates, mailClient)
	if err != nil {
		log.Fatalf("can't create notifier: %v", err)
	}

	if _, err = services.NewActivityRecorder(bus, activities); err != nil {
		log.Fatalf("can't create activity recorder: %v", err)
	}

	pipeline := services.NewPipeline(bus, candidates, jobs, notifier)

	snapshotter, err := analytics.NewSnapshotter(cfg.Analytics, bus, candidates, jobs, interviews)
	if err != nil {
		log.Fatalf("can't create snapshotter: %v", err)
	}
	defer snapshotter.Stop()

	resumes, err := storage.NewResumeStore(cfg.Storage)
	if err != nil {
		log.Fatalf("can't create resume store: %v", err)
	}

	server := api.NewServer(cfg.Server.Address, api.Dependencies{
		Jobs:        jobs,
		Candidates:  candidates,
		Activities:  activities,
		Templates:   templates,
		Interviews:  interviews,
		Pipeline:    pipeline,
		Notifier:    notifier,
		Snapshotter: snapshotter,
		Resumes:     resumes,
	})
	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown: %v", err)
	}
	log.Info("Services stopped.")
}
