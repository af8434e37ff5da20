package analytics

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/talentflow/ats/internal/config"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"github.com/talentflow/ats/internal/logger"
	"github.com/talentflow/ats/internal/metrics"
	"github.com/talentflow/ats/internal/repositories"
	log "github.com/sirupsen/logrus"
)

type candidateSource interface {
	Get(ctx context.Context, filter repositories.CandidateFilter) ([]entities.Candidate, error)
}

type jobSource interface {
	Get(ctx context.Context, status entities.JobStatus) ([]entities.Job, error)
}

type interviewSource interface {
	CountScheduled(ctx context.Context) (int64, error)
}

// Snapshot is the precomputed dashboard payload.
type Snapshot struct {
	Headline     HeadlineStats    `json:"headline"`
	Distribution []StageBucket    `json:"distribution"`
	Funnel       []ConversionStep `json:"funnel"`
	TimeToHire   TimeToHireReport `json:"timeToHire"`
	GeneratedAt  time.Time        `json:"generatedAt"`
}

const snapshotKey = "dashboard"

// Snapshotter serves dashboard snapshots from a cache that a cron
// schedule keeps warm. Writes to the underlying tables invalidate the
// cache, so a snapshot is never older than the cache TTL or the last
// relevant write, whichever came first.
type Snapshotter struct {
	candidates candidateSource
	jobs       jobSource
	interviews interviewSource
	cache      *cache.Cache
	scheduler  *cron.Cron
}

func NewSnapshotter(cfg config.AnalyticsConfig, bus EventBus.Bus,
	candidates candidateSource, jobs jobSource, interviews interviewSource) (*Snapshotter, error) {

	s := &Snapshotter{
		candidates: candidates,
		jobs:       jobs,
		interviews: interviews,
		cache:      cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		scheduler:  cron.New(),
	}

	if err := bus.Subscribe(events.TableChangedTopic, s.onTableChanged); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to table changes")
	}

	_, err := s.scheduler.AddFunc(cfg.RefreshSchedule, s.refresh)
	if err != nil {
		return nil, errors.Wrap(err, "failed to schedule snapshot refresh")
	}
	s.scheduler.Start()

	return s, nil
}

// Dashboard returns the cached snapshot, computing a fresh one on miss.
func (s *Snapshotter) Dashboard(ctx context.Context) (Snapshot, error) {

	if cached, ok := s.cache.Get(snapshotKey); ok {
		return cached.(Snapshot), nil
	}

	snapshot, err := s.compute(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	s.cache.Set(snapshotKey, snapshot, cache.DefaultExpiration)
	return snapshot, nil
}

func (s *Snapshotter) Stop() {
	s.scheduler.Stop()
}

func (s *Snapshotter) compute(ctx context.Context) (Snapshot, error) {

	start := time.Now()
	defer func() { metrics.SnapshotDuration.Observe(time.Since(start).Seconds()) }()

	candidates, err := s.candidates.Get(ctx, repositories.CandidateFilter{})
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "fetch candidates")
	}

	jobs, err := s.jobs.Get(ctx, "")
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "fetch jobs")
	}

	scheduled, err := s.interviews.CountScheduled(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "count interviews")
	}

	now := time.Now()
	headline := Headline(candidates, jobs, now)
	headline.ScheduledInterviews = int(scheduled)

	return Snapshot{
		Headline:     headline,
		Distribution: StageDistribution(candidates),
		Funnel:       ConversionRates(candidates),
		TimeToHire:   TimeToHire(candidates, now),
		GeneratedAt:  now,
	}, nil
}

func (s *Snapshotter) refresh() {

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := s.compute(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("snapshot refresh failed: %v", err)
		return
	}

	s.cache.Set(snapshotKey, snapshot, cache.DefaultExpiration)
}

func (s *Snapshotter) onTableChanged(change events.TableChanged) {
	switch change.Table {
	case events.TableCandidates, events.TableJobs, events.TableInterviews:
		s.cache.Delete(snapshotKey)
	}
}
