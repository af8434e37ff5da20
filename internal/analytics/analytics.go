package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/talentflow/ats/internal/entities"
)

// funnelStages is the canonical ordering conversion rates are computed
// over. Stages outside it (rejected, custom ones) do not participate
// in the funnel.
var funnelStages = []string{
	entities.StageApplied,
	"screening",
	"interview",
	"offer",
	"hired",
}

var stagePalette = map[string]string{
	entities.StageApplied: entities.ColorBlue,
	"screening":           entities.ColorYellow,
	"interview":           entities.ColorPurple,
	"offer":               entities.ColorGreen,
	"hired":               entities.ColorGreen,
	"rejected":            entities.ColorRed,
}

type StageBucket struct {
	Stage string `json:"stage"`
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

type ConversionStep struct {
	From string `json:"from"`
	To   string `json:"to"`
	// Rate is a whole percentage, 0 when the source stage is empty.
	Rate int `json:"rate"`
}

type MonthlyTimeToHire struct {
	Month string `json:"month"`
	Days  int    `json:"days"`
}

type TimeToHireReport struct {
	AverageDays int                 `json:"averageDays"`
	Monthly     []MonthlyTimeToHire `json:"monthly"`
}

type HeadlineStats struct {
	TotalCandidates int `json:"totalCandidates"`
	Rejected        int `json:"rejected"`
	ActiveJobs      int `json:"activeJobs"`
	NewThisWeek     int `json:"newThisWeek"`
	OffersAndHires  int `json:"offersAndHires"`

	// ScheduledInterviews is filled from the interview store, not from
	// the candidate list.
	ScheduledInterviews int `json:"scheduledInterviews"`
}

// StageDistribution counts candidates per observed current stage.
// Canonical stages come first in funnel order, anything else follows
// alphabetically, so the output is deterministic for a given input.
func StageDistribution(candidates []entities.Candidate) []StageBucket {

	counts := lo.CountValuesBy(candidates, func(c entities.Candidate) string {
		return c.CurrentStage
	})

	var buckets []StageBucket
	for _, stage := range funnelStages {
		if count, ok := counts[stage]; ok {
			buckets = append(buckets, newBucket(stage, count))
			delete(counts, stage)
		}
	}
	if count, ok := counts["rejected"]; ok {
		buckets = append(buckets, newBucket("rejected", count))
		delete(counts, "rejected")
	}

	rest := lo.Keys(counts)
	sort.Strings(rest)
	for _, stage := range rest {
		buckets = append(buckets, newBucket(stage, counts[stage]))
	}

	return buckets
}

func newBucket(stage string, count int) StageBucket {
	color, ok := stagePalette[stage]
	if !ok {
		color = entities.ColorGray
	}
	return StageBucket{
		Stage: stage,
		Label: capitalize(stage),
		Count: count,
		Color: color,
	}
}

// ConversionRates approximates per-step funnel conversion by treating
// every candidate at or beyond a stage as having passed through it.
// A candidate sitting in "offer" therefore counts toward applied,
// screening and interview as well.
func ConversionRates(candidates []entities.Candidate) []ConversionStep {

	atOrBeyond := make([]int, len(funnelStages))
	for _, candidate := range candidates {
		idx := lo.IndexOf(funnelStages, candidate.CurrentStage)
		if idx < 0 {
			continue
		}
		for i := 0; i <= idx; i++ {
			atOrBeyond[i]++
		}
	}

	steps := make([]ConversionStep, 0, len(funnelStages)-1)
	for i := 0; i < len(funnelStages)-1; i++ {
		rate := 0
		if atOrBeyond[i] > 0 {
			rate = int(math.Round(100 * float64(atOrBeyond[i+1]) / float64(atOrBeyond[i])))
		}
		steps = append(steps, ConversionStep{
			From: capitalize(funnelStages[i]),
			To:   capitalize(funnelStages[i+1]),
			Rate: rate,
		})
	}

	return steps
}

// TimeToHire averages the whole-day span between a candidate's
// creation and their last update, over candidates in offer or hired.
// The monthly series keeps the six most recent populated months.
func TimeToHire(candidates []entities.Candidate, now time.Time) TimeToHireReport {

	hired := lo.Filter(candidates, func(c entities.Candidate, _ int) bool {
		return c.CurrentStage == "offer" || c.CurrentStage == "hired"
	})
	if len(hired) == 0 {
		return TimeToHireReport{Monthly: []MonthlyTimeToHire{}}
	}

	type monthAgg struct {
		start time.Time
		total int
		count int
	}

	total := 0
	months := make(map[string]*monthAgg)
	for _, candidate := range hired {
		days := int(candidate.UpdatedAt.Sub(candidate.CreatedAt).Hours() / 24)
		total += days

		start := time.Date(candidate.UpdatedAt.Year(), candidate.UpdatedAt.Month(), 1,
			0, 0, 0, 0, time.UTC)
		key := start.Format("2006-01")
		agg, ok := months[key]
		if !ok {
			agg = &monthAgg{start: start}
			months[key] = agg
		}
		agg.total += days
		agg.count++
	}

	aggs := lo.Values(months)
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].start.Before(aggs[j].start) })
	if len(aggs) > 6 {
		aggs = aggs[len(aggs)-6:]
	}

	monthly := lo.Map(aggs, func(agg *monthAgg, _ int) MonthlyTimeToHire {
		return MonthlyTimeToHire{
			Month: agg.start.Format("Jan"),
			Days:  int(math.Round(float64(agg.total) / float64(agg.count))),
		}
	})

	return TimeToHireReport{
		AverageDays: int(math.Round(float64(total) / float64(len(hired)))),
		Monthly:     monthly,
	}
}

func Headline(candidates []entities.Candidate, jobs []entities.Job, now time.Time) HeadlineStats {

	weekAgo := now.AddDate(0, 0, -7)

	return HeadlineStats{
		TotalCandidates: len(candidates),
		Rejected: lo.CountBy(candidates, func(c entities.Candidate) bool {
			return c.CurrentStage == "rejected"
		}),
		ActiveJobs: lo.CountBy(jobs, func(j entities.Job) bool {
			return j.Status == entities.JobStatusActive
		}),
		NewThisWeek: lo.CountBy(candidates, func(c entities.Candidate) bool {
			return c.CreatedAt.After(weekAgo)
		}),
		OffersAndHires: lo.CountBy(candidates, func(c entities.Candidate) bool {
			return c.CurrentStage == "offer" || c.CurrentStage == "hired"
		}),
	}
}

// MatchScore is a display heuristic derived from the candidate's name,
// not a model output. It is stable for a given name and capped at 98.
func MatchScore(fullName string) int {
	score := 70 + (len(fullName)*3)%25
	if score > 98 {
		score = 98
	}
	return score
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
