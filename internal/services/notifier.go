package services

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/clients/resend"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
	"github.com/talentflow/ats/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type templateRepository interface {
	ActiveByStage(ctx context.Context, stage string) (*entities.EmailTemplate, error)
}

type emailClient interface {
	SendStageChangeNotice(ctx context.Context, notice resend.StageChangeNotice) error
	SendComposed(ctx context.Context, email resend.ComposedEmail) error
}

// PlaceholderValues carries the substitutions a template body may use.
type PlaceholderValues struct {
	CandidateName string
	JobTitle      string
	OldStage      string
	NewStage      string
}

type messageTemplate struct {
	Subject string
	Body    string
}

// Built-in per-stage messages, used whenever no custom active template
// exists for the stage.
var defaultTemplates = map[string]messageTemplate{
	"applied": {
		Subject: "Application Received - {{jobTitle}}",
		Body: "<p>Hi {{candidateName}},</p>" +
			"<p>Thank you for applying to the <strong>{{jobTitle}}</strong> position. " +
			"We have received your application and our team will review it shortly.</p>" +
			"<p>Best regards,<br/>The Hiring Team</p>",
	},
	"screening": {
		Subject: "Your Application Update - {{jobTitle}}",
		Body: "<p>Hi {{candidateName}},</p>" +
			"<p>Good news! Your application for <strong>{{jobTitle}}</strong> has moved to the " +
			"screening stage. We will be in touch soon with next steps.</p>" +
			"<p>Best regards,<br/>The Hiring Team</p>",
	},
	"interview": {
		Subject: "Interview Invitation - {{jobTitle}}",
		Body: "<p>Hi {{candidateName}},</p>" +
			"<p>We would like to invite you to an interview for the <strong>{{jobTitle}}</strong> " +
			"position. Our team will reach out shortly to schedule a convenient time.</p>" +
			"<p>Best regards,<br/>The Hiring Team</p>",
	},
	"offer": {
		Subject: "Offer of Employment - {{jobTitle}}",
		Body: "<p>Hi {{candidateName}},</p>" +
			"<p>Congratulations! We are delighted to extend you an offer for the " +
			"<strong>{{jobTitle}}</strong> position. Details will follow in a separate message.</p>" +
			"<p>Best regards,<br/>The Hiring Team</p>",
	},
	"hired": {
		Subject: "Welcome Aboard - {{jobTitle}}",
		Body: "<p>Hi {{candidateName}},</p>" +
			"<p>Welcome to the team! We are excited to have you join us as <strong>{{jobTitle}}</strong>. " +
			"You will receive onboarding details shortly.</p>" +
			"<p>Best regards,<br/>The Hiring Team</p>",
	},
	"rejected": {
		Subject: "Your Application - {{jobTitle}}",
		Body: "<p>Hi {{candidateName}},</p>" +
			"<p>Thank you for your interest in the <strong>{{jobTitle}}</strong> position. " +
			"After careful consideration, we have decided to move forward with other candidates. " +
			"We encourage you to apply for future openings.</p>" +
			"<p>Best regards,<br/>The Hiring Team</p>",
	},
}

// StageNotifier turns stage transitions into candidate emails. Stage
// notices go out as structured payloads and are rendered by the mail
// function; composed emails are rendered locally from the stage's
// template before sending.
type StageNotifier struct {
	templates templateRepository
	client    emailClient
	cache     *cache.Cache
}

func NewStageNotifier(bus EventBus.Bus, templates templateRepository, client emailClient) (*StageNotifier, error) {

	n := &StageNotifier{
		templates: templates,
		client:    client,
		cache:     cache.New(10*time.Minute, 20*time.Minute),
	}

	if err := bus.Subscribe(events.TableChangedTopic, n.onTableChanged); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to table changes")
	}

	return n, nil
}

// Notify sends the stage-change notice for one transition. Failures are
// the caller's to report; the transition itself is already persisted.
func (n *StageNotifier) Notify(ctx context.Context, change events.StageChanged) error {

	if change.CandidateEmail == "" {
		return nil
	}

	err := n.client.SendStageChangeNotice(ctx, resend.StageChangeNotice{
		CandidateName:  change.CandidateName,
		CandidateEmail: change.CandidateEmail,
		OldStage:       change.OldStage,
		NewStage:       change.NewStage,
		JobTitle:       change.JobTitle,
	})
	if err != nil {
		metrics.NotificationsCounter.WithLabelValues(metrics.NotificationFailed).Inc()
		return err
	}

	metrics.NotificationsCounter.WithLabelValues(metrics.NotificationSent).Inc()
	return nil
}

// ComposeForStage resolves the stage's template, substitutes the
// placeholders, and sends the rendered email to the candidate.
func (n *StageNotifier) ComposeForStage(ctx context.Context, candidate entities.Candidate,
	jobTitle string, stage string) error {

	if candidate.Email == "" {
		return errors.New("candidate has no email address")
	}

	tmpl, err := n.resolveTemplate(ctx, stage)
	if err != nil {
		return err
	}

	values := PlaceholderValues{
		CandidateName: candidate.FullName,
		JobTitle:      jobTitle,
		OldStage:      candidate.CurrentStage,
		NewStage:      stage,
	}

	err = n.client.SendComposed(ctx, resend.ComposedEmail{
		To:            candidate.Email,
		Subject:       RenderTemplate(tmpl.Subject, values),
		HTML:          RenderTemplate(tmpl.Body, values),
		CandidateName: candidate.FullName,
		CandidateID:   candidate.ID,
	})
	if err != nil {
		metrics.NotificationsCounter.WithLabelValues(metrics.NotificationFailed).Inc()
		return err
	}

	metrics.NotificationsCounter.WithLabelValues(metrics.NotificationSent).Inc()
	return nil
}

// RenderTemplate replaces the known placeholder tokens with their
// values. Unknown tokens pass through untouched.
func RenderTemplate(s string, values PlaceholderValues) string {
	replacer := strings.NewReplacer(
		"{{candidateName}}", values.CandidateName,
		"{{jobTitle}}", values.JobTitle,
		"{{oldStage}}", values.OldStage,
		"{{newStage}}", values.NewStage,
	)
	return replacer.Replace(s)
}

func (n *StageNotifier) resolveTemplate(ctx context.Context, stage string) (messageTemplate, error) {

	if cached, ok := n.cache.Get(stage); ok {
		return cached.(messageTemplate), nil
	}

	custom, err := n.templates.ActiveByStage(ctx, stage)
	if err != nil {
		return messageTemplate{}, errors.Wrap(err, "fetch template")
	}

	var tmpl messageTemplate
	if custom != nil {
		tmpl = messageTemplate{Subject: custom.Subject, Body: custom.BodyHTML}
	} else if builtin, ok := defaultTemplates[stage]; ok {
		tmpl = builtin
	} else {
		tmpl = defaultTemplates[entities.StageApplied]
	}

	n.cache.Set(stage, tmpl, cache.DefaultExpiration)
	return tmpl, nil
}

func (n *StageNotifier) onTableChanged(change events.TableChanged) {
	if change.Table != events.TableTemplates {
		return
	}
	n.cache.Flush()
	log.Debug("template cache flushed")
}
