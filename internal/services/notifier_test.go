package services

import (
	"context"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/talentflow/ats/internal/clients/resend"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/events"
)

type mockTemplates struct {
	mock.Mock
}

func (m *mockTemplates) ActiveByStage(ctx context.Context, stage string) (*entities.EmailTemplate, error) {
	args := m.Called(ctx, stage)
	template, _ := args.Get(0).(*entities.EmailTemplate)
	return template, args.Error(1)
}

type mockEmailClient struct {
	mock.Mock
}

func (m *mockEmailClient) SendStageChangeNotice(ctx context.Context, notice resend.StageChangeNotice) error {
	return m.Called(ctx, notice).Error(0)
}

func (m *mockEmailClient) SendComposed(ctx context.Context, email resend.ComposedEmail) error {
	return m.Called(ctx, email).Error(0)
}

func Test_RenderTemplate_ShouldSubstituteKnownTokens(t *testing.T) {

	values := PlaceholderValues{
		CandidateName: "Jane Doe",
		JobTitle:      "Backend Engineer",
		OldStage:      "applied",
		NewStage:      "screening",
	}

	rendered := RenderTemplate(
		"Hi {{candidateName}}, your {{jobTitle}} application moved from {{oldStage}} to {{newStage}}.",
		values)

	assert.Equal(t,
		"Hi Jane Doe, your Backend Engineer application moved from applied to screening.",
		rendered)
}

func Test_RenderTemplate_ShouldLeaveUnknownTokensAlone(t *testing.T) {
	assert.Equal(t, "Hello {{unknown}}", RenderTemplate("Hello {{unknown}}", PlaceholderValues{}))
}

func Test_Notify_ShouldSendStructuredNotice(t *testing.T) {

	client := &mockEmailClient{}
	client.On("SendStageChangeNotice", mock.Anything, resend.StageChangeNotice{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		OldStage:       "applied",
		NewStage:       "interview",
		JobTitle:       "Backend Engineer",
	}).Return(nil)

	notifier, err := NewStageNotifier(EventBus.New(), &mockTemplates{}, client)
	assert.NoError(t, err)

	err = notifier.Notify(context.Background(), events.StageChanged{
		CandidateID:    "c1",
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		JobTitle:       "Backend Engineer",
		OldStage:       "applied",
		NewStage:       "interview",
	})

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func Test_Notify_WhenCandidateHasNoEmail_ShouldSkipSilently(t *testing.T) {

	client := &mockEmailClient{}

	notifier, err := NewStageNotifier(EventBus.New(), &mockTemplates{}, client)
	assert.NoError(t, err)

	err = notifier.Notify(context.Background(), events.StageChanged{CandidateID: "c1"})

	assert.NoError(t, err)
	client.AssertNotCalled(t, "SendStageChangeNotice", mock.Anything, mock.Anything)
}

func Test_ComposeForStage_WhenNoCustomTemplate_ShouldUseBuiltin(t *testing.T) {

	templates := &mockTemplates{}
	templates.On("ActiveByStage", mock.Anything, "offer").Return(nil, nil)

	client := &mockEmailClient{}
	client.On("SendComposed", mock.Anything, mock.MatchedBy(func(email resend.ComposedEmail) bool {
		return email.To == "jane@example.com" &&
			email.Subject == "Offer of Employment - Backend Engineer"
	})).Return(nil)

	notifier, err := NewStageNotifier(EventBus.New(), templates, client)
	assert.NoError(t, err)

	candidate := entities.NewCandidate("job-1", "Jane Doe", "jane@example.com")
	err = notifier.ComposeForStage(context.Background(), candidate, "Backend Engineer", "offer")

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func Test_ComposeForStage_WhenCustomTemplateActive_ShouldPreferIt(t *testing.T) {

	custom := entities.NewEmailTemplate("interview", "Custom: {{candidateName}}",
		"<p>Custom body for {{jobTitle}}</p>", "admin")

	templates := &mockTemplates{}
	templates.On("ActiveByStage", mock.Anything, "interview").Return(&custom, nil)

	client := &mockEmailClient{}
	client.On("SendComposed", mock.Anything, mock.MatchedBy(func(email resend.ComposedEmail) bool {
		return email.Subject == "Custom: Jane Doe" &&
			email.HTML == "<p>Custom body for Backend Engineer</p>"
	})).Return(nil)

	notifier, err := NewStageNotifier(EventBus.New(), templates, client)
	assert.NoError(t, err)

	candidate := entities.NewCandidate("job-1", "Jane Doe", "jane@example.com")
	err = notifier.ComposeForStage(context.Background(), candidate, "Backend Engineer", "interview")

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func Test_ComposeForStage_ShouldCacheResolvedTemplate(t *testing.T) {

	templates := &mockTemplates{}
	templates.On("ActiveByStage", mock.Anything, "hired").Return(nil, nil).Once()

	client := &mockEmailClient{}
	client.On("SendComposed", mock.Anything, mock.Anything).Return(nil)

	notifier, err := NewStageNotifier(EventBus.New(), templates, client)
	assert.NoError(t, err)

	candidate := entities.NewCandidate("job-1", "Jane Doe", "jane@example.com")
	assert.NoError(t, notifier.ComposeForStage(context.Background(), candidate, "Backend Engineer", "hired"))
	assert.NoError(t, notifier.ComposeForStage(context.Background(), candidate, "Backend Engineer", "hired"))

	templates.AssertExpectations(t)
	templates.AssertNumberOfCalls(t, "ActiveByStage", 1)
}

func Test_ComposeForStage_WhenTemplatesChange_ShouldDropCache(t *testing.T) {

	templates := &mockTemplates{}
	templates.On("ActiveByStage", mock.Anything, "hired").Return(nil, nil)

	client := &mockEmailClient{}
	client.On("SendComposed", mock.Anything, mock.Anything).Return(nil)

	bus := EventBus.New()
	notifier, err := NewStageNotifier(bus, templates, client)
	assert.NoError(t, err)

	candidate := entities.NewCandidate("job-1", "Jane Doe", "jane@example.com")
	assert.NoError(t, notifier.ComposeForStage(context.Background(), candidate, "Backend Engineer", "hired"))

	bus.Publish(events.TableChangedTopic, events.TableChanged{Table: events.TableTemplates})
	bus.WaitAsync()

	assert.NoError(t, notifier.ComposeForStage(context.Background(), candidate, "Backend Engineer", "hired"))
	templates.AssertNumberOfCalls(t, "ActiveByStage", 2)
}

func Test_ComposeForStage_WhenStageUnknown_ShouldFallBackToAppliedTemplate(t *testing.T) {

	templates := &mockTemplates{}
	templates.On("ActiveByStage", mock.Anything, "custom-stage").Return(nil, nil)

	client := &mockEmailClient{}
	client.On("SendComposed", mock.Anything, mock.MatchedBy(func(email resend.ComposedEmail) bool {
		return email.Subject == "Application Received - Backend Engineer"
	})).Return(nil)

	notifier, err := NewStageNotifier(EventBus.New(), templates, client)
	assert.NoError(t, err)

	candidate := entities.NewCandidate("job-1", "Jane Doe", "jane@example.com")
	err = notifier.ComposeForStage(context.Background(), candidate, "Backend Engineer", "custom-stage")

	assert.NoError(t, err)
	client.AssertExpectations(t)
}
