package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/talentflow/ats/internal/analytics"
	"github.com/talentflow/ats/internal/clients/resend"
	"github.com/talentflow/ats/internal/config"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/repositories"
	"github.com/talentflow/ats/internal/services"
	"github.com/talentflow/ats/internal/storage"
)

// mailStub is a fake notification function endpoint capturing payloads.
type mailStub struct {
	mu       sync.Mutex
	payloads []map[string]string
	fail     bool
}

func (m *mailStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.fail {
			http.Error(w, "mail service down", http.StatusBadGateway)
			return
		}
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		m.payloads = append(m.payloads, payload)
		w.WriteHeader(http.StatusOK)
	})
}

func (m *mailStub) received() []map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]string{}, m.payloads...)
}

type testEnv struct {
	server *Server
	jobs   *repositories.Jobs
	mail   *mailStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbContext, err := repositories.NewDbContext(":memory:")
	assert.NoError(t, err)
	assert.NoError(t, dbContext.Migrate())
	t.Cleanup(func() { _ = dbContext.Close() })

	stub := &mailStub{}
	mailServer := httptest.NewServer(stub.handler())
	t.Cleanup(mailServer.Close)

	bus := EventBus.New()
	jobs := repositories.NewJobsRepository(dbContext.DB, bus)
	candidates := repositories.NewCandidatesRepository(dbContext.DB, bus)
	activities := repositories.NewActivitiesRepository(dbContext.DB, bus)
	templates := repositories.NewTemplatesRepository(dbContext.DB, bus)
	interviews := repositories.NewInterviewsRepository(dbContext.DB, bus)

	mailClient := resend.NewClient(mailServer.URL)

	notifier, err := services.NewStageNotifier(bus, templates, mailClient)
	assert.NoError(t, err)

	_, err = services.NewActivityRecorder(bus, activities)
	assert.NoError(t, err)

	pipeline := services.NewPipeline(bus, candidates, jobs, notifier)

	snapshotter, err := analytics.NewSnapshotter(config.AnalyticsConfig{
		RefreshSchedule: "@every 1h",
		CacheTTL:        time.Minute,
	}, bus, candidates, jobs, interviews)
	assert.NoError(t, err)
	t.Cleanup(snapshotter.Stop)

	resumes, err := storage.NewResumeStore(config.StorageConfig{
		ResumeDir:      t.TempDir(),
		MaxUploadBytes: 1024,
	})
	assert.NoError(t, err)

	server := NewServer(":0", Dependencies{
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

	return &testEnv{server: server, jobs: jobs, mail: stub}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	env.server.server.Handler.ServeHTTP(recorder, req)
	return recorder
}

func (env *testEnv) addJob(t *testing.T, title string) entities.Job {
	t.Helper()
	job := entities.NewJob(title, "Engineering", "Remote", "full-time")
	assert.NoError(t, env.jobs.Add(context.Background(), job))
	return job
}

func applyForm(t *testing.T, fields map[string]string, resumeName string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	if resumeName != "" {
		part, err := writer.CreateFormFile("resume", resumeName)
		assert.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fake"))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func Test_Apply_ShouldCreateCandidateInAppliedStage(t *testing.T) {

	env := newTestEnv(t)
	job := env.addJob(t, "Backend Engineer")

	body, contentType := applyForm(t, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
		"phone":    "555-0101",
	}, "resume.pdf")

	req := httptest.NewRequest("POST", "/api/careers/"+job.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	env.server.server.Handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "applied", response["stage"])
	assert.Contains(t, response["resumeUrl"], "/resumes/")
}

func Test_Apply_WhenJobClosed_ShouldReturn404(t *testing.T) {

	env := newTestEnv(t)
	job := env.addJob(t, "Old Role")
	assert.NoError(t, env.jobs.UpdateStatus(context.Background(), job.ID, entities.JobStatusClosed))

	body, contentType := applyForm(t, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
	}, "")

	req := httptest.NewRequest("POST", "/api/careers/"+job.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	env.server.server.Handler.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_MoveStage_ShouldNotifyCandidate(t *testing.T) {

	env := newTestEnv(t)
	job := env.addJob(t, "Backend Engineer")

	body, contentType := applyForm(t, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
	}, "")
	req := httptest.NewRequest("POST", "/api/careers/"+job.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	env.server.server.Handler.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusCreated, recorder.Code)

	var created map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	candidateID := created["id"].(string)

	recorder = env.do(t, "PATCH", "/api/candidates/"+candidateID+"/stage",
		map[string]string{"stage": "interview"})
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response transitionResponse
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "interview", response.Stage)
	assert.True(t, response.NotificationSent)

	payloads := env.mail.received()
	assert.Len(t, payloads, 1)
	assert.Equal(t, "jane@example.com", payloads[0]["candidateEmail"])
	assert.Equal(t, "applied", payloads[0]["oldStage"])
	assert.Equal(t, "interview", payloads[0]["newStage"])
	assert.Equal(t, "Backend Engineer", payloads[0]["jobTitle"])
}

func Test_MoveStage_WhenMailServiceDown_ShouldStillSucceedWithWarning(t *testing.T) {

	env := newTestEnv(t)
	env.mail.fail = true
	job := env.addJob(t, "Backend Engineer")

	body, contentType := applyForm(t, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
	}, "")
	req := httptest.NewRequest("POST", "/api/careers/"+job.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	env.server.server.Handler.ServeHTTP(recorder, req)

	var created map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	candidateID := created["id"].(string)

	recorder = env.do(t, "PATCH", "/api/candidates/"+candidateID+"/stage",
		map[string]string{"stage": "offer"})
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response transitionResponse
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.False(t, response.NotificationSent)
	assert.NotEmpty(t, response.Warning)

	// The stage update survived the failed notification.
	recorder = env.do(t, "GET", "/api/candidates/"+candidateID, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"CurrentStage":"offer"`)
}

func Test_MoveStage_WhenStageMissing_ShouldReturn400(t *testing.T) {

	env := newTestEnv(t)

	recorder := env.do(t, "PATCH", "/api/candidates/whatever/stage", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_ExportCandidates_ShouldSetDispositionFilename(t *testing.T) {

	env := newTestEnv(t)
	job := env.addJob(t, "Backend Engineer")

	body, contentType := applyForm(t, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@example.com",
	}, "")
	req := httptest.NewRequest("POST", "/api/careers/"+job.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	env.server.server.Handler.ServeHTTP(httptest.NewRecorder(), req)

	recorder := env.do(t, "GET", "/api/exports/candidates?format=csv", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	disposition := recorder.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "candidates-")
	assert.Contains(t, disposition, ".csv")
	assert.True(t, strings.Contains(recorder.Body.String(), "Jane Doe"))
}

func Test_ExportCandidates_WhenEmpty_ShouldReturn404(t *testing.T) {

	env := newTestEnv(t)

	recorder := env.do(t, "GET", "/api/exports/candidates?format=csv", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_Dashboard_ShouldReturnSnapshot(t *testing.T) {

	env := newTestEnv(t)
	env.addJob(t, "Backend Engineer")

	recorder := env.do(t, "GET", "/api/analytics/dashboard", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var snapshot analytics.Snapshot
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	assert.Equal(t, 1, snapshot.Headline.ActiveJobs)
	assert.Equal(t, 0, snapshot.Headline.TotalCandidates)
}

func Test_BulkStage_ShouldReportUpdatedCount(t *testing.T) {

	env := newTestEnv(t)
	job := env.addJob(t, "Backend Engineer")

	var ids []string
	for _, name := range []string{"Jane Doe", "John Smith", "Ada Lovelace"} {
		body, contentType := applyForm(t, map[string]string{
			"fullName": name,
			"email":    strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@example.com",
		}, "")
		req := httptest.NewRequest("POST", "/api/careers/"+job.ID+"/apply", body)
		req.Header.Set("Content-Type", contentType)
		recorder := httptest.NewRecorder()
		env.server.server.Handler.ServeHTTP(recorder, req)

		var created map[string]any
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
		ids = append(ids, created["id"].(string))
	}

	recorder := env.do(t, "POST", "/api/candidates/bulk/stage", map[string]any{
		"ids":   ids,
		"stage": "screening",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "updated 3 of 3", response["message"])
	assert.Equal(t, float64(3), response["updated"])
	assert.Len(t, env.mail.received(), 3)
}
