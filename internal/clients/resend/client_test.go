package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBufferString(`{"id":"msg_1"}`)),
	}
}

func errorResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(`{"error":"boom"}`)),
	}
}

func Test_SendStageChangeNotice_ShouldPostStructuredPayload(t *testing.T) {

	assert := assert.New(t)

	var payload map[string]string
	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		if req.URL.String() != "http://functions.local/send-candidate-notification" {
			return false
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return false
		}
		return json.Unmarshal(body, &payload) == nil
	})).Return(okResponse(), nil)

	client := NewClient("http://functions.local")
	client.SetHTTPClient(mockClient)

	err := client.SendStageChangeNotice(context.Background(), StageChangeNotice{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		OldStage:       "applied",
		NewStage:       "interview",
		JobTitle:       "Backend Engineer",
	})
	assert.NoError(err)

	assert.Equal("Jane Doe", payload["candidateName"])
	assert.Equal("jane@example.com", payload["candidateEmail"])
	assert.Equal("applied", payload["oldStage"])
	assert.Equal("interview", payload["newStage"])
	assert.Equal("Backend Engineer", payload["jobTitle"])
}

func Test_SendComposed_ShouldPostRenderedEmail(t *testing.T) {

	assert := assert.New(t)

	var payload map[string]string
	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		if req.URL.String() != "http://functions.local/send-custom-email" {
			return false
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return false
		}
		return json.Unmarshal(body, &payload) == nil
	})).Return(okResponse(), nil)

	client := NewClient("http://functions.local")
	client.SetHTTPClient(mockClient)

	err := client.SendComposed(context.Background(), ComposedEmail{
		To:            "jane@example.com",
		Subject:       "Interview Invitation",
		HTML:          "<p>Hello</p>",
		CandidateName: "Jane Doe",
		CandidateID:   "c1",
	})
	assert.NoError(err)

	assert.Equal("jane@example.com", payload["to"])
	assert.Equal("Interview Invitation", payload["subject"])
	assert.Equal("<p>Hello</p>", payload["html"])
	assert.Equal("c1", payload["candidateId"])
}

func Test_SendStageChangeNotice_WhenServerErrors_ShouldFail(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(errorResponse(500), nil)

	client := NewClient("http://functions.local")
	client.SetHTTPClient(mockClient)

	err := client.SendStageChangeNotice(context.Background(), StageChangeNotice{
		CandidateEmail: "jane@example.com",
	})
	assert.Error(t, err)
}
