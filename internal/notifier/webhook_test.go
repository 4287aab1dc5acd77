package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonhttp "renovation-matching/internal/common/http"
	"renovation-matching/internal/models"
)

func TestWebhookNotifier_Notify(t *testing.T) {
	var (
		gotAuth string
		gotType string
		gotReq  models.NotifyRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, "secret-key", commonhttp.NewClient(5*time.Second))
	req := createTestRequest(0.8)
	req.MissingActivities = []string{"5.1"}

	require.NoError(t, n.Notify(context.Background(), req))
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "c-1", gotReq.CompanyID)
	assert.Equal(t, "p-1", gotReq.ProjectID)
	assert.Equal(t, models.ChannelEmail, gotReq.Type)
	assert.InDelta(t, 0.8, gotReq.MatchingScore, 1e-9)
	assert.Equal(t, []string{"5.1"}, gotReq.MissingActivities)
	assert.Equal(t, ChannelWebhook, n.Channel())
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, "", commonhttp.NewClient(5*time.Second))
	err := n.Notify(context.Background(), createTestRequest(0.8))
	require.Error(t, err)

	var statusErr *commonhttp.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "upstream unavailable")
}
