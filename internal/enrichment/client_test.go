package enrichment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewise/internal/platform/metrics"
)

const baseURL = "http://analyzer.local:5001"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(baseURL, 2*time.Second, slog.New(slog.DiscardHandler), metrics.NewForTest())
	httpmock.ActivateNonDefault(c.http)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestAnalyze_ReturnsUpstreamPayloadVerbatim(t *testing.T) {
	c := newTestClient(t)

	upstream := `{"ai_observation":"Detected: pitted_surface (84%)","suggested_severity":"CRITICAL","detections":["pitted_surface (84%)"]}`
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/analyze",
		httpmock.NewStringResponder(http.StatusOK, upstream))

	result := c.Analyze(context.Background(), "uploads/1734-boiler.jpg")
	assert.JSONEq(t, upstream, string(result))
}

func TestAnalyze_SendsFilePath(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/analyze",
		func(req *http.Request) (*http.Response, error) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "uploads/1734-boiler.jpg", body["file_path"])
			return httpmock.NewStringResponse(http.StatusOK, `{"ai_observation":"ok","suggested_severity":null}`), nil
		})

	c.Analyze(context.Background(), "uploads/1734-boiler.jpg")
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestAnalyze_FallsBackWhenUnreachable(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/analyze",
		httpmock.NewErrorResponder(context.DeadlineExceeded))

	result := c.Analyze(context.Background(), "uploads/x.jpg")
	assert.JSONEq(t, string(FallbackAnalysis), string(result))
}

func TestAnalyze_FallsBackOnServerError(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/analyze",
		httpmock.NewStringResponder(http.StatusInternalServerError, "model crashed"))

	result := c.Analyze(context.Background(), "uploads/x.jpg")
	assert.JSONEq(t, string(FallbackAnalysis), string(result))
}

func TestAnalyze_FallsBackOnMalformedPayload(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/analyze",
		httpmock.NewStringResponder(http.StatusOK, "<html>not json</html>"))

	result := c.Analyze(context.Background(), "uploads/x.jpg")
	assert.JSONEq(t, string(FallbackAnalysis), string(result))
}

func TestChat_HappyPath(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/chat",
		httpmock.NewStringResponder(http.StatusOK, `{"answer":"Check the relief valve seating."}`))

	resp := c.Chat(context.Background(), "why does the valve leak?")
	assert.Equal(t, "Check the relief valve seating.", resp.Answer)
}

func TestDegraded_TripsAfterRepeatedFailuresAndRecovers(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/analyze",
		httpmock.NewStringResponder(http.StatusInternalServerError, "model crashed"))

	for i := 0; i < 3; i++ {
		assert.False(t, c.Degraded(), "circuit must stay closed until the third consecutive failure")
		c.Analyze(context.Background(), "uploads/x.jpg")
	}
	assert.True(t, c.Degraded())

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/analyze",
		httpmock.NewStringResponder(http.StatusOK, `{"ai_observation":"ok","suggested_severity":null}`))

	c.Analyze(context.Background(), "uploads/x.jpg")
	assert.True(t, c.Degraded(), "one success is not enough to close the circuit")
	c.Analyze(context.Background(), "uploads/x.jpg")
	assert.False(t, c.Degraded())
}

func TestChat_DegradesOnFailure(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/chat",
		httpmock.NewStringResponder(http.StatusBadGateway, ""))

	resp := c.Chat(context.Background(), "anything")
	assert.Equal(t, FallbackChatAnswer, resp.Answer)
}
