package bus

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/activity"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

// Client is the outbound JSON-RPC-flavored HTTP client used to reach the
// orchestrator's report_url for SetState/SetUsage. One Client per
// service-bus run; requests are not pooled beyond the shared http.Client.
type Client struct {
	reportURL  string
	httpClient *http.Client
}

// NewClient builds a Client posting to reportURL, each request bounded by
// timeout.
func NewClient(reportURL string, timeout time.Duration) *Client {
	return &Client{
		reportURL:  reportURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type setStateRequest struct {
	ActivityID string         `json:"activity_id"`
	State      activity.State `json:"state"`
}

type setUsageRequest struct {
	ActivityID string         `json:"activity_id"`
	Usage      activity.Usage `json:"usage"`
}

// SetState posts the activity's current state to the orchestrator.
func (c *Client) SetState(ctx context.Context, activityID string, state activity.State) error {
	return c.post(ctx, "setState", setStateRequest{ActivityID: activityID, State: state})
}

// SetUsage posts a usage sample to the orchestrator.
func (c *Client) SetUsage(ctx context.Context, activityID string, usage activity.Usage) error {
	return c.post(ctx, "setUsage", setUsageRequest{ActivityID: activityID, Usage: usage})
}

func (c *Client) post(ctx context.Context, rpcName string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return apperr.Wrap(apperr.Transport, err, "encode %s request", rpcName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.reportURL+"/"+rpcName, bytes.NewReader(encoded))
	if err != nil {
		return apperr.Wrap(apperr.Transport, err, "build %s request", rpcName)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.Transport, err, "%s call to %s", rpcName, c.reportURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var envelope struct {
			Error errorEnvelope `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error.Message != "" {
			return apperr.New(apperr.Transport, "%s rejected: %s: %s", rpcName, envelope.Error.Kind, envelope.Error.Message)
		}
		return apperr.New(apperr.Transport, "%s rejected: status %d", rpcName, resp.StatusCode)
	}
	return nil
}

var _ activity.Reporter = (*Client)(nil)
