package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/strandlab/foldsim/internal/kinetics"
)

// SystemBuilder provides a fluent API for building system configurations.
// Use it to describe a two-strand folding system and the rate model its
// trajectories should use.
type SystemBuilder struct {
	cfg kinetics.SystemConfig
}

// NewSystem creates a new system builder with the given name.
// The name identifies the system on the server and in stored results.
func NewSystem(name string) *SystemBuilder {
	sb := &SystemBuilder{}
	sb.cfg.Name = name
	sb.cfg.Options = kinetics.DefaultOptions()
	return sb
}

// Sequence sets the strand sequence. Pair energies are derived from it
// unless PairEnergies is called as well.
func (sb *SystemBuilder) Sequence(seq string) *SystemBuilder {
	sb.cfg.Sequence = seq
	return sb
}

// PairEnergies sets the per-pair formation free energies (kcal/mol),
// overriding any sequence-derived values.
func (sb *SystemBuilder) PairEnergies(dG ...float64) *SystemBuilder {
	sb.cfg.PairEnergies = dG
	return sb
}

// StartPairs sets how many base pairs are formed at time zero.
// Zero starts the strands dissociated.
func (sb *SystemBuilder) StartPairs(n int) *SystemBuilder {
	sb.cfg.StartPairs = n
	return sb
}

// StopOnDissociation makes dissociation an absorbing state, turning the
// trajectory into a first-passage measurement.
func (sb *SystemBuilder) StopOnDissociation() *SystemBuilder {
	sb.cfg.StopOnDissociation = true
	return sb
}

// RateMethod selects the rate model: "metropolis", "kawasaki" or "arrhenius".
func (sb *SystemBuilder) RateMethod(method string) *SystemBuilder {
	sb.cfg.Options.RateMethod = method
	return sb
}

// Temperature sets the simulation temperature in degrees Celsius.
func (sb *SystemBuilder) Temperature(celsius float64) *SystemBuilder {
	sb.cfg.Options.Temperature = celsius
	return sb
}

// JoinConcentration sets the effective strand concentration (M) scaling the
// bimolecular join rate.
func (sb *SystemBuilder) JoinConcentration(c float64) *SystemBuilder {
	sb.cfg.Options.JoinConcentration = c
	return sb
}

// Seed sets the base random seed for trajectories of this system.
func (sb *SystemBuilder) Seed(seed int64) *SystemBuilder {
	sb.cfg.Options.Seed = seed
	return sb
}

// MaxSteps caps the number of reaction events per trajectory. Zero is
// uncapped.
func (sb *SystemBuilder) MaxSteps(n int64) *SystemBuilder {
	sb.cfg.Options.MaxSteps = n
	return sb
}

// SimulationTime caps the simulated time per trajectory, in seconds.
func (sb *SystemBuilder) SimulationTime(seconds float64) *SystemBuilder {
	sb.cfg.Options.SimulationTime = seconds
	return sb
}

// Arrhenius attaches per-context Arrhenius parameters; required when the
// rate method is "arrhenius".
func (sb *SystemBuilder) Arrhenius(params kinetics.ArrheniusConfig) *SystemBuilder {
	sb.cfg.Options.Arrhenius = &params
	return sb
}

// Build converts the builder to a SystemConfig that can be used with
// RegisterSystem or other foldsim APIs.
func (sb *SystemBuilder) Build() kinetics.SystemConfig {
	return sb.cfg
}

// TrajectoryStatus is the server's view of one trajectory: whether it is
// still running and, once finished, its result.
type TrajectoryStatus struct {
	ID      string                     `json:"id"`
	Running bool                       `json:"running"`
	Result  *kinetics.TrajectoryResult `json:"result,omitempty"`
}

// NotifierInfo describes one registered notifier.
type NotifierInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ErrTrajectoryRunning is returned by WaitForResult when the context expires
// before the trajectory finishes.
var ErrTrajectoryRunning = errors.New("client: trajectory still running")

// Client talks to a foldsim-server instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient creates a client using a caller-provided http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, http: httpClient}
}

// do sends a request and decodes the JSON response into out (when non-nil).
// Any non-2xx status becomes an error carrying the response body.
func (c *Client) do(ctx context.Context, method string, pathParts []string, query url.Values, body, out any) error {
	u, err := url.JoinPath(c.baseURL, pathParts...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Health checks whether the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, []string{"healthz"}, nil, nil, nil)
}

// RegisterSystem registers a system configuration on the server.
func (c *Client) RegisterSystem(ctx context.Context, cfg kinetics.SystemConfig) error {
	return c.do(ctx, http.MethodPost, []string{"systems"}, nil, cfg, nil)
}

// ListSystems returns the names of every registered system.
func (c *Client) ListSystems(ctx context.Context) ([]string, error) {
	var resp map[string][]string
	if err := c.do(ctx, http.MethodGet, []string{"systems"}, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp["systems"], nil
}

// GetSystem fetches a registered system config by name.
func (c *Client) GetSystem(ctx context.Context, name string) (kinetics.SystemConfig, error) {
	var cfg kinetics.SystemConfig
	err := c.do(ctx, http.MethodGet, []string{"systems", name}, nil, nil, &cfg)
	return cfg, err
}

// StartTrajectory starts a trajectory for the named system and returns its
// ID. A zero seed falls back to the system config seed.
func (c *Client) StartTrajectory(ctx context.Context, system string, seed int64) (string, error) {
	var query url.Values
	if seed != 0 {
		query = url.Values{"seed": []string{fmt.Sprintf("%d", seed)}}
	}
	var resp map[string]string
	if err := c.do(ctx, http.MethodPost, []string{"systems", system, "trajectories"}, query, nil, &resp); err != nil {
		return "", err
	}
	return resp["trajectory_id"], nil
}

// ListTrajectories returns every trajectory ID known to the server.
func (c *Client) ListTrajectories(ctx context.Context) ([]string, error) {
	var resp map[string][]string
	if err := c.do(ctx, http.MethodGet, []string{"trajectories"}, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp["trajectories"], nil
}

// GetTrajectory fetches the status of one trajectory.
func (c *Client) GetTrajectory(ctx context.Context, id string) (TrajectoryStatus, error) {
	var status TrajectoryStatus
	err := c.do(ctx, http.MethodGet, []string{"trajectories", id}, nil, nil, &status)
	return status, err
}

// StopTrajectory asks the server to halt a running trajectory.
func (c *Client) StopTrajectory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, []string{"trajectories", id, "stop"}, nil, nil, nil)
}

// DeleteTrajectory stops (if needed) and removes a trajectory.
func (c *Client) DeleteTrajectory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, []string{"trajectories", id}, nil, nil, nil)
}

// WaitForResult polls a trajectory until it finishes or the context expires.
func (c *Client) WaitForResult(ctx context.Context, id string, pollEvery time.Duration) (kinetics.TrajectoryResult, error) {
	if pollEvery <= 0 {
		pollEvery = 50 * time.Millisecond
	}
	for {
		status, err := c.GetTrajectory(ctx, id)
		if err != nil {
			return kinetics.TrajectoryResult{}, err
		}
		if status.Result != nil {
			return *status.Result, nil
		}
		select {
		case <-ctx.Done():
			return kinetics.TrajectoryResult{}, ErrTrajectoryRunning
		case <-time.After(pollEvery):
		}
	}
}

// ListResults fetches persisted trajectory results, newest first. An empty
// system name lists results for every system.
func (c *Client) ListResults(ctx context.Context, system string) ([]kinetics.TrajectoryResult, error) {
	var query url.Values
	if system != "" {
		query = url.Values{"system": []string{system}}
	}
	var resp map[string][]kinetics.TrajectoryResult
	if err := c.do(ctx, http.MethodGet, []string{"results"}, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp["results"], nil
}

// RegisterWebhook registers a webhook notifier that will receive trajectory
// events as JSON POSTs. Headers are optional.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL string, headers map[string]string) error {
	config := map[string]any{"url": webhookURL}
	if len(headers) > 0 {
		config["headers"] = headers
	}
	body := map[string]any{
		"type":   "webhook",
		"id":     id,
		"config": config,
	}
	return c.do(ctx, http.MethodPost, []string{"notifiers"}, nil, body, nil)
}

// ListNotifiers returns the notifiers registered on the server.
func (c *Client) ListNotifiers(ctx context.Context) ([]NotifierInfo, error) {
	var resp map[string][]NotifierInfo
	if err := c.do(ctx, http.MethodGet, []string{"notifiers"}, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp["notifiers"], nil
}

// UnregisterNotifier removes a notifier by ID.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, []string{"notifiers", id}, nil, nil, nil)
}
