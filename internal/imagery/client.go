package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/cropsight/cropsight/internal/index"
	"github.com/cropsight/cropsight/internal/metrics"
)

const defaultTimeout = 15 * time.Second

// ErrNoScene is returned when the catalog has no scene for the requested
// bounds and window.
var ErrNoScene = errors.New("no scene available in window")

// ClientConfig carries the settings for the HTTP provider client.
type ClientConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Selection    string
}

// Client talks to the imagery service over its JSON API. When a client id is
// configured, requests carry an OAuth2 client-credentials token. Calls are
// never retried; failures surface to the caller.
type Client struct {
	baseURL   string
	selection string
	client    *http.Client
	down      atomic.Bool
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		hc = creds.Client(ctx)
		hc.Timeout = timeout
	}
	selection := cfg.Selection
	if selection == "" {
		selection = SelectMostRecent
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		selection: selection,
		client:    hc,
	}
}

type boundsPayload struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

func toBoundsPayload(b orb.Bound) boundsPayload {
	return boundsPayload{MinLng: b.Min[0], MinLat: b.Min[1], MaxLng: b.Max[0], MaxLat: b.Max[1]}
}

type sceneQuery struct {
	Bounds    boundsPayload `json:"bounds"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Selection string        `json:"selection,omitempty"`
}

type selectSceneResponse struct {
	Scene *Scene `json:"scene"`
}

type listScenesResponse struct {
	Scenes []Scene `json:"scenes"`
}

type renderRequest struct {
	Raster Raster              `json:"raster"`
	Vis    index.Visualization `json:"visualization"`
}

type renderResponse struct {
	URLTemplate string `json:"urlTemplate"`
}

type reduceRequest struct {
	Raster Raster `json:"raster"`
	Region Region `json:"region"`
	Stat   string `json:"stat"`
}

type reduceResponse struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func (c *Client) SelectScene(ctx context.Context, bounds orb.Bound, window Window) (Scene, error) {
	q := sceneQuery{Bounds: toBoundsPayload(bounds), Start: window.Start, End: window.End, Selection: c.selection}
	var resp selectSceneResponse
	if err := c.post(ctx, "select_scene", "/v1/scenes:select", q, &resp); err != nil {
		return Scene{}, err
	}
	if resp.Scene == nil || resp.Scene.ID == "" {
		return Scene{}, ErrNoScene
	}
	return *resp.Scene, nil
}

func (c *Client) ListScenes(ctx context.Context, bounds orb.Bound, window Window) ([]Scene, error) {
	q := sceneQuery{Bounds: toBoundsPayload(bounds), Start: window.Start, End: window.End}
	var resp listScenesResponse
	if err := c.post(ctx, "list_scenes", "/v1/scenes:list", q, &resp); err != nil {
		return nil, err
	}
	return resp.Scenes, nil
}

func (c *Client) Render(ctx context.Context, raster Raster, vis index.Visualization) (string, error) {
	var resp renderResponse
	if err := c.post(ctx, "render", "/v1/rasters:render", renderRequest{Raster: raster, Vis: vis}, &resp); err != nil {
		return "", err
	}
	if resp.URLTemplate == "" {
		return "", fmt.Errorf("imagery service returned an empty tile template")
	}
	return resp.URLTemplate, nil
}

func (c *Client) Reduce(ctx context.Context, raster Raster, region Region) (float64, bool, error) {
	var resp reduceResponse
	if err := c.post(ctx, "reduce", "/v1/rasters:reduce", reduceRequest{Raster: raster, Region: region, Stat: "mean"}, &resp); err != nil {
		return 0, false, err
	}
	if !resp.Valid {
		return 0, false, nil
	}
	return resp.Value, true, nil
}

// Reachable reports whether the last call to the service succeeded. A fresh
// client reports true.
func (c *Client) Reachable() bool {
	return !c.down.Load()
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("error encoding %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ProviderCallDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.down.Store(true)
		metrics.ProviderCallsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("error calling imagery service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.down.Store(true)
		metrics.ProviderCallsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("imagery service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.down.Store(true)
		metrics.ProviderCallsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("error decoding %s response: %w", op, err)
	}
	c.down.Store(false)
	metrics.ProviderCallsTotal.WithLabelValues(op, "ok").Inc()
	slog.Debug("imagery call", "op", op, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
