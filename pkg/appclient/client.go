// Package appclient is the presentation-side state controller: it fetches
// the aggregate once, keeps an in-memory snapshot, and patches only the
// affected slice after each successful mutation instead of refetching. If
// the initial fetch fails it falls back to a read-only local snapshot file
// (offline mode) and refuses every mutation.
package appclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/aggregate"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

// ErrOffline is returned by every mutation while the client runs from the
// static snapshot. Offline is a deliberate mode, not a transport failure,
// so callers can show a dedicated message instead of a generic error.
var ErrOffline = errors.New("offline mode: mutations are disabled")

// ErrNotLoaded is returned when the snapshot is used before Load.
var ErrNotLoaded = errors.New("app data not loaded")

// Config holds settings for the API client.
type Config struct {
	// BaseURL is the HTTP endpoint of the vistoria server, e.g. http://localhost:8080
	BaseURL string `yaml:"base_url" json:"base_url"`
	// SnapshotPath is the local read-only fallback file for offline mode
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 15 * time.Second,
	}
}

type Client struct {
	cfg  Config
	http *resty.Client

	mu      sync.RWMutex
	data    *models.AppData
	offline bool
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	httpc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{cfg: cfg, http: httpc}
}

type apiError struct {
	Message string `json:"message"`
}

// do issues a request and maps non-2xx replies onto the domain error set so
// callers can branch with errors.Is exactly like server-side code does.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	var apiErr apiError
	req.SetError(&apiErr)

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsSuccess() {
		return nil
	}

	msg := apiErr.Message
	if msg == "" {
		msg = strings.TrimSpace(string(resp.Body()))
	}
	switch resp.StatusCode() {
	case 400:
		return fmt.Errorf("%s: %w", msg, storage.ErrValidation)
	case 404:
		return fmt.Errorf("%s: %w", msg, storage.ErrNotFound)
	case 409:
		return fmt.Errorf("%s: %w", msg, storage.ErrConflict)
	case 503:
		return fmt.Errorf("%s: %w", msg, storage.ErrNotReady)
	default:
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode(), msg)
	}
}

// Load fetches the aggregate from the server. When the server is
// unreachable and a snapshot path is configured, the client switches to
// offline mode instead of failing.
func (c *Client) Load(ctx context.Context) error {
	var data models.AppData
	err := c.do(ctx, "GET", "/api/app-data", nil, &data)
	if err == nil {
		c.mu.Lock()
		c.data = &data
		c.offline = false
		c.mu.Unlock()
		return nil
	}

	if c.cfg.SnapshotPath == "" {
		return err
	}

	snap, snapErr := loadSnapshot(c.cfg.SnapshotPath)
	if snapErr != nil {
		return errors.Join(err, snapErr)
	}

	c.mu.Lock()
	c.data = snap
	c.offline = true
	c.mu.Unlock()
	return nil
}

// Close releases idle connections held by the transport. Safe to call more
// than once.
func (c *Client) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}

// Offline reports whether the client serves the static snapshot.
func (c *Client) Offline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offline
}

// Snapshot returns a deep copy of the current aggregate.
func (c *Client) Snapshot() (*models.AppData, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return nil, ErrNotLoaded
	}
	return aggregate.Clone(c.data), nil
}

// NormalizeEquipmentID applies the same cleanup the checklist search box
// does: trim whitespace and uppercase.
func NormalizeEquipmentID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// FindEquipment is a local exact-match lookup over the cached snapshot.
func (c *Client) FindEquipment(id string) (*storage.EquipmentRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return nil, false
	}
	return aggregate.FindEquipment(c.data, id)
}

func (c *Client) guardMutation() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.offline {
		return ErrOffline
	}
	if c.data == nil {
		return ErrNotLoaded
	}
	return nil
}
