package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/models"
)

// HTTPClient implements DataSource by calling the IronQuest REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	userID     int
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The
// userID is the default for requests whose context carries none.
func NewHTTPClient(baseURL string, userID int) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) userPath(userID int, suffix string) string {
	if userID <= 0 {
		userID = c.userID
	}
	return fmt.Sprintf("/api/v1/users/%d%s", userID, suffix)
}

func (c *HTTPClient) GetUserStats(ctx context.Context, userID int) (*models.UserStatsRow, error) {
	var stats models.UserStatsRow
	if err := c.get(ctx, c.userPath(userID, "/stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutRow, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	var workouts []models.WorkoutRow
	if err := c.get(ctx, c.userPath(userID, "/workouts"), params, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) QueryWorkoutSets(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error) {
	var resp struct {
		Sets []models.WorkoutSetRow `json:"sets"`
	}
	if err := c.get(ctx, c.userPath(userID, "/workouts/"+workoutID.String()), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sets, nil
}

func (c *HTTPClient) EquippedItems(ctx context.Context, userID int) ([]models.EquippedItemRow, error) {
	var equipped []models.EquippedItemRow
	if err := c.get(ctx, c.userPath(userID, "/equipment"), nil, &equipped); err != nil {
		return nil, err
	}
	return equipped, nil
}

func (c *HTTPClient) Inventory(ctx context.Context, userID int) ([]models.InventoryRow, error) {
	var inv []models.InventoryRow
	if err := c.get(ctx, c.userPath(userID, "/inventory"), nil, &inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (c *HTTPClient) Unlocks(ctx context.Context, userID int) ([]models.UnlockRow, error) {
	var unlocks []models.UnlockRow
	if err := c.get(ctx, c.userPath(userID, "/unlocks"), nil, &unlocks); err != nil {
		return nil, err
	}
	return unlocks, nil
}
