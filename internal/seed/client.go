package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client drives the IronQuest session API for one replayed workout.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the IronQuest server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.serverURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Body)
}

func (c *Client) sessionPath(userID int, suffix string) string {
	return fmt.Sprintf("/api/v1/users/%d/session%s", userID, suffix)
}

// StartSession opens a session for the user.
func (c *Client) StartSession(userID int) error {
	return c.do(http.MethodPost, c.sessionPath(userID, "/"), nil, nil)
}

// CancelSession discards the user's active session. Used for cleanup when a
// replay fails partway.
func (c *Client) CancelSession(userID int) error {
	return c.do(http.MethodDelete, c.sessionPath(userID, "/"), nil, nil)
}

// SetNotes attaches notes to the active session.
func (c *Client) SetNotes(userID int, notes string) error {
	return c.do(http.MethodPut, c.sessionPath(userID, "/notes"), map[string]string{"notes": notes}, nil)
}

// AddExercise appends an exercise and returns its index.
func (c *Client) AddExercise(userID int, name, kind string) (int, error) {
	var resp struct {
		ExerciseIndex int `json:"exerciseIndex"`
	}
	payload := map[string]string{"name": name}
	if kind != "" {
		payload["kind"] = kind
	}
	if err := c.do(http.MethodPost, c.sessionPath(userID, "/exercises"), payload, &resp); err != nil {
		return 0, err
	}
	return resp.ExerciseIndex, nil
}

// AddSet appends an empty set and returns its index.
func (c *Client) AddSet(userID, exerciseIndex int) (int, error) {
	var resp struct {
		SetIndex int `json:"setIndex"`
	}
	path := c.sessionPath(userID, fmt.Sprintf("/exercises/%d/sets", exerciseIndex))
	if err := c.do(http.MethodPost, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.SetIndex, nil
}

// CompleteSet fills in a set's fields and marks it completed.
func (c *Client) CompleteSet(userID, exerciseIndex, setIndex int, set LogSet) error {
	payload := map[string]any{"completed": true}
	if set.Reps != nil {
		payload["reps"] = *set.Reps
	}
	if set.Weight != nil {
		payload["weight"] = *set.Weight
	}
	if set.Duration != "" {
		payload["duration"] = set.Duration
	}
	if set.Distance != nil {
		payload["distance"] = *set.Distance
	}
	path := c.sessionPath(userID, fmt.Sprintf("/exercises/%d/sets/%d", exerciseIndex, setIndex))
	return c.do(http.MethodPut, path, payload, nil)
}

// FinishResult is the subset of the finish response the seeder reports.
type FinishResult struct {
	WorkoutID string `json:"workoutId"`
	Rewards   struct {
		TotalXP   int `json:"totalXP"`
		TotalGold int `json:"totalGold"`
	} `json:"rewards"`
}

// Finish completes the session. A 409 from a concurrent stats update is
// retryable; back off and resend up to 3 times.
func (c *Client) Finish(userID int) (*FinishResult, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		var result FinishResult
		err := c.do(http.MethodPost, c.sessionPath(userID, "/finish"), nil, &result)
		if err == nil {
			return &result, nil
		}

		lastErr = err
		var apiErr *apiError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
			return nil, err
		}
	}
	return nil, fmt.Errorf("finish failed after retries: %w", lastErr)
}
