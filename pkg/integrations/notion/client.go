// Package notion upserts daily metric rows into a Notion database through the
// Notion REST API.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/domain/metrics"
	httputil "github.com/fitsync/server/pkg/infrastructure/http"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// Client is an API client for the Notion database destination
type Client struct {
	token      string
	databaseID string
	baseURL    string
	client     *http.Client
}

// NewClient creates a new Notion API client
func NewClient(token, databaseID string) *Client {
	return &Client{
		token:      token,
		databaseID: databaseID,
		baseURL:    defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Name() string {
	return shared.DestinationNotion
}

// UpsertDay finds the page whose Date property equals the given date and
// overwrites its metric properties; when no page exists one is created.
func (c *Client) UpsertDay(ctx context.Context, date string, day metrics.DailyMetrics) error {
	pageID, err := c.findPageByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("query page for %s: %w", date, err)
	}

	props, err := buildProperties(date, day)
	if err != nil {
		return err
	}

	if pageID != "" {
		return c.updatePage(ctx, pageID, props)
	}
	return c.createPage(ctx, props)
}

// page is the subset of the page object we read back.
type page struct {
	ID string `json:"id"`
}

type queryResponse struct {
	Results []page `json:"results"`
}

// findPageByDate returns the id of the page whose Date equals date, or ""
// when none exists. Exact equality match, never a range filter.
func (c *Client) findPageByDate(ctx context.Context, date string) (string, error) {
	body := map[string]interface{}{
		"filter": map[string]interface{}{
			"property": "Date",
			"date":     map[string]string{"equals": date},
		},
		"page_size": 1,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/databases/%s/query", c.databaseID), body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode query response: %w", err)
	}
	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].ID, nil
}

func (c *Client) createPage(ctx context.Context, props map[string]interface{}) error {
	body := map[string]interface{}{
		"parent":     map[string]string{"database_id": c.databaseID},
		"properties": props,
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/pages", body)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) updatePage(ctx context.Context, pageID string, props map[string]interface{}) error {
	body := map[string]interface{}{
		"properties": props,
	}
	resp, err := c.doRequest(ctx, http.MethodPatch, "/pages/"+pageID, body)
	if err != nil {
		return fmt.Errorf("update page %s: %w", pageID, err)
	}
	resp.Body.Close()
	return nil
}

// buildProperties maps a day's metrics onto the database's property schema.
// Calories and Active Minutes are rich_text columns in the target database,
// so their numbers are written as strings.
func buildProperties(date string, day metrics.DailyMetrics) (map[string]interface{}, error) {
	dayName, err := weekdayName(date)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"Day": map[string]interface{}{
			"title": []map[string]interface{}{
				{"text": map[string]string{"content": dayName}},
			},
		},
		"Date": map[string]interface{}{
			"date": map[string]string{"start": date},
		},
		"Steps": map[string]interface{}{
			"number": day.Steps,
		},
		"Distance": map[string]interface{}{
			"number": day.DistanceKm,
		},
		"Calories": map[string]interface{}{
			"rich_text": []map[string]interface{}{
				{"text": map[string]string{"content": fmt.Sprintf("%d", day.Calories)}},
			},
		},
		"Active Minutes": map[string]interface{}{
			"rich_text": []map[string]interface{}{
				{"text": map[string]string{"content": fmt.Sprintf("%d", day.ActiveMinutes)}},
			},
		},
	}, nil
}

// weekdayName resolves a YYYY-MM-DD date to its weekday name ("Sunday"...).
func weekdayName(date string) (string, error) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", date, err)
	}
	return t.Weekday().String(), nil
}

// doRequest performs an authenticated Notion API request
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if err := httputil.ParseErrorResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}
