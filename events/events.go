// Package events is a small typed client for the external event store
// (Supabase/PostgREST), queryable by attempt id and deletable by age.
//
// Grounded on original_source/moderation-service/src/db.rs's
// get_events_for_attempt and delete_supabase_events, which drive the
// REST interface (postgrest-rs) with the same query/delete shape this
// package exposes. No example repo in the pack ships a Go PostgREST
// client, so this component is built directly on stdlib net/http and
// encoding/json rather than importing one (see DESIGN.md).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/errs"
	"examengine/models"
)

// Client talks to one Supabase/PostgREST project's "events" table.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Client from the project's base URL and API key,
// per §6's SUPABASE_URL / SUPABASE_KEY; the /rest/v1 path is appended
// to the base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ForAttempt fetches every event recorded for attemptID, the way T2
// gathers an attempt's activity stream before computing its moderation
// score. Records that fail to deserialize are skipped, not fatal.
func (c *Client) ForAttempt(ctx context.Context, attemptID primitive.ObjectID) ([]models.Event, error) {
	q := url.Values{}
	q.Set("attempt_id", "eq."+attemptID.Hex())

	req, err := c.newRequest(ctx, http.MethodGet, "events", q, nil)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := c.doJSON(req, &raw); err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(raw))
	for _, r := range raw {
		var ev models.Event
		if err := json.Unmarshal(r, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// DeleteOlderThan removes every event with timestamp < cutoff, per T5.
// Returns the number of rows the store reports as deleted.
func (c *Client) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	q := url.Values{}
	q.Set("timestamp", "lt."+cutoff.UTC().Format(time.RFC3339))

	req, err := c.newRequest(ctx, http.MethodDelete, "events", q, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "return=representation")

	var deleted []json.RawMessage
	if err := c.doJSON(req, &deleted); err != nil {
		return 0, err
	}
	return len(deleted), nil
}

func (c *Client) newRequest(ctx context.Context, method, resource string, query url.Values, body []byte) (*http.Request, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, resource)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageIO, err, "events: build request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "events: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errs.New(errs.KindStorageIO, "events: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(errs.KindDeserialization, err, "events: decode response")
	}
	return nil
}
