// Package directory fetches the list of live rooms from the game server.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crewlink/internal/game"
	"crewlink/internal/logging"

	"go.uber.org/zap"
)

// ErrNoRoom is returned by Find when no entry matches
var ErrNoRoom = errors.New("room not found")

const maxBody = 1 << 20

// Entry is one room as listed by the server
type Entry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Room resolves the entry to a joinable room. The id carries "code|name";
// entries with a malformed id fall back to the code and name fields.
func (e Entry) Room() game.Room {
	if r, err := game.ParseRoomChoice(e.ID); err == nil {
		return r
	}
	name := e.Name
	if name == "" {
		name = e.Code
	}
	return game.Room{Code: e.Code, Name: name}
}

// Client talks to the directory endpoint
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// New creates a client for the server at base
func New(base *url.URL, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  logging.OrNop(log),
	}
}

// List returns the rooms currently known to the server
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	endpoint := c.base.ResolveReference(&url.URL{Path: "/rooms"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("fetch rooms: unexpected status %s", resp.Status)
	}

	var entries []Entry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}

	c.log.Debug("fetched rooms", zap.Int("count", len(entries)))
	return entries, nil
}

// Find picks the entry whose code or name matches ref, ignoring case
func Find(entries []Entry, ref string) (Entry, error) {
	ref = strings.TrimSpace(ref)
	for _, e := range entries {
		r := e.Room()
		if strings.EqualFold(r.Code, ref) || strings.EqualFold(e.ID, ref) {
			return e, nil
		}
	}
	for _, e := range entries {
		if strings.EqualFold(e.Room().Name, ref) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrNoRoom, ref)
}
