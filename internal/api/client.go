// Package api talks to the map REST API. Client implements builder.Store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MudraBuilder/internal/builder"
)

// DefaultTimeout bounds a single API call when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, msg)
}

// ErrRejected is wrapped when the API answers 2xx but reports failure in the body.
var ErrRejected = errors.New("request rejected")

// Client is a REST client for the map API.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a client for the API rooted at baseURL, for example
// "http://127.0.0.1:5001".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("api base url must not be empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", u.Scheme)
	}
	c := &Client{base: trimmed, http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base
}

func roomPath(id builder.RoomID) string {
	return "/api/rooms/" + url.PathEscape(string(id))
}

func doorPath(id builder.RoomID, dir builder.Direction) string {
	return roomPath(id) + "/doors/" + url.PathEscape(string(dir))
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} bodies and falls back to raw text.
func errorMessage(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}

func checkRoom(r builder.Room) (builder.Room, error) {
	if err := r.Validate(); err != nil {
		return builder.Room{}, fmt.Errorf("malformed room from api: %w", err)
	}
	return r.Clone(), nil
}

// ListAreas fetches every area.
func (c *Client) ListAreas(ctx context.Context) ([]builder.Area, error) {
	var areas []builder.Area
	if err := c.do(ctx, http.MethodGet, "/api/areas", nil, &areas); err != nil {
		return nil, err
	}
	for _, a := range areas {
		if a.AreaID == "" {
			return nil, fmt.Errorf("malformed area from api: missing area_id")
		}
	}
	return areas, nil
}

// ListRooms fetches every room and checks its shape.
func (c *Client) ListRooms(ctx context.Context) ([]builder.Room, error) {
	var rooms []builder.Room
	if err := c.do(ctx, http.MethodGet, "/api/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	out := make([]builder.Room, 0, len(rooms))
	for _, r := range rooms {
		checked, err := checkRoom(r)
		if err != nil {
			return nil, err
		}
		out = append(out, checked)
	}
	return out, nil
}

// CreateRoom posts a new room.
func (c *Client) CreateRoom(ctx context.Context, room builder.Room) (builder.Room, error) {
	var created builder.Room
	if err := c.do(ctx, http.MethodPost, "/api/rooms", room, &created); err != nil {
		return builder.Room{}, err
	}
	return checkRoom(created)
}

// UpdateRoom replaces the stored room.
func (c *Client) UpdateRoom(ctx context.Context, id builder.RoomID, room builder.Room) (builder.Room, error) {
	var updated builder.Room
	if err := c.do(ctx, http.MethodPut, roomPath(id), room, &updated); err != nil {
		return builder.Room{}, err
	}
	return checkRoom(updated)
}

// DeleteRoom removes a room.
func (c *Client) DeleteRoom(ctx context.Context, id builder.RoomID) error {
	var result struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodDelete, roomPath(id), nil, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("delete room %s: %w", id, ErrRejected)
	}
	return nil
}

// CreateArea posts a new area.
func (c *Client) CreateArea(ctx context.Context, area builder.Area) (builder.Area, error) {
	var created builder.Area
	if err := c.do(ctx, http.MethodPost, "/api/areas", area, &created); err != nil {
		return builder.Area{}, err
	}
	return created, nil
}

type doorResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (r doorResult) err(action string, id builder.RoomID, dir builder.Direction) error {
	if r.OK {
		return nil
	}
	if r.Error != "" {
		return fmt.Errorf("%s door %s %s: %w: %s", action, id, dir, ErrRejected, r.Error)
	}
	return fmt.Errorf("%s door %s %s: %w", action, id, dir, ErrRejected)
}

// UpsertDoor stores a door on one exit of a room.
func (c *Client) UpsertDoor(ctx context.Context, id builder.RoomID, dir builder.Direction, door builder.Door) error {
	var result doorResult
	if err := c.do(ctx, http.MethodPut, doorPath(id, dir), door, &result); err != nil {
		return err
	}
	return result.err("save", id, dir)
}

// DeleteDoor removes the door on one exit of a room.
func (c *Client) DeleteDoor(ctx context.Context, id builder.RoomID, dir builder.Direction) error {
	var result doorResult
	if err := c.do(ctx, http.MethodDelete, doorPath(id, dir), nil, &result); err != nil {
		return err
	}
	return result.err("remove", id, dir)
}

var _ builder.Store = (*Client)(nil)
