package groupstore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RTDB is a Store backed by a Firebase Realtime Database. Reads and writes
// use the REST interface ({path}.json); subscriptions use the documented
// text/event-stream protocol, with each subscription maintaining a local
// mirror of its subtree assembled from put/patch events.
type RTDB struct {
	baseURL string
	auth    string
	client  *http.Client
	stream  *http.Client
	logger  *zap.Logger
}

// NewRTDB creates a client for the database at baseURL
// (e.g. https://example-app.firebaseio.com). auth is an optional database
// secret or ID token appended to every request; empty means open rules.
func NewRTDB(baseURL, auth string, logger *zap.Logger) *RTDB {
	return &RTDB{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		client:  &http.Client{Timeout: 15 * time.Second},
		// Streaming connections are long-lived; no client timeout.
		stream: &http.Client{},
		logger: logger,
	}
}

func (r *RTDB) url(path string) string {
	u := r.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if r.auth != "" {
		u += "?auth=" + url.QueryEscape(r.auth)
	}
	return u
}

// ReadOnce implements Store.
func (r *RTDB) ReadOnce(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := r.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if string(bytes.TrimSpace(body)) == "null" {
		return nil, nil
	}
	return body, nil
}

// Write implements Store.
func (r *RTDB) Write(ctx context.Context, path string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	_, err = r.do(ctx, http.MethodPut, path, payload)
	return err
}

// Update implements Store.
func (r *RTDB) Update(ctx context.Context, path string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	_, err = r.do(ctx, http.MethodPatch, path, payload)
	return err
}

// Push implements Store.
func (r *RTDB) Push(ctx context.Context, path string, v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	body, err := r.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return "", err
	}
	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode push response: %w", err)
	}
	return resp.Name, nil
}

// Remove implements Store.
func (r *RTDB) Remove(ctx context.Context, path string) error {
	_, err := r.do(ctx, http.MethodDelete, path, nil)
	return err
}

func (r *RTDB) do(ctx context.Context, method, path string, payload []byte) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// Subscribe implements Store. The stream is re-established after transport
// errors until the subscription is closed; this is a transport concern, not
// an operation retry.
func (r *RTDB) Subscribe(path string, fn func(json.RawMessage)) (Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &rtdbSubscription{cancel: cancel}

	go func() {
		for {
			if err := r.streamOnce(ctx, path, fn); err != nil && ctx.Err() == nil {
				r.logger.Warn("stream interrupted, reconnecting",
					zap.String("path", path), zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()

	return sub, nil
}

// streamOnce holds one event-stream connection open and feeds put/patch
// events into the subscription's mirror, emitting a full snapshot per event.
func (r *RTDB) streamOnce(ctx context.Context, path string, fn func(json.RawMessage)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url(path), nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := r.stream.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: status %d", resp.StatusCode)
	}

	var mirror any
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "put", "patch":
				next, err := applyStreamEvent(mirror, event, data)
				if err != nil {
					return err
				}
				mirror = next
				fn(encode(mirror))
			case "keep-alive":
				// Nothing to do.
			case "cancel", "auth_revoked":
				return fmt.Errorf("stream terminated by server: %s", event)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return io.EOF
}

// applyStreamEvent folds one put/patch event into the mirror tree.
func applyStreamEvent(mirror any, event, data string) (any, error) {
	var msg struct {
		Path string          `json:"path"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, fmt.Errorf("decode stream event: %w", err)
	}
	segs := splitPath(msg.Path)

	var val any
	if len(msg.Data) > 0 && string(msg.Data) != "null" {
		if err := json.Unmarshal(msg.Data, &val); err != nil {
			return nil, fmt.Errorf("decode stream data: %w", err)
		}
	}

	if event == "put" {
		return setAt(mirror, segs, val), nil
	}
	fields, ok := val.(map[string]any)
	if !ok {
		return mirror, nil
	}
	return mergeAt(mirror, segs, fields), nil
}

type rtdbSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *rtdbSubscription) Close() {
	s.once.Do(s.cancel)
}
