// Package client issues typed requests against a confhub host and turns the
// responses back into plain values. A null response, which the host uses for
// degraded mode, unknown operations and missing arguments, maps to the
// operation's empty result; callers cannot distinguish "legitimately found
// nothing" from "host is degraded" and are not meant to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"confhub/internal/store"
	"confhub/pkg/wire"
)

// Client is bound to one host's authority and socket. Every primitive call
// is one synchronous round trip.
type Client struct {
	authority string
	hc        *http.Client
}

// New creates a Client for the host listening on socketPath. The authority
// only names the host in URLs and logs; routing is the socket's.
func New(authority, socketPath string) *Client {
	return &Client{
		authority: authority,
		hc: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

// Contains reports whether the host's mapping has the key.
func (c *Client) Contains(ctx context.Context, key string) (bool, error) {
	var result *wire.ContainsResult
	if err := c.roundTrip(ctx, http.MethodGet, wire.PathContains, keyQuery(key), nil, &result); err != nil {
		return false, err
	}
	return result != nil && result.Contains == 1, nil
}

// Get returns the value for a key. The second return is false when the key
// is absent from the host's mapping.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	var result *wire.GetResult
	if err := c.roundTrip(ctx, http.MethodGet, wire.PathGet, keyQuery(key), nil, &result); err != nil {
		return "", false, err
	}
	if result == nil || result.Value == nil {
		return "", false, nil
	}
	return *result.Value, true, nil
}

// GetAll returns the host's full mapping. The snapshot is taken without a
// consistency fence against concurrent single-key writers.
func (c *Client) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []wire.Row
	if err := c.roundTrip(ctx, http.MethodGet, wire.PathGetAll, nil, nil, &rows); err != nil {
		return nil, err
	}
	m := make(map[string]string, len(rows))
	for _, row := range rows {
		m[row.Key] = row.Value
	}
	return m, nil
}

// Put creates or overwrites one entry on the host.
func (c *Client) Put(ctx context.Context, key, value string) error {
	return c.roundTrip(ctx, http.MethodPost, wire.PathPut, nil, wire.PutRequest{Key: key, Value: value}, nil)
}

// PutAll submits a batch of pairs in one round trip. The returned count is
// the size of the input mapping; per-key success is not confirmed.
func (c *Client) PutAll(ctx context.Context, m map[string]string) (int, error) {
	err := c.roundTrip(ctx, http.MethodPost, wire.PathPutAll, nil, wire.PutAllRequest{Entries: m}, nil)
	if err != nil {
		return 0, err
	}
	return len(m), nil
}

// Remove deletes one entry. Returns whether an entry was removed.
func (c *Client) Remove(ctx context.Context, key string) (bool, error) {
	var result wire.CountResult
	if err := c.roundTrip(ctx, http.MethodDelete, wire.PathRemove, keyQuery(key), nil, &result); err != nil {
		return false, err
	}
	return result.Count > 0, nil
}

// Clear removes every entry and returns how many were removed.
func (c *Client) Clear(ctx context.Context) (int, error) {
	var result wire.CountResult
	if err := c.roundTrip(ctx, http.MethodDelete, wire.PathClear, nil, nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// Save asks the host to persist its mapping. Returns the number of entries
// persisted; 0 means nothing was durably saved, which is also the answer
// when the host is degraded.
func (c *Client) Save(ctx context.Context) (int, error) {
	var result wire.CountResult
	if err := c.roundTrip(ctx, http.MethodPut, wire.PathSave, nil, nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// Status describes the host.
func (c *Client) Status(ctx context.Context) (wire.StatusResult, error) {
	var result wire.StatusResult
	err := c.roundTrip(ctx, http.MethodGet, wire.PathStatus, nil, nil, &result)
	return result, err
}

// BackupTo copies the host's full mapping into target: clear, then copy.
// Destructive to the target's pre-existing entries and not atomic across the
// two steps; a failure in between leaves the target empty. Returns the
// target's resulting size. The target is only mutated in memory; persisting
// it is the caller's call.
func (c *Client) BackupTo(ctx context.Context, target *store.Store) (int, error) {
	data, err := c.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	target.Clear()
	target.PutAll(data)
	return target.Size(), nil
}

// RestoreFrom is the symmetric compound operation: clears the host, then
// copies every entry from source into it. Same non-atomicity caveat.
func (c *Client) RestoreFrom(ctx context.Context, source *store.Store) (int, error) {
	if _, err := c.Clear(ctx); err != nil {
		return 0, err
	}
	if _, err := c.PutAll(ctx, source.Snapshot()); err != nil {
		return 0, err
	}
	return source.Size(), nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := url.URL{Scheme: "http", Host: c.authority, Path: "/" + path}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return fmt.Errorf("%s: encoding request: %w", path, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), &reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", path, err)
	}
	return nil
}

func keyQuery(key string) url.Values {
	return url.Values{"key": []string{key}}
}
