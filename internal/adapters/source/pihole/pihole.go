// Package pihole fetches DNS query logs from a Pi-hole v6 API
package pihole

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gravitywatch/internal/platform/config"
	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/platform/logger"
	"gravitywatch/internal/services/pipeline/domain"
)

// Config for the Pi-hole source
type Config struct {
	BaseURL  string
	Password string
	Timeout  time.Duration
}

// FromConfig extracts Config from the given config.Conf
func FromConfig(cfg config.Conf) Config {
	p := cfg.Prefix("SOURCE_PIHOLE_")
	return Config{
		BaseURL:  p.MustString("BASE_URL"),
		Password: p.MustString("PASSWORD"),
		Timeout:  p.MayDuration("TIMEOUT", 30*time.Second),
	}
}

// Client implements domain.SourcePort against a Pi-hole v6 instance
type Client struct {
	base     string
	password string
	http     *http.Client
}

// New constructs a Pi-hole source client
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		panic("pihole source: empty base URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		password: cfg.Password,
		http:     &http.Client{Timeout: timeout},
	}
}

type session struct {
	Valid   bool   `json:"valid"`
	SID     string `json:"sid"`
	Message string `json:"message"`
}

type authResponse struct {
	Session session `json:"session"`
}

type queryEntry struct {
	Time   float64 `json:"time"`
	Type   string  `json:"type"`
	Status string  `json:"status"`
	Domain string  `json:"domain"`
	Client struct {
		IP   string `json:"ip"`
		Name string `json:"name"`
	} `json:"client"`
	Upstream string `json:"upstream"`
}

type queriesResponse struct {
	Queries []queryEntry `json:"queries"`
}

// Fetch implements domain.SourcePort.
// A session is opened per fetch and deleted afterwards; Pi-hole caps the
// number of concurrent API sessions and leaked ones exhaust the seat pool
func (c *Client) Fetch(ctx context.Context, since time.Time) ([]domain.QueryRecord, error) {
	sid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	defer c.deleteSession(ctx, sid)

	url := fmt.Sprintf("%s/api/queries?from=%d", c.base, since.Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "build queries request")
	}
	req.Header.Set("sid", sid)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "fetch queries")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, perr.SourceUnavailablef("pihole queries returned %d", resp.StatusCode)
	}

	var body queriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "decode queries response")
	}

	log := logger.C(ctx)
	out := make([]domain.QueryRecord, 0, len(body.Queries))
	for _, q := range body.Queries {
		if q.Domain == "" || q.Time == 0 {
			log.Warn().Str("domain", q.Domain).Msg("skipping query with missing domain or timestamp")
			continue
		}
		ts := time.Unix(int64(q.Time), 0).UTC()
		// the from parameter is inclusive; the cursor boundary is not
		if !ts.After(since) {
			continue
		}
		out = append(out, domain.QueryRecord{
			Timestamp: ts,
			Client:    q.Client.IP,
			Domain:    strings.ToLower(q.Domain),
			Type:      q.Type,
			Status:    q.Status,
			Upstream:  q.Upstream,
		})
	}
	log.Debug().Int("raw", len(body.Queries)).Int("kept", len(out)).Msg("fetched pihole queries")
	return out, nil
}

// authenticate exchanges the password for a session id
func (c *Client) authenticate(ctx context.Context) (string, error) {
	payload, _ := json.Marshal(map[string]string{"password": c.password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/auth", bytes.NewReader(payload))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "build auth request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "pihole auth")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", perr.SourceUnavailablef("pihole auth returned %d", resp.StatusCode)
	}

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "decode auth response")
	}
	if !body.Session.Valid || body.Session.SID == "" {
		return "", perr.SourceUnavailablef("pihole auth rejected: %s", body.Session.Message)
	}
	return body.Session.SID, nil
}

// deleteSession releases the API seat; failure is only worth a log line
func (c *Client) deleteSession(ctx context.Context, sid string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/api/auth", nil)
	if err != nil {
		return
	}
	req.Header.Set("sid", sid)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("could not delete pihole session")
		return
	}
	resp.Body.Close()
}
