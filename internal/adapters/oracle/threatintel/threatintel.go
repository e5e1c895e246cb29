// Package threatintel classifies domains against a URLhaus-style host lookup API
package threatintel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gravitywatch/internal/platform/config"
	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/platform/logger"
	cldom "gravitywatch/internal/services/classify/domain"
	fdom "gravitywatch/internal/services/findings/domain"
)

// Config for the threat intel oracle
type Config struct {
	BaseURL string // host lookup endpoint, e.g. https://urlhaus-api.abuse.ch/v1/host/
	AuthKey string // optional API key sent as Auth-Key
	Timeout time.Duration
}

// FromConfig extracts Config from the given config.Conf
func FromConfig(cfg config.Conf) Config {
	p := cfg.Prefix("ORACLE_INTEL_")
	return Config{
		BaseURL: p.MustString("BASE_URL"),
		AuthKey: p.MayString("AUTH_KEY", ""),
		Timeout: p.MayDuration("TIMEOUT", 15*time.Second),
	}
}

// Backend implements classify/domain.Backend
type Backend struct {
	base    string
	authKey string
	http    *http.Client
}

// New constructs a threat intel backend
func New(cfg Config) *Backend {
	if cfg.BaseURL == "" {
		panic("threatintel oracle: empty base URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Backend{
		base:    cfg.BaseURL,
		authKey: cfg.AuthKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Source implements classify/domain.Backend
func (b *Backend) Source() fdom.Source { return fdom.SourceThreatIntel }

type hostResponse struct {
	QueryStatus string `json:"query_status"`
	URLs        []struct {
		Threat    string `json:"threat"`
		URLStatus string `json:"url_status"`
	} `json:"urls"`
}

// ClassifyBatch implements classify/domain.Backend.
// The feed is consulted per host; a miss is a benign verdict so the
// remaining oracles still get a say on unlisted domains
func (b *Backend) ClassifyBatch(ctx context.Context, domains []string) ([]cldom.RawVerdict, error) {
	out := make([]cldom.RawVerdict, 0, len(domains))
	for _, d := range domains {
		v, err := b.lookup(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (b *Backend) lookup(ctx context.Context, host string) (cldom.RawVerdict, error) {
	form := url.Values{"host": {host}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base, strings.NewReader(form.Encode()))
	if err != nil {
		return cldom.RawVerdict{}, perr.Wrap(err, perr.ErrorCodeClassification, "build intel request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if b.authKey != "" {
		req.Header.Set("Auth-Key", b.authKey)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return cldom.RawVerdict{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "intel lookup")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return cldom.RawVerdict{}, perr.TooManyRequestsf("intel lookup throttled")
	}
	if resp.StatusCode != http.StatusOK {
		return cldom.RawVerdict{}, perr.Unavailablef("intel lookup returned %d", resp.StatusCode)
	}

	var body hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return cldom.RawVerdict{}, perr.Wrap(err, perr.ErrorCodeClassification, "decode intel response")
	}

	switch body.QueryStatus {
	case "ok":
		return verdictFor(host, body), nil
	case "no_results":
		return cldom.RawVerdict{Domain: host, Category: "benign", Reason: "not listed in threat feed"}, nil
	default:
		logger.C(ctx).Warn().Str("host", host).Str("query_status", body.QueryStatus).Msg("unexpected intel query status")
		return cldom.RawVerdict{Domain: host, Category: "benign", Reason: "not listed in threat feed"}, nil
	}
}

// verdictFor maps listed threat types onto the category enum
// active malware distribution is malicious, stale listings are suspicious
func verdictFor(host string, body hostResponse) cldom.RawVerdict {
	active := false
	threat := ""
	for _, u := range body.URLs {
		if threat == "" {
			threat = u.Threat
		}
		if u.URLStatus == "online" {
			active = true
			threat = u.Threat
			break
		}
	}

	category := "suspicious"
	reason := "listed in threat feed with no active entries"
	if active {
		category = "malicious"
		reason = "active threat feed listing"
	}
	if threat != "" {
		reason += ": " + threat
	}
	return cldom.RawVerdict{Domain: host, Category: category, Reason: reason}
}
