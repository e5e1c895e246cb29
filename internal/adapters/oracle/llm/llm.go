// Package llm classifies domains with an OpenAI-compatible chat model
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"gravitywatch/internal/platform/config"
	perr "gravitywatch/internal/platform/errors"
	cldom "gravitywatch/internal/services/classify/domain"
	fdom "gravitywatch/internal/services/findings/domain"
)

// Config for the LLM oracle
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	RPM     int // requests per minute across all chunks
	Burst   int
	Timeout time.Duration
}

// FromConfig extracts Config from the given config.Conf
func FromConfig(cfg config.Conf) Config {
	p := cfg.Prefix("ORACLE_LLM_")
	return Config{
		BaseURL: p.MayString("BASE_URL", ""),
		APIKey:  p.MustString("API_KEY"),
		Model:   p.MayString("MODEL", "gpt-4o-mini"),
		RPM:     p.MayInt("RPM", 30),
		Burst:   p.MayInt("BURST", 2),
		Timeout: p.MayDuration("TIMEOUT", time.Minute),
	}
}

// Backend implements classify/domain.Backend
type Backend struct {
	cm      model.ChatModel
	limiter *rate.Limiter
	timeout time.Duration
}

// New constructs an LLM backend from config
func New(ctx context.Context, cfg Config) (*Backend, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeClassification, "init chat model")
	}
	return NewWithModel(cm, cfg), nil
}

// NewWithModel wires an already constructed chat model (seam for tests)
func NewWithModel(cm model.ChatModel, cfg Config) *Backend {
	rpm := cfg.RPM
	if rpm <= 0 {
		rpm = 30
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Backend{
		cm:      cm,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		timeout: timeout,
	}
}

// Source implements classify/domain.Backend
func (b *Backend) Source() fdom.Source { return fdom.SourceAI }

const systemPrompt = "You are a JSON generator. Output a single JSON array and nothing else."

const promptTemplate = `Analyze the following DNS domain names queried on a local network.
Classify each domain into exactly one of these categories:
- malicious: known malware, phishing, command and control, or other direct security threats
- adult_content: pornography or explicit content unsuitable for minors
- gambling: online betting, casinos, lottery sites
- dating: online dating apps or services
- illegal_content: sites promoting illegal activities such as illicit streaming or goods
- suspicious: aggressive tracking, potentially unwanted programs, or patterns that warrant caution
- benign: everything else

Judge by the domain name itself and common knowledge about the service behind it.

Return STRICTLY a JSON array where each element is:
{"domain": "<the domain>", "category": "<one category token from the list>", "reason": "<one short sentence>", "confidence": <0.0-1.0>}

Return only the JSON array, no markdown and no surrounding text.

Domains:
%s`

type verdictJSON struct {
	Domain     string   `json:"domain"`
	Category   string   `json:"category"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence"`
}

// ClassifyBatch implements classify/domain.Backend
func (b *Backend) ClassifyBatch(ctx context.Context, domains []string) ([]cldom.RawVerdict, error) {
	if len(domains) == 0 {
		return nil, nil
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeClassification, "rate limit wait")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	list, _ := json.Marshal(domains)
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: fmt.Sprintf(promptTemplate, list)},
	}

	resp, err := b.cm.Generate(ctx, messages)
	if err != nil {
		if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
			return nil, perr.Wrap(err, perr.ErrorCodeTooManyRequests, "chat model throttled")
		}
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "chat model call")
	}

	raw := stripFences(resp.Content)
	var parsed []verdictJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeClassification, "parse model verdicts")
	}

	out := make([]cldom.RawVerdict, 0, len(parsed))
	for _, v := range parsed {
		out = append(out, cldom.RawVerdict{
			Domain:     strings.ToLower(strings.TrimSpace(v.Domain)),
			Category:   strings.ToLower(strings.TrimSpace(v.Category)),
			Reason:     v.Reason,
			Confidence: v.Confidence,
		})
	}
	return out, nil
}

// stripFences removes a markdown code fence some models wrap JSON in
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
