// Package service implements batched domain classification
package service

import (
	"context"
	"fmt"

	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/platform/logger"
	"gravitywatch/internal/platform/retry"
	"gravitywatch/internal/services/classify/domain"
	fdom "gravitywatch/internal/services/findings/domain"
)

// Config for the classify service
type Config struct {
	BatchSize int // domains per backend call, 0 = 40
	Retry     retry.Policy
}

// Service implements domain.OraclePort over a single Backend
type Service struct {
	Backend domain.Backend
	Cfg     Config
}

// New constructs a classify service
func New(backend domain.Backend, cfg Config) *Service {
	if backend == nil {
		panic("classify service: nil Backend")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 40
	}
	return &Service{Backend: backend, Cfg: cfg}
}

// Classify runs every domain through the backend in fixed-size chunks.
// A chunk that fails after retries marks only its own domains as failed;
// the remaining chunks still run. Unrecognized category labels degrade to
// suspicious instead of being dropped
func (s *Service) Classify(ctx context.Context, domains []string) (domain.Result, error) {
	res := domain.Result{Failed: map[string]error{}}
	if len(domains) == 0 {
		return res, nil
	}
	src := s.Backend.Source()

	for start := 0; start < len(domains); start += s.Cfg.BatchSize {
		end := min(start+s.Cfg.BatchSize, len(domains))
		chunk := domains[start:end]

		var raw []domain.RawVerdict
		err := retry.Do(ctx, s.Cfg.Retry, func(ctx context.Context) error {
			var cerr error
			raw, cerr = s.Backend.ClassifyBatch(ctx, chunk)
			return cerr
		})
		if err != nil {
			if ctx.Err() != nil {
				return res, perr.Wrap(err, perr.ErrorCodeClassification, "classification canceled")
			}
			logger.C(ctx).Warn().Err(err).Int("chunk", len(chunk)).Msg("classification chunk failed")
			for _, d := range chunk {
				res.Failed[d] = perr.Wrap(err, perr.ErrorCodeClassification, fmt.Sprintf("classify %s", d))
			}
			continue
		}

		byDomain := make(map[string]domain.RawVerdict, len(raw))
		for _, v := range raw {
			byDomain[v.Domain] = v
		}
		for _, d := range chunk {
			v, ok := byDomain[d]
			if !ok {
				res.Failed[d] = perr.Classificationf("no verdict for %s", d)
				continue
			}
			res.Verdicts = append(res.Verdicts, validate(v, src))
		}
	}
	return res, nil
}

// validate maps a raw backend label onto the category enum
func validate(v domain.RawVerdict, src fdom.Source) domain.Verdict {
	cat, ok := fdom.ParseCategory(v.Category)
	if !ok {
		return domain.Verdict{
			Domain:     v.Domain,
			Category:   fdom.CategorySuspicious,
			Reason:     fmt.Sprintf("unrecognized category: %s", v.Category),
			Source:     src,
			Confidence: v.Confidence,
		}
	}
	return domain.Verdict{Domain: v.Domain, Category: cat, Reason: v.Reason, Source: src, Confidence: v.Confidence}
}
