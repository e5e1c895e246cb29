// Package service implements the analysis cycle orchestrator
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/platform/logger"
	adom "gravitywatch/internal/services/alerts/domain"
	cldom "gravitywatch/internal/services/classify/domain"
	curdom "gravitywatch/internal/services/cursor/domain"
	fdom "gravitywatch/internal/services/findings/domain"
	"gravitywatch/internal/services/pipeline/domain"
)

// Config for the pipeline service
type Config struct {
	// Lookback bounds the first cycle when no cursor exists yet
	Lookback time.Duration // 0 = 24h
}

// Service implements domain.RunnerPort
type Service struct {
	Cursor   curdom.StatePort
	Source   domain.SourcePort
	Intel    cldom.OraclePort // optional pre-check, may be nil
	Oracle   cldom.OraclePort
	Writer   fdom.WriterPort
	Eval     adom.EvaluatorPort
	Notifier adom.NotifierPort // may be nil
	Outcomes domain.OutcomeRepo
	Cfg      Config

	now func() time.Time
}

// New constructs a pipeline service
func New(
	cursor curdom.StatePort,
	source domain.SourcePort,
	intel, oracle cldom.OraclePort,
	writer fdom.WriterPort,
	eval adom.EvaluatorPort,
	notifier adom.NotifierPort,
	outcomes domain.OutcomeRepo,
	cfg Config,
) *Service {
	switch {
	case cursor == nil:
		panic("pipeline service: nil cursor port")
	case source == nil:
		panic("pipeline service: nil source port")
	case oracle == nil:
		panic("pipeline service: nil oracle port")
	case writer == nil:
		panic("pipeline service: nil findings writer")
	case eval == nil:
		panic("pipeline service: nil alert evaluator")
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	return &Service{
		Cursor:   cursor,
		Source:   source,
		Intel:    intel,
		Oracle:   oracle,
		Writer:   writer,
		Eval:     eval,
		Notifier: notifier,
		Outcomes: outcomes,
		Cfg:      cfg,
		now:      time.Now,
	}
}

// Run executes one analysis cycle.
// Findings are written before the cursor advances, so a crash between the
// two replays the window next cycle and the unique index absorbs the rerun
func (s *Service) Run(ctx context.Context) (domain.Outcome, error) {
	cycleID := uuid.New()
	ctx = logger.WithCycle(ctx, cycleID.String())
	log := logger.C(ctx)

	out := domain.Outcome{
		CycleID:   cycleID,
		StartedAt: s.now().UTC(),
		Stage:     domain.StageIdle,
	}

	// cursor
	cur, exists, err := s.Cursor.Load(ctx)
	if err != nil {
		return s.fail(ctx, out, err)
	}
	since := cur.LastProcessed
	if !exists {
		since = s.now().UTC().Add(-s.Cfg.Lookback)
		log.Info().Time("since", since).Msg("no cursor, starting from lookback window")
	}
	out.Stage = domain.StageCursorLoaded

	// fetch
	records, err := s.Source.Fetch(ctx, since)
	if err != nil {
		return s.fail(ctx, out, perr.WrapIf(err, perr.ErrorCodeSourceUnavailable, "fetch query log"))
	}
	out.Stage = domain.StageFetched
	out.Fetched = len(records)
	if len(records) == 0 {
		out.Status = domain.StatusNoop
		return s.finish(ctx, out), nil
	}

	// dedupe
	groups, dropped := domain.Groups(records)
	out.Stage = domain.StageDeduplicated
	out.UniqueDomains = len(groups)
	out.Skipped += dropped

	// classify: threat intel first, the LLM covers whatever intel cleared
	verdicts, skipped, err := s.classify(ctx, groups)
	if err != nil {
		return s.fail(ctx, out, err)
	}
	out.Stage = domain.StageClassified
	out.Classified = len(verdicts)
	out.Skipped += skipped

	// persist non-benign verdicts, fanned out per record
	findings := fanOut(groups, verdicts)
	inserted, dups, err := s.Writer.PersistBatch(ctx, findings)
	if err != nil {
		return s.fail(ctx, out, err)
	}
	out.Stage = domain.StagePersisted
	out.Persisted = len(inserted)
	out.Duplicates = dups

	// evaluate and notify, best effort
	batch := s.Eval.Evaluate(inserted)
	out.Stage = domain.StageEvaluated

	var notifyErr error
	if batch != nil && s.Notifier != nil {
		if notifyErr = s.Notifier.Notify(ctx, batch); notifyErr != nil {
			log.Warn().Err(notifyErr).Msg("alert notification failed")
		}
	}
	out.Alerted = batch != nil && notifyErr == nil
	out.Stage = domain.StageNotified

	// advance last; a conflict here means another cycle won the window
	maxTS := maxTimestamp(records)
	expected := cur.Version // 0 when no cursor existed
	if err := s.Cursor.Advance(ctx, maxTS, expected); err != nil {
		return s.fail(ctx, out, err)
	}
	out.Stage = domain.StageCursorAdvanced

	out.Status = domain.StatusSuccess
	if out.Skipped > 0 || notifyErr != nil {
		out.Status = domain.StatusPartial
	}
	return s.finish(ctx, out), nil
}

// classify resolves every group to a verdict or a per-domain failure
func (s *Service) classify(ctx context.Context, groups []domain.DomainGroup) ([]cldom.Verdict, int, error) {
	domains := make([]string, 0, len(groups))
	for _, g := range groups {
		domains = append(domains, g.Domain)
	}

	var verdicts []cldom.Verdict
	remainder := domains

	if s.Intel != nil {
		res, err := s.Intel.Classify(ctx, domains)
		if err != nil {
			return nil, 0, err
		}
		remainder = remainder[:0:0]
		listed := map[string]bool{}
		for _, v := range res.Verdicts {
			if v.Category != fdom.CategoryBenign {
				verdicts = append(verdicts, v)
				listed[v.Domain] = true
			}
		}
		for _, d := range domains {
			if !listed[d] {
				remainder = append(remainder, d)
			}
		}
	}

	skipped := 0
	if len(remainder) > 0 {
		res, err := s.Oracle.Classify(ctx, remainder)
		if err != nil {
			return nil, 0, err
		}
		verdicts = append(verdicts, res.Verdicts...)
		skipped = len(res.Failed)
		for d, ferr := range res.Failed {
			logger.C(ctx).Warn().Str("domain", d).Err(ferr).Msg("domain skipped this cycle")
		}
	}
	return verdicts, skipped, nil
}

// fanOut expands each non-benign verdict to one finding per record
func fanOut(groups []domain.DomainGroup, verdicts []cldom.Verdict) []fdom.Finding {
	byDomain := make(map[string][]domain.QueryRecord, len(groups))
	for _, g := range groups {
		byDomain[g.Domain] = g.Records
	}

	var out []fdom.Finding
	for _, v := range verdicts {
		if v.Category == fdom.CategoryBenign {
			continue
		}
		for _, r := range byDomain[v.Domain] {
			out = append(out, fdom.Finding{
				QueryTS:  r.Timestamp,
				Client:   r.Client,
				Domain:   v.Domain,
				Category: v.Category,
				Reason:   v.Reason,
				Source:   v.Source,
			})
		}
	}
	return out
}

func maxTimestamp(records []domain.QueryRecord) time.Time {
	var maxTS time.Time
	for _, r := range records {
		if r.Timestamp.After(maxTS) {
			maxTS = r.Timestamp
		}
	}
	return maxTS
}

func (s *Service) fail(ctx context.Context, out domain.Outcome, err error) (domain.Outcome, error) {
	out.Status = domain.StatusFailure
	out.Err = err.Error()
	return s.finish(ctx, out), err
}

// finish stamps the outcome, records it best effort, and logs the summary
func (s *Service) finish(ctx context.Context, out domain.Outcome) domain.Outcome {
	out.FinishedAt = s.now().UTC()

	if s.Outcomes != nil {
		if err := s.Outcomes.Insert(ctx, out); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("could not record cycle outcome")
		}
	}

	ev := logger.C(ctx).Info()
	if out.Status == domain.StatusFailure {
		ev = logger.C(ctx).Error()
	}
	ev.
		Str("stage", string(out.Stage)).
		Str("status", string(out.Status)).
		Int("fetched", out.Fetched).
		Int("unique_domains", out.UniqueDomains).
		Int("classified", out.Classified).
		Int("skipped", out.Skipped).
		Int("persisted", out.Persisted).
		Int("duplicates", out.Duplicates).
		Bool("alerted", out.Alerted).
		Msg("analysis cycle finished")
	return out
}
