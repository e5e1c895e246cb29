package module

import (
	"time"

	"gravitywatch/internal/platform/config"
)

// Options holds configuration settings for the pipeline module
type Options struct {
	Lookback        time.Duration
	LLMBatchSize    int
	AlertCategories []string
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	ca := cfg.Prefix("CORE_ANALYZE_")
	return Options{
		Lookback:        ca.MayDuration("LOOKBACK", 24*time.Hour),
		LLMBatchSize:    cfg.Prefix("ORACLE_LLM_").MayInt("BATCH_SIZE", 40),
		AlertCategories: ca.MayCSV("ALERT_CATEGORIES", nil),
	}
}
