package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bibbank/decision-engine/internal/domain/service"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

const (
	envThresholds  = "DECISION_THRESHOLDS_JSON"
	envMinInterval = "DECISION_MIN_DECISION_INTERVAL_SEC"
	envModel       = "AI_MODEL"

	defaultMinInterval = 60 * time.Second
)

// DecisionConfig holds the scoring settings. It is built once at startup and
// passed explicitly to the scoring use cases.
type DecisionConfig struct {
	Thresholds  service.DecisionThresholds
	MinInterval time.Duration
	Model       valueobject.ScoringModel
}

// LoadDecisionConfig reads decision settings from the environment. Invalid
// overrides never fail startup: they are logged and replaced by defaults.
func LoadDecisionConfig(logger *slog.Logger) DecisionConfig {
	return DecisionConfig{
		Thresholds:  loadThresholds(logger),
		MinInterval: loadMinInterval(logger),
		Model:       loadModel(logger),
	}
}

func loadThresholds(logger *slog.Logger) service.DecisionThresholds {
	defaults := service.DefaultDecisionThresholds()
	raw := strings.TrimSpace(os.Getenv(envThresholds))
	if raw == "" {
		return defaults
	}

	// Missing keys keep their default value.
	th := defaults
	if err := json.Unmarshal([]byte(raw), &th); err != nil {
		logger.Warn("invalid decision thresholds, using defaults", "env", envThresholds, "error", err)
		return defaults
	}
	if err := th.Validate(); err != nil {
		logger.Warn("invalid decision thresholds, using defaults",
			"env", envThresholds, "approve", th.Approve, "review", th.Review, "error", err)
		return defaults
	}
	return th
}

func loadMinInterval(logger *slog.Logger) time.Duration {
	raw := strings.TrimSpace(os.Getenv(envMinInterval))
	if raw == "" {
		return defaultMinInterval
	}

	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		logger.Warn("invalid minimum decision interval, using default",
			"env", envMinInterval, "value", raw, "default_sec", int(defaultMinInterval.Seconds()))
		return defaultMinInterval
	}
	return time.Duration(secs) * time.Second
}

func loadModel(logger *slog.Logger) valueobject.ScoringModel {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(envModel)))
	if raw == "" {
		return valueobject.ScoringModelRules
	}

	m, err := valueobject.NewScoringModel(raw)
	if err != nil {
		logger.Warn("unknown scoring model, using rules", "env", envModel, "value", raw)
		return valueobject.ScoringModelRules
	}
	return m
}
