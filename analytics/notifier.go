package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/rediscache"
)

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type HealthWarning struct {
	UserAddress  common.Address  `json:"user_address"`
	HealthFactor decimal.Decimal `json:"health_factor"`
	Severity     string          `json:"severity"`
	At           time.Time       `json:"at"`
}

// Notifier delivers health warnings to whoever wants them.
type Notifier interface {
	Notify(ctx context.Context, warning *HealthWarning) error
}

type logNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(ctx context.Context, warning *HealthWarning) error {
	n.logger.WithFields(logrus.Fields{
		"user":          warning.UserAddress,
		"health_factor": warning.HealthFactor,
		"severity":      warning.Severity,
	}).Warn("vault position health dropped below threshold")
	return nil
}

type redisNotifier struct {
	cache   *rediscache.Cache
	channel string
}

// NewRedisNotifier publishes warnings as JSON to a redis pub/sub channel, for
// external alerting consumers.
func NewRedisNotifier(cache *rediscache.Cache, channel string) Notifier {
	return &redisNotifier{cache: cache, channel: channel}
}

func (n *redisNotifier) Notify(ctx context.Context, warning *HealthWarning) error {
	payload, err := json.Marshal(warning)
	if err != nil {
		return fmt.Errorf("can't marshal health warning: %w", err)
	}
	return n.cache.Publish(ctx, n.channel, payload)
}

type multiNotifier []Notifier

// NewMultiNotifier fans a warning out to several notifiers, returning the
// first delivery error after trying all of them.
func NewMultiNotifier(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

func (n multiNotifier) Notify(ctx context.Context, warning *HealthWarning) error {
	var firstErr error
	for _, notifier := range n {
		if err := notifier.Notify(ctx, warning); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
