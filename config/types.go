package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Duration supports yaml values like "30s" or "1h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("can't parse duration %q: %w", node.Value, err)
	}
	d.Duration = v
	return nil
}

// Decimal supports yaml values like "0.003" or "1.5", parsed without float rounding.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalYAML(node *yaml.Node) error {
	v, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("can't parse decimal %q: %w", node.Value, err)
	}
	d.Decimal = v
	return nil
}

// Level supports yaml values like "info" or "debug".
type Level struct {
	logrus.Level
}

func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	v, err := logrus.ParseLevel(node.Value)
	if err != nil {
		return fmt.Errorf("can't parse log level %q: %w", node.Value, err)
	}
	l.Level = v
	return nil
}
