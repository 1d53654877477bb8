package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrEmptyThresholds is returned when a threshold set defines no indicator.
var ErrEmptyThresholds = eris.New("thresholds: empty set")

// Threshold is a critical/target pair for one indicator. The pair is
// external configuration and never derived from the row data.
type Threshold struct {
	Critical float64 `yaml:"critical" json:"critical"`
	Target   float64 `yaml:"target" json:"target"`
}

// ThresholdSet holds the configured thresholds per indicator. Productivity
// is keyed by crop type; the "default" entry applies to crops without their
// own pair.
type ThresholdSet struct {
	Adequacy              *Threshold           `yaml:"adequacy" json:"adequacy,omitempty"`
	Equity                *Threshold           `yaml:"equity" json:"equity,omitempty"`
	CroppingIntensity     *Threshold           `yaml:"cropping_intensity" json:"cropping_intensity,omitempty"`
	IrrigationUtilization *Threshold           `yaml:"irrigation_utilization" json:"irrigation_utilization,omitempty"`
	Productivity          map[string]Threshold `yaml:"productivity" json:"productivity,omitempty"`
}

// Empty reports whether the set defines no threshold at all.
func (ts ThresholdSet) Empty() bool {
	return ts.Adequacy == nil && ts.Equity == nil &&
		ts.CroppingIntensity == nil && ts.IrrigationUtilization == nil &&
		len(ts.Productivity) == 0
}

// Validate rejects an empty set. A degenerate critical==target pair is
// allowed; scoring handles it with a fixed midpoint.
func (ts ThresholdSet) Validate() error {
	if ts.Empty() {
		return ErrEmptyThresholds
	}
	return nil
}

// ProductivityFor returns the productivity threshold for a crop, falling
// back to the "default" entry.
func (ts ThresholdSet) ProductivityFor(crop string) (Threshold, bool) {
	if t, ok := ts.Productivity[crop]; ok {
		return t, true
	}
	t, ok := ts.Productivity["default"]
	return t, ok
}

// DefaultThresholds returns the preset shipped with the tool. Adequacy and
// equity are lower-is-better indicators, so their critical bound sits above
// the target.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Adequacy:              &Threshold{Critical: 0.5, Target: 0.1},
		Equity:                &Threshold{Critical: 0.4, Target: 0.1},
		CroppingIntensity:     &Threshold{Critical: 0.8, Target: 1.5},
		IrrigationUtilization: &Threshold{Critical: 0.4, Target: 0.9},
		Productivity: map[string]Threshold{
			"default": {Critical: 1.0, Target: 5.0},
		},
	}
}

// LoadThresholds reads a threshold set from a YAML file.
func LoadThresholds(path string) (ThresholdSet, error) {
	var ts ThresholdSet

	data, err := os.ReadFile(path)
	if err != nil {
		return ts, eris.Wrapf(err, "thresholds: read %s", path)
	}
	if err := yaml.Unmarshal(data, &ts); err != nil {
		return ts, eris.Wrapf(err, "thresholds: parse %s", path)
	}
	if err := ts.Validate(); err != nil {
		return ts, err
	}
	return ts, nil
}

// SaveThresholds writes a threshold set as YAML.
func SaveThresholds(path string, ts ThresholdSet) error {
	data, err := yaml.Marshal(ts)
	if err != nil {
		return eris.Wrap(err, "thresholds: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "thresholds: write %s", path)
	}
	return nil
}
