package domain

import (
	"fmt"
	"time"
)

// RawFile is one classified raw measurement file
type RawFile struct {
	ExperimentID string     `json:"experiment_id"`
	Series       string     `json:"series"`
	Resolution   Resolution `json:"resolution"`
	PartIndex    int        `json:"part_index"`
	Path         string     `json:"path"`
}

// Key identifies the file within the whole input tree
func (f RawFile) Key() string {
	return fmt.Sprintf("%s|%s|%s|%d", f.ExperimentID, f.Series, f.Resolution, f.PartIndex)
}

// Label identifies the experiment series in logs
func (f RawFile) Label() string {
	if f.Series == "" {
		return f.ExperimentID
	}
	return f.ExperimentID + "/" + f.Series
}

// GroupKey identifies the experiment series and resolution the file contributes to
func (f RawFile) GroupKey() string {
	return fmt.Sprintf("%s|%s|%s", f.ExperimentID, f.Series, f.Resolution)
}

// ExperimentMetadata holds the preamble information of an experiment's base file
type ExperimentMetadata struct {
	ExperimentID    string            `json:"experiment_id"`
	Label           string            `json:"label,omitempty"`
	GeneratedBy     string            `json:"generated_by,omitempty"`
	DateRecorded    *time.Time        `json:"date_recorded,omitempty"`
	BlockLength     *float64          `json:"block_length,omitempty"`
	DeltaSeconds    *float64          `json:"delta_s,omitempty"`
	ChannelCount    *float64          `json:"channel_count,omitempty"`
	Name            string            `json:"name,omitempty"`
	Station         string            `json:"station,omitempty"`
	Oils            []string          `json:"oils,omitempty"`
	Elastomers      []string          `json:"elastomers,omitempty"`
	Shafts          []string          `json:"shafts,omitempty"`
	CalWeightsKg    []float64         `json:"cal_weights_kg,omitempty"`
	TareWeightsFrac []float64         `json:"tare_weights_frac,omitempty"`
	DataOrigin      string            `json:"data_origin"`
	Raw             map[string]string `json:"raw,omitempty"`
}
