package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tribocli/pkg/contracts/domain"
)

// metadataGenerator is recorded as the producer of the raw export when the
// preamble names it
const metadataGenerator = "dasylab"

// ExtractMetadata reads the "Key: value" preamble of an experiment's base file.
// Keys are matched case-insensitively on the first known fragment they contain;
// every key/value pair is also kept verbatim in Raw.
func (p *Parser) ExtractMetadata(experimentID string, parsed *ParsedFile) domain.ExperimentMetadata {
	meta := domain.ExperimentMetadata{
		ExperimentID: experimentID,
		DataOrigin:   parsed.Path,
		Raw:          make(map[string]string),
	}

	for _, line := range parsed.Preamble {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value := splitPreambleLine(line)
		if key != "" {
			meta.Raw[key] = value
		}

		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, metadataGenerator):
			meta.GeneratedBy = line
		case strings.Contains(lower, "aufgenommen"):
			if ts, ok := p.parseRecordedDate(value); ok {
				meta.DateRecorded = &ts
			}
		case strings.Contains(lower, "blocklaenge"):
			meta.BlockLength = numericPtr(value)
		case strings.Contains(lower, "delta"):
			meta.DeltaSeconds = numericPtr(value)
		case strings.Contains(lower, "kanalzahl"):
			meta.ChannelCount = numericPtr(value)
		case strings.Contains(lower, "oil"):
			meta.Oils = append(meta.Oils, value)
		case strings.Contains(lower, "elastomer"):
			meta.Elastomers = append(meta.Elastomers, value)
		case strings.Contains(lower, "welle"):
			meta.Shafts = append(meta.Shafts, value)
		case strings.Contains(lower, "versuchsname"):
			meta.Name = value
		case strings.Contains(lower, "versuchsstand"):
			if f, ok := ParseNumeric(value); ok {
				meta.Station = strconv.FormatFloat(f, 'f', -1, 64)
			} else {
				meta.Station = value
			}
		case strings.Contains(lower, "kalibriergew"):
			if f, ok := ParseNumeric(value); ok {
				meta.CalWeightsKg = append(meta.CalWeightsKg, f)
			}
		case strings.Contains(lower, "tariergew"):
			// recorded in percent
			if f, ok := ParseNumeric(value); ok {
				meta.TareWeightsFrac = append(meta.TareWeightsFrac, f/100)
			}
		}
	}

	if meta.DateRecorded != nil {
		meta.Label = fmt.Sprintf("%s_%s_T%s", meta.DateRecorded.Format("2006_01_02"), meta.Name, meta.Station)
	}
	if len(meta.Raw) == 0 {
		meta.Raw = nil
	}

	return meta
}

// parseRecordedDate parses the recording date with every configured layout
func (p *Parser) parseRecordedDate(raw string) (time.Time, bool) {
	candidates := make([]string, 0, len(p.opts.DateTimeLayouts)+len(p.combinedLayouts)+len(p.opts.DateLayouts))
	candidates = append(candidates, p.opts.DateTimeLayouts...)
	candidates = append(candidates, p.combinedLayouts...)
	candidates = append(candidates, p.opts.DateLayouts...)

	ts, err := p.parseTime(raw, candidates)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// splitPreambleLine splits "Key: value" into its trimmed parts
func splitPreambleLine(line string) (string, string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", line
	}
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

// numericPtr parses a numeric preamble value, nil when absent
func numericPtr(raw string) *float64 {
	f, ok := ParseNumeric(raw)
	if !ok {
		return nil
	}
	return &f
}
