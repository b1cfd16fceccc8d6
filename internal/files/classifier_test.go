package files

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribocli/internal/config"
	apperrors "tribocli/internal/errors"
	"tribocli/pkg/contracts/domain"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.Default().Naming, discardLogger())
}

func TestClassifyName(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		wantOK     bool
		reason     string
		series     string
		resolution domain.Resolution
		part       int
	}{
		{name: "minutes base", file: "Versuch.asc", wantOK: true, series: "versuch", resolution: domain.ResolutionMinutes},
		{name: "seconds base", file: "Versuch_sek.asc", wantOK: true, series: "versuch", resolution: domain.ResolutionSeconds},
		{name: "minutes continuation", file: "Versuch_zwei.asc", wantOK: true, series: "versuch", resolution: domain.ResolutionMinutes, part: 1},
		{name: "seconds continuation", file: "Versuch_sek_drei.asc", wantOK: true, series: "versuch", resolution: domain.ResolutionSeconds, part: 2},
		{name: "case insensitive", file: "VERSUCH_SEK_ZWEI.ASC", wantOK: true, series: "versuch", resolution: domain.ResolutionSeconds, part: 1},
		{name: "last vocabulary entry", file: "V_zehn.asc", wantOK: true, series: "v", resolution: domain.ResolutionMinutes, part: 9},
		{name: "other extension", file: "Versuch.txt", reason: ReasonExtension},
		{name: "no extension", file: "Versuch", reason: ReasonExtension},
		{name: "lock file", file: ".~lock.Versuch.asc", reason: ReasonLocked},
		{name: "office temp file", file: "~$Versuch.asc", reason: ReasonLocked},
		{name: "logfile export", file: "Versuch_logfile.asc", reason: ReasonPattern},
		{name: "heating export", file: "Heizung_sek.asc", reason: ReasonPattern},
	}

	c := newTestClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join("/in", "E1", tt.file)
			raw, ok, reason, err := c.ClassifyName("E1", path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.reason, reason)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, "E1", raw.ExperimentID)
			assert.Equal(t, tt.series, raw.Series)
			assert.Equal(t, tt.resolution, raw.Resolution)
			assert.Equal(t, tt.part, raw.PartIndex)
			assert.Equal(t, path, raw.Path)
		})
	}
}

func TestClassifyName_MultipleMarkers(t *testing.T) {
	c := newTestClassifier()

	_, _, _, err := c.ClassifyName("E1", "/in/E1/Versuch_zwei_drei.asc")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeClassification))
	assert.Contains(t, err.Error(), "Versuch_zwei_drei.asc")
}

func TestClassify(t *testing.T) {
	c := newTestClassifier()
	files := []FileInfo{
		{Path: "/in/E1/Versuch.asc", Name: "Versuch.asc"},
		{Path: "/in/E1/Versuch_sek.asc", Name: "Versuch_sek.asc"},
		{Path: "/in/E1/Versuch_zwei.asc", Name: "Versuch_zwei.asc"},
		{Path: "/in/E1/notes.txt", Name: "notes.txt"},
		{Path: "/in/E1/Versuch_logfile.asc", Name: "Versuch_logfile.asc"},
	}

	result, err := c.Classify("E1", files)
	require.NoError(t, err)

	require.Len(t, result.Files, 3)
	assert.Equal(t, domain.ResolutionMinutes, result.Files[0].Resolution)
	assert.Equal(t, domain.ResolutionSeconds, result.Files[1].Resolution)
	assert.Equal(t, 1, result.Files[2].PartIndex)

	assert.Equal(t, []IgnoredFile{
		{Path: "/in/E1/notes.txt", Reason: ReasonExtension},
		{Path: "/in/E1/Versuch_logfile.asc", Reason: ReasonPattern},
	}, result.Ignored)
}

func TestClassify_Conflict(t *testing.T) {
	c := newTestClassifier()
	files := []FileInfo{
		{Path: "/in/E1/A.asc", Name: "A.asc"},
		{Path: "/in/E1/a.ASC", Name: "a.ASC"},
	}

	_, err := c.Classify("E1", files)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeClassification))
	assert.Contains(t, err.Error(), "/in/E1/A.asc")
	assert.Contains(t, err.Error(), "/in/E1/a.ASC")
}

func TestClassify_CustomVocabulary(t *testing.T) {
	naming := config.NamingConfig{
		Extension:     ".csv",
		SecondsMarker: "_s",
		PartMarkers:   []string{"_p2", "_p3"},
	}
	c := NewClassifier(naming, discardLogger())

	raw, ok, _, err := c.ClassifyName("E9", "/in/E9/run_s_p3.csv")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run", raw.Series)
	assert.Equal(t, domain.ResolutionSeconds, raw.Resolution)
	assert.Equal(t, 2, raw.PartIndex)
}
