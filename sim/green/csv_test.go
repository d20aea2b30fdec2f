package green

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVSamples_SimplifiedForm(t *testing.T) {
	content := "timestamp,power_kw\n2024-01-01 00:00:00,100\n2024-01-01 00:01:00,150\n"
	samples, err := parseCSVSamples(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 100.0, samples[0].PowerKW)
	assert.Equal(t, 150.0, samples[1].PowerKW)
}

func TestParseCSVSamples_MissingPowerDefaultsToZero(t *testing.T) {
	content := "2024-01-01 00:00:00,not-a-number\n"
	samples, err := parseCSVSamples(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 0.0, samples[0].PowerKW)
}

func TestParseCSVSamples_SCADAForm_ReadsPatvColumn(t *testing.T) {
	row := make([]string, 18)
	for i := range row {
		row[i] = "0"
	}
	row[0] = "2024-01-01 00:00:00"
	row[scadaPowerColumnIndex] = "321.5"
	content := strings.Join(row, ",") + "\n"

	samples, err := parseCSVSamples(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 321.5, samples[0].PowerKW)
}

func TestCleanSamples_DropsDuplicateAndNonMonotonicTimestamps(t *testing.T) {
	content := "2024-01-01 00:00:00,100\n2024-01-01 00:00:00,200\n2024-01-01 00:01:00,300\n2024-01-01 00:00:30,50\n2024-01-01 00:02:00,400\n"
	samples, err := parseCSVSamples(strings.NewReader(content))
	require.NoError(t, err)

	cleaned := cleanSamples(samples)
	require.Len(t, cleaned, 3)
	assert.Equal(t, 100.0, cleaned[0].PowerKW)
	assert.Equal(t, 300.0, cleaned[1].PowerKW)
	assert.Equal(t, 400.0, cleaned[2].PowerKW)
}

func TestParseTimestamp_AcceptsBothLayouts(t *testing.T) {
	_, err := parseTimestamp("2024-01-01 00:00:00")
	assert.NoError(t, err)
	_, err = parseTimestamp("2024/1/2 3:04")
	assert.NoError(t, err)
	_, err = parseTimestamp("not a date")
	assert.Error(t, err)
}
