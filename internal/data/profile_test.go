package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"der-reliability/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, header string, row func(h int) string) string {
	t.Helper()
	var b strings.Builder
	if header != "" {
		b.WriteString(header + "\n")
	}
	for h := 0; h < model.HoursPerYear; h++ {
		b.WriteString(row(h) + "\n")
	}
	path := filepath.Join(t.TempDir(), "profile.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestLoadProfileCSV_SingleColumn(t *testing.T) {
	path := writeProfile(t, "", func(h int) string { return fmt.Sprintf("%g", float64(h%24)/10) })

	p, err := LoadProfileCSV(path)
	require.NoError(t, err)
	require.Len(t, p, model.HoursPerYear)
	assert.Equal(t, 0.0, p[0])
	assert.Equal(t, 2.3, p[23])
	assert.Equal(t, 0.1, p[25])
}

func TestLoadProfileCSV_HeaderAndHourColumn(t *testing.T) {
	path := writeProfile(t, "hour,load_kw", func(h int) string { return fmt.Sprintf("%d, %g", h, 1.5) })

	p, err := LoadProfileCSV(path)
	require.NoError(t, err)
	require.Len(t, p, model.HoursPerYear)
	assert.Equal(t, 1.5, p[8759])
}

func TestReadProfile_WrongLength(t *testing.T) {
	_, err := ReadProfile(strings.NewReader("1\n2\n3\n"))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestReadProfile_BadValue(t *testing.T) {
	_, err := ReadProfile(strings.NewReader("1\nabc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadProfile_NaN(t *testing.T) {
	rows := strings.Repeat("1\n", model.HoursPerYear-1) + "NaN\n"
	_, err := ReadProfile(strings.NewReader(rows))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestLoadProfileCSV_Missing(t *testing.T) {
	_, err := LoadProfileCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
