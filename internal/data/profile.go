package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"der-reliability/internal/model"
)

// LoadProfileCSV reads an hourly profile of one typical year. The value is
// taken from the last column of each row, so both "value" and
// "hour,value" layouts work. A non-numeric first row is treated as a header.
func LoadProfileCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	values, err := ReadProfile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

func ReadProfile(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	out := make([]float64, 0, model.HoursPerYear)
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		cell := strings.TrimSpace(rec[len(rec)-1])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			if row == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		out = append(out, v)
	}

	if len(out) != model.HoursPerYear {
		return nil, &model.ConfigError{Field: "profile", Reason: fmt.Sprintf("expected %d hourly values, got %d", model.HoursPerYear, len(out))}
	}
	if floats.HasNaN(out) {
		return nil, &model.ConfigError{Field: "profile", Reason: "contains NaN"}
	}
	return out, nil
}
