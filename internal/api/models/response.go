package models

import (
	"time"

	"der-reliability/internal/report"
)

// EvaluationResponse represents the response from a single evaluation
type EvaluationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	report.Summary
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	ID      string           `json:"id"`
	Status  string           `json:"status"`
	Results []report.Summary `json:"results"`
}

// EvaluationRecord is a stored evaluation
type EvaluationRecord struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Results   []report.Summary `json:"results"`
}

// ConfigurationInfo describes one customer configuration
type ConfigurationInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	HasPV         bool   `json:"has_pv"`
	HasBattery    bool   `json:"has_battery"`
	GridConnected bool   `json:"grid_connected"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	File  string       `json:"file"`
	Specs BatterySpecs `json:"specs"`
}

// BatterySpecs contains battery specifications
type BatterySpecs struct {
	CapacityKWh  float64 `json:"capacity_kwh"`
	PowerLimitKW float64 `json:"power_limit_kw"`
	MinSOC       float64 `json:"soc_min"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
