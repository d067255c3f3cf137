package models

// EvaluateRequest represents the request body for evaluating one customer
type EvaluateRequest struct {
	Configuration string            `json:"configuration"` // required by /evaluate, ignored by /evaluate/compare
	Profiles      ProfilesRequest   `json:"profiles"`
	LoadPoint     LoadPointRequest  `json:"load_point"`
	PV            PVRequest         `json:"pv"`
	BatteryID     string            `json:"battery_id,omitempty"` // preset from GET /api/v1/batteries
	Battery       BatteryRequest    `json:"battery"`
	Simulation    SimulationRequest `json:"simulation"`
}

// ProfilesRequest carries one typical year of hourly values
type ProfilesRequest struct {
	LoadKW     []float64 `json:"load_kw" binding:"required,len=8760"`
	Irradiance []float64 `json:"irradiance,omitempty"` // required with PV, kW/m²
}

type LoadPointRequest struct {
	FailureRatePerYear float64 `json:"failure_rate_per_year" binding:"gt=0"`
	RepairTimeHours    float64 `json:"repair_time_hours" binding:"gt=0"`
}

type PVRequest struct {
	CapacityKW     float64 `json:"capacity_kw" binding:"gte=0"`
	ModuleRatingKW float64 `json:"module_rating_kw" default:"0.3" binding:"gte=0"`
	DeratingFactor float64 `json:"derating_factor" default:"0.8" binding:"gte=0,lte=1"`
	FailureRate    float64 `json:"failure_rate" default:"4.35133e-05" binding:"gte=0"`
	RepairRate     float64 `json:"repair_rate" default:"0.0964337280" binding:"gte=0"`
}

type BatteryRequest struct {
	CapacityKWh  float64 `json:"capacity_kwh" binding:"gte=0"`
	PowerLimitKW float64 `json:"power_limit_kw" binding:"gte=0"`
	MinSOC       float64 `json:"soc_min" binding:"gte=0,lt=1"`
	InitialSOC   float64 `json:"initial_soc,omitempty" binding:"gte=0,lte=1"`
	FailureRate  float64 `json:"failure_rate,omitempty" binding:"gte=0"`
	RepairRate   float64 `json:"repair_rate,omitempty" binding:"gte=0"`
}

// SimulationRequest tunes the convergence loop; zero values use server defaults
type SimulationRequest struct {
	ConvergenceThreshold float64 `json:"convergence_threshold,omitempty" binding:"gte=0,lt=1"`
	YearsPerBatch        int     `json:"years_per_batch,omitempty" binding:"gte=0,lte=1000"`
	MaxRounds            int     `json:"max_rounds,omitempty" binding:"gte=0,lte=500"`
	Seed                 int64   `json:"seed,omitempty"`
}

// CompareRequest evaluates the same customer under several configurations
type CompareRequest struct {
	EvaluateRequest
	Configurations []string `json:"configurations" binding:"required,min=1,max=4"`
}
