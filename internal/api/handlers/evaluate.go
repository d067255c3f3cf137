package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"der-reliability/internal/api/models"
	"der-reliability/internal/config"
	"der-reliability/internal/data"
	"der-reliability/internal/engine"
	"der-reliability/internal/model"
	"der-reliability/internal/report"
)

// EvaluationHandler handles evaluation requests
type EvaluationHandler struct {
	opts      engine.Options
	store     *data.ResultStore
	batteries *BatteryHandler
	log       zerolog.Logger
}

// NewEvaluationHandler creates a new evaluation handler. opts are the server
// defaults; requests may override the convergence settings and seed.
func NewEvaluationHandler(opts engine.Options, store *data.ResultStore, batteries *BatteryHandler) *EvaluationHandler {
	h := &EvaluationHandler{opts: opts, store: store, batteries: batteries, log: zerolog.Nop()}
	if opts.Logger != nil {
		h.log = *opts.Logger
	}
	return h
}

// Evaluate handles POST /api/v1/evaluate
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := h.bind(c, &req); err != nil {
		return
	}
	if req.Configuration == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "configuration is required",
			},
		})
		return
	}

	in, err := h.buildInputs(req, req.Configuration)
	if err != nil {
		h.configError(c, err)
		return
	}

	res, err := engine.New(h.options(req.Simulation)).Evaluate(c.Request.Context(), in)
	if err != nil {
		h.evaluationError(c, err)
		return
	}

	ev := h.store.Put(res)
	c.JSON(http.StatusOK, models.EvaluationResponse{
		ID:      ev.ID,
		Status:  status(res),
		Summary: report.Summarize(res),
	})
}

// Compare handles POST /api/v1/evaluate/compare
func (h *EvaluationHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := h.bind(c, &req); err != nil {
		return
	}

	cfgs := make([]model.Configuration, 0, len(req.Configurations))
	inputs := make([]*model.Inputs, 0, len(req.Configurations))
	for _, name := range req.Configurations {
		in, err := h.buildInputs(req.EvaluateRequest, name)
		if err != nil {
			h.configError(c, err)
			return
		}
		cfgs = append(cfgs, in.Configuration)
		inputs = append(inputs, in)
	}

	// Each configuration was validated above; Compare swaps it on a copy of the base.
	results, err := engine.New(h.options(req.Simulation)).Compare(c.Request.Context(), inputs[0], cfgs)
	if err != nil {
		h.evaluationError(c, err)
		return
	}

	ev := h.store.Put(results...)
	resp := models.CompareResponse{ID: ev.ID, Status: "completed", Results: make([]report.Summary, len(results))}
	for i, r := range results {
		resp.Results[i] = report.Summarize(r)
		if !r.Converged {
			resp.Status = "not_converged"
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetEvaluation handles GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetEvaluation(c *gin.Context) {
	ev, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "evaluation not found or expired",
			},
		})
		return
	}
	rec := models.EvaluationRecord{ID: ev.ID, CreatedAt: ev.CreatedAt, Results: make([]report.Summary, len(ev.Results))}
	for i, r := range ev.Results {
		rec.Results[i] = report.Summarize(r)
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EvaluationHandler) bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return err
	}
	if err := defaults.Set(req); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
		return err
	}
	return nil
}

func (h *EvaluationHandler) buildInputs(req models.EvaluateRequest, configuration string) (*model.Inputs, error) {
	cfg, err := model.ParseConfiguration(configuration)
	if err != nil {
		return nil, err
	}

	batt := config.BatteryConfig{
		CapacityKWh:  req.Battery.CapacityKWh,
		PowerLimitKW: req.Battery.PowerLimitKW,
		MinSOC:       req.Battery.MinSOC,
		InitialSOC:   req.Battery.InitialSOC,
		FailureRate:  req.Battery.FailureRate,
		RepairRate:   req.Battery.RepairRate,
	}
	if req.BatteryID != "" {
		preset, err := h.batteries.Load(req.BatteryID)
		if err != nil {
			return nil, err
		}
		batt = config.MergeBattery(preset, batt)
	}
	if err := defaults.Set(&batt); err != nil {
		return nil, err
	}

	in := &model.Inputs{
		Configuration: cfg,
		LoadKW:        req.Profiles.LoadKW,
		Irradiance:    req.Profiles.Irradiance,
		LoadPoint: model.LoadPointParams{
			FailureRatePerYear: req.LoadPoint.FailureRatePerYear,
			RepairTimeHours:    req.LoadPoint.RepairTimeHours,
		},
		PV: model.PVParams{
			CapacityKW:     req.PV.CapacityKW,
			ModuleRatingKW: req.PV.ModuleRatingKW,
			DeratingFactor: req.PV.DeratingFactor,
			FailureRate:    req.PV.FailureRate,
			RepairRate:     req.PV.RepairRate,
		},
		Battery: batt.ToModelParams(),
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// options overlays the request's simulation settings on the server defaults.
// Workers stay server-controlled.
func (h *EvaluationHandler) options(s models.SimulationRequest) engine.Options {
	opts := h.opts
	if s.ConvergenceThreshold > 0 {
		opts.ConvergenceThreshold = s.ConvergenceThreshold
	}
	if s.YearsPerBatch > 0 {
		opts.YearsPerBatch = s.YearsPerBatch
	}
	if s.MaxRounds > 0 {
		opts.MaxRounds = s.MaxRounds
	}
	if s.Seed != 0 {
		opts.Seed = s.Seed
	}
	return opts
}

func (h *EvaluationHandler) configError(c *gin.Context, err error) {
	detail := models.ErrorDetail{Code: "INVALID_CONFIG", Message: err.Error()}
	var ce *model.ConfigError
	if errors.As(err, &ce) {
		detail.Details = map[string]interface{}{"field": ce.Field, "reason": ce.Reason}
	}
	status := http.StatusBadRequest
	if errors.Is(err, errUnknownBattery) {
		detail.Code = "UNKNOWN_BATTERY"
		status = http.StatusNotFound
	}
	c.JSON(status, models.ErrorResponse{Error: detail})
}

func (h *EvaluationHandler) evaluationError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrInvalidConfig) {
		h.configError(c, err)
		return
	}
	if c.Request.Context().Err() != nil {
		h.log.Warn().Err(err).Msg("evaluation canceled by client")
		return
	}
	h.log.Error().Err(err).Msg("evaluation failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "EVALUATION_ERROR",
			Message: fmt.Sprintf("evaluation failed: %v", err),
		},
	})
}

func status(r *engine.Result) string {
	if r.Converged {
		return "completed"
	}
	return "not_converged"
}
