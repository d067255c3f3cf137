package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"der-reliability/internal/api/models"
	"der-reliability/internal/config"
)

var errUnknownBattery = errors.New("unknown battery preset")

// BatteryHandler serves the battery presets in a directory of YAML files
type BatteryHandler struct {
	batteryDir string
	log        zerolog.Logger
}

// NewBatteryHandler creates a new battery handler
func NewBatteryHandler(dir string, log zerolog.Logger) *BatteryHandler {
	if dir == "" {
		dir = filepath.Join("examples", "batteries")
	}
	// Convert to absolute path for reliability
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &BatteryHandler{batteryDir: dir, log: log}
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	batteries := []models.BatteryInfo{}

	entries, err := os.ReadDir(h.batteryDir)
	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.batteryDir).Msg("battery directory unavailable")
		c.JSON(http.StatusOK, gin.H{"batteries": batteries})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		b, err := h.Load(id)
		if err != nil {
			h.log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping battery preset")
			continue
		}
		name := b.Name
		if name == "" {
			name = id
		}
		batteries = append(batteries, models.BatteryInfo{
			ID:   id,
			Name: name,
			File: entry.Name(),
			Specs: models.BatterySpecs{
				CapacityKWh:  b.CapacityKWh,
				PowerLimitKW: b.PowerLimitKW,
				MinSOC:       b.MinSOC,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"batteries": batteries})
}

// Load reads the preset with the given ID (file name without ".yaml").
func (h *BatteryHandler) Load(id string) (config.BatteryConfig, error) {
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return config.BatteryConfig{}, fmt.Errorf("%w: %q", errUnknownBattery, id)
	}
	b, err := config.LoadBatteryFile(filepath.Join(h.batteryDir, id+".yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return config.BatteryConfig{}, fmt.Errorf("%w: %q", errUnknownBattery, id)
	}
	return b, err
}
