package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"der-reliability/internal/api/models"
	"der-reliability/internal/model"
)

var configurationDescriptions = map[model.Configuration]string{
	model.NoDER:               "Grid supply only. The baseline every other configuration is compared against.",
	model.PVOnly:              "Rooftop PV netted against load while the grid is up. PV alone cannot carry the residence through an outage.",
	model.PVBESSGridConnected: "PV with battery storage, grid connected. The battery rides through grid outages while it has charge.",
	model.PVBESSStandalone:    "PV with battery storage and no grid connection. Any deficit is energy not served.",
}

// ListConfigurations handles GET /api/v1/configurations
func ListConfigurations(c *gin.Context) {
	out := make([]models.ConfigurationInfo, 0, len(model.Configurations))
	for _, cfg := range model.Configurations {
		out = append(out, models.ConfigurationInfo{
			Name:          cfg.String(),
			Description:   configurationDescriptions[cfg],
			HasPV:         cfg.HasPV(),
			HasBattery:    cfg.HasBattery(),
			GridConnected: cfg.GridConnected(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"configurations": out})
}
