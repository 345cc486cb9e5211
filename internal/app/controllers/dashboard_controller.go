package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursewatch/internal/app/services"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
)

// DashboardController serves the read-only dashboard projection.
type DashboardController struct {
	export *services.ExportService
	diff   *services.DiffService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(export *services.ExportService, diff *services.DiffService) *DashboardController {
	return &DashboardController{export: export, diff: diff}
}

// GetDashboard returns the multi-semester dashboard document.
func (ctrl *DashboardController) GetDashboard(c *gin.Context) {
	export, err := ctrl.export.ExportAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, export)
}

// GetSemester returns one semester's dashboard document.
func (ctrl *DashboardController) GetSemester(c *gin.Context) {
	export, err := ctrl.export.ExportSemester(c.Request.Context(), c.Param("semester"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, export)
}

// GetSectionHistory returns one section's enrollment time series.
func (ctrl *DashboardController) GetSectionHistory(c *gin.Context) {
	sectionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		vErr := apperrors.NewCustomError(apperrors.ErrValidation, "section id must be an integer")
		_ = c.Error(vErr.WithDetails(map[string]interface{}{"id": c.Param("id")}))
		return
	}

	history, err := ctrl.diff.SectionHistory(c.Request.Context(), sectionID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, history)
}
