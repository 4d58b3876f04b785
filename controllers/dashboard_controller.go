package controllers

import (
	"html/template"
	"net/http"
	"strings"

	"coinwatch/middleware"
	"coinwatch/services/pipeline"

	"github.com/gin-gonic/gin"
)

// DashboardController serves the combined display-and-trigger page
type DashboardController struct {
	pipeline *pipeline.Pipeline
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(p *pipeline.Pipeline) *DashboardController {
	return &DashboardController{pipeline: p}
}

// Index runs the interactive pipeline for the selected currency and
// renders the dashboard. Currency and timeframe arrive via form fields
// or query parameters, defaulting to usd/day.
// GET|POST /
func (dc *DashboardController) Index(c *gin.Context) {
	currency := strings.ToLower(formOrQuery(c, "currency", "usd"))
	timeframe := strings.ToLower(formOrQuery(c, "timeframe", "day"))

	data := dc.pipeline.RunForRequest(c.Request.Context(), currency, timeframe)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"username":  c.GetString(middleware.ContextUserKey),
		"currency":  data.Currency,
		"timeframe": data.Timeframe,
		"alert":     data.Alert.Message,
		"showChart": data.Chart.Markup != "",
		"chartHTML": template.HTML(data.Chart.Markup),
		"rows":      data.Rows,
	})
}

// formOrQuery reads a request value from the form body first, then the
// query string, then falls back to the default.
func formOrQuery(c *gin.Context, key, defaultValue string) string {
	if v := c.PostForm(key); v != "" {
		return v
	}
	if v := c.Query(key); v != "" {
		return v
	}
	return defaultValue
}
