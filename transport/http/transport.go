package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/devguide"
	"github.com/flarexio/devguide/analysis"
)

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func StatusHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := endpoint(c, nil)
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusExpectationFailed, err.Error())
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func AnalyzeHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devguide.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		resp, err := endpoint(c, req)
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusExpectationFailed, err.Error())
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func FixHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devguide.FixRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		resp, err := endpoint(c, req)
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusExpectationFailed, err.Error())
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

// ReportHandler serves both report flavours; the endpoint decides the
// format.
func ReportHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devguide.ReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		resp, err := endpoint(c, req)
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusExpectationFailed, err.Error())
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func AnalysisHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := analysis.ParseID(c.Param("id"))
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		resp, err := endpoint(c, id)
		if err != nil {
			code := http.StatusExpectationFailed
			if errors.Is(err, analysis.ErrAnalysisNotFound) {
				code = http.StatusNotFound
			}

			c.Abort()
			c.Error(err)
			c.String(code, err.Error())
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

func AnalysesHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				err := errors.New("invalid limit")
				c.Abort()
				c.Error(err)
				c.String(http.StatusBadRequest, err.Error())
				return
			}

			limit = n
		}

		resp, err := endpoint(c, limit)
		if err != nil {
			c.Abort()
			c.Error(err)
			c.String(http.StatusExpectationFailed, err.Error())
			return
		}

		c.JSON(http.StatusOK, &resp)
	}
}

// AddRoutes mounts the API under r. A nil auth leaves /api/fix open.
func AddRoutes(r gin.IRouter, endpoints devguide.EndpointSet, auth gin.HandlerFunc) {
	api := r.Group("/api")
	{
		// GET /api/health
		api.GET("/health", HealthHandler)

		// GET /api/status
		api.GET("/status", StatusHandler(endpoints.Status))

		// POST /api/analyze
		api.POST("/analyze", AnalyzeHandler(endpoints.Analyze))

		// POST /api/fix
		fix := []gin.HandlerFunc{FixHandler(endpoints.Fix)}
		if auth != nil {
			fix = append([]gin.HandlerFunc{auth}, fix...)
		}
		api.POST("/fix", fix...)

		// POST /api/report
		api.POST("/report", ReportHandler(endpoints.Report))

		// POST /api/report/html
		api.POST("/report/html", ReportHandler(endpoints.HTMLReport))

		// GET /api/analyses
		api.GET("/analyses", AnalysesHandler(endpoints.Analyses))

		// GET /api/analyses/:id
		api.GET("/analyses/:id", AnalysisHandler(endpoints.Analysis))
	}
}
