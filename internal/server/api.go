package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/desertthunder/shelfsync/internal/binder"
	"github.com/desertthunder/shelfsync/internal/dedupe"
	"github.com/desertthunder/shelfsync/internal/exporter"
	"github.com/desertthunder/shelfsync/internal/orchestrator"
)

// Deps bundles the engines the HTTP surface translates gin requests
// into calls against. HTTP routing, CORS, and auth middleware are
// explicitly out of scope; this is the thinnest possible translation
// layer from gin.Context to each engine's own request/response shapes.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Binder       *binder.Engine
	Dedupe       *dedupe.Engine
	Exporter     *exporter.Engine
}

// Engine exposes the underlying *gin.Engine so callers can register
// routes directly against it, as RegisterRoutes does.
func (r *BasicRouter) Engine() *gin.Engine {
	return r.engine
}

// RegisterRoutes wires POST /sync, /bind, /dedupe, and /export onto r,
// per spec.md §6's request/response envelope for /sync and a thin
// per-engine JSON body for the others.
func RegisterRoutes(r *BasicRouter, deps Deps) {
	g := r.Engine()
	g.POST("/sync", handleSync(deps.Orchestrator))
	g.POST("/bind", handleBind(deps.Binder))
	g.POST("/dedupe", handleDedupe(deps.Dedupe))
	g.POST("/export", handleExport(deps.Exporter))
}

func handleSync(o *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req orchestrator.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o.Handle(c.Request.Context(), req))
	}
}

type bindRequest struct {
	Root          string            `json:"root"`
	Threshold     float64           `json:"threshold"`
	Confirmed     bool              `json:"confirmed"`
	Selections    map[string]string `json:"selections"`
	Resolutions   map[string]string `json:"resolutions"`
}

func handleBind(e *binder.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bindRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		plan, err := e.Analyze(c.Request.Context(), req.Root, req.Threshold)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !req.Confirmed {
			c.JSON(http.StatusOK, gin.H{"needs_confirmation": true, "plan": plan})
			return
		}

		result, err := e.Execute(c.Request.Context(), plan, req.Selections, req.Resolutions)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type dedupeRequest struct {
	Confirmed bool `json:"confirmed"`
	DryRun    bool `json:"dry_run"`
}

func handleDedupe(e *dedupe.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dedupeRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		groups, err := e.Detect(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !req.Confirmed {
			c.JSON(http.StatusOK, gin.H{"needs_confirmation": true, "groups": groups})
			return
		}

		result, err := e.Cleanup(c.Request.Context(), groups, req.DryRun)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"groups": result})
	}
}

type exportRequest struct {
	PlaylistIDs []string                  `json:"playlist_ids"`
	OutputDir   string                    `json:"output_dir"`
	Desired     exporter.DesiredStructure `json:"desired_structure"`
	Backup      bool                      `json:"backup"`
	DryRun      bool                      `json:"dry_run"`
	Plain       bool                      `json:"plain"`
}

func handleExport(e *exporter.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req exportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Desired != nil {
			if err := e.Reorganize(c.Request.Context(), req.OutputDir, req.Desired, req.Backup, time.Now()); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"reorganized": true})
			return
		}

		result, err := e.RegenerateBatch(c.Request.Context(), req.PlaylistIDs, req.OutputDir, !req.Plain)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
