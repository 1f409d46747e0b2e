package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/cache"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
	"github.com/ngenohkevin/taskrunner/internal/runlog"
	"github.com/ngenohkevin/taskrunner/internal/runner"
	"github.com/ngenohkevin/taskrunner/internal/system"
)

// Version reported by the health and info endpoints
const Version = "1.0.0"

// Handlers holds all HTTP handlers
type Handlers struct {
	cfg       *config.Config
	engine    *runner.Engine
	catalog   *catalog.Catalog
	enabled   []string
	collector *system.Collector
	cache     *cache.StatusCache
	logPath   string
}

// NewHandlers creates a handlers instance around one shared engine.
// enabled is the resolved enablement list for this process; runs
// through the agent use the same list the CLI would.
func NewHandlers(cfg *config.Config, engine *runner.Engine, cat *catalog.Catalog, enabled []string, logPath string) *Handlers {
	return &Handlers{
		cfg:       cfg,
		engine:    engine,
		catalog:   cat,
		enabled:   enabled,
		collector: system.NewCollector(),
		cache:     cache.NewStatusCache(),
		logPath:   logPath,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

// GetInfo handles GET /api/info
func (h *Handlers) GetInfo(c *gin.Context) {
	cached, found := h.cache.Get(cache.KeyHost)
	if found {
		c.JSON(http.StatusOK, cached)
		return
	}

	hostInfo, err := system.HostInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	info := gin.H{
		"hostname": hostInfo.Hostname,
		"os":       hostInfo.OS,
		"platform": hostInfo.Platform,
		"kernel":   hostInfo.KernelVersion,
		"arch":     hostInfo.KernelArch,
		"uptime":   hostInfo.UptimeHuman,
		"agent":    "taskrunner-agent",
		"version":  Version,
	}

	h.cache.Set(cache.KeyHost, info)
	c.JSON(http.StatusOK, info)
}

// taskView is one catalog entry merged with its enablement
type taskView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// ListTasks handles GET /api/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	enabledSet := make(map[string]bool, len(h.enabled))
	for _, name := range h.enabled {
		enabledSet[name] = true
	}

	var tasks []taskView
	for _, name := range h.catalog.Names() {
		task, _ := h.catalog.Lookup(name)
		tasks = append(tasks, taskView{
			Name:        task.Name,
			Description: task.Description,
			Enabled:     enabledSet[name],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":   tasks,
		"total":   len(tasks),
		"enabled": h.enabled,
	})
}

// RunTask handles POST /api/tasks/:name/run
func (h *Handlers) RunTask(c *gin.Context) {
	name := c.Param("name")

	result, err := h.engine.Run(c.Request.Context(), name, h.enabled)
	if err != nil {
		if errors.Is(err, runner.ErrNotEnabled) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   err.Error(),
				"enabled": h.enabled,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunAll handles POST /api/run
func (h *Handlers) RunAll(c *gin.Context) {
	result, err := h.engine.Run(c.Request.Context(), runner.RequestAll, h.enabled)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStatus handles GET /api/status
func (h *Handlers) GetStatus(c *gin.Context) {
	cached, found := h.cache.Get(cache.KeyStatus)
	if found {
		c.JSON(http.StatusOK, cached)
		return
	}

	snap, err := h.collector.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.cache.Set(cache.KeyStatus, snap)
	c.JSON(http.StatusOK, snap)
}

// GetLog handles GET /api/log
func (h *Handlers) GetLog(c *gin.Context) {
	lines := 100
	if l := c.Query("lines"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			lines = n
		}
	}

	entries, err := runlog.Tail(h.logPath, lines)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path":  h.logPath,
		"lines": entries,
	})
}
