package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// handleHealth reports service liveness and the state of the current build.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}

	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			s.log.Error().Err(err).Msg("Database health check failed")
			health["status"] = "degraded"
			health["database"] = "unhealthy"
		} else {
			health["database"] = "healthy"
		}
	}

	if col := s.service.Collection(); col != nil {
		health["build_id"] = col.BuildID
		health["built_at"] = col.BuiltAt
		health["nodes"] = len(col.Nodes)
	} else {
		health["build_id"] = nil
	}

	status := http.StatusOK
	if health["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// handleSystemStatus reports host resource usage alongside the last run.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"goroutines": runtime.NumGoroutine(),
	}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		status["cpu_percent"] = percentages[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory"] = map[string]interface{}{
			"total_mb":     vm.Total / 1024 / 1024,
			"used_mb":      vm.Used / 1024 / 1024,
			"used_percent": vm.UsedPercent,
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	status["heap_alloc_mb"] = ms.HeapAlloc / 1024 / 1024

	if report := s.service.LastReport(); report != nil {
		status["last_scan"] = report
	}

	writeJSON(w, http.StatusOK, status)
}
