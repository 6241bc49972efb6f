package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"estate-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is the property store check. Nil reports the store as disconnected.
type DBPinger interface {
	Ping() error
}

// Pinger is an upstream HTTP dependency (indexer, object store).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the optional checks behind /health/json.
type Dependencies struct {
	DB      DBPinger
	Indexer Pinger
	Storage Pinger
}

type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB  int `json:"allocMb"`
	HeapInMB int `json:"heapInUseMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

const pingTimeout = 3 * time.Second

// CollectHealth gathers traffic counters from Redis and pings each configured
// dependency. Status is "ok" when Redis answers and no configured dependency
// failed.
func CollectHealth(ctx context.Context, rdb *redis.Client, deps Dependencies) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}

	if deps.DB != nil {
		result.Dependencies["database"] = timed(func() error { return deps.DB.Ping() }, "connected", "error")
	} else {
		result.Dependencies["database"] = DepStatus{Status: "disconnected"}
	}
	result.Dependencies["indexer"] = pingUpstream(ctx, deps.Indexer)
	result.Dependencies["storage"] = pingUpstream(ctx, deps.Storage)

	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()
	redisStatus := DepStatus{Status: "disconnected"}
	if rdb != nil {
		redisStatus = timed(func() error { return rdb.Ping(ctx).Err() }, "connected", "error")
		if redisStatus.Status == "connected" {
			startTimeMs = readTraffic(ctx, rdb, &stats, startTimeMs)
		}
	}
	result.Dependencies["redis"] = redisStatus
	result.Traffic = stats

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapInMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	result.Status = "ok"
	if redisStatus.Status != "connected" {
		result.Status = "issue"
	}
	for _, d := range result.Dependencies {
		if d.Status == "error" || d.Status == "unreachable" {
			result.Status = "issue"
		}
	}
	return result
}

func readTraffic(ctx context.Context, rdb *redis.Client, stats *TrafficInfo, startTimeMs int64) int64 {
	vals, _ := rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	str := func(i int) string {
		if i >= len(vals) {
			return ""
		}
		s, _ := vals[i].(string)
		return s
	}

	if s := str(4); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	count, _ := strconv.Atoi(str(3))
	if count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if s := str(5); s != "" {
		var last map[string]interface{}
		_ = json.Unmarshal([]byte(s), &last)
		stats.LastRequest = last
	}
	return startTimeMs
}

func pingUpstream(ctx context.Context, p Pinger) DepStatus {
	if p == nil {
		return DepStatus{Status: "unconfigured"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return timed(func() error { return p.Ping(ctx) }, "reachable", "unreachable")
}

func timed(ping func() error, okStatus, failStatus string) DepStatus {
	start := time.Now()
	if err := ping(); err != nil {
		return DepStatus{Status: failStatus}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: okStatus, PingMs: &ms}
}
