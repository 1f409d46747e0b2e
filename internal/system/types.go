package system

import "time"

// Host describes the machine the report covers
type Host struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform"`
	KernelVersion string `json:"kernel_version"`
	KernelArch    string `json:"kernel_arch"`
	Uptime        uint64 `json:"uptime_seconds"`
	UptimeHuman   string `json:"uptime"`
	Procs         uint64 `json:"procs"`
}

// CPUStats is a point-in-time CPU sample
type CPUStats struct {
	Cores      int     `json:"cores"`
	ModelName  string  `json:"model_name"`
	UsageTotal float64 `json:"usage_total"`
	LoadAvg1   float64 `json:"load_avg_1"`
	LoadAvg5   float64 `json:"load_avg_5"`
	LoadAvg15  float64 `json:"load_avg_15"`
}

// MemoryStats is a point-in-time memory sample
type MemoryStats struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
}

// DiskUsage covers one mounted filesystem
type DiskUsage struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	Fstype      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// Snapshot is the full host report written by generate_report and
// served by the agent's status endpoint
type Snapshot struct {
	Timestamp time.Time   `json:"timestamp"`
	Host      Host        `json:"host"`
	CPU       CPUStats    `json:"cpu"`
	Memory    MemoryStats `json:"memory"`
	Disks     []DiskUsage `json:"disks"`
}
