package system

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Collector samples host metrics for reports and the agent status
// endpoint
type Collector struct {
	sampleInterval time.Duration
}

// NewCollector creates a collector with the default CPU sample window
func NewCollector() *Collector {
	return &Collector{sampleInterval: 200 * time.Millisecond}
}

// HostInfo retrieves static host information
func HostInfo() (*Host, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	return &Host{
		Hostname:      info.Hostname,
		OS:            info.OS,
		Platform:      info.Platform,
		KernelVersion: info.KernelVersion,
		KernelArch:    info.KernelArch,
		Uptime:        info.Uptime,
		UptimeHuman:   formatUptime(info.Uptime),
		Procs:         info.Procs,
	}, nil
}

// CPU samples CPU usage and load
func (c *Collector) CPU() (*CPUStats, error) {
	info, err := cpu.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu info: %w", err)
	}

	percent, err := cpu.Percent(c.sampleInterval, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu percent: %w", err)
	}

	loadAvg, err := load.Avg()
	if err != nil {
		// Load average is not available on all systems
		loadAvg = &load.AvgStat{}
	}

	stats := &CPUStats{
		Cores:     len(info),
		LoadAvg1:  loadAvg.Load1,
		LoadAvg5:  loadAvg.Load5,
		LoadAvg15: loadAvg.Load15,
	}
	if len(info) > 0 {
		stats.ModelName = info[0].ModelName
	}
	if len(percent) > 0 {
		stats.UsageTotal = percent[0]
	}

	return stats, nil
}

// Memory samples virtual memory and swap usage
func (c *Collector) Memory() (*MemoryStats, error) {
	vmem, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	swap, err := mem.SwapMemory()
	if err != nil {
		// Swap might not be available
		swap = &mem.SwapMemoryStat{}
	}

	return &MemoryStats{
		Total:       vmem.Total,
		Available:   vmem.Available,
		Used:        vmem.Used,
		UsedPercent: vmem.UsedPercent,
		SwapTotal:   swap.Total,
		SwapUsed:    swap.Used,
	}, nil
}

// Disks samples usage of all real filesystems
func (c *Collector) Disks() ([]DiskUsage, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk partitions: %w", err)
	}

	var disks []DiskUsage
	for _, p := range partitions {
		// Skip pseudo filesystems
		if p.Fstype == "squashfs" || p.Fstype == "tmpfs" || p.Fstype == "devtmpfs" {
			continue
		}

		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}

		disks = append(disks, DiskUsage{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Fstype:      p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}

	return disks, nil
}

// Snapshot collects a full host report
func (c *Collector) Snapshot() (*Snapshot, error) {
	hostInfo, err := HostInfo()
	if err != nil {
		return nil, err
	}

	cpuStats, err := c.CPU()
	if err != nil {
		return nil, err
	}

	memory, err := c.Memory()
	if err != nil {
		return nil, err
	}

	disks, err := c.Disks()
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Timestamp: time.Now(),
		Host:      *hostInfo,
		CPU:       *cpuStats,
		Memory:    *memory,
		Disks:     disks,
	}, nil
}

// formatUptime converts uptime seconds to a human readable string
func formatUptime(seconds uint64) string {
	duration := time.Duration(seconds) * time.Second

	days := int(duration.Hours() / 24)
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
