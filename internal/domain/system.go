package domain

// SystemSnapshot is one sample of host telemetry.
type SystemSnapshot struct {
	CPU     CPUStats     `json:"cpu"`
	Memory  MemoryStats  `json:"memory"`
	Network NetworkStats `json:"network"`
	Disk    DiskStats    `json:"disk"`
}

type CPUStats struct {
	UsagePercent float64 `json:"usage"`
	Cores        int     `json:"cores"`
	Model        string  `json:"model"`
}

type MemoryStats struct {
	Used         uint64  `json:"used"`
	Total        uint64  `json:"total"`
	UsagePercent float64 `json:"usagePercent"`
}

// NetworkStats carries derived per-second byte rates.
type NetworkStats struct {
	RxSpeed float64 `json:"rxSpeed"`
	TxSpeed float64 `json:"txSpeed"`
}

type DiskStats struct {
	Used         uint64  `json:"used"`
	Total        uint64  `json:"total"`
	UsagePercent float64 `json:"usagePercent"`
}

// ClockSnapshot is the formatted local time and date for the UI clock.
type ClockSnapshot struct {
	Current string `json:"current"`
	Date    string `json:"date"`
}
