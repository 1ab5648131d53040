// Package model contains core data types for the project.
package model

import (
	"fmt"
	"strconv"
	"time"
)

// ChatID identifies a Telegram chat (a recipient of outbound messages).
type ChatID int64

func (id ChatID) String() string { return strconv.FormatInt(int64(id), 10) }

// UnmarshalJSON accepts both 123 and "123"; older subscriber files stored ids as strings.
func (id *ChatID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %s: %w", b, err)
	}
	*id = ChatID(v)
	return nil
}

// MetricDefinition maps a display name to a PromQL expression.
type MetricDefinition struct {
	Name  string `json:"name" yaml:"name"`   // Display name, e.g. "CPU".
	Query string `json:"query" yaml:"query"` // Instant query expression.
}

// ReportLine is a single metric of a status report.
type ReportLine struct {
	Name  string
	Value *float64 // Nil when the value could not be obtained.
}

// Report is a status report built on request.
type Report struct {
	GeneratedAt time.Time
	Lines       []ReportLine
}

// DefaultMetrics returns the metrics reported by /status when none are configured.
func DefaultMetrics() []MetricDefinition {
	return []MetricDefinition{
		{Name: "CPU", Query: `100 - (avg by (instance)(irate(node_cpu_seconds_total{mode="idle"}[5m])) * 100)`},
		{Name: "Memory", Query: `(1 - (node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes)) * 100`},
		{Name: "Disk", Query: `(1 - (node_filesystem_avail_bytes{mountpoint="/"} / node_filesystem_size_bytes{mountpoint="/"})) * 100`},
		{Name: "Temperature", Query: `node_hwmon_temp_celsius`},
	}
}
