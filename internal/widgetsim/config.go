package widgetsim

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL           string        // Base URL of the service
	Visitors          int           // Number of simulated widget instances
	ActionsPerVisitor int           // Actions each visitor performs
	Workers           int           // Number of concurrent workers
	Timeout           time.Duration // HTTP request timeout
	Seed              uint64        // Seed for the action walk; runs with the same seed replay
	Verbose           bool          // Log every mismatch
}

// Stats holds run statistics.
type Stats struct {
	Visitors        int
	ActionsSent     int
	ActionsRejected int
	Mismatches      int
	ChartsVerified  int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// dataset mirrors the parts of GET /api/datasets the simulator reads.
type dataset struct {
	ID string `json:"id"`
}

type datasetsResponse struct {
	Datasets []dataset `json:"datasets"`
}

type bar struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent_of_total"`
}

type chartResponse struct {
	MaxCount  int   `json:"max_count"`
	Bars      []bar `json:"bars"`
	Gridlines []int `json:"gridlines"`
}

type actionRequest struct {
	Action    string `json:"action"`
	DatasetID string `json:"dataset_id,omitempty"`
}
