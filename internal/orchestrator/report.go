package orchestrator

import (
	"time"

	"github.com/onecst/onecst/internal/rac"
)

// ClusterReport summarizes the work done on one cluster.
type ClusterReport struct {
	Cluster    rac.Cluster
	Infobases  int
	Sessions   int
	Terminated int
	Skipped    int
	// Failed counts sessions whose termination command exited unsuccessfully.
	Failed int
}

// Report summarizes a run. A run that aborts still returns the clusters
// processed so far.
type Report struct {
	PlatformPath string
	Clusters     []ClusterReport
	Elapsed      time.Duration
}

// Terminated returns the number of terminated sessions across clusters.
func (r *Report) Terminated() int {
	n := 0
	for _, c := range r.Clusters {
		n += c.Terminated
	}
	return n
}

// Skipped returns the number of excluded sessions across clusters.
func (r *Report) Skipped() int {
	n := 0
	for _, c := range r.Clusters {
		n += c.Skipped
	}
	return n
}

// Failed returns the number of sessions whose termination failed across
// clusters.
func (r *Report) Failed() int {
	n := 0
	for _, c := range r.Clusters {
		n += c.Failed
	}
	return n
}
