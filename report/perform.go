// The reporting pipeline: query, aggregate, enrich, advise, print.
//
// Control flow is a single synchronous pass.  The historical source is authoritative and its
// absence is the one fatal condition; the live, pending, node and GPU-metrics queries all
// degrade to "no data" when they fail.

package report

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/rug-cit-hpc/hb-jobinfo/aggregate"
	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/gpumetrics"
	"github.com/rug-cit-hpc/hb-jobinfo/slurm"
	"github.com/rug-cit-hpc/hb-jobinfo/status"
	"github.com/rug-cit-hpc/hb-jobinfo/units"
)

func Run(
	cfg *config.Config,
	log status.Logger,
	src slurm.DataSource,
	jobID string,
	stdout io.Writer,
) error {
	historical, err := src.Historical(jobID, aggregate.HistoricalColumns())
	if err != nil {
		return err
	}
	if len(historical) == 0 {
		return fmt.Errorf("No accounting information found for job %s", jobID)
	}
	log.Debugf("%d accounting records for job %s", len(historical), jobID)

	state := stateOf(historical)

	var live []slurm.StepRecord
	if strings.Contains(state, "RUNNING") && mayQueryLive(historical) {
		live, err = src.Live(jobID, aggregate.LiveColumns())
		if err != nil {
			log.Debugf("No live data: %s", err.Error())
		}
		log.Debugf("%d live records for job %s", len(live), jobID)
	}

	rec := aggregate.Resolve(historical, live)
	lines := Lines()

	if state == "PENDING" {
		mergePending(rec, lines, src, jobID, log)
	}

	m := Derive(rec, lines, cfg)

	if m.GpuJob && m.GpuUtil < 0 && cfg.MetricsURL != "" {
		if util, ok := gpumetrics.Utilization(cfg.MetricsURL, jobID, log); ok {
			m.GpuUtil = util
			rec["GpuUtil"] = fmt.Sprintf("%.0f%%", util)
		}
	}

	nodeCores := -1
	if node := rec["MaxRSSNode"]; node != units.Sentinel {
		nodeCores, err = src.NodeCores(node)
		if err != nil {
			log.Debugf("No node facts for %s: %s", node, err.Error())
			nodeCores = -1
		}
	}

	hints := Hints(rec, m, nodeCores, cfg)
	Print(stdout, lines, rec, hints, cfg)
	return nil
}

// stateOf resolves just the merged state from the historical records, enough to decide whether
// the live and pending sources apply at all.
func stateOf(records []slurm.StepRecord) string {
	for _, f := range aggregate.Fields {
		if f.Name == "State" {
			return aggregate.Apply(records, f)
		}
	}
	return units.Sentinel
}

// mayQueryLive: sstat only answers for the invoking user's own jobs, unless we are root.
// When in doubt, ask anyway; a refusal degrades like any other missing live data.
func mayQueryLive(records []slurm.StepRecord) bool {
	if os.Getuid() == 0 {
		return true
	}
	me, err := user.Current()
	if err != nil {
		return true
	}
	for _, r := range records {
		if owner := r["User"]; owner != "" {
			return owner == me.Username
		}
	}
	return true
}

func mergePending(
	rec aggregate.AggregatedRecord,
	lines []Line,
	src slurm.DataSource,
	jobID string,
	log status.Logger,
) {
	pending, err := src.Pending(jobID)
	if err != nil {
		log.Debugf("No pending data: %s", err.Error())
		return
	}
	if pending == nil {
		return
	}
	rec["Reason"] = pending.Reason
	rec["Dependency"] = pending.Dependency
	if rec["NCPUS"] == units.Sentinel && pending.Cores != "" {
		rec["NCPUS"] = pending.Cores
	}
	for i := range lines {
		if lines[i].Label == "Pending reason" || lines[i].Label == "Dependency" {
			lines[i].Visible = true
		}
	}
}
