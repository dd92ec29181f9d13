// Advisory rules over the finished job's aggregated record.  Each rule inspects the record and
// the derived metrics independently; a job can collect several hints.  The texts are blunt on
// purpose, they are the only channel through which most users ever learn about these problems.

package report

import (
	"fmt"

	"github.com/rug-cit-hpc/hb-jobinfo/aggregate"
	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/units"
)

const (
	gib = 1024 * 1024 * 1024

	// A GPU reporting less than this is not being used at all.
	gpuIdleUtil = 0.001
	// Below this GPU utilization we complain.
	lowGpuUtil = 25.0
	// Below this CPU efficiency we complain.
	lowEfficiency = 75.0
	// Memory over-request thresholds
	minMemRequest    = 2.0 * gib
	memUsedFraction  = 0.75
	unusedMemPerCore = 1.5 * gib
	gpuMemRequest    = 32.0 * gib
)

// Hints inspects the aggregated record of a finished job and returns zero or more advisory
// messages, each possibly spanning several lines.  nodeCores is the core count of the node that
// held the peak RSS, or -1 when unknown.
func Hints(rec aggregate.AggregatedRecord, m Metrics, nodeCores int, cfg *config.Config) []string {
	// Only finished jobs that ran long enough to measure anything are worth judging
	if rec["End"] == units.Sentinel || rec["End"] == "UNLIMITED" {
		return nil
	}
	if m.ElapsedSec < float64(cfg.MinWalltime) || m.TotalCPUSec == 0 {
		return nil
	}

	var hints []string

	if m.GpuJob && m.GpuUtil >= 0 && m.GpuUtil < gpuIdleUtil {
		hints = append(hints,
			"The GPU utilization of the job was effectively 0%. Please check that\n"+
				"your application actually uses the GPU, or submit it to a non-GPU\n"+
				"partition instead.")
	}
	if m.GpuJob && m.GpuUtil >= gpuIdleUtil && m.GpuUtil < lowGpuUtil {
		hints = append(hints, fmt.Sprintf(
			"The GPU utilization of the job was only %.0f%%. Please check whether\n"+
				"the application is able to keep the GPU busy, for instance by\n"+
				"increasing the amount of work per batch.", m.GpuUtil))
	}
	if !m.GpuJob && m.Efficiency > 0 && m.Efficiency < lowEfficiency {
		switch {
		case m.Cores == 1:
			hints = append(hints,
				"The program efficiency is low. Check the file in- and output\n"+
					"pattern of your application.")
		case m.Efficiency <= 100/float64(m.Cores):
			hints = append(hints, fmt.Sprintf(
				"The program efficiency is very low. Your program does not seem to\n"+
					"run in parallel on the %d requested cores. Please check the\n"+
					"documentation of the program, or request a single core instead.",
				m.Cores))
		default:
			hints = append(hints,
				"The program efficiency is low. Your program is not using the\n"+
					"assigned cores effectively; check whether it scales to the\n"+
					"number of cores requested.")
		}
	}
	if hint := memoryHint(m, nodeCores); hint != "" {
		hints = append(hints, hint)
	}
	return hints
}

// memoryHint fires when the job reserved far more memory than it touched.  It only applies when
// the job did not occupy whole nodes: memory on a fully-allocated node could not have been given
// to anyone else anyway.
func memoryHint(m Metrics, nodeCores int) string {
	if nodeCores <= 0 || m.Nodes <= 0 {
		return ""
	}
	if float64(m.Cores)/float64(m.Nodes) >= float64(nodeCores) {
		return ""
	}
	if m.ReqMemBytes < 0 || m.MaxRSSBytes < 0 {
		return ""
	}
	if m.ReqMemBytes <= minMemRequest ||
		m.MaxRSSBytes/m.ReqMemBytes >= memUsedFraction ||
		m.ReqMemBytes-m.MaxRSSBytes <= unusedMemPerCore*float64(m.Cores) {
		return ""
	}
	if m.GpuJob && m.ReqMemBytes <= gpuMemRequest {
		return ""
	}
	return fmt.Sprintf(
		"The job requested %s of memory but used no more than %s. Please\n"+
			"request less memory next time; the surplus could have been assigned\n"+
			"to other jobs.",
		units.FormatByteSize(m.ReqMemBytes), units.FormatByteSize(m.MaxRSSBytes))
}
