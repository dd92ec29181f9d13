// Derived metrics over the aggregated record: CPU efficiency and the user/system split, the
// GPU visibility gate, walltime alignment, and the numeric view of the record that the hint
// rules work from.

package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rug-cit-hpc/hb-jobinfo/aggregate"
	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/units"
)

// Metrics is the numeric view of an aggregated record, computed once and shared by the derived
// fields and the hint rules.
type Metrics struct {
	Cores int
	Nodes int

	ElapsedSec  float64
	TotalCPUSec float64
	UserCPUSec  float64
	SysCPUSec   float64

	// 0-100, valid only when TotalCPUSec > 0
	Efficiency float64

	GpuJob bool
	// 0-100, or Absent when no source reported utilization
	GpuUtil float64

	// Bytes, Absent when unknown
	ReqMemBytes float64
	MaxRSSBytes float64
}

// Derive computes the derived output fields, extends the record with them in place, and flips
// the visibility of the GPU line group.  Must run after aggregation and the pending-job merge,
// before the hint rules.
func Derive(rec aggregate.AggregatedRecord, lines []Line, cfg *config.Config) Metrics {
	m := Metrics{
		Cores:       atoiOr(rec["NCPUS"], 0),
		Nodes:       atoiOr(rec["NNodes"], 0),
		ElapsedSec:  units.DurationToSeconds(rec["Elapsed"]),
		TotalCPUSec: units.DurationToSeconds(rec["TotalCPU"]),
		UserCPUSec:  units.DurationToSeconds(rec["UserCPU"]),
		SysCPUSec:   units.DurationToSeconds(rec["SystemCPU"]),
		GpuUtil:     units.Absent,
		MaxRSSBytes: units.ParseByteSize(rec["MaxRSS"]),
	}
	m.GpuJob = strings.Contains(rec["Partition"], cfg.GpuMarker) || rec["ReqGPUS"] != units.Sentinel
	if pct, found := strings.CutSuffix(rec["GpuUtil"], "%"); found {
		if v, err := strconv.ParseFloat(pct, 64); err == nil {
			m.GpuUtil = v
		}
	}
	m.ReqMemBytes = reqMemBytes(rec["ReqMem"], m.Cores, m.Nodes)

	if m.GpuJob {
		for i := range lines {
			if lines[i].Gpu {
				lines[i].Visible = true
			}
		}
	}

	// Align the walltime cohort on a shared day-field width
	cohort := []string{rec["Timelimit"], rec["Elapsed"], rec["TotalCPU"]}
	rec["Timelimit"] = units.FormatAlignedDuration(rec["Timelimit"], cohort)
	rec["Elapsed"] = units.FormatAlignedDuration(rec["Elapsed"], cohort)

	// A job with no recorded CPU time gets no CPU accounting lines at all, and certainly no
	// division by it.
	if m.TotalCPUSec == 0 {
		rec["TotalCPU"] = units.Sentinel
		rec["UserCPUPct"] = ""
		rec["SystemCPUPct"] = ""
		rec["Efficiency"] = ""
		return m
	}

	rec["TotalCPU"] = units.FormatAlignedDuration(rec["TotalCPU"], cohort)
	rec["UserCPUPct"] = fmt.Sprintf("%.2f%%", 100*m.UserCPUSec/m.TotalCPUSec)
	rec["SystemCPUPct"] = fmt.Sprintf("%.2f%%", 100*m.SysCPUSec/m.TotalCPUSec)
	if m.Cores > 0 && m.ElapsedSec > 0 {
		m.Efficiency = 100 * m.TotalCPUSec / (float64(m.Cores) * m.ElapsedSec)
		rec["Efficiency"] = fmt.Sprintf("%.2f%%", m.Efficiency)
	} else {
		rec["Efficiency"] = ""
	}
	return m
}

func atoiOr(s string, dflt int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return dflt
}

// reqMemBytes converts a sacct ReqMem value to total bytes for the job.  Older Slurm versions
// tag the value with "c" (per core) or "n" (per node); newer ones report the total directly.
func reqMemBytes(reqMem string, cores, nodes int) float64 {
	if reqMem == "" || reqMem == units.Sentinel {
		return units.Absent
	}
	scale := 1
	if n, found := strings.CutSuffix(reqMem, "c"); found {
		reqMem, scale = n, cores
	} else if n, found := strings.CutSuffix(reqMem, "n"); found {
		reqMem, scale = n, nodes
	}
	v := units.ParseByteSize(reqMem)
	if v < 0 || scale <= 0 {
		return units.Absent
	}
	return v * float64(scale)
}
