package report

import (
	"strings"
	"testing"

	"github.com/rug-cit-hpc/hb-jobinfo/aggregate"
	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/units"
)

func finished() aggregate.AggregatedRecord {
	return aggregate.AggregatedRecord{"End": "2024-06-01T12:00:00"}
}

func TestHintSingleCoreLowEfficiency(t *testing.T) {
	m := Metrics{
		Cores:       1,
		Nodes:       1,
		ElapsedSec:  1000,
		TotalCPUSec: 400,
		Efficiency:  40,
		GpuUtil:     units.Absent,
		ReqMemBytes: units.Absent,
		MaxRSSBytes: units.Absent,
	}
	hints := Hints(finished(), m, -1, config.Default())
	if len(hints) != 1 {
		t.Fatalf("expected exactly one hint, got %d: %v", len(hints), hints)
	}
	if !strings.Contains(hints[0], "in- and output") {
		t.Fatalf("expected the I/O pattern hint, got %q", hints[0])
	}
}

func TestHintNotParallel(t *testing.T) {
	// 8 cores at 10% is below the single-core-equivalent baseline of 12.5%
	m := Metrics{
		Cores: 8, Nodes: 1, ElapsedSec: 1000, TotalCPUSec: 800, Efficiency: 10,
		GpuUtil: units.Absent, ReqMemBytes: units.Absent, MaxRSSBytes: units.Absent,
	}
	hints := Hints(finished(), m, -1, config.Default())
	if len(hints) != 1 || !strings.Contains(hints[0], "run in parallel") {
		t.Fatalf("expected the parallelism hint, got %v", hints)
	}
}

func TestHintCoresNotEffective(t *testing.T) {
	// 8 cores at 50% is above the baseline but still low
	m := Metrics{
		Cores: 8, Nodes: 1, ElapsedSec: 1000, TotalCPUSec: 4000, Efficiency: 50,
		GpuUtil: units.Absent, ReqMemBytes: units.Absent, MaxRSSBytes: units.Absent,
	}
	hints := Hints(finished(), m, -1, config.Default())
	if len(hints) != 1 || !strings.Contains(hints[0], "assigned cores") {
		t.Fatalf("expected the core-usage hint, got %v", hints)
	}
}

func TestHintGpuIdle(t *testing.T) {
	m := Metrics{
		Cores: 1, Nodes: 1, ElapsedSec: 1000, TotalCPUSec: 900, Efficiency: 90,
		GpuJob: true, GpuUtil: 0,
		ReqMemBytes: units.Absent, MaxRSSBytes: units.Absent,
	}
	hints := Hints(finished(), m, -1, config.Default())
	if len(hints) != 1 || !strings.Contains(hints[0], "effectively 0%") {
		t.Fatalf("expected the idle-GPU hint, got %v", hints)
	}
}

func TestHintGpuLow(t *testing.T) {
	m := Metrics{
		Cores: 1, Nodes: 1, ElapsedSec: 1000, TotalCPUSec: 900, Efficiency: 90,
		GpuJob: true, GpuUtil: 10,
		ReqMemBytes: units.Absent, MaxRSSBytes: units.Absent,
	}
	hints := Hints(finished(), m, -1, config.Default())
	if len(hints) != 1 || !strings.Contains(hints[0], "only 10%") {
		t.Fatalf("expected the low-GPU hint, got %v", hints)
	}
}

func TestHintGpuUnknownUtilization(t *testing.T) {
	m := Metrics{
		Cores: 1, Nodes: 1, ElapsedSec: 1000, TotalCPUSec: 900, Efficiency: 90,
		GpuJob: true, GpuUtil: units.Absent,
		ReqMemBytes: units.Absent, MaxRSSBytes: units.Absent,
	}
	if hints := Hints(finished(), m, -1, config.Default()); len(hints) != 0 {
		t.Fatalf("unknown utilization must not be judged, got %v", hints)
	}
}

func TestHintMemoryOverRequest(t *testing.T) {
	const gib = 1024 * 1024 * 1024
	m := Metrics{
		Cores: 2, Nodes: 1, ElapsedSec: 1000, TotalCPUSec: 1900, Efficiency: 95,
		GpuUtil:     units.Absent,
		ReqMemBytes: 64 * gib,
		MaxRSSBytes: 4 * gib,
	}
	// Node has 128 cores, the job held 2: the surplus memory was wasted
	hints := Hints(finished(), m, 128, config.Default())
	if len(hints) != 1 || !strings.Contains(hints[0], "requested 64.00G") {
		t.Fatalf("expected the memory hint, got %v", hints)
	}

	// Whole-node jobs are never blamed for the memory they held
	if hints := Hints(finished(), m, 2, config.Default()); len(hints) != 0 {
		t.Fatalf("whole node: %v", hints)
	}

	// Unknown node size: keep quiet
	if hints := Hints(finished(), m, -1, config.Default()); len(hints) != 0 {
		t.Fatalf("unknown node: %v", hints)
	}

	// GPU jobs get more slack, up to 32 GiB
	gm := m
	gm.GpuJob = true
	gm.GpuUtil = 90
	gm.ReqMemBytes = 24 * gib
	if hints := Hints(finished(), gm, 128, config.Default()); len(hints) != 0 {
		t.Fatalf("gpu slack: %v", hints)
	}
}

func TestHintGuards(t *testing.T) {
	m := Metrics{
		Cores: 1, Nodes: 1, ElapsedSec: 1000, TotalCPUSec: 400, Efficiency: 40,
		GpuUtil: units.Absent, ReqMemBytes: units.Absent, MaxRSSBytes: units.Absent,
	}

	// Unfinished jobs are not judged
	rec := aggregate.AggregatedRecord{"End": units.Sentinel}
	if hints := Hints(rec, m, -1, config.Default()); len(hints) != 0 {
		t.Fatalf("unfinished: %v", hints)
	}

	// Nor are jobs that barely ran
	short := m
	short.ElapsedSec = 10
	if hints := Hints(finished(), short, -1, config.Default()); len(hints) != 0 {
		t.Fatalf("too short: %v", hints)
	}

	// Nor jobs without CPU accounting
	idle := m
	idle.TotalCPUSec = 0
	if hints := Hints(finished(), idle, -1, config.Default()); len(hints) != 0 {
		t.Fatalf("no cpu time: %v", hints)
	}
}
