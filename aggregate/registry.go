// The field registry: one ordered table binding every output field to its source column, its
// aggregator, and its live-vs-historical preference.
//
// The table is the single source of truth for three things: the column set requested from
// sacct, the column subset requested from sstat (live fields only), and how each field is
// resolved.  Adding an output field means adding one row here, nothing else.

package aggregate

import "github.com/rug-cit-hpc/hb-jobinfo/slurm"

type FieldSpec struct {
	// Output field name in the aggregated record.
	Name string
	// Source column requested from the accounting tools.
	Column string
	Kind   Kind
	// Key within a TRES string, for the TRES kinds.
	TresKey string
	// Resolve from live records when the job is running and live data exists.  Fresh usage
	// numbers live here; static job metadata does not, sstat never reports it.
	PreferLive bool
}

// AggregatedRecord maps output field name to its resolved, formatted value.  It has exactly one
// entry per registry row; fields no source reported resolve to the no-data marker.
type AggregatedRecord map[string]string

var Fields = []FieldSpec{
	{Name: "JobID", Column: "JobID", Kind: KindFirst},
	{Name: "JobName", Column: "JobName", Kind: KindFirst},
	{Name: "User", Column: "User", Kind: KindFirst},
	{Name: "Account", Column: "Account", Kind: KindFirst},
	{Name: "Partition", Column: "Partition", Kind: KindFirst},
	{Name: "NodeList", Column: "NodeList", Kind: KindFirst},
	{Name: "NNodes", Column: "NNodes", Kind: KindMaxInt},
	{Name: "NCPUS", Column: "NCPUS", Kind: KindMaxInt},
	{Name: "State", Column: "State", Kind: KindState},
	{Name: "Submit", Column: "Submit", Kind: KindMinDate},
	{Name: "Start", Column: "Start", Kind: KindMinDate},
	{Name: "End", Column: "End", Kind: KindMaxDate},
	{Name: "Timelimit", Column: "Timelimit", Kind: KindMaxDuration},
	{Name: "Elapsed", Column: "Elapsed", Kind: KindMaxDuration},
	{Name: "TotalCPU", Column: "TotalCPU", Kind: KindMaxDuration},
	{Name: "UserCPU", Column: "UserCPU", Kind: KindMaxDuration},
	{Name: "SystemCPU", Column: "SystemCPU", Kind: KindMaxDuration},
	{Name: "ReqMem", Column: "ReqMem", Kind: KindFirst},
	{Name: "MaxRSS", Column: "MaxRSS", Kind: KindMaxBytes, PreferLive: true},
	{Name: "MaxRSSNode", Column: "MaxRSSNode", Kind: KindMaxWithLocation, PreferLive: true},
	{Name: "MaxRSSTask", Column: "MaxRSSTask", Kind: KindMaxWithLocation, PreferLive: true},
	{Name: "MaxDiskWrite", Column: "MaxDiskWrite", Kind: KindMaxBytes, PreferLive: true},
	{Name: "MaxDiskWriteNode", Column: "MaxDiskWriteNode", Kind: KindMaxWithLocation, PreferLive: true},
	{Name: "MaxDiskRead", Column: "MaxDiskRead", Kind: KindMaxBytes, PreferLive: true},
	{Name: "MaxDiskReadNode", Column: "MaxDiskReadNode", Kind: KindMaxWithLocation, PreferLive: true},
	{Name: "ReqGPUS", Column: "AllocTRES", Kind: KindGpuLabel},
	{Name: "UsedMem", Column: "TRESUsageInMax", Kind: KindTresMaxBytes, TresKey: "mem", PreferLive: true},
	{Name: "GpuMem", Column: "TRESUsageInMax", Kind: KindTresMaxBytes, TresKey: "gres/gpumem", PreferLive: true},
	{Name: "GpuUtil", Column: "TRESUsageInAve", Kind: KindTresMaxPercent, TresKey: "gres/gpuutil", PreferLive: true},
	{Name: "TotalDiskRead", Column: "TRESUsageInTot", Kind: KindTresSumBytes, TresKey: "fs/disk", PreferLive: true},
	{Name: "TotalDiskWrite", Column: "TRESUsageOutTot", Kind: KindTresSumBytes, TresKey: "fs/disk", PreferLive: true},
	{Name: "Comment", Column: "Comment", Kind: KindFirst},
}

// HistoricalColumns returns the deduplicated column set to request from sacct, in registry
// order.
func HistoricalColumns() []string {
	return dedupColumns(func(FieldSpec) bool { return true })
}

// LiveColumns returns the deduplicated column subset to request from sstat: the live-preferred
// fields plus JobID, which identifies the step on every row.
func LiveColumns() []string {
	return dedupColumns(func(f FieldSpec) bool { return f.Name == "JobID" || f.PreferLive })
}

func dedupColumns(include func(FieldSpec) bool) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, f := range Fields {
		if include(f) && !seen[f.Column] {
			seen[f.Column] = true
			columns = append(columns, f.Column)
		}
	}
	return columns
}

// Resolve folds historical and live records into the aggregated record.  Live records, when
// present, win for the fields that prefer them; everything else is resolved from the
// historical records.
func Resolve(historical, live []slurm.StepRecord) AggregatedRecord {
	rec := make(AggregatedRecord, len(Fields))
	for _, f := range Fields {
		records := historical
		if f.PreferLive && len(live) > 0 {
			records = live
		}
		rec[f.Name] = Apply(records, f)
	}
	return rec
}
