// The output line table.  Rendering order, labels, and which aggregated fields feed each line
// are declared here; the GPU gate and the pending-job logic flip visibility flags at run time,
// so every invocation works on a fresh copy of the table.

package report

type Line struct {
	Label string
	// Aggregated-record field names consumed, in template order.
	Fields []string
	// fmt template with one %s per field.
	Format string
	// Lines that start out invisible are enabled by the GPU gate or the pending logic.
	Visible bool
	// Only printed with long output.
	Long bool
	// Part of the GPU group, enabled together by the gate.
	Gpu bool
}

func Lines() []Line {
	return []Line{
		{Label: "Job ID", Fields: []string{"JobID"}, Format: "%s", Visible: true},
		{Label: "Name", Fields: []string{"JobName"}, Format: "%s", Visible: true},
		{Label: "User", Fields: []string{"User"}, Format: "%s", Visible: true},
		{Label: "Account", Fields: []string{"Account"}, Format: "%s", Visible: true, Long: true},
		{Label: "Partition", Fields: []string{"Partition"}, Format: "%s", Visible: true},
		{Label: "Nodes", Fields: []string{"NodeList"}, Format: "%s", Visible: true},
		{Label: "Number of Nodes", Fields: []string{"NNodes"}, Format: "%s", Visible: true, Long: true},
		{Label: "Cores", Fields: []string{"NCPUS"}, Format: "%s", Visible: true},
		{Label: "GPUs", Fields: []string{"ReqGPUS"}, Format: "%s", Gpu: true},
		{Label: "State", Fields: []string{"State"}, Format: "%s", Visible: true},
		{Label: "Pending reason", Fields: []string{"Reason"}, Format: "%s"},
		{Label: "Dependency", Fields: []string{"Dependency"}, Format: "%s"},
		{Label: "Comment", Fields: []string{"Comment"}, Format: "%s", Visible: true, Long: true},
		{Label: "Submit", Fields: []string{"Submit"}, Format: "%s", Visible: true},
		{Label: "Start", Fields: []string{"Start"}, Format: "%s", Visible: true},
		{Label: "End", Fields: []string{"End"}, Format: "%s", Visible: true},
		{Label: "Reserved walltime", Fields: []string{"Timelimit"}, Format: "%s", Visible: true},
		{Label: "Used walltime", Fields: []string{"Elapsed"}, Format: "%s", Visible: true},
		{Label: "Used CPU time", Fields: []string{"TotalCPU"}, Format: "%s", Visible: true},
		{Label: "% User (Computation)", Fields: []string{"UserCPUPct"}, Format: "%s", Visible: true},
		{Label: "% System (I/O)", Fields: []string{"SystemCPUPct"}, Format: "%s", Visible: true},
		{Label: "CPU efficiency", Fields: []string{"Efficiency"}, Format: "%s", Visible: true, Long: true},
		{Label: "Mem reserved", Fields: []string{"ReqMem"}, Format: "%s", Visible: true},
		{Label: "Max Mem used", Fields: []string{"MaxRSS", "MaxRSSNode"}, Format: "%s (%s)", Visible: true},
		{Label: "Max Mem task", Fields: []string{"MaxRSSTask"}, Format: "%s", Visible: true, Long: true},
		{Label: "Full Mem usage", Fields: []string{"UsedMem"}, Format: "%s", Visible: true, Long: true},
		{Label: "Max Disk Write", Fields: []string{"MaxDiskWrite", "MaxDiskWriteNode"}, Format: "%s (%s)", Visible: true},
		{Label: "Max Disk Read", Fields: []string{"MaxDiskRead", "MaxDiskReadNode"}, Format: "%s (%s)", Visible: true},
		{Label: "Total Disk Write", Fields: []string{"TotalDiskWrite"}, Format: "%s", Visible: true, Long: true},
		{Label: "Total Disk Read", Fields: []string{"TotalDiskRead"}, Format: "%s", Visible: true, Long: true},
		{Label: "GPU utilization", Fields: []string{"GpuUtil"}, Format: "%s", Gpu: true},
		{Label: "GPU memory used", Fields: []string{"GpuMem"}, Format: "%s", Gpu: true},
	}
}
