package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/slurm"
	"github.com/rug-cit-hpc/hb-jobinfo/status"
)

// fakeSource feeds the pipeline canned records, standing in for the accounting tools.
type fakeSource struct {
	historical []slurm.StepRecord
	live       []slurm.StepRecord
	pending    *slurm.PendingInfo
	nodeCores  int

	historicalErr error
}

func (fs *fakeSource) Historical(jobID string, columns []string) ([]slurm.StepRecord, error) {
	return fs.historical, fs.historicalErr
}

func (fs *fakeSource) Live(jobID string, columns []string) ([]slurm.StepRecord, error) {
	return fs.live, nil
}

func (fs *fakeSource) Pending(jobID string) (*slurm.PendingInfo, error) {
	return fs.pending, nil
}

func (fs *fakeSource) NodeCores(node string) (int, error) {
	return fs.nodeCores, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DocURL = "https://docs.example.org/job-hints"
	return cfg
}

func quietLogger() status.Logger {
	log := &status.StandardLogger{}
	log.SetLevel(status.LogLevelError)
	log.SetStderr(nil)
	return log
}

func TestRunJobNotFound(t *testing.T) {
	var out strings.Builder
	err := Run(testConfig(), quietLogger(), &fakeSource{nodeCores: -1}, "12345", &out)
	if err == nil {
		t.Fatalf("an empty historical answer must be fatal")
	}
	if !strings.Contains(err.Error(), "12345") {
		t.Fatalf("the error should name the job: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing must be printed on a fatal error, got %q", out.String())
	}
}

func TestRunQueryError(t *testing.T) {
	src := &fakeSource{historicalErr: errors.New("sacct exploded"), nodeCores: -1}
	err := Run(testConfig(), quietLogger(), src, "1", &strings.Builder{})
	if err == nil || !strings.Contains(err.Error(), "sacct exploded") {
		t.Fatalf("got %v", err)
	}
}

func completedJob() []slurm.StepRecord {
	main := slurm.StepRecord{
		"JobID":     "7771",
		"JobName":   "simulate.sh",
		"User":      "alice",
		"Account":   "physics",
		"Partition": "regular",
		"NodeList":  "node1",
		"NNodes":    "1",
		"NCPUS":     "1",
		"State":     "COMPLETED",
		"Submit":    "2024-06-01T08:00:00",
		"Start":     "2024-06-01T09:00:00",
		"End":       "2024-06-01T10:00:00",
		"Timelimit": "02:00:00",
		"Elapsed":   "01:00:00",
		"TotalCPU":  "00:24:00",
		"UserCPU":   "00:20:00",
		"SystemCPU": "00:04:00",
		"ReqMem":    "1Gn",
		"AllocTRES": "cpu=1,mem=1G",
	}
	batch := slurm.StepRecord{
		"JobID":            "7771.batch",
		"State":            "COMPLETED",
		"Elapsed":          "01:00:00",
		"MaxRSS":           "524288K",
		"MaxRSSNode":       "node1",
		"MaxRSSTask":       "0",
		"MaxDiskWrite":     "100M",
		"MaxDiskWriteNode": "node1",
		"MaxDiskRead":      "1G",
		"MaxDiskReadNode":  "node1",
		"TRESUsageInTot":   "fs/disk=1024",
		"TRESUsageOutTot":  "fs/disk=2048",
	}
	return []slurm.StepRecord{main, batch}
}

func TestRunCompletedJob(t *testing.T) {
	var out strings.Builder
	src := &fakeSource{historical: completedJob(), nodeCores: 128}
	if err := Run(testConfig(), quietLogger(), src, "7771", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Name", "simulate.sh",
		"User", "alice",
		"State", "COMPLETED",
		"Used walltime", "01:00:00",
		"Max Mem used", "512.00M (node1)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output lacks %q:\n%s", want, text)
		}
	}
	// 1 core at 40% efficiency for an hour: exactly the single-core I/O hint
	if !strings.Contains(text, "Hints and tips") {
		t.Fatalf("expected hints:\n%s", text)
	}
	if !strings.Contains(text, " 1) The program efficiency is low.") {
		t.Fatalf("expected the I/O hint:\n%s", text)
	}
	if strings.Contains(text, " 2)") {
		t.Fatalf("expected exactly one hint:\n%s", text)
	}
	if !strings.Contains(text, "https://docs.example.org/job-hints") {
		t.Fatalf("expected the reference line:\n%s", text)
	}
	// Non-GPU job: no GPU lines
	if strings.Contains(text, "GPU utilization") {
		t.Fatalf("gpu lines must stay hidden:\n%s", text)
	}
}

func TestRunPendingJob(t *testing.T) {
	main := slurm.StepRecord{
		"JobID":     "8888",
		"JobName":   "waiting.sh",
		"User":      "bob",
		"Partition": "regular",
		"State":     "PENDING",
		"Submit":    "2024-06-01T08:00:00",
		"Timelimit": "02:00:00",
	}
	src := &fakeSource{
		historical: []slurm.StepRecord{main},
		pending:    &slurm.PendingInfo{Dependency: "", Reason: "Priority", Cores: "16"},
		nodeCores:  -1,
	}
	var out strings.Builder
	if err := Run(testConfig(), quietLogger(), src, "8888", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Pending reason") || !strings.Contains(text, "Priority") {
		t.Fatalf("expected the pending reason:\n%s", text)
	}
	if !strings.Contains(text, "Cores") || !strings.Contains(text, "16") {
		t.Fatalf("core count should come from the queue:\n%s", text)
	}
	if strings.Contains(text, "Hints and tips") {
		t.Fatalf("pending jobs get no hints:\n%s", text)
	}
	// The empty dependency line disappears rather than printing an empty value
	if strings.Contains(text, "Dependency") {
		t.Fatalf("empty dependency should not print:\n%s", text)
	}
}

func TestRunGpuJob(t *testing.T) {
	records := completedJob()
	records[0]["Partition"] = "gpu"
	records[0]["AllocTRES"] = "cpu=1,mem=1G,gres/gpu:a100=1"
	records[1]["TRESUsageInAve"] = "gres/gpuutil=10"
	records[1]["TRESUsageInMax"] = "mem=400M,gres/gpumem=2G"
	var out strings.Builder
	src := &fakeSource{historical: records, nodeCores: 128}
	if err := Run(testConfig(), quietLogger(), src, "7771", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "GPUs") || !strings.Contains(text, "a100=1") {
		t.Fatalf("expected the GPU request line:\n%s", text)
	}
	if !strings.Contains(text, "GPU utilization") || !strings.Contains(text, "10%") {
		t.Fatalf("expected the utilization line:\n%s", text)
	}
	if !strings.Contains(text, "GPU memory used") || !strings.Contains(text, "2.00G") {
		t.Fatalf("expected the GPU memory line:\n%s", text)
	}
	// Low utilization on a finished GPU job draws the low-utilization hint
	if !strings.Contains(text, "only 10%") {
		t.Fatalf("expected the low-GPU hint:\n%s", text)
	}
}
