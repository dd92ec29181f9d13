// The external-query boundary: invocations of sacct, sstat, squeue and scontrol.
//
// Each query is a blocking subprocess invocation returning a finite list of text records.  The
// DataSource interface exists so that the whole reporting pipeline can be driven from canned
// records in tests; CommandSource is the real thing.

package slurm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/process"
	"github.com/rug-cit-hpc/hb-jobinfo/status"
)

// PendingInfo is the single record squeue reports for a job that has not started.
type PendingInfo struct {
	Dependency string
	Reason     string
	Cores      string
}

type DataSource interface {
	// Historical returns the finalized per-step records sacct has for the job, one per step,
	// with the given columns.  Authoritative for any job state.
	Historical(jobID string, columns []string) ([]StepRecord, error)

	// Live returns in-progress per-step records from sstat, available only while the job
	// executes and only for the invoking user's own jobs (or for root).
	Live(jobID string, columns []string) ([]StepRecord, error)

	// Pending returns the scheduling status of a job still in the queue, or nil if squeue
	// reports nothing.
	Pending(jobID string) (*PendingInfo, error)

	// NodeCores returns the total core count of a compute node, or -1 if unknown.
	NodeCores(node string) (int, error)
}

type CommandSource struct {
	cfg *config.Config
	log status.Logger
}

func NewCommandSource(cfg *config.Config, log status.Logger) *CommandSource {
	return &CommandSource{cfg: cfg, log: log}
}

func (cs *CommandSource) Historical(jobID string, columns []string) ([]StepRecord, error) {
	args := []string{
		"-j", jobID,
		"--format=" + strings.Join(columns, ","),
		"--parsable2",
		"--noheader",
		"--delimiter=" + SacctDelimiter,
	}
	cs.log.Debugf("running %s %s", cs.cfg.Sacct, strings.Join(args, " "))
	stdout, _, err := process.RunSubprocess(cs.cfg.Sacct, args)
	if err != nil {
		return nil, fmt.Errorf("Accounting query failed\n%w", err)
	}
	return ParseRecords(stdout, SacctDelimiter, columns), nil
}

func (cs *CommandSource) Live(jobID string, columns []string) ([]StepRecord, error) {
	args := []string{
		"-a", "-n", "-p",
		"-j", jobID,
		"--format=" + strings.Join(columns, ","),
	}
	cs.log.Debugf("running %s %s", cs.cfg.Sstat, strings.Join(args, " "))
	stdout, _, err := process.RunSubprocess(cs.cfg.Sstat, args)
	if err != nil {
		// sstat fails for jobs we may not inspect; the report degrades to historical data
		cs.log.Debugf("sstat: %s", err.Error())
		return nil, nil
	}
	return ParseRecords(stdout, "|", columns), nil
}

var pendingColumns = []string{"Dependency", "Reason", "MinCPUs"}

func (cs *CommandSource) Pending(jobID string) (*PendingInfo, error) {
	args := []string{
		"--noheader",
		"-o", "%E|%R|%C",
		"-j", jobID,
	}
	cs.log.Debugf("running %s %s", cs.cfg.Squeue, strings.Join(args, " "))
	stdout, _, err := process.RunSubprocess(cs.cfg.Squeue, args)
	if err != nil {
		cs.log.Debugf("squeue: %s", err.Error())
		return nil, nil
	}
	rs := ParseRecords(stdout, "|", pendingColumns)
	if len(rs) == 0 {
		return nil, nil
	}
	dep := rs[0]["Dependency"]
	// squeue prints a literal "(null)" for the empty dependency list
	if dep == "(null)" {
		dep = ""
	}
	return &PendingInfo{
		Dependency: dep,
		Reason:     rs[0]["Reason"],
		Cores:      rs[0]["MinCPUs"],
	}, nil
}

func (cs *CommandSource) NodeCores(node string) (int, error) {
	args := []string{"show", "node", node}
	cs.log.Debugf("running %s %s", cs.cfg.Scontrol, strings.Join(args, " "))
	stdout, _, err := process.RunSubprocess(cs.cfg.Scontrol, args)
	if err != nil {
		cs.log.Debugf("scontrol: %s", err.Error())
		return -1, nil
	}
	for _, tok := range strings.Fields(stdout) {
		if rest, found := strings.CutPrefix(tok, "CPUTot="); found {
			if n, err := strconv.Atoi(rest); err == nil {
				return n, nil
			}
		}
	}
	return -1, nil
}
