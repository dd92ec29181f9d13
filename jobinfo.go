// jobinfo - collect job information from Slurm in a usable format.
//
// Run `jobinfo -h` for help.
//
// The accounting tools each know a different part of the story: sacct has the finalized
// per-step records for any job, sstat has fresh usage for running jobs, squeue knows why a
// pending job is waiting.  jobinfo queries them, merges their records into one summary, and
// appends hints when the job plainly wasted its allocation.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rug-cit-hpc/hb-jobinfo/config"
	"github.com/rug-cit-hpc/hb-jobinfo/report"
	"github.com/rug-cit-hpc/hb-jobinfo/slurm"
	"github.com/rug-cit-hpc/hb-jobinfo/status"
)

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	longOutput := flags.Bool("l", false, "Print additional accounting fields")
	debug := flags.Bool("d", false, "Print debug output about the queries performed")
	flags.Usage = func() {
		fmt.Fprintf(
			flags.Output(),
			`Usage of %s:
  %s [-l] [-d] jobid

Collect scheduling and resource-usage information for one Slurm job and
print it as a report.  For running jobs the report includes live usage
data; for pending jobs the reason the job is waiting.

Options:
`,
			os.Args[0], os.Args[0])
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])
	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(2)
	}
	jobID := flags.Arg(0)

	log := status.Default()
	if *debug {
		log.LowerLevelTo(status.LogLevelDebug)
	}

	cfg := config.FromFiles(log)
	cfg.LongOutput = *longOutput
	cfg.Debug = *debug

	src := slurm.NewCommandSource(cfg, log)
	if err := report.Run(cfg, log, src, jobID, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
