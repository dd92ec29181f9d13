// Site configuration for jobinfo.
//
// Everything has a usable default; a site can override markers, thresholds, external tool paths
// and the optional GPU metrics endpoint in /etc/jobinfo.ini or $HOME/.jobinfo.  The file is a
// plain ini file with a single [jobinfo] section:
//
//   [jobinfo]
//   gpu-partition-marker = gpu
//   doc-url = https://wiki.hpc.rug.nl/habrok/additional_information/job_hints
//   metrics-url = http://localhost:9090/gpu-usage
//   sacct = /usr/bin/sacct
//
// The parsed result is an explicit Config struct handed to the pipeline entry point; nothing in
// the engine reads ambient state, so tests can construct any Config they need.

package config

import (
	"errors"
	"os"
	"path"

	ini "github.com/lars-t-hansen/ini"

	"github.com/rug-cit-hpc/hb-jobinfo/status"
)

type Config struct {
	// Command line
	LongOutput bool
	Debug      bool

	// Site tunables
	GpuMarker   string // substring of a partition name that makes it a GPU partition
	DocURL      string // reference printed below the hints, "" to omit
	MetricsURL  string // GPU utilization endpoint, "" disables the fallback query
	MinWalltime int64  // seconds a job must have run before hints apply

	// External tools
	Sacct    string
	Sstat    string
	Squeue   string
	Scontrol string
}

// MT: Constant after initialization
var (
	p              = ini.NewParser()
	section        = p.AddSection("jobinfo")
	gpuMarkerField = section.AddString("gpu-partition-marker")
	docURLField    = section.AddString("doc-url")
	metricsField   = section.AddString("metrics-url")
	sacctField     = section.AddString("sacct")
	sstatField     = section.AddString("sstat")
	squeueField    = section.AddString("squeue")
	scontrolField  = section.AddString("scontrol")
)

func Default() *Config {
	return &Config{
		GpuMarker:   "gpu",
		DocURL:      "https://wiki.hpc.rug.nl/habrok/additional_information/job_hints",
		MinWalltime: 180,
		Sacct:       "sacct",
		Sstat:       "sstat",
		Squeue:      "squeue",
		Scontrol:    "scontrol",
	}
}

// FromFiles builds the default configuration and then applies /etc/jobinfo.ini and $HOME/.jobinfo
// on top, in that order.  A missing file is fine; an unreadable or malformed one is logged and
// skipped, a bad config file should never keep anyone from seeing their job report.
func FromFiles(log status.Logger) *Config {
	cfg := Default()
	files := []string{"/etc/jobinfo.ini"}
	if home := os.Getenv("HOME"); home != "" {
		files = append(files, path.Join(path.Clean(home), ".jobinfo"))
	}
	for _, fn := range files {
		input, err := os.Open(fn)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Warningf("Cannot open %s: %s", fn, err.Error())
			}
			continue
		}
		store, err := p.Parse(input)
		input.Close()
		if err != nil {
			log.Warningf("Cannot parse %s: %s", fn, err.Error())
			continue
		}
		cfg.apply(store)
	}
	return cfg
}

func (cfg *Config) apply(store *ini.Store) {
	applyString(&cfg.GpuMarker, gpuMarkerField, store)
	applyString(&cfg.DocURL, docURLField, store)
	applyString(&cfg.MetricsURL, metricsField, store)
	applyString(&cfg.Sacct, sacctField, store)
	applyString(&cfg.Sstat, sstatField, store)
	applyString(&cfg.Squeue, squeueField, store)
	applyString(&cfg.Scontrol, scontrolField, store)
}

func applyString(sp *string, f *ini.Field, store *ini.Store) {
	if f.Present(store) {
		*sp = os.ExpandEnv(f.StringVal(store))
	}
}
