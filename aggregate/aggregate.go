// Reduction strategies that fold the per-step records of a job down to one value per output
// field.
//
// sacct reports once per completed step (plus the main job row), sstat once per running step;
// any of them may leave any column empty.  Each aggregator scans all records for one column and
// produces either a formatted value or the no-data marker.  Which aggregator applies to which
// column is declared in the registry, not here.

package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rug-cit-hpc/hb-jobinfo/slurm"
	"github.com/rug-cit-hpc/hb-jobinfo/units"
)

// Kind selects the reduction strategy for a field.
type Kind int

const (
	// First non-empty value wins.  For job metadata only the main record reports.
	KindFirst Kind = iota
	// Numerically largest integer value.
	KindMaxInt
	// Largest byte size, reformatted.
	KindMaxBytes
	// Earliest / latest timestamp.
	KindMinDate
	KindMaxDate
	// Longest duration; UNLIMITED dominates.
	KindMaxDuration
	// Merged step states, normalized.
	KindState
	// The value of this column on the record where the related numeric column peaks.
	KindMaxWithLocation
	// GPU descriptor from a TRES string.
	KindGpuLabel
	// Largest TRES value for a key, as bytes.
	KindTresMaxBytes
	// Largest TRES value for a key, as a rounded percentage.
	KindTresMaxPercent
	// Sum of a TRES value over all steps, as bytes.
	KindTresSumBytes
)

// Uids below this belong to system accounts, so a cancellation from one of them was an
// operator's doing rather than the job owner's.
const minRegularUid = 10000

// Apply folds the records for one field spec down to its resolved value.
func Apply(records []slurm.StepRecord, f FieldSpec) string {
	switch f.Kind {
	case KindFirst:
		return firstNonEmpty(records, f.Column)
	case KindMaxInt:
		return maxInteger(records, f.Column)
	case KindMaxBytes:
		return maxByteSize(records, f.Column)
	case KindMinDate:
		return minDate(records, f.Column)
	case KindMaxDate:
		return maxDate(records, f.Column)
	case KindMaxDuration:
		return maxDuration(records, f.Column)
	case KindState:
		return mergeStates(records, f.Column)
	case KindMaxWithLocation:
		return maxEntryWithLocation(records, f.Column)
	case KindGpuLabel:
		return gpuTresLabel(records, f.Column)
	case KindTresMaxBytes:
		return units.FormatByteSize(tresMax(records, f.Column, f.TresKey))
	case KindTresMaxPercent:
		if v := tresMax(records, f.Column, f.TresKey); v >= 0 {
			return fmt.Sprintf("%.0f%%", v)
		}
		return units.Sentinel
	case KindTresSumBytes:
		return units.FormatByteSize(tresSum(records, f.Column, f.TresKey))
	default:
		panic("Unexpected aggregator kind")
	}
}

func firstNonEmpty(records []slurm.StepRecord, column string) string {
	for _, r := range records {
		if v := r[column]; v != "" {
			return v
		}
	}
	return units.Sentinel
}

func maxInteger(records []slurm.StepRecord, column string) string {
	best := int64(-1)
	for _, r := range records {
		if v := r[column]; v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > best {
				best = n
			}
		}
	}
	if best < 0 {
		return units.Sentinel
	}
	return strconv.FormatInt(best, 10)
}

func maxByteSize(records []slurm.StepRecord, column string) string {
	best := units.Absent
	for _, r := range records {
		if v := units.ParseByteSize(r[column]); v > best {
			best = v
		}
	}
	return units.FormatByteSize(best)
}

func minDate(records []slurm.StepRecord, column string) string {
	best := ""
	for _, r := range records {
		v := r[column]
		if v == "" || v == "UNKNOWN" {
			continue
		}
		if best == "" || v < best {
			best = v
		}
	}
	if best == "" {
		return units.Sentinel
	}
	return best
}

func maxDate(records []slurm.StepRecord, column string) string {
	best := ""
	for _, r := range records {
		v := r[column]
		if v == "UNKNOWN" {
			continue
		}
		best = units.MaxDate(best, v)
	}
	if best == "" {
		return units.Sentinel
	}
	return best
}

func maxDuration(records []slurm.StepRecord, column string) string {
	best := ""
	bestSeconds := -1.0
	for _, r := range records {
		v := r[column]
		if v == "UNLIMITED" {
			return "UNLIMITED"
		}
		if v == "" || v == "INVALID" {
			continue
		}
		if s := units.DurationToSeconds(v); s > bestSeconds {
			best, bestSeconds = v, s
		}
	}
	if best == "" {
		return units.Sentinel
	}
	return best
}

// mergeStates collects the distinct step states in first-seen order and then normalizes:
// a COMPLETED step is uninteresting once any other state exists; a TIMEOUT explains the
// CANCELLED that accompanies it; and "CANCELLED by <uid>" is folded to "by user" or
// "by operator" depending on who did the cancelling.
func mergeStates(records []slurm.StepRecord, column string) string {
	var states []string
	seen := make(map[string]bool)
	for _, r := range records {
		if v := r[column]; v != "" && !seen[v] {
			seen[v] = true
			states = append(states, v)
		}
	}
	if len(states) > 1 && seen["COMPLETED"] {
		states = remove(states, "COMPLETED")
	}
	if seen["CANCELLED"] && seen["TIMEOUT"] {
		states = remove(states, "CANCELLED")
		delete(seen, "CANCELLED")
	}
	cancelledBy := false
	for i, s := range states {
		uidText, found := strings.CutPrefix(s, "CANCELLED by ")
		if !found {
			continue
		}
		cancelledBy = true
		if uid, err := strconv.Atoi(uidText); err == nil {
			if uid >= minRegularUid {
				states[i] = "CANCELLED by user"
			} else {
				states[i] = "CANCELLED by operator"
			}
		}
	}
	if cancelledBy && seen["CANCELLED"] {
		states = remove(states, "CANCELLED")
	}
	if len(states) == 0 {
		return units.Sentinel
	}
	return strings.Join(states, ",")
}

func remove(xs []string, x string) []string {
	var ys []string
	for _, y := range xs {
		if y != x {
			ys = append(ys, y)
		}
	}
	return ys
}

// maxEntryWithLocation resolves location columns such as MaxRSSNode: it finds the record where
// the related numeric column (the column name with its Node/Task suffix stripped) peaks and
// reports this column's value there.  Task locations get the step suffix appended so that
// "which task" can be found again.
func maxEntryWithLocation(records []slurm.StepRecord, column string) string {
	numeric := strings.TrimSuffix(strings.TrimSuffix(column, "Node"), "Task")
	isTask := strings.HasSuffix(column, "Task")
	best := 0.0
	value := ""
	for _, r := range records {
		if v := units.ParseByteSize(r[numeric]); v > best {
			best = v
			value = r[column]
			if isTask && r.Step() != "" {
				value += "," + r.Step()
			}
		}
	}
	if value == "" {
		return units.Sentinel
	}
	return value
}

func gpuTresLabel(records []slurm.StepRecord, column string) string {
	for _, r := range records {
		if label, found := units.ParseTresGpuLabel(r[column]); found {
			return label
		}
	}
	return units.Sentinel
}

func tresMax(records []slurm.StepRecord, column, key string) float64 {
	best := units.Absent
	for _, r := range records {
		if v := units.ParseTresValue(key, r[column]); v > best {
			best = v
		}
	}
	return best
}

// tresSum totals a TRES value over all steps.  The total is seeded below zero and bumped back on
// the first contribution, so that a genuine zero total is distinguishable from "no step reported
// anything".
func tresSum(records []slurm.StepRecord, column, key string) float64 {
	total := -1.0
	for _, r := range records {
		if v := units.ParseTresValue(key, r[column]); v >= 0 {
			if total < 0 {
				total += 1
			}
			total += v
		}
	}
	if total < 0 {
		return units.Absent
	}
	return math.Max(total, 0)
}
