// Record shapes returned by the Slurm accounting tools.

package slurm

import "strings"

// SacctDelimiter separates fields in sacct output.  A snowman is vanishingly unlikely to occur
// in a job name or comment, unlike "|" which users put in shell commands all the time.
const SacctDelimiter = "☃"

// StepRecord is one row returned by a data source for one job or job step: a mapping from
// column name to the raw string value.  An empty value means the source did not report the
// field for this step.
type StepRecord map[string]string

// Step returns the step suffix of the record's composite job id ("123.batch" -> "batch"),
// or the empty string for the main job record.
func (r StepRecord) Step() string {
	id := r["JobID"]
	if i := strings.IndexByte(id, '.'); i != -1 {
		return id[i+1:]
	}
	return ""
}

// ParseRecords splits delimiter-separated accounting output into records, one per nonempty
// line, binding fields to the given column names.  The column order must match the order the
// columns were requested in.  Rows with too few fields are bound as far as they go; extra
// fields are dropped.
func ParseRecords(text, delimiter string, columns []string) []StepRecord {
	var records []StepRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(strings.TrimRight(line, "\r"), delimiter)
		if line == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		r := make(StepRecord, len(columns))
		for i, c := range columns {
			if i < len(fields) {
				r[c] = fields[i]
			} else {
				r[c] = ""
			}
		}
		records = append(records, r)
	}
	return records
}
