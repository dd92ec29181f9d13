// Conversions between the textual values produced by the Slurm accounting tools and numeric
// values, and the inverse formatters.
//
// The accounting data are not clean: fields may be empty, carry the "--" no-data marker, or hold
// tokens that do not parse (sacct has been observed to emit a literal "16?" for a byte size).
// All parsers here are therefore permissive: a token that cannot be parsed yields Absent or zero,
// never an error.

package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel is the fixed no-data marker substituted whenever no record contributes a value for a
// field.  Distinct from the empty string, which marks a field a source simply did not report.
const Sentinel = "--"

// Absent is the out-of-domain value returned by parsers when a token carries no information.
// Byte counts and TRES values are nonnegative, so any negative value will do.
const Absent = -1.0

var byteSuffixes = "KMGTPE"

// ParseByteSize converts a sacct/sstat byte count such as "5135468K" or "3.69M" to a number of
// bytes.  Empty or malformed tokens (including the no-data marker) yield Absent.
func ParseByteSize(token string) float64 {
	if token == "" || token == Sentinel {
		return Absent
	}
	scale := 1.0
	if i := strings.IndexByte(byteSuffixes, token[len(token)-1]); i != -1 {
		scale = math.Pow(1024, float64(i+1))
		token = token[:len(token)-1]
	}
	n, err := strconv.ParseFloat(token, 64)
	if err != nil || n < 0 {
		return Absent
	}
	return n * scale
}

// FormatByteSize renders a byte count with two decimals and the largest applicable one-letter
// suffix.  Absent values render as the no-data marker.
func FormatByteSize(bytes float64) string {
	if bytes < 0 {
		return Sentinel
	}
	exp := int(math.Floor(math.Log2(bytes+1) / 10))
	if exp > len(byteSuffixes) {
		exp = len(byteSuffixes)
	}
	if exp == 0 {
		return fmt.Sprintf("%.2f", bytes)
	}
	return fmt.Sprintf("%.2f%c", bytes/math.Pow(1024, float64(exp)), byteSuffixes[exp-1])
}

// Durations in accounting output are [[days-]hours:]minutes:seconds[.fraction].
var durationRe = regexp.MustCompile(`^(?:(?:(\d+)-)?(\d+):)?(\d+):(\d+(?:\.\d+)?)$`)

// ParseDuration decomposes a duration token.  Missing groups are zero; a token that does not
// match the grammar is all zero.
func ParseDuration(token string) (seconds float64, minutes, hours, days int64) {
	m := durationRe.FindStringSubmatch(token)
	if m == nil {
		return
	}
	if m[1] != "" {
		days, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m[2] != "" {
		hours, _ = strconv.ParseInt(m[2], 10, 64)
	}
	minutes, _ = strconv.ParseInt(m[3], 10, 64)
	seconds, _ = strconv.ParseFloat(m[4], 64)
	return
}

// DurationToSeconds flattens a duration token to seconds, zero if unparsable.
func DurationToSeconds(token string) float64 {
	s, m, h, d := ParseDuration(token)
	return s + 60*(float64(m)+60*(float64(h)+24*float64(d)))
}

// FormatAlignedDuration renders a duration right-aligned on the day-field width of a cohort of
// sibling duration fields, so that a column of reserved/used/CPU times lines up.  A zero or empty
// value collapses to the no-data marker; a nonempty token outside the duration grammar (such as
// "UNLIMITED") passes through unchanged.
func FormatAlignedDuration(token string, peers []string) string {
	if token == "" {
		return Sentinel
	}
	if !durationRe.MatchString(token) {
		return token
	}
	if DurationToSeconds(token) == 0 {
		return Sentinel
	}
	width := 0
	for _, p := range peers {
		if _, _, _, d := ParseDuration(p); d > 0 {
			if w := len(strconv.FormatInt(d, 10)) + 1; w > width {
				width = w
			}
		}
	}
	s, m, h, d := ParseDuration(token)
	day := ""
	if d > 0 {
		day = strconv.FormatInt(d, 10) + "-"
	}
	return fmt.Sprintf("%*s%02d:%02d:%02.0f", width, day, h, m, math.Floor(s))
}

// ParseTresValue extracts the value of one key from a TRES string, a comma-joined list of
// key=value pairs such as "cpu=8,mem=64G,gres/gpu=2".  Values may carry a byte-size suffix.
// Absent if the key does not occur.
func ParseTresValue(key, tres string) float64 {
	marker := "," + key + "="
	i := strings.Index(","+tres, marker)
	if i == -1 {
		return Absent
	}
	val := tres[i+len(marker)-1:]
	if j := strings.IndexByte(val, ','); j != -1 {
		val = val[:j]
	}
	return ParseByteSize(val)
}

// ParseTresGpuLabel extracts the GPU descriptor from a TRES string: the text after a "gres/gpu:"
// or "gres/gpu=" marker up to the next comma, e.g. "v100=2" or "1".  The bool is false when the
// string requests no GPU.
func ParseTresGpuLabel(tres string) (string, bool) {
	for _, marker := range []string{"gres/gpu:", "gres/gpu="} {
		if i := strings.Index(tres, marker); i != -1 {
			label := tres[i+len(marker):]
			if j := strings.IndexByte(label, ','); j != -1 {
				label = label[:j]
			}
			return label, true
		}
	}
	return "", false
}

// MaxDate returns the later of two timestamp strings.  "UNLIMITED" dominates either operand; an
// empty or "INVALID" operand loses to the other.  Otherwise plain string comparison is enough
// because the timestamps are zero-padded ISO format.
func MaxDate(a, b string) string {
	if a == "UNLIMITED" || b == "UNLIMITED" {
		return "UNLIMITED"
	}
	if a == "" || a == "INVALID" {
		return b
	}
	if b == "" || b == "INVALID" {
		return a
	}
	if a > b {
		return a
	}
	return b
}
