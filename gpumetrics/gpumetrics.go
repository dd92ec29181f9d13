// Fallback source for GPU utilization.
//
// Slurm only accounts GPU usage in TRES on clusters with the right plugins; sites without them
// usually scrape per-job utilization into a metrics service instead.  When a metrics endpoint is
// configured, we ask it for the job's per-GPU utilization samples and average them.  The
// endpoint returns a JSON array of [timestamp, "percent"] pairs, one per GPU.  Any failure
// degrades to "no data"; a metrics hiccup must never break the report.

package gpumetrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rug-cit-hpc/hb-jobinfo/status"
)

var client = http.Client{Timeout: 10 * time.Second}

func Utilization(endpoint, jobID string, log status.Logger) (float64, bool) {
	resp, err := client.Get(endpoint + "?job=" + url.QueryEscape(jobID))
	if err != nil {
		log.Debugf("GPU metrics query failed: %s", err.Error())
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Debugf("GPU metrics query failed: status %d", resp.StatusCode)
		return 0, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debugf("GPU metrics query failed: %s", err.Error())
		return 0, false
	}
	return Average(body, log)
}

// Average extracts the utilization percentages from the endpoint's response body and averages
// them across GPUs.
func Average(body []byte, log status.Logger) (float64, bool) {
	var samples [][]any
	if err := json.Unmarshal(body, &samples); err != nil {
		log.Debugf("Malformed GPU metrics response: %s", err.Error())
		return 0, false
	}
	sum := 0.0
	count := 0
	for _, s := range samples {
		if len(s) < 2 {
			continue
		}
		text, ok := s[1].(string)
		if !ok {
			continue
		}
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
