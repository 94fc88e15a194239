package jobs

import (
	"net/url"
	"strings"
	"sync"
)

// ATS vendor names as stored on Job.ATSVendor.
const (
	VendorGreenhouse      = "greenhouse"
	VendorLever           = "lever"
	VendorWorkday         = "workday"
	VendorAshby           = "ashby"
	VendorICIMS           = "icims"
	VendorSmartRecruiters = "smartrecruiters"
	VendorJobvite         = "jobvite"
	VendorBambooHR        = "bamboohr"
	VendorTaleo           = "taleo"
	VendorUnknown         = ""
)

// hostSuffix → vendor. Matching is done on the URL host, suffix-wise, so
// boards.greenhouse.io and eu.greenhouse.io both resolve to greenhouse.
var vendorHosts = []struct {
	suffix string
	vendor string
}{
	{"greenhouse.io", VendorGreenhouse},
	{"lever.co", VendorLever},
	{"myworkdayjobs.com", VendorWorkday},
	{"ashbyhq.com", VendorAshby},
	{"icims.com", VendorICIMS},
	{"smartrecruiters.com", VendorSmartRecruiters},
	{"jobvite.com", VendorJobvite},
	{"bamboohr.com", VendorBambooHR},
	{"taleo.net", VendorTaleo},
}

// ATSDetector resolves the applicant tracking system behind a job URL.
// Each detector owns its cache; construct one per process and inject it
// wherever detection is needed.
type ATSDetector struct {
	mu    sync.RWMutex
	cache map[string]string // host → vendor
}

// NewATSDetector constructs a detector with an empty cache.
func NewATSDetector() *ATSDetector {
	return &ATSDetector{cache: make(map[string]string)}
}

// Detect returns the ATS vendor for the URL, or the empty string when the
// host is not a known ATS. Results are cached per host, including misses.
func (d *ATSDetector) Detect(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return VendorUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	d.mu.RLock()
	vendor, ok := d.cache[host]
	d.mu.RUnlock()
	if ok {
		return vendor
	}

	vendor = detectByHost(host)
	d.mu.Lock()
	d.cache[host] = vendor
	d.mu.Unlock()
	return vendor
}

func detectByHost(host string) string {
	for _, entry := range vendorHosts {
		if host == entry.suffix || strings.HasSuffix(host, "."+entry.suffix) {
			return entry.vendor
		}
	}
	return VendorUnknown
}
