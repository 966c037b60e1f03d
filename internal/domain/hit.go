package domain

import (
	"strings"
	"time"
)

// Hit is one recorded page view.
type Hit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

func NewHit(app, uri, ip string, at time.Time) (Hit, error) {
	app = strings.TrimSpace(app)
	uri = strings.TrimSpace(uri)
	ip = strings.TrimSpace(ip)
	if app == "" || uri == "" || ip == "" {
		return Hit{}, ErrValidation("app, uri and ip are required")
	}
	return Hit{App: app, URI: uri, IP: ip, Timestamp: at.UTC()}, nil
}

// ViewQuery asks for the number of hits on URI within [Start, End].
// Unique counts distinct IPs only.
type ViewQuery struct {
	URI    string
	Start  time.Time
	End    time.Time
	Unique bool
}

type ViewStat struct {
	App  string
	URI  string
	Hits int64
}

// EventURI is the public path whose hits count as views of an event.
func EventURI(eventID string) string { return "/events/" + eventID }
