package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/validate"
)

// legacyTimeLayout is accepted next to RFC3339 in query params.
const legacyTimeLayout = "2006-01-02 15:04:05"

func invalidParam(name, msg string) error {
	return domain.ErrValidationMeta("invalid query param", map[string]string{name: msg})
}

func pathUUID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if !validate.IsUUID(id) {
		return "", domain.ErrValidationMeta("invalid path param", map[string]string{name: "must be uuid"})
	}
	return id, nil
}

func queryInt(q url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidParam(name, "must be an integer")
	}
	return n, nil
}

func queryBool(q url.Values, name string) (*bool, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, invalidParam(name, "must be true or false")
	}
	return &b, nil
}

func queryTime(q url.Values, name string) (*time.Time, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, v, time.UTC)
	if err != nil {
		return nil, invalidParam(name, "must be RFC3339 or yyyy-MM-dd HH:mm:ss")
	}
	return &t, nil
}

// queryList accepts both repeated params and comma separated values.
func queryList(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryPage(q url.Values) (event.Page, error) {
	from, err := queryInt(q, "from", 0)
	if err != nil {
		return event.Page{}, err
	}
	size, err := queryInt(q, "size", 0)
	if err != nil {
		return event.Page{}, err
	}
	return event.Page{From: from, Size: size}, nil
}

// clientIP expects RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
