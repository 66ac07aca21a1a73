package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tfshrms/worktracker/internal/tracker/events"
	"github.com/tfshrms/worktracker/pkg/errors"
)

const timestampLayout = "2006-01-02 15:04:05"

// DeviceFields are the optional client identifiers every mutating body may carry.
type DeviceFields struct {
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type"`
}

// device prefers body fields, then the X-Device-* headers, then query parameters.
func device(r *http.Request, body DeviceFields) events.Device {
	pick := func(values ...string) string {
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		return ""
	}
	q := r.URL.Query()
	return events.Device{
		ID:   pick(body.DeviceID, r.Header.Get("X-Device-ID"), q.Get("device_id")),
		Type: pick(body.DeviceType, r.Header.Get("X-Device-Type"), q.Get("device_type")),
	}
}

// idParam reads the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// queryInt64 reads an optional integer query parameter.
func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Invalid(name, "must be an integer")
	}
	return &v, nil
}

// parseTimestamp accepts "YYYY-MM-DD HH:MM:SS", RFC 3339 or a bare date.
func parseTimestamp(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{timestampLayout, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errors.Invalid(field, "must be YYYY-MM-DD HH:MM:SS")
}
