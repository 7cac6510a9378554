package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"billcycle/internal/core"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month, defaulting to today's.
func ParseMonthParams(query url.Values, today core.Date) (MonthParams, error) {
	params := MonthParams{Year: today.Year(), Month: today.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return MonthParams{}, fmt.Errorf("%w: invalid year %q", errBadRequest, v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, fmt.Errorf("%w: invalid month %q", errBadRequest, v)
		}
		params.Month = m
	}
	return params, nil
}

// ParseToday reads the reference date from ?today=YYYY-MM-DD, defaulting to
// the server clock.
func ParseToday(query url.Values, now time.Time) (core.Date, error) {
	v := strings.TrimSpace(query.Get("today"))
	if v == "" {
		return core.DateOf(now), nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return d, nil
}

// ParseCount reads a positive ?count= no larger than maxCount.
func ParseCount(query url.Values, def, maxCount int) (int, error) {
	v := strings.TrimSpace(query.Get("count"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxCount {
		return 0, fmt.Errorf("%w: count must be between 1 and %d", errBadRequest, maxCount)
	}
	return n, nil
}

// ParseWeekStart reads ?week_start= as a weekday name or 0-6 (0 is Sunday).
// Weeks start on Monday by default.
func ParseWeekStart(query url.Values) (time.Weekday, error) {
	wd, err := core.ParseWeekday(query.Get("week_start"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return wd, nil
}

// DecodeJSONBody decodes a single JSON object, rejecting unknown fields and
// bodies over 1 MiB.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: content type must be application/json", errBadRequest)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", errBadRequest)
	}
	return nil
}
