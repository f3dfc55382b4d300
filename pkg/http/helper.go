package http

import (
	"net/http"
	"strconv"
	"time"

	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// ExtractInterval reads check_in and check_out query parameters in RFC 3339.
func ExtractInterval(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	checkIn, err := parseTimeParam("check_in", query.Get("check_in"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkOut, err := parseTimeParam("check_out", query.Get("check_out"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return checkIn, checkOut, nil
}

func parseTimeParam(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput("missing " + name + " parameter")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + " parameter, expected RFC 3339: " + value)
	}
	return t, nil
}
