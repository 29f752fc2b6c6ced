package httputil

import (
	"fmt"
	"net/http"
	"strconv"
)

// ParsePagination safely parses and validates offset and limit query parameters.
// It uses default values of 0 for offset and 50 for limit.
// The limit cannot exceed 100.
func ParsePagination(r *http.Request) (offset, limit int, err error) {
	query := r.URL.Query()

	offset = 0
	if raw := query.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
		}
	}

	limit = 50
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and 100")
		}
	}

	return offset, limit, nil
}
