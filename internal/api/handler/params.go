package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"tle_quiz/internal/common"
)

const (
	defaultPageSize = 10
	maxPageSize     = 250
)

// queryInt returns fallback when key is absent or not a number.
func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

// paging reads limit/offset the way admin listings use them.
func paging(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = max(queryInt(r, "offset", 0), 0)
	return limit, offset
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}
