package coc

import (
	"io"
	"net/http"
	"strconv"
	"strings"
)

// EncodeTag url-encodes a clan or player tag for a path segment (# -> %23)
func EncodeTag(tag string) string {
	return strings.ReplaceAll(tag, "#", "%23")
}

// parseRateRemaining extracts the advisory request budget header when present
func parseRateRemaining(h http.Header) (int, bool) {
	s := h.Get("X-Ratelimit-Remaining")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
