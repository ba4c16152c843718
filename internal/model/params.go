package model

import (
	"net/url"
	"strconv"
)

// boolParam renders a boolean flag the way the cluster API expects it.
func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// setString sets key only when the value is non-empty.
func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// setInt sets key only when the value is non-zero.
func setInt(v url.Values, key string, value int) {
	if value != 0 {
		v.Set(key, strconv.Itoa(value))
	}
}
