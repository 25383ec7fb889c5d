package common

import (
	"strconv"
	"strings"
)

// ParseBlockNumber converts a block number string into a uint64.
// It accepts both decimal and 0x-prefixed hexadecimal forms, since
// collaborator APIs report heights either way.
func ParseBlockNumber(val string) (uint64, error) {
	base := 10

	if strings.HasPrefix(val, "0x") {
		val = val[2:]
		base = 16
	}

	return strconv.ParseUint(val, base, 64)
}

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
