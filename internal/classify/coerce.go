package classify

import (
	"errors"
	"strings"
	"time"

	"kakeibo/internal/core"
)

var (
	errInvalidFlag     = errors.New("not a boolean flag")
	errInvalidDate     = errors.New("unrecognized date format")
	errInvalidStrategy = errors.New("unknown fixed-cost strategy")
)

// Date layouts seen across export vintages.
var dateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
}

// parseFlag coerces the source's boolean-ish cells ("1"/"0", "true"/"false").
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, errInvalidFlag
}

func parseDate(s string) (core.Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return core.Date{Time: t}, nil
		}
	}
	return core.Date{}, errInvalidDate
}
