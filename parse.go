package kftrack

import (
	"fmt"
	"strconv"
	"strings"
)

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)

	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}

	return v, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}

	v, err := strconv.ParseBool(strings.TrimSpace(s))

	if err != nil {
		return false, fmt.Errorf("invalid boolean %q: %w", s, err)
	}

	return v, nil
}
