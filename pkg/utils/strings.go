package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	slugInvalidChars = regexp.MustCompile("[^a-z0-9 -]+")
	slugHyphenRuns   = regexp.MustCompile("-+")
)

// GenerateSlug converts a string into a URL-friendly slug.
// e.g. "Winter Dog Coat (XL)" -> "winter-dog-coat-xl"
func GenerateSlug(input string) string {
	s := strings.ToLower(input)
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = slugHyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// ParseInt64 parses a string to int64, returning 0 on bad input
func ParseInt64(s string) int64 {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseFloatPtr parses a string to *float64; empty or bad input gives nil
func ParseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &val
}

// ParseBoolPtr parses a string to *bool; empty or bad input gives nil
func ParseBoolPtr(s string) *bool {
	if s == "" {
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &val
}
