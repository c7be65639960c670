package util

import (
	"strconv"
	"strings"
)

// ParseArgs splits command line arguments into key=value fields and bare
// words. Numeric values are parsed as float64, true/false as bool.
func ParseArgs(args []string) ([]string, map[string]interface{}) {
	var words []string
	fields := map[string]interface{}{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			words = append(words, arg)
			continue
		}
		fields[key] = ParseArg(value)
	}
	return words, fields
}

func ParseArg(value string) interface{} {
	if num, err := strconv.ParseFloat(value, 64); err == nil {
		return num
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return value
}
