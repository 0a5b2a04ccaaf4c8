// Package envconfig reads the environment variables that configure the
// half package and the halfinfo command.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LogLevel returns the log level set by HALF_DEBUG. A boolean true selects
// debug; an integer n selects level -4n, so HALF_DEBUG=2 enables trace
// output. Default: info.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("HALF_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// ByteOrderAliases reports whether registration adds the explicit-endian
// aliases ("=bfloat16", "<bfloat16" on little-endian hosts). Configurable
// via HALF_BYTEORDER_ALIASES. Default: false.
var ByteOrderAliases = Bool("HALF_BYTEORDER_ALIASES")

// BoolWithDefault returns a reader for the boolean variable k. A value
// that does not parse counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a reader for the boolean variable k, false when unset.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"HALF_DEBUG":             {"HALF_DEBUG", LogLevel(), "Show additional debug information (e.g. HALF_DEBUG=1)"},
		"HALF_BYTEORDER_ALIASES": {"HALF_BYTEORDER_ALIASES", ByteOrderAliases(), "Also register =name and native-endian <name or >name aliases"},
	}
}

// Values returns every variable with its current value rendered as text.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Var returns the environment variable key with surrounding spaces and
// quotes removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
