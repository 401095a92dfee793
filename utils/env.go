package utils

import (
	"os"
	"strings"
)

const (
	// DataDirEnvVar overrides the default data set directory.
	DataDirEnvVar = "IMAGEFLOW_DATA_DIR"

	// OutDirEnvVar overrides the default output directory.
	OutDirEnvVar = "IMAGEFLOW_OUT_DIR"
)

// LookupEnvDefault returns the trimmed value of the environment variable name
// or def when it is unset or blank.
func LookupEnvDefault(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return def
}
