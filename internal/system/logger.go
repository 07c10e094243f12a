package system

import (
	"io"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger. It prints to stderr with
// timestamps enabled, at a level driven by BITE_LOG (spec.md §6).
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Level:           levelFromEnv(os.Getenv("BITE_LOG")),
})

func levelFromEnv(v string) clog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	case "":
		return clog.InfoLevel
	default:
		return clog.InfoLevel
	}
}

// Redirect points Logger's output at w, used by the CLI's --log-file flag.
func Redirect(w io.Writer) {
	Logger.SetOutput(w)
}

// SetLevel overrides Logger's level, used by the CLI's --log-level flag.
func SetLevel(name string) {
	Logger.SetLevel(levelFromEnv(name))
}
