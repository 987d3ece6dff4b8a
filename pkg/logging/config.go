package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/agentstation/mediathek/pkg/constants"
)

// Config selects level, encoding and destination of a logger.
type Config struct {
	// Level is a zerolog level name; "off" disables logging.
	Level string

	// Format is json, console or auto. Auto picks console on terminals.
	Format string

	// Output is stderr, stdout, discard or a file path. Files are rotated.
	Output string

	// TimeFormat is a layout or one of kitchen, rfc3339, stamp, unix.
	TimeFormat string

	NoColor   bool
	AddCaller bool

	// Fields are attached to every event.
	Fields map[string]any
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_TIME_FORMAT,
// LOG_CALLER and LOG_FIELDS (comma separated key=value pairs).
// DEBUG=1 forces the debug level when LOG_LEVEL is unset.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	} else if os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("LOG_TIME_FORMAT"); v != "" {
		cfg.TimeFormat = v
	}
	cfg.AddCaller = os.Getenv("LOG_CALLER") == "true"
	cfg.Fields = splitFields(os.Getenv("LOG_FIELDS"))
	return cfg
}

// Configure replaces the default logger with one built from cfg.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// NewLoggerFromConfig builds a logger and sets the zerolog global level
// to match. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := levelOf(cfg.Level)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(cfg.writer()).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	for k, v := range cfg.Fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}

func (c *Config) writer() io.Writer {
	var (
		out      io.Writer
		terminal bool
	)
	switch strings.ToLower(c.Output) {
	case "", "stderr":
		out, terminal = os.Stderr, isTerminal(os.Stderr)
	case "stdout":
		out, terminal = os.Stdout, isTerminal(os.Stdout)
	case "discard", "none":
		out = io.Discard
	default:
		out = &lumberjack.Logger{
			Filename:   c.Output,
			MaxSize:    constants.LogRotationSize >> 20,
			MaxAge:     int(constants.LogRotationAge / (24 * time.Hour)),
			MaxBackups: constants.LogRotationBackups,
			Compress:   true,
		}
	}

	switch strings.ToLower(c.Format) {
	case "json":
		return out
	case "console", "pretty":
	default:
		if !terminal {
			return out
		}
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeLayout(c.TimeFormat),
		NoColor:    c.NoColor || !terminal,
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func levelOf(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none", "disabled":
		return zerolog.Disabled
	}
	l, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return l
}

var layouts = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"unix":        "",
	"epoch":       "",
}

func timeLayout(name string) string {
	if l, ok := layouts[strings.ToLower(name)]; ok {
		return l
	}
	if strings.Contains(name, "2006") || strings.Contains(name, "15:04") {
		return name
	}
	return time.Kitchen
}

func splitFields(s string) map[string]any {
	fields := make(map[string]any)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if ok {
			fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return fields
}
