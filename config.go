package asyncjobs

// Config holds configuration shared by the tracker and the CLI.
type Config struct {
	// IDPrefix is prepended to generated job IDs ("job_...").
	IDPrefix string

	// LogLevel is the minimum slog level name: debug, info, warn or error.
	LogLevel string

	// LogFormat selects the slog handler: "json" or "text".
	LogFormat string

	// Codec is the default action log encoding: "json" or "msgpack".
	Codec string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		IDPrefix:  "job",
		LogLevel:  "info",
		LogFormat: "text",
		Codec:     "json",
	}
}
