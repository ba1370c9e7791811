package config

const (
	defaultLibraryDir      = "~/.local/share/kosha/library"
	defaultLogDir          = "~/.local/share/kosha/logs"
	defaultAPIBind         = "127.0.0.1:7842"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultSessionBackend  = "memory"
	defaultSessionPath     = "~/.local/share/kosha/sessions.db"
	defaultSessionTTLHours = 12
)

// defaultRequiredLanguages is the fixed language set every work's documents
// must carry slots for, independent of the work's own language list.
var defaultRequiredLanguages = []string{"bn", "en", "or", "hi", "as"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Languages: Languages{
			Required: append([]string(nil), defaultRequiredLanguages...),
		},
		Review: Review{
			RequireRejectIssues: false,
		},
		Sessions: Sessions{
			Backend:  defaultSessionBackend,
			Path:     defaultSessionPath,
			TTLHours: defaultSessionTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
