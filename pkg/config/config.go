package config

// this holds the resolved configuration values from CLI
var (
	DB          string // path of the sqlite feature database
	ProviderURL string // base URL of the racing-data provider
	RefTables   string // path to a reference tables override file
	LogLevel    string // sets the log level (zap log level values)
	LogFormat   string // text vs json
	LogConfig   string // path to log filter rules
	Years       []int  // seasons to process
	Cooldown    string // delay between sessions to respect rate limits
	MaxRounds   int    // upper bound for the per-year round probe
	PriorPoints bool   // attach prior-year driver/team points
	BackupDir   string // directory for per-year CSV checkpoints
	Output      string // path of the final CSV export
)
