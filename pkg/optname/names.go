package optname

const (
	ChunkSize      = "chunk-size"
	Concurrency    = "concurrency"
	ConfigFile     = "config"
	ConnTimeout    = "connect-timeout"
	Force          = "force"
	KnownSize      = "size"
	LoggingLevel   = "log-level"
	MaxConnPerHost = "max-conn-per-host"
	NoProgress     = "no-progress"
	OnAmbiguous    = "on-ambiguous"
	Resolve        = "resolve"
	Verbose        = "verbose"
)
