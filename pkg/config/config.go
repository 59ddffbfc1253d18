package config

import (
	"fmt"
	"net"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/replicate/pfetch/pkg/download"
	"github.com/replicate/pfetch/pkg/logging"
	"github.com/replicate/pfetch/pkg/optname"
)

const (
	EnvPrefix = "PFETCH"

	AmbiguousFail     = "fail"
	AmbiguousDownload = "download"
	AmbiguousSkip     = "skip"
)

// DefaultChunkSize is the --chunk-size default, rendered from download.DefaultChunkSize.
var DefaultChunkSize = humanize.IBytes(download.DefaultChunkSize)

func AddRootPersistentFlags(cmd *cobra.Command) error {
	// Persistent Flags (applies to all commands/subcommands)
	cmd.PersistentFlags().IntP(optname.Concurrency, "c", runtime.NumCPU(), "Number of concurrent range requests (partitions) per file")
	cmd.PersistentFlags().String(optname.ChunkSize, DefaultChunkSize, "Size of each read from a partition and of each disk write (e.g. 64KiB)")
	cmd.PersistentFlags().String(optname.KnownSize, "", "Size of the remote file to assume when the server does not report Content-Length (e.g. 1.5GiB)")
	cmd.PersistentFlags().Duration(optname.ConnTimeout, 5*time.Second, "Timeout for establishing a connection, format is <number><unit>, e.g. 10s")
	cmd.PersistentFlags().BoolP(optname.Force, "f", false, "Force download, even if the local file is up to date")
	cmd.PersistentFlags().String(optname.OnAmbiguous, AmbiguousFail, "What to do when neither size nor modification time can be compared (fail, download, skip)")
	cmd.PersistentFlags().Bool(optname.NoProgress, false, "Disable the progress bar")
	cmd.PersistentFlags().Int(optname.MaxConnPerHost, 0, "Maximum number of concurrent connections per host (0 for unlimited)")
	cmd.PersistentFlags().StringSlice(optname.Resolve, []string{}, "Resolve hostnames to specific IPs")
	cmd.PersistentFlags().BoolP(optname.Verbose, "v", false, "Verbose mode (equivalent to --log-level debug)")
	cmd.PersistentFlags().String(optname.LoggingLevel, "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(optname.ConfigFile, "", "Path to a YAML config file")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind persistent flags: %w", err)
	}
	return nil
}

func PersistentStartupProcessFlags() error {
	if cfgFile := viper.GetString(optname.ConfigFile); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}
	if viper.GetBool(optname.Verbose) {
		viper.Set(optname.LoggingLevel, "debug")
	}
	setLogLevel(viper.GetString(optname.LoggingLevel))
	if _, err := AmbiguousPolicy(); err != nil {
		return err
	}
	if _, err := ResolveOverridesToMap(viper.GetStringSlice(optname.Resolve)); err != nil {
		return err
	}
	return nil
}

// AmbiguousPolicy returns the validated value of --on-ambiguous.
func AmbiguousPolicy() (string, error) {
	policy := strings.ToLower(viper.GetString(optname.OnAmbiguous))
	switch policy {
	case AmbiguousFail, AmbiguousDownload, AmbiguousSkip:
		return policy, nil
	case "":
		return AmbiguousFail, nil
	}
	return "", fmt.Errorf("invalid --%s value %q, expected one of %s, %s, %s",
		optname.OnAmbiguous, policy, AmbiguousFail, AmbiguousDownload, AmbiguousSkip)
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// ResolveOverridesToMap converts `host:port:ip` entries into a map of host:port to ip:port
// suitable for overriding DNS resolution in the dialer.
func ResolveOverridesToMap(resolveHosts []string) (map[string]string, error) {
	logger := logging.GetLogger()
	var resolveOverrides map[string]string

	for _, resolveHost := range resolveHosts {
		split := strings.SplitN(resolveHost, ":", 3)
		if len(split) != 3 {
			return nil, fmt.Errorf("invalid resolve host format, expected <hostname>:port:<ip>, got: %s", resolveHost)
		}
		host, port, addr := split[0], split[1], split[2]
		if net.ParseIP(host) != nil {
			return nil, fmt.Errorf("invalid hostname specified, looks like an IP address: %s", host)
		}
		if net.ParseIP(addr) == nil {
			return nil, fmt.Errorf("invalid IP address: %s", addr)
		}
		if resolveOverrides == nil {
			resolveOverrides = make(map[string]string)
		}
		hostPort := net.JoinHostPort(host, port)
		target := net.JoinHostPort(addr, port)
		if existing, ok := resolveOverrides[hostPort]; ok && existing != target {
			return nil, fmt.Errorf("duplicate host:port specified with different targets: %s", hostPort)
		}
		resolveOverrides[hostPort] = target
	}
	if logger.GetLevel() == zerolog.DebugLevel {
		for key, elem := range resolveOverrides {
			logger.Debug().Str("host_port", key).Str("resolve_target", elem).Msg("Config")
		}
	}
	return resolveOverrides, nil
}
