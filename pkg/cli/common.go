package cli

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/replicate/pfetch/pkg/config"
	"github.com/replicate/pfetch/pkg/download"
	"github.com/replicate/pfetch/pkg/optname"
)

const UsageTemplate = `
Usage:{{if .Runnable}}
{{if .HasAvailableFlags}}{{appendIfNotPresent .UseLine "[flags]"}}{{else}}{{.UseLine}}{{end}}{{end}}{{if .HasAvailableSubCommands}}
{{.CommandPath}} [command]{{end}}{{if gt .Aliases 0}}

Aliases:
{{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if .IsAvailableCommand}}
{{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
{{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

// ParseChunkSize parses a human readable byte count such as "64KiB". The result must be positive.
func ParseChunkSize(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", optname.ChunkSize, s, err)
	}
	if n == 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("invalid --%s %q: must be between 1 byte and 2GiB", optname.ChunkSize, s)
	}
	return int(n), nil
}

// ParseKnownSize parses the --size flag. An empty string means no size was given.
func ParseKnownSize(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", optname.KnownSize, s, err)
	}
	if n > math.MaxInt64 {
		return nil, fmt.Errorf("invalid --%s %q: too large", optname.KnownSize, s)
	}
	size := int64(n)
	return &size, nil
}

// DecisionForPolicy maps a validated --on-ambiguous value to the decision used in place of an
// unresolved one.
func DecisionForPolicy(policy string) download.Decision {
	switch policy {
	case config.AmbiguousDownload:
		return download.DecisionDownload
	case config.AmbiguousSkip:
		return download.DecisionSkip
	}
	return download.DecisionUnresolved
}
