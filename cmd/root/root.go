package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pfetch "github.com/replicate/pfetch/pkg"
	"github.com/replicate/pfetch/pkg/cli"
	"github.com/replicate/pfetch/pkg/client"
	"github.com/replicate/pfetch/pkg/config"
	"github.com/replicate/pfetch/pkg/download"
	"github.com/replicate/pfetch/pkg/optname"
)

const rootLongDesc = `
pfetch

pfetch downloads a single file over HTTP using several concurrent range requests. The file is divided
into contiguous partitions, each fetched by its own request, and every chunk is written straight to its
offset in the destination file.

If the destination already exists, pfetch compares it with the remote file's size and Last-Modified
time and skips the download when the local copy is up to date. After a download the destination's
modification time is set to the remote Last-Modified time, so running the same command twice only
transfers the file once.
`

func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pfetch [flags] <url> <dest>",
		Short: "pfetch",
		Long:  rootLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.PersistentStartupProcessFlags()
		},
		RunE: runRootCMD,
		Args: cobra.ExactArgs(2),
		Example: `  pfetch https://example.com/model.safetensors model.safetensors
  pfetch -c 16 --chunk-size 1MiB https://example.com/weights.bin /srv/weights/`,
	}
	cmd.SetUsageTemplate(cli.UsageTemplate)
	err := config.AddRootPersistentFlags(cmd)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return cmd
}

func runRootCMD(cmd *cobra.Command, args []string) error {
	// After we run through the PreRun functions we want to silence usage from being printed
	// on all errors
	cmd.SilenceUsage = true

	urlString := args[0]
	dest := args[1]

	log.Info().Str("url", urlString).
		Str("dest", dest).
		Int("concurrency", viper.GetInt(optname.Concurrency)).
		Str("chunk_size", viper.GetString(optname.ChunkSize)).
		Msg("Initiating")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootExecute(ctx, urlString, dest)
}

// rootExecute builds a Getter from the configured flags and downloads urlString to dest.
func rootExecute(ctx context.Context, urlString, dest string) error {
	getter, err := newGetter()
	if err != nil {
		return err
	}
	result, err := getter.DownloadFile(ctx, urlString, dest)
	if err != nil {
		return fmt.Errorf("error downloading %s: %w", urlString, err)
	}
	if result.NotFound {
		return fmt.Errorf("error downloading %s: remote file not found", urlString)
	}
	return nil
}

func newGetter() (*pfetch.Getter, error) {
	chunkSize, err := cli.ParseChunkSize(viper.GetString(optname.ChunkSize))
	if err != nil {
		return nil, err
	}
	knownSize, err := cli.ParseKnownSize(viper.GetString(optname.KnownSize))
	if err != nil {
		return nil, err
	}
	policy, err := config.AmbiguousPolicy()
	if err != nil {
		return nil, err
	}
	resolveOverrides, err := config.ResolveOverridesToMap(viper.GetStringSlice(optname.Resolve))
	if err != nil {
		return nil, err
	}

	clientOpts := client.Options{
		MaxConnPerHost:   viper.GetInt(optname.MaxConnPerHost),
		ConnectTimeout:   viper.GetDuration(optname.ConnTimeout),
		ResolveOverrides: resolveOverrides,
	}
	downloadOpts := download.Options{
		Concurrency: viper.GetInt(optname.Concurrency),
		ChunkSize:   chunkSize,
	}
	if !viper.GetBool(optname.NoProgress) {
		downloadOpts.Progress = cli.ProgressBar()
	}

	return &pfetch.Getter{
		Client:       client.NewHTTPClient(clientOpts),
		Options:      downloadOpts,
		Force:        viper.GetBool(optname.Force),
		OnUnresolved: cli.DecisionForPolicy(policy),
		KnownSize:    knownSize,
	}, nil
}
