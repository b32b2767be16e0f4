package fsbridge

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/fsbridge/internal/version"
	"github.com/arthur-debert/fsbridge/pkg/bridge"
	"github.com/arthur-debert/fsbridge/pkg/config"
	"github.com/arthur-debert/fsbridge/pkg/logging"
	"github.com/arthur-debert/fsbridge/pkg/protocol"
	"github.com/arthur-debert/fsbridge/pkg/watch"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		configFile string
		logFile    string
	)

	rootCmd := &cobra.Command{
		Use:     "fsbridge",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("verbose") {
				overrides["log.verbosity"] = verbosity
			}
			if logFile != "" {
				overrides["log.file"] = logFile
			}

			cfg, err := config.Load(config.LoadOptions{File: configFile, Overrides: overrides})
			if err != nil {
				return fmt.Errorf(MsgErrLoadConfig, err)
			}

			logPath := logging.SetupLogger(logging.Options{
				Verbosity: cfg.Log.Verbosity,
				File:      cfg.Log.File,
			})
			log.Info().Str("version", version.Version).Str("logFile", logPath).Msg("fsbridge starting")

			w, err := watch.New(watch.Options{
				Ignore: cfg.Watch.Ignore,
				Buffer: cfg.Watch.Buffer,
			})
			if err != nil {
				return fmt.Errorf(MsgErrWatcher, err)
			}
			defer func() { _ = w.Close() }()

			return bridge.Run(cmd.Context(), bridge.Options{
				In:        cmd.InOrStdin(),
				Out:       cmd.OutOrStdout(),
				Watcher:   w,
				Source:    w,
				QueueSize: cfg.Bridge.Queue,
			})
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.Flags().StringVar(&configFile, "config", "", MsgFlagConfig)
	rootCmd.Flags().StringVar(&logFile, "log-file", "", MsgFlagLogFile)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newGenConfigCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat,
				version.Version, version.Commit, version.Date, protocol.Version)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "man [dir]",
		Short: MsgManShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf(MsgErrManDir, dir, err)
			}

			header := &doc.GenManHeader{
				Title:   "FSBRIDGE",
				Section: "1",
				Source:  "fsbridge " + version.Version,
				Manual:  "fsbridge manual",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten, dir)
			return nil
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genconfig",
		Short: MsgGenConfigShort,
		Long:  MsgGenConfigLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.DefaultsContent())
		},
	}
}
