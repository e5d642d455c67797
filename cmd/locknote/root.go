package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/locknote"
	"github.com/aretw0/locknote/pkg/adapters/terminal"
	"github.com/aretw0/locknote/pkg/core"
	"github.com/aretw0/locknote/pkg/crypto"
)

var (
	verbose      bool
	versioning   bool
	cipherName   string
	searchPolicy string
	lockTimeout  time.Duration

	logger = slog.Default()

	// newPrompter builds the input provider for a command.
	newPrompter = func(cmd *cobra.Command) core.Prompter {
		return &terminal.Prompter{
			In:  cmd.InOrStdin(),
			Out: cmd.ErrOrStderr(),
			TTY: terminal.DefaultTTY,
		}
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "locknote",
	Short: "Encrypted notes protected by a single master password",
	Long: `locknote keeps notes in one JSON file. Each note is sealed with
AES-256-GCM under a key derived from your master password with Argon2id.
Only note ids are stored in clear text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&versioning, "git", false, "Commit the store file to git after every change")
	rootCmd.PersistentFlags().StringVar(&cipherName, "cipher", "", "Cipher for new stores (aes-256-gcm, chacha20-poly1305)")
	rootCmd.PersistentFlags().StringVar(&searchPolicy, "search-policy", "", "How search treats undecryptable notes (skip, fail-fast)")
	rootCmd.PersistentFlags().DurationVar(&lockTimeout, "lock-timeout", 0, "How long to wait for another locknote process")
}

// openService resolves the store path and options for a command.
// Precedence: positional file argument and flags, then .locknote.yaml, then defaults.
func openService(cmd *cobra.Command, file string) (*locknote.Service, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := locknote.DiscoverConfig(wd)
	if err != nil {
		return nil, err
	}

	path := file
	if path == "" {
		path = cfg.StorePath()
	}
	if path == "" {
		path = locknote.DefaultStoreFile
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		locknote.WithLogger(logger),
		locknote.WithPrompter(newPrompter(cmd)),
	)

	flags := cmd.Flags()
	if flags.Changed("git") {
		opts = append(opts, locknote.WithVersioning(versioning))
	}
	if flags.Changed("cipher") {
		opts = append(opts, locknote.WithCipher(crypto.Suite(cipherName)))
	}
	if flags.Changed("search-policy") {
		opts = append(opts, locknote.WithSearchPolicy(core.SearchPolicy(searchPolicy)))
	}
	if flags.Changed("lock-timeout") {
		opts = append(opts, locknote.WithLockTimeout(lockTimeout))
	}

	return locknote.New(path, opts...)
}

// fileArg returns the optional store file argument at index i.
func fileArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
