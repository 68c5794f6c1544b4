// Package cmd implements the geocatalog command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hf-eolus/geocatalog/pkg/logging"
)

var (
	configFile string
	verbose    bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "geocatalog",
	Short: "Catalog builder for partitioned GeoParquet products",
	Long: `Geocatalog inspects partitioned GeoParquet files produced by the
interpolation pipeline and assembles a browsable STAC-shaped catalog:
a collection with accumulated spatial/temporal extent, one item per
partition, companion metadata and plot items, and copied assets with
relative links.

Reruns are incremental: partitions already present in the output catalog
are skipped, so the same root can be cataloged repeatedly as new
partitions arrive.`,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.geocatalog.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".geocatalog")
	}

	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.SetEnvPrefix("GEOCATALOG")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Config file is optional
	_ = viper.ReadInConfig()
}

// loadEnvFiles loads .env files from the working directory when present.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

// setupLogging adjusts the global log level from flags.
func setupLogging(_ *cobra.Command, _ []string) error {
	if viper.GetBool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logging.SetDefault(logging.Default().Level(zerolog.DebugLevel))
	}
	return nil
}
