// Package main provides the gogreat command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/gogreat/internal/enrich"
	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/regions"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config keys, shared by flags, the config file and GOGREAT_* variables.
const (
	keyRule          = "rule"
	keyUpstream      = "upstream"
	keyDownstream    = "downstream"
	keyMaxExtension  = "max_extension"
	keyMinGenes      = "min_genes"
	keyMaxGenes      = "max_genes"
	keyMaxRegions    = "max_regions"
	keyFeatureType   = "feature_type"
	keyGeneIDAttr    = "gene_id_attr"
	keyGeneNameAttr  = "gene_name_attr"
	keyStripVersion  = "strip_version"
	keyWorkers       = "workers"
	keyDB            = "db"
	keyCacheDir      = "cache_dir"
	keyUCSCHost      = "ucsc.host"
	keyUCSCUser      = "ucsc.user"
	keyUCSCTable     = "ucsc.table"
	keyVerbose       = "verbose"
	configFileName   = ".gogreat"
	envPrefix        = "GOGREAT"
	defaultConfigExt = "yaml"
)

var (
	cfgFile string
	logger  = zap.NewNop()
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by invalid invocation.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gogreat",
		Short: "Regulatory-domain enrichment analysis of genomic regions",
		Long: `gogreat associates genomic regions (e.g. ChIP-seq peaks) with nearby genes through
regulatory domains and tests every term of the given gene-set collections for
enrichment with a region-based binomial test and a gene-based hypergeometric test.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd); err != nil {
				return err
			}
			if err := initConfig(); err != nil {
				return err
			}
			l, err := newLogger(viper.GetBool(keyVerbose))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.gogreat.yaml)")
	pf.BoolP("verbose", "v", false, "Verbose (debug) logging")
	pf.String("db", "", "DuckDB database for storing runs")
	pf.String("cache-dir", "", "Directory for cached regulatory domains (default: ~/.gogreat/cache)")

	setDefaults()

	root.AddCommand(
		newAnalyzeCmd(),
		newDomainsCmd(),
		newAssociateCmd(),
		newRandomCmd(),
		newUCSCCmd(),
		newDownloadCmd(),
		newQueryCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gogreat version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// flagKeys maps flag names to config keys. Several commands define the same
// flag, so flags are bound for the executing command only.
var flagKeys = map[string]string{
	"verbose":        keyVerbose,
	"db":             keyDB,
	"cache-dir":      keyCacheDir,
	"rule":           keyRule,
	"upstream":       keyUpstream,
	"downstream":     keyDownstream,
	"max-extension":  keyMaxExtension,
	"min-genes":      keyMinGenes,
	"max-genes":      keyMaxGenes,
	"max-regions":    keyMaxRegions,
	"workers":        keyWorkers,
	"feature-type":   keyFeatureType,
	"gene-id-attr":   keyGeneIDAttr,
	"gene-name-attr": keyGeneNameAttr,
	"strip-version":  keyStripVersion,
	"host":           keyUCSCHost,
	"user":           keyUCSCUser,
}

func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults() {
	opts := genes.DefaultLoadOptions()
	viper.SetDefault(keyRule, string(genes.BasalPlusExt))
	viper.SetDefault(keyUpstream, genes.DefaultUpstream)
	viper.SetDefault(keyDownstream, genes.DefaultDownstream)
	viper.SetDefault(keyMaxExtension, genes.DefaultMaxExtension)
	viper.SetDefault(keyMinGenes, enrich.DefaultMinGenes)
	viper.SetDefault(keyMaxGenes, enrich.DefaultMaxGenes)
	viper.SetDefault(keyMaxRegions, regions.DefaultMaxRegions)
	viper.SetDefault(keyFeatureType, opts.FeatureType)
	viper.SetDefault(keyGeneIDAttr, opts.IDAttr)
	viper.SetDefault(keyGeneNameAttr, opts.NameAttr)
	viper.SetDefault(keyWorkers, runtime.NumCPU())
}

// initConfig reads the config file and environment.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configFileName)
		viper.SetConfigType(defaultConfigExt)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger builds a console logger writing to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.TimeKey = ""
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.EncoderConfig.CallerKey = ""
	}
	return cfg.Build()
}

// defaultDataDir returns ~/.gogreat, or "" when home is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gogreat")
}
