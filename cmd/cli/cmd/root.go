// Package cmd provides the CLI commands for price-list.
package cmd

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"price-list/adapters/hcl"
	"price-list/core/catalog"
	"price-list/core/ui"
	"price-list/internal/config"
	"price-list/internal/errors"
	"price-list/internal/logging"
)

// Version is set at build time with -ldflags "-X price-list/cmd/cli/cmd.Version=..."
var Version = "0.1.0"

var (
	cfgFile     string
	catalogPath []string
	verbose     bool
	quiet       bool
	noColor     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "price-list",
	Short: "Compute prices from rule-based price lists",
	Long: `price-list computes the unit price of a product from an ordered list of
pricing rules. The first rule matching the product, its category and the
requested quantity wins, and its formula gives the price.

Price books are HCL files declaring units, categories, products and
price lists.

Examples:
  price-list compute --list retail --product apple --quantity 12 --unit kilogram
  price-list compute -l retail -p apple -q 500 -u gram --price 9.50 --format json
  price-list check ./pricebook
  price-list serve --addr :8080`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", describeError(err))
	}
	return err
}

// describeError appends the context of typed errors, such as the formula
// position or the failing line sequence
func describeError(err error) string {
	var typed *errors.Error
	if !stderrors.As(err, &typed) || len(typed.Context) == 0 {
		return err.Error()
	}
	keys := make([]string, 0, len(typed.Context))
	for k := range typed.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, typed.Context[k]))
	}
	return err.Error() + " (" + strings.Join(parts, ", ") + ")"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.price-list.json)")
	rootCmd.PersistentFlags().StringSliceVar(&catalogPath, "catalog", nil, "price book files or directories (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "only print results and errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnv(configPath())
	if err != nil {
		return err
	}
	if len(catalogPath) > 0 {
		cfg.Pricing.Catalog = catalogPath
	}
	if noColor {
		cfg.Output.NoColor = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// newWriter returns a terminal writer honoring --quiet and --verbose
func newWriter(cmd *cobra.Command) *ui.Writer {
	w := ui.NewWriter(cmd.OutOrStdout(), config.Get().Output.NoColor)
	switch {
	case quiet:
		w.SetVerbosity(0)
	case verbose:
		w.SetVerbosity(2)
	}
	return w
}

// loadCatalog reads the configured price book
func loadCatalog(paths ...string) (*catalog.Catalog, error) {
	if len(paths) == 0 {
		paths = config.Get().Pricing.Catalog
	}
	return hcl.NewLoader(logging.Named("loader")).Load(paths...)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "price-list version %s\n", Version)
	},
}
