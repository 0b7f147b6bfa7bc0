package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"faturas/internal/config"
	"faturas/internal/parser"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	configPath string
	cardOrigin string
	issuerFlag string
	refYear    int
)

var rootCmd = &cobra.Command{
	Use:   "faturas",
	Short: "Analyze and compare credit card statements",
	Long: `Faturas processes credit card statement PDFs and text dumps,
detects the issuing bank, normalizes and categorizes each transaction,
and aggregates spending per month for comparison.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Faturas")
		fmt.Println("Use --help for available commands")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&cardOrigin, "origem", "", "card origin label attached to every transaction")
	rootCmd.PersistentFlags().StringVar(&issuerFlag, "banco", "", "force an issuer profile instead of detecting")
	rootCmd.PersistentFlags().IntVar(&refYear, "ano", 0, "reference year for dates without one (default: current year)")
}

// loadConfig resolves the optional --config flag.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// parserOptions builds analysis options from config and flags.
func parserOptions() (parser.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return parser.Options{}, err
	}
	return parser.Options{
		ReferenceYear:   refYear,
		Issuer:          issuerFlag,
		Rules:           cfg.Rules(),
		DefaultCategory: cfg.DefaultCategory,
	}, nil
}
