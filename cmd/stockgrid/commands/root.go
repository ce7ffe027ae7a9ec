package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockgrid",
	Short: "Stockgrid - 일별 주가 그리드 조회 API",
	Long: `Stockgrid CLI

일별 OHLCV + 이동평균 시계열을 조회하는 read-only HTTP API.

Usage:
  go run ./cmd/stockgrid [command]

Examples:
  go run ./cmd/stockgrid api
  go run ./cmd/stockgrid test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
