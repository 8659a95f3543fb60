// Package cmd contains the miner app.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	keyPath string
	url     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyPath, "account", "a", "zblock/accounts/miner.rsa", "Path to the miner key file.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "miner",
	Short: "Proof of work miner for a ledger node",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
