// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the shelfmark CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/shelfmark/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secret returns the loaded secret value for key, or "" if absent.
func secret(key string) string {
	return loadedSecrets[key]
}

// rootCmd is the base command for the shelfmark CLI.
var rootCmd = &cobra.Command{
	Use:   "shelfmark",
	Short: "Rename PDF papers and books from their bibliographic metadata",
	Long: `shelfmark reads PDF files, extracts DOIs, ISBNs, and arXiv IDs from
their text, resolves them against CrossRef, Open Library, arXiv, and
Semantic Scholar, and renames each file to "Surname - Year - Title.pdf".

Files that cannot be resolved are moved to a needs-attention folder.
Every file is backed up before anything touches it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./shelfmark.yaml or ~/.config/shelfmark/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("shelfmark")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "shelfmark"))
		}
	}

	viper.SetEnvPrefix("SHELFMARK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
