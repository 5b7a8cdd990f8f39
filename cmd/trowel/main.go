// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trowel CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bioepic-data/trowel/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the trowel CLI.
var rootCmd = &cobra.Command{
	Use:   "trowel",
	Short: "Field tools for environmental data curation",
	Long: `trowel grounds free-text environmental terms against ontologies, matches
term lists, and pulls metadata out of ecological data repositories.

Each tool is a subcommand: ground, search, term, ontologies,
match-term-lists, essdive, fred, and try.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dirs := []string{".secrets/"}
		if d := secrets.DefaultDir(); d != "" {
			dirs = append(dirs, d)
		}
		loadedSecrets = map[string]string{}
		for _, dir := range dirs {
			s, err := secrets.Load(dir)
			if err != nil {
				return err
			}
			for k, v := range s {
				if _, ok := loadedSecrets[k]; !ok {
					loadedSecrets[k] = v
				}
			}
		}
		if len(loadedSecrets) > 0 {
			keys := make([]string, 0, len(loadedSecrets))
			for k := range loadedSecrets {
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trowel.yaml or ~/.config/trowel/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trowel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "trowel"))
		}
	}

	viper.SetEnvPrefix("TROWEL")
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
