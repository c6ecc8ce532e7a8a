// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	memalloc "github.com/rtmacaibay/memory-allocator"
)

var (
	cfgFile string
	log     = logrus.New()
)

// rootCmd is the goallocctl command tree's entry point. Flags here bind
// into viper so that a config file, environment variables (GOALLOC_*) and
// flags all resolve through one precedence chain, the same pattern the
// example corpus's cobra+viper CLIs (vorteil, moby, solarisdb) follow.
var rootCmd = &cobra.Command{
	Use:   "goallocctl",
	Short: "Exercise and benchmark the memalloc allocator in-process",
	Long: `goallocctl drives github.com/rtmacaibay/memory-allocator's Allocator
directly, without requiring the cgo shared object in cmd/liballoc to be
built and LD_PRELOADed. Useful for quick manual exploration of placement
policies and for soak-testing allocation patterns.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("debug") {
			memalloc.Debug = true
			log.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

// Execute runs the root command, exiting the process with status 1 on
// error — the conventional cobra entry point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.goallocctl.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable allocator trace logging")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetEnvPrefix("GOALLOC")
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".goallocctl")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("loaded config file")
	}
}
