// Package cmd implements the mlearn command line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
	"github.com/YuminosukeSato/mlearn/pkg/log"
)

const envPrefix = "MLEARN"

// NewRootCommand builds the mlearn command tree. Every flag may also be set
// from a config file (--config) or from an MLEARN_* environment variable,
// e.g. MLEARN_TEST_SIZE=0.25. Flags given on the command line win.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "mlearn",
		Short: "multi-label meta-learners",
		Long: `mlearn trains multi-label meta-learners (binary relevance, RAkEL,
classifier chains, probabilistic classifier chains and CSRPE) on top of a
logistic regression or passive aggressive base classifier.

  Sample usages:
  mlearn bench --labels 6 --algorithms br,cc,pcc-f1
  mlearn bench --base pa --scaler minmax
  mlearn bench --config bench.yaml --plot bench.png`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cmd)
		},
	}
	rootCmd.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newBenchCommand(v))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// initConfig binds the flags of the running command, loads the optional
// config file and installs the logger.
func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "binding flags")
	}
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config file %s", cfgFile)
		}
	}

	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetProvider(log.NewZerologProvider(cmd.ErrOrStderr(), level))
	log.GetLoggerWithName("cmd").Debug("configuration loaded",
		"config_file", v.ConfigFileUsed(),
	)
	return nil
}
