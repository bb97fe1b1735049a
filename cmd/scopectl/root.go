// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/spf13/cobra"
)

// commandContext carries the flags and the lazily loaded configuration
// shared by every subcommand.
type commandContext struct {
	configDir *string
	runtime   *string
	config    *cloud.Config
}

func newCommandContext(configDir, runtime *string) *commandContext {
	return &commandContext{configDir: configDir, runtime: runtime}
}

// ensureConfig loads the configuration once. Flags override the environment.
func (c *commandContext) ensureConfig() (*cloud.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	if *c.configDir != "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, *c.configDir); err != nil {
			return nil, err
		}
	} else if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return nil, err
		}
	}
	if *c.runtime != "" {
		if err := os.Setenv(cloud.EnvConfigRuntime, *c.runtime); err != nil {
			return nil, err
		}
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	c.config = config
	return config, nil
}

func newRootCommand() *cobra.Command {
	var configDir string
	var runtime string

	ctx := newCommandContext(&configDir, &runtime)

	rootCmd := &cobra.Command{
		Use:           "scopectl",
		Short:         "Inspect the SCOPE dashboard stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding the .env TOML files")
	rootCmd.PersistentFlags().StringVar(&runtime, "runtime", "", "Configuration overlay, e.g. local or test")

	rootCmd.AddCommand(newVideosCommand(ctx))
	rootCmd.AddCommand(newSummaryCommand(ctx))
	rootCmd.AddCommand(newReportCommand(ctx))
	rootCmd.AddCommand(newLogCommand(ctx))

	return rootCmd
}
