// Package app implements the main application commands.
package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mirror-ball/mirrorball/internal/config"
)

var (
	configPath string // directory holding main.toml

	rootCmd = &cobra.Command{
		Use:   "mirrorball",
		Short: "MirrorBall is the API of a shared image gallery",
		Long: `MirrorBall is the API of a shared image gallery.
It issues presigned upload urls, keeps image metadata and guards
everything behind user pool tokens and an admin managed email restriction.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory containing main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func readConfig() (*config.Config, error) {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &cfg, nil
}
