package app

import (
	"github.com/spf13/cobra"

	"github.com/mirror-ball/mirrorball/internal/daemon"
	"github.com/mirror-ball/mirrorball/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the MirrorBall api",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			if err = logger.Init(cfg.Log); err != nil {
				return err //nolint:wrapcheck
			}

			d, err := daemon.New(cmd.Context(), cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}

			return d.Start()
		},
	}
)
