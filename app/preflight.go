package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
)

var errPrincipalRequired = errors.New("--principal-arn is required")

func init() { //nolint: gochecknoinits
	preflightCmd.Flags().StringVar(&principalARN, "principal-arn", "", "role or user the api runs as")

	rootCmd.AddCommand(preflightCmd)
}

var (
	principalARN string

	preflightCmd = &cobra.Command{
		Use:   "preflight",
		Short: "Check that the api principal may perform every AWS action it needs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if principalARN == "" {
				return errPrincipalRequired
			}

			cfg, err := readConfig()
			if err != nil {
				return err
			}

			account, err := awsclient.AccountID(principalARN)
			if err != nil {
				return err //nolint:wrapcheck
			}

			awsCfg, err := awsclient.Load(cmd.Context(), cfg.AWS)
			if err != nil {
				return err //nolint:wrapcheck
			}

			clients := awsclient.NewClients(awsCfg, cfg.AWS.Endpoint)

			reqs := awsclient.Requirements(awsclient.Resources{
				Region:          cfg.AWS.Region,
				AccountID:       account,
				BucketName:      cfg.AWS.BucketName,
				ImageTable:      cfg.Store.ImageTableName,
				ConfigTable:     cfg.Store.ConfigTableName,
				TitleIndex:      cfg.Store.TitleIndexName,
				UserPoolID:      cfg.Auth.UserPoolID,
				WithConfigTable: cfg.Store.ConfigTableName != "",
			})

			decisions, simErr := awsclient.Preflight(cmd.Context(), clients.IAM, principalARN, reqs)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd
			for _, d := range decisions {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Decision, d.Action, d.Resource)
			}

			if err = w.Flush(); err != nil {
				return err //nolint:wrapcheck
			}

			return simErr //nolint:wrapcheck
		},
	}
)
