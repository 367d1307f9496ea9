package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func newPrefetchCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Fetch CMS content and settings into the snapshot",
		Long: `prefetch fetches content and settings from the configured CMS API and
writes them to the snapshot file (and Redis when REDIS_URL is set). If either
request fails the snapshot is written without CMS data, so a deploy never
ships half of it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" {
				c.cfg.SnapshotPath = out
			}

			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.prefetch.Prefetch(cmd.Context())
			if errors.Is(err, domain.ErrLocked) {
				return fmt.Errorf("another prefetch is already running")
			}
			if err != nil {
				return err
			}

			status := "defaults only"
			if snap.HasData() {
				status = "CMS data"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s (%s)\n", a.fileStore.Path(), status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "snapshot file path (overrides SNAPSHOT_PATH)")
	return cmd
}
