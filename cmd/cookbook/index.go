package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the recipe search index",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create the search index if it does not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := a.connectStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()

				created, err := a.indexManager(store).Ensure(cmd.Context())
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "index %s created\n", a.cfg.Index.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "index %s already exists\n", a.cfg.Index.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop the search index, keeping the documents",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := a.connectStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()

				dropped, err := a.indexManager(store).Drop(cmd.Context())
				if err != nil {
					return err
				}
				if dropped {
					fmt.Fprintf(cmd.OutOrStdout(), "index %s dropped\n", a.cfg.Index.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "index %s does not exist\n", a.cfg.Index.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether the search index exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := a.connectStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()

				ok, err := a.indexManager(store).Exists(cmd.Context())
				if err != nil {
					return err
				}
				state := "missing"
				if ok {
					state = "ok"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "index %s: %s\n", a.cfg.Index.Name, state)
				return nil
			},
		},
	)
	return cmd
}
