package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/loxbc/pkg/dist"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored chunks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s %x\n", e.Name, e.ID, e.Hash[:8])
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME FILE",
		Short: "Write a stored chunk to a CBOR envelope file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			env, err := s.Envelope(args[0])
			if err != nil {
				return err
			}
			data, err := dist.MarshalEnvelope(env)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[1], err)
			}
			log.Infof("exported %s to %s", args[0], args[1])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE [NAME]",
		Short: "Store a chunk from a CBOR envelope file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			env, err := dist.UnmarshalEnvelope(data)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				env.Name = args[1]
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Put(env); err != nil {
				return err
			}
			log.Infof("imported %s as %s", args[0], env.Name)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a stored chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(args[0]); err != nil {
				return err
			}
			log.Infof("deleted %s", args[0])
			return nil
		},
	}
}
