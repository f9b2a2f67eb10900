package main

import (
	"github.com/spf13/cobra"
)

func newDisasmCmd(a *app) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "disasm NAME",
		Short: "Disassemble a stored chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.Load(args[0])
			if err != nil {
				return err
			}
			defer c.Free()

			if label == "" {
				label = a.manifest.ListingLabel(args[0])
			}
			return c.DisassembleTo(cmd.OutOrStdout(), label)
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "listing header (defaults to [disasm] label, then the chunk name)")
	return cmd
}
