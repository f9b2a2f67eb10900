package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/loxbc/pkg/bytecode"
)

// buildTestChunk writes the reference program: load 1.2, then return, both
// attributed to line 123.
func buildTestChunk() *bytecode.Chunk {
	c := bytecode.NewChunk()
	c.WriteConstant(1.2, 123)
	c.WriteOpcode(bytecode.OpReturn, 123)
	return c
}

func newDemoCmd(a *app) *cobra.Command {
	var save, label string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build the reference test chunk and disassemble it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if label == "" {
				label = a.manifest.ListingLabel("test chunk")
			}
			c := buildTestChunk()
			defer c.Free()

			if err := c.DisassembleTo(cmd.OutOrStdout(), label); err != nil {
				return err
			}
			if save == "" {
				return nil
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			env, err := s.Save(save, c)
			if err != nil {
				return err
			}
			log.Infof("saved %s as %s", save, env.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "store the chunk under this name")
	cmd.Flags().StringVar(&label, "label", "", "listing header (defaults to [disasm] label, then \"test chunk\")")
	return cmd
}
