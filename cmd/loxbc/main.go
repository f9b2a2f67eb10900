// loxbc CLI - build, store and disassemble bytecode chunks
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/loxbc/manifest"
	"github.com/chazu/loxbc/store"
)

var log = commonlog.GetLogger("loxbc")

// app holds state shared by subcommands once the root command has loaded
// the project configuration.
type app struct {
	configDir string
	verbosity int
	manifest  *manifest.Manifest
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "loxbc",
		Short:         "Build, store and disassemble bytecode chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configDir, "config", "C", ".", "directory to search upward for "+manifest.FileName)
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity")

	root.AddCommand(
		newDemoCmd(a),
		newDisasmCmd(a),
		newListCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newDeleteCmd(a),
	)
	return root
}

func (a *app) setup() error {
	m, err := manifest.FindAndLoad(a.configDir)
	if err != nil {
		return err
	}
	if m == nil {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		m = manifest.Default(dir)
	}
	a.manifest = m

	verbosity := a.verbosity
	if m.Log.Verbosity > verbosity {
		verbosity = m.Log.Verbosity
	}
	commonlog.Configure(verbosity, nil)
	log.Debugf("project %s: using store %s", m.ProjectName(), m.StorePath())
	return nil
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.manifest.StorePath())
}
