package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			if a.cfg.File != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# from %s\n", a.cfg.File)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
