package cli

import (
	"github.com/spf13/cobra"

	"github.com/l7mp/dbsp-sql/internal/buildinfo"
)

func newVersionCommand(root *RootOptions, info buildinfo.BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the compiled version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.formatter(cmd).Success(info, info.String())
		},
	}
}
