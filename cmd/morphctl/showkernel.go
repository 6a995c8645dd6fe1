package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itohio/morphology/pkg/morphology/kernel/parse"
	"github.com/itohio/morphology/pkg/morphology/kernel/xform"
)

func newShowKernelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-kernel <kernel-literal>",
		Short: "Parse a kernel literal and dump its grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parse.Parse(args[0])
			if err != nil {
				return fmt.Errorf("morphctl: %w", err)
			}
			defer k.Destroy()
			xform.Show(os.Stdout, k)
			return nil
		},
	}
}
