package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/signature"
)

func newQueryCmd(flags *globalFlags) *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "query <class> <signature>",
		Short: "Print the annotations of one member",
		Long: `Print the annotations attached to one member of a class. The member is
given as a JVM signature:

  bar(I)V        method
  count#I        field
  bar(I)V@0      first parameter of a method`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := signature.Parse(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := flags.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ix, err := e.deserializer.Index(ctx, args[0])
			if err != nil {
				return err
			}
			calls := ix.Lookup(sig)
			if calls == nil {
				calls = []annotation.Call{}
			}

			if text {
				for _, c := range calls {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			}
			return write(cmd, e.codec, calls)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print one annotation per line in source form")
	return cmd
}
