package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/classanno/index"
)

type classDump struct {
	Class    string        `json:"class"`
	Location string        `json:"location,omitempty"`
	Found    bool          `json:"found"`
	Digest   string        `json:"digest,omitempty"`
	Members  int           `json:"members"`
	Entries  []index.Entry `json:"entries"`
}

func newDumpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <class>...",
		Short: "Print the annotation index of classes",
		Long: `Scan each class (internal name, e.g. com/example/Foo or
com/example/Outer$Inner) and print every annotated member signature with
its annotations.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := flags.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.deserializer.Preload(ctx, args...); err != nil {
				return err
			}

			dumps := make([]classDump, 0, len(args))
			for _, class := range args {
				d := classDump{Class: class, Entries: []index.Entry{}}
				art, err := e.classpath.Resolve(ctx, class)
				if err == nil {
					d.Found = true
					d.Location = art.Handle().Location
					ix, err := e.deserializer.Index(ctx, class)
					if err != nil {
						return err
					}
					d.Digest = fmt.Sprintf("%016x", ix.Digest())
					d.Members = ix.Members()
					d.Entries = ix.Entries()
				}
				dumps = append(dumps, d)
			}
			return write(cmd, e.codec, dumps)
		},
	}
}
