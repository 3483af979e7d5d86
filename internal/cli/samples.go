package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/diagram"
	"github.com/jmswint/plantbeam/pkg/errors"
)

// samplesCommand creates the samples command: print starter diagrams.
func (c *CLI) samplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "samples [type]",
		Short: "Print a sample diagram source",
		Long: `Print a sample diagram source.

Without an argument, lists the types that have samples. With a type,
prints a small working diagram of that kind, ready to edit or pipe into
'plantbeam render -'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, t := range diagram.SampleTypes() {
					fmt.Println(t)
				}
				return nil
			}

			src, ok := diagram.Sample(diagram.Type(args[0]))
			if !ok {
				return errors.New(errors.ErrCodeInvalidType, "no sample for type %q", args[0])
			}
			fmt.Println(src)
			return nil
		},
	}
}
