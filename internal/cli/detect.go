package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/diagram"
)

// detectCommand creates the detect command: classify a diagram source.
func (c *CLI) detectCommand() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Detect the diagram type of a PlantUML source",
		Long: `Detect the diagram type of a PlantUML source.

Explicit start markers (@startclass, @startsequence, ...) win; otherwise
the source is sniffed for type-specific keywords. Mixed text is split
into blocks first and each block is classified separately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, source)
			if err != nil {
				return err
			}

			blocks := diagram.ExtractBlocks(text)
			if len(blocks) == 0 {
				blocks = []string{text}
			}
			for i, block := range blocks {
				typ := diagram.Detect(block)
				if len(blocks) == 1 {
					fmt.Println(typ)
				} else {
					fmt.Printf("%d: %s\n", i+1, typ)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "inline diagram source")
	return cmd
}
