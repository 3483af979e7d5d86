package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/token"
)

// decodeCommand creates the decode debug command: turn a server token
// back into diagram source.
func (c *CLI) decodeCommand() *cobra.Command {
	var scheme string

	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Decode a server token back into diagram source",
		Long: `Decode a server token back into diagram source.

Useful for debugging URLs copied from a PlantUML server or kroki.io.
The scheme must match the one the token was encoded with: deflate for
PlantUML servers, hex for ~h URLs, kroki for kroki.io URLs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := token.Decode(args[0], token.Scheme(scheme))
			if err != nil {
				return err
			}
			fmt.Println(src)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scheme, "scheme", "s", string(token.SchemeDeflate), "token scheme: deflate, hex, kroki")
	return cmd
}
