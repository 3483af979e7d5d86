package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/server"
)

// serversCommand creates the servers command: probe every configured
// endpoint and print a status table.
func (c *CLI) serversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "Probe the configured rendering endpoints",
		Long: `Probe the configured rendering endpoints.

Each endpoint in the fallback chain is asked to render a known minimal
diagram. The first live endpoint in the table is the one a render would
use right now.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := server.NewResolver(c.Config.Endpoints())

			spinner := newSpinnerWithContext(cmd.Context(), "Probing endpoints...")
			spinner.Start()
			statuses := resolver.Status(cmd.Context())
			spinner.Stop()

			printServerTable(statuses)
			return nil
		},
	}
}

func printServerTable(statuses []server.EndpointStatus) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(statuses))
	live := 0
	for _, s := range statuses {
		state := styleIconError.Render(iconError) + " down"
		latency := "-"
		if s.Live {
			live++
			state = styleIconSuccess.Render(iconSuccess) + " live"
			latency = s.Latency.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			s.Endpoint.Name,
			s.Endpoint.BaseURL,
			string(s.Endpoint.Scheme),
			state,
			latency,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Server", "URL", "Scheme", "Status", "Latency").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())

	if live == 0 {
		printWarning("No endpoint is reachable; renders will fail")
		printNextStep("Start a local server", "docker run -d -p 8080:8080 plantuml/plantuml-server:jetty")
	}
}
