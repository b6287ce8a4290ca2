package cli

import (
	"github.com/spf13/cobra"
)

// unusedCommand creates the unused command. It needs no graph, only
// cargo-machete.
func (c *CLI) unusedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unused",
		Short: "List unused dependencies with cargo-machete",
		Long: `List dependencies declared in Cargo.toml that cargo-machete finds unused.

When cargo-machete is not installed or fails, the result is reported as
"not checked" rather than as an empty list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			ca, err := c.openCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer ca.Close()

			res := c.newChecker(cfg, ca).Unused(cmd.Context())

			out := cmd.OutOrStdout()
			if !res.Checked() {
				printNotChecked(out, "Unused", res.Reason)
				printNextStep(out, "Install it with", "cargo install cargo-machete")
				return nil
			}
			printCheckSummary(out, "Unused", len(res.Items))
			for _, name := range res.Items {
				printDetail(out, "%s", name)
			}
			return nil
		},
	}
}
