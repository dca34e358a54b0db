/*
Package cli provides command-line interface utilities for Meridian.

The cli package includes output formatters, table renderers for the rule
engine's domain objects, and signal handling used by the meridian command.

Output Formatting:

Command results render as plain text tables or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, stats); err != nil {
		return err
	}

Text output for rules, log entries, and stats goes through the Render*
helpers, which produce aligned tabular output:

	cli.RenderRules(os.Stdout, store.List())

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext()
	defer stop()
*/
package cli
