/*
Package cli provides command-line helpers shared by the bff commands.

Output Formatting:

Commands that print results accept --output text, json or csv:

	format, err := cli.ParseOutputFormat(output)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV needs a result implementing Tabular; text renders Tabular results as
aligned columns.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps a command error to the process exit status; configuration
errors exit with 2.
*/
package cli
