package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:       "export [destinations|delicacies]",
		Short:     "Export a catalog as JSON or CSV",
		Long:      "Export the full destinations or delicacies catalog, newest first. Requires a live operator session.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"destinations", "delicacies"},
		Example: `  sugbo export destinations --format csv --out destinations.csv
  sugbo export delicacies  # JSON to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], format, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format: json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(entity, format, out string) error {
	svcs, err := openCLIServices()
	if err != nil {
		return fmt.Errorf("connect backend: %w", err)
	}
	defer svcs.Close()

	if !svcs.sessions.Restore() {
		return fmt.Errorf("not logged in; run `sugbo login` first")
	}
	ctx := svcs.sessions.Context(context.Background())

	var data []byte
	switch entity {
	case "destinations":
		data, err = svcs.dest.Export(ctx, format)
	case "delicacies":
		data, err = svcs.deli.Export(ctx, format)
	}
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Exported %s to %s (%d bytes)\n", entity, out, len(data))
	return nil
}
