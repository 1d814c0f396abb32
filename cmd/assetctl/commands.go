package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/assetrepo/internal/asset"
	"github.com/JonMunkholm/assetrepo/internal/export"
	"github.com/JonMunkholm/assetrepo/internal/table"
	"github.com/spf13/cobra"
)

func (c *cli) headersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "headers",
		Short: "List the column names in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := c.app.Assets.Headers(cmd.Context())
			if err != nil {
				return err
			}
			for _, h := range headers {
				fmt.Fprintln(cmd.OutOrStdout(), h)
			}
			return nil
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Print the first asset matching query as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := c.app.Assets.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), row)
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "add --set KEY=VALUE...",
		Short: "Append a new asset",
		Long: `Append a new asset built from --set pairs, in the order given.

The add is refused when Mc Serial No, Host Name or IP Address matches the
same field of an existing asset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parsePairs(fields)
			if err != nil {
				return err
			}
			if err := c.app.Assets.Add(cmd.Context(), row); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Asset added successfully")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fields, "set", nil, "field value as KEY=VALUE (repeatable)")
	cmd.MarkFlagRequired("set")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "update <query> --set KEY=VALUE...",
		Short: "Merge fields into the first asset matching query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePairs(fields)
			if err != nil {
				return err
			}
			row, err := c.app.Assets.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), row)
		},
	}
	cmd.Flags().StringArrayVar(&fields, "set", nil, "field value as KEY=VALUE (repeatable)")
	cmd.MarkFlagRequired("set")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <query>",
		Short: "Delete every asset matching query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.app.Assets.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d asset(s)\n", n)
			return nil
		},
	}
}

func (c *cli) exportPDFCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-pdf <query>",
		Short: "Write the first asset matching query as a PDF report",
		Long: `Write the first asset matching query as a PDF report.

The file is named after the asset's Host Name unless -o is given.
Use -o - to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := c.app.Assets.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cfg := c.app.Config.Export
			exp := export.New(export.Options{Title: cfg.Title, DefaultName: cfg.DefaultName})

			if out == "-" {
				return exp.WriteAssetPDF(cmd.OutOrStdout(), row)
			}
			if out == "" {
				out = exp.FileName(row)
			}
			if err := writeFile(out, func(w io.Writer) error { return exp.WriteAssetPDF(w, row) }); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <Host Name>.pdf)")
	return cmd
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the workbook is readable and has the identity columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			missing, err := c.app.Assets.CheckSchema(cmd.Context())
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return fmt.Errorf("%s: missing identity columns: %s", c.app.Describe(), strings.Join(missing, ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", c.app.Describe())
			return nil
		},
	}
}

// parsePairs builds a row from KEY=VALUE arguments. Values may be empty.
func parsePairs(pairs []string) (table.Row, error) {
	row := table.NewRow()
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return table.Row{}, fmt.Errorf("%w: --set %q is not KEY=VALUE", asset.ErrInvalidRecord, p)
		}
		row.Set(key, value)
	}
	return row, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFile writes through fn to path, removing the file if fn fails.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
