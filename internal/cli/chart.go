package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-triangles/internal/app"
	"github.com/tartampluch/go-triangles/internal/chart"
	"github.com/tartampluch/go-triangles/internal/config"
	"gopkg.in/yaml.v3"
)

func chartCmd(debug *bool) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   config.CmdChart,
		Short: config.DescChart,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout stays clean for piping; logs go to stderr.
			setupLogging(*debug, false)

			lang, err := app.LoadLanguage()
			if err != nil {
				return err
			}
			return printChart(cmd.OutOrStdout(), lang, args[0], format)
		},
	}

	c.Flags().StringVarP(&format, config.FlagFormat, config.FlagFormatShort, config.FormatText, config.FlagDescFormat)
	return c
}

// printChart renders the chart for a typed date in the requested format.
func printChart(w io.Writer, lang, value, format string) error {
	switch format {
	case config.FormatText, config.FormatJSON, config.FormatYAML:
	default:
		return fmt.Errorf("%s: %q", config.ErrFormatUnknown, format)
	}

	birth, err := chart.ParseDate(value)
	if err != nil {
		return err
	}

	c, err := chart.FromTime(birth)
	if err != nil {
		return err
	}

	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("%s: %w", config.ErrChartEncode, err)
		}
		return nil

	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("%s: %w", config.ErrChartEncode, err)
		}
		return enc.Close()
	}

	_, err = io.WriteString(w, app.NewTranslator(lang).Render(c))
	return err
}
