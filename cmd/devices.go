package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/loopthru/internal/devices"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture, display and audio devices",
		Long: `Enumerates V4L2 capture nodes, framebuffer devices and ALSA PCMs so the ` +
			`video and audio settings can be filled in. Categories that cannot be read are reported on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := devices.List()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(inv)
			}
			return printInventory(cmd.OutOrStdout(), inv)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the inventory as JSON")
	return cmd
}

// printInventory writes one table per device class.
func printInventory(out io.Writer, inv devices.Inventory) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "CAPTURE\tNAME\tDRIVER\tSTREAMING\tFORMATS")
	for _, c := range inv.Capture {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", c.Path, c.Name, c.Driver, c.Streaming, joinFormats(c.Formats))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DISPLAY\tNAME\tVIRTUAL\tBPP")
	for _, d := range inv.Display {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", d.Path, d.Name, d.VirtualSize, d.BitsPerPixel)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "AUDIO\tDIRECTION\tNAME\tCHANNELS\tRATES")
	for _, a := range inv.Audio {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%s\n", a.Device, a.Direction, strings.TrimSpace(a.Card+" "+a.Name),
			a.MinChannels, a.MaxChannels, joinRates(a.Rates))
	}
	return w.Flush()
}

func joinRates(rates []int) string {
	if len(rates) == 0 {
		return "-"
	}
	parts := make([]string, len(rates))
	for i, r := range rates {
		parts[i] = fmt.Sprint(r)
	}
	return strings.Join(parts, ",")
}

func joinFormats(formats []devices.CaptureFormat) string {
	if len(formats) == 0 {
		return "-"
	}
	codes := make([]string, len(formats))
	for i, f := range formats {
		codes[i] = f.FourCC
	}
	return strings.Join(codes, ",")
}
