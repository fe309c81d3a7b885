package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/gdsrect/pkg/convert"
	"github.com/OpenTraceLab/gdsrect/pkg/gds"
	"github.com/OpenTraceLab/gdsrect/pkg/rect"
	"github.com/spf13/cobra"
)

var (
	gdsInput string
	rectOut  string
	topCell  string
)

var gds2rectCmd = &cobra.Command{
	Use:   "gds2rect [flags] <input.gds>",
	Short: "Decompose a GDS layout into RECT records",
	Long: `Flatten a GDS layout, evaluate the derived layer of every material, metal
and via of the technology, and write the resulting rectangles as RECT records.

Pins are written as inrect records without direction. Process bloat is not
reversed. Polygons that do not decompose into rectangles stop the conversion
with a distinct exit status unless --force is given:

  2  GDS layer not used by the technology
  3  unknown shape
  4  rectilinear polygon that is not a rectangle
  5  45 degree geometry
  6  non-Manhattan geometry
  7  missing polygon
  8  more than one alignment boundary

Examples:
  gdsrect gds2rect -T sky130 inv.gds
  gdsrect gds2rect -c layout.conf -o /tmp/inv.rect --top INV inv.gds`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGDS2Rect,
}

func init() {
	rootCmd.AddCommand(gds2rectCmd)

	gds2rectCmd.Flags().StringVarP(&gdsInput, "input", "i", "", "input GDS file")
	gds2rectCmd.Flags().StringVarP(&rectOut, "output", "o", "",
		"output RECT file (default: input with .rect extension)")
	gds2rectCmd.Flags().StringVar(&topCell, "top", "",
		"structure to convert (default: the single top structure)")
}

func runGDS2Rect(cmd *cobra.Command, args []string) error {
	arg, err := inputArg(gdsInput, args)
	if err != nil {
		return err
	}
	model, err := loadModel(cmd)
	if err != nil {
		return err
	}
	input, output, err := resolveIO(arg, rectOut, ".rect")
	if err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Reading GDS file: %s\n", input)
	}
	layout, err := gds.LoadFile(input, topCell)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", input, err)
	}

	records, err := convert.ToRect(layout, model, options(cmd))
	if err != nil {
		return err
	}

	if err := writeRect(output, records); err != nil {
		return err
	}
	fmt.Printf("output file written to %s (%d records)\n", output, len(records))
	return nil
}

func writeRect(filename string, records []rect.Record) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := rect.NewWriter(file)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return file.Close()
}
