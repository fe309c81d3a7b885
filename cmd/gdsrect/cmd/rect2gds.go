package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/convert"
	"github.com/OpenTraceLab/gdsrect/pkg/gds"
	"github.com/spf13/cobra"
)

var (
	rectInput string
	gdsOut    string
	cellName  string
)

var rect2gdsCmd = &cobra.Command{
	Use:   "rect2gds [flags] <input.rect>",
	Short: "Expand RECT records into a GDS layout",
	Long: `Draw every RECT record on the GDS layers of its construct, growing each
box by the configured bloat and adding pin boxes and labels.

Records naming an unknown construct or layer stop the conversion even with
--force.

Examples:
  gdsrect rect2gds -T sky130 inv.rect
  gdsrect rect2gds -c layout.conf -o inv_out.gds --name INV inv.rect`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRect2GDS,
}

func init() {
	rootCmd.AddCommand(rect2gdsCmd)

	rect2gdsCmd.Flags().StringVarP(&rectInput, "input", "i", "", "input RECT file")
	rect2gdsCmd.Flags().StringVarP(&gdsOut, "output", "o", "",
		"output GDS file (default: input with .gds extension)")
	rect2gdsCmd.Flags().StringVar(&cellName, "name", "",
		"structure name (default: input file name without extension)")
}

func runRect2GDS(cmd *cobra.Command, args []string) error {
	arg, err := inputArg(rectInput, args)
	if err != nil {
		return err
	}
	model, err := loadModel(cmd)
	if err != nil {
		return err
	}
	input, output, err := resolveIO(arg, gdsOut, ".gds")
	if err != nil {
		return err
	}

	name := cellName
	if name == "" {
		base := filepath.Base(input)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if verbose {
		fmt.Printf("Reading RECT file: %s\n", input)
	}
	layout, err := convert.ToLayout(file, model, name, options(cmd))
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	if err := gds.WriteFile(output, layout.Library()); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Printf("output file written to %s\n", output)
	return nil
}
