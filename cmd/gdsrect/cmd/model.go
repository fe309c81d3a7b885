package cmd

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/layermodel"
	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Show the compiled layer model of a technology",
	Long: `Parse the technology description and print, for every material, metal
and via, its GDS layer stack, the derived layer expression used for
decomposition, the pin expression of split metals and the layers searched
for labels.

Examples:
  gdsrect model -T sky130
  gdsrect model -c layout.conf --no-text-pins`,
	Args: cobra.NoArgs,
	RunE: runModel,
}

func init() {
	rootCmd.AddCommand(modelCmd)
}

func runModel(cmd *cobra.Command, args []string) error {
	model, err := loadModel(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("Scale:     %s RECT units per nm\n", model.Scale)
	fmt.Printf("GDS layers: %d\n", model.Registry.Len())
	if model.Align != "" {
		fmt.Printf("Alignment: %s\n", model.Align)
	}
	fmt.Println()

	for _, group := range []struct {
		title      string
		constructs []*layermodel.Construct
	}{
		{"Materials", model.Materials},
		{"Metals", model.Metals},
		{"Vias", model.Vias},
	} {
		fmt.Printf("%s: %d\n", group.title, len(group.constructs))
		for _, c := range group.constructs {
			fmt.Printf("  %-16s %s\n", c.Name, c.Region)
			if c.PinRegion != nil {
				fmt.Printf("  %-16s %s\n", "  pin", c.PinRegion)
			}
			if verbose {
				fmt.Printf("  %-16s %s\n", "  stack", strings.Join(c.GDS, " "))
				if len(c.Bloat) > 0 {
					fmt.Printf("  %-16s %v\n", "  bloat", c.Bloat)
				}
				fmt.Printf("  %-16s %s\n", "  labels", strings.Join(c.LabelLayers, " "))
			}
		}
		fmt.Println()
	}

	if verbose {
		fmt.Printf("Used GDS layers:\n")
		for _, name := range model.UsedLayers() {
			if l, ok := model.Registry.Lookup(name); ok {
				fmt.Printf("  %-16s %d/%d\n", name, l.Major, l.Minor)
			}
		}
	}
	return nil
}
