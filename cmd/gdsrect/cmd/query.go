package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/gdsrect/pkg/convert"
	"github.com/OpenTraceLab/gdsrect/pkg/gds"
	"github.com/OpenTraceLab/gdsrect/pkg/geom"
	"github.com/OpenTraceLab/gdsrect/pkg/layermodel"
	"github.com/spf13/cobra"
)

var queryTop string

var queryCmd = &cobra.Command{
	Use:   "query <expression> <input.gds>",
	Short: "Evaluate a derived layer expression against a GDS layout",
	Long: `Evaluate an expression over the technology's GDS layer names and print
the rectangles of the resulting region in RECT units. Expressions use the
same form the model command prints:

  m1
  (and via1a via1b)
  (not (and diff nsdm) (or poly licon))

Examples:
  gdsrect query -T sky130 "(and m1 m1.pin)" inv.gds`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryTop, "top", "",
		"structure to query (default: the single top structure)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	expr, err := layermodel.ParseExpr(args[0])
	if err != nil {
		return err
	}
	model, err := loadModel(cmd)
	if err != nil {
		return err
	}

	layout, err := gds.LoadFile(args[1], queryTop)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	src := convert.NewSource(layout, model.Registry)
	region, err := expr.Eval(src)
	if err != nil {
		return err
	}

	shapes := region.Decompose()
	fmt.Printf("%s: %d shape(s), area %d nm^2\n", expr, len(shapes), region.Area())

	s := model.Scale
	for _, shape := range shapes {
		if shape.Kind != geom.ShapeBox {
			fmt.Printf("  %-22s %s\n", shape.Kind, shape.Polygon)
			continue
		}
		b := shape.Box()
		line := fmt.Sprintf("  box %d %d %d %d", s.ToRect(b.X0), s.ToRect(b.Y0), s.ToRect(b.X1), s.ToRect(b.Y1))
		if text, ok := src.LabelAt(b, expr.Layers()); ok {
			line += " " + text
		}
		fmt.Println(line)
	}
	return nil
}
