package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/OpenTraceLab/gdsrect/pkg/convert"
	"github.com/OpenTraceLab/gdsrect/pkg/layermodel"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	force      bool
	techName   string
	confPath   string
	noTextPins bool
)

var rootCmd = &cobra.Command{
	Use:   "gdsrect",
	Short: "Convert layout geometry between GDS and RECT",
	Long: `Convert integrated-circuit layout geometry between GDS stream files and
flat RECT rectangle lists, using the layer mapping of an ACT layout.conf.

The technology is selected with -T <tech>, read from
$ACT_HOME/conf/<tech>/layout.conf, or given directly with -c <file>.

Examples:
  gdsrect gds2rect -T sky130 inv.gds                 # Write inv.rect
  gdsrect rect2gds -c layout.conf -o out.gds inv.rect # Write out.gds
  gdsrect model -T sky130                            # Show the compiled layer model
  gdsrect query -T sky130 "(and via1a via1b)" inv.gds # Evaluate an expression`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Conversion failures exit with their own
// status so scripts can tell them apart; other errors exit with 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gdsrect:", err)
		os.Exit(convert.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&force, "force", "f", false,
		"report problems as warnings and continue; the output may be incomplete (a missing scale stays fatal)")
	rootCmd.PersistentFlags().StringVarP(&techName, "tech", "T", "",
		"technology name, resolved to $ACT_HOME/conf/<tech>/layout.conf")
	rootCmd.PersistentFlags().StringVarP(&confPath, "conf", "c", "",
		"path to the layout.conf technology description")
	rootCmd.PersistentFlags().BoolVar(&noTextPins, "no-text-pins", false,
		"do not treat a metal's text layer as its pin layer when no pin layer is configured")
}

func newLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "gdsrect: ", 0)
}

func options(cmd *cobra.Command) convert.Options {
	return convert.Options{Force: force, Verbose: verbose, Logger: newLogger(cmd)}
}

func policy() layermodel.Policy {
	p := layermodel.DefaultPolicy()
	p.TextAsPin = !noTextPins
	return p
}
