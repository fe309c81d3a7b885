package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/gdsrect/pkg/gds"
	"github.com/OpenTraceLab/gdsrect/pkg/layermodel"
	"github.com/OpenTraceLab/gdsrect/pkg/techconf"
	"github.com/spf13/cobra"
)

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// resolveConf returns the technology file selected by --conf or --tech
func resolveConf() (string, error) {
	var path string
	switch {
	case confPath != "":
		path = expandPath(confPath)
	case techName != "":
		home := os.Getenv("ACT_HOME")
		if home == "" {
			return "", fmt.Errorf("environment variable ACT_HOME not set (needed by --tech)")
		}
		path = filepath.Join(home, "conf", techName, "layout.conf")
	default:
		return "", fmt.Errorf("no technology given, use --tech <name> or --conf <layout.conf>")
	}

	if err := checkFile(path); err != nil {
		return "", fmt.Errorf("layout conf: %w", err)
	}
	return path, nil
}

// resolveIO returns the input file and the output file, which defaults to
// the input with its extension, and a trailing .gz, replaced by ext
func resolveIO(input, output, ext string) (string, string, error) {
	input = expandPath(input)
	if err := checkFile(input); err != nil {
		return "", "", fmt.Errorf("input: %w", err)
	}

	if output == "" {
		stem := input
		if gds.Compressed(stem) {
			stem = stem[:len(stem)-len(".gz")]
		}
		output = strings.TrimSuffix(stem, filepath.Ext(stem)) + ext
	}
	output = expandPath(output)

	dir := filepath.Dir(output)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("output directory does not exist: %s", dir)
	}
	return input, output, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// loadModel parses and compiles the selected technology. Configuration
// errors are fatal unless --force is set.
func loadModel(cmd *cobra.Command) (*layermodel.Model, error) {
	path, err := resolveConf()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd)
	if verbose {
		logger.Printf("reading technology %s", path)
	}

	tech, err := techconf.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		for _, w := range tech.Warnings {
			logger.Printf("%s: %v", path, w)
		}
	}

	model, err := layermodel.Build(tech, policy())
	if model == nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err != nil {
		var ce *layermodel.ConfigError
		for _, e := range unwrapAll(err) {
			if !errors.As(e, &ce) {
				continue
			}
			if !ce.Forceable() {
				return nil, fmt.Errorf("%s: %w", path, ce)
			}
			logger.Printf("warning: %s: %v", path, ce)
		}
		if !force {
			return nil, fmt.Errorf("%s: invalid technology description", path)
		}
	}
	return model, nil
}

func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// inputArg picks the input file from --input or the single positional
// argument
func inputArg(flag string, args []string) (string, error) {
	switch {
	case flag != "" && len(args) > 0:
		return "", fmt.Errorf("input given both as --input and as argument")
	case flag != "":
		return flag, nil
	case len(args) == 1:
		return args[0], nil
	}
	return "", fmt.Errorf("exactly one input file expected")
}
