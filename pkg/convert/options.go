package convert

import (
	"io"
	"log"
)

// Options controls how the converters react to problems
type Options struct {
	// Force turns failures into warnings. The output may then be
	// incomplete.
	Force bool

	// Verbose logs progress per construct
	Verbose bool

	// Logger receives warnings and progress; nil discards them
	Logger *log.Logger
}

var discard = log.New(io.Discard, "", 0)

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return discard
	}
	return o.Logger
}

func (o Options) debugf(format string, args ...any) {
	if o.Verbose {
		o.logger().Printf(format, args...)
	}
}

// check logs a failure and returns it, or nil in force mode
func (o Options) check(f *Failure, skipped *int) error {
	o.logger().Printf("warning: %v", f)
	if o.Force {
		*skipped++
		return nil
	}
	return f
}
