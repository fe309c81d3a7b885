package layermodel

import "fmt"

// ConfigError is an unresolved or missing piece of the technology
// description. Build reports every one it finds, joined with errors.Join.
type ConfigError struct {
	Construct string // empty for technology-wide settings
	Role      string // stack, text, pin, mask, align, scale, layers
	Layer     string
}

func (e *ConfigError) Error() string {
	var msg string
	switch e.Role {
	case "scale":
		msg = "no scale configured (real scale)"
	case "layers":
		msg = "no usable GDS layer table"
	default:
		msg = fmt.Sprintf("%s layer %q is not in the GDS layer table", e.Role, e.Layer)
	}
	if e.Construct != "" {
		return e.Construct + ": " + msg
	}
	return msg
}

// Forceable reports whether force mode may continue past the error. Without
// a scale or a layer table no coordinate can be converted, so those never are.
func (e *ConfigError) Forceable() bool {
	return e.Role != "scale" && e.Role != "layers"
}
