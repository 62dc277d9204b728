package settings

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Option keys as stored in profile files.
const (
	OptContinuousPlayback = "continuous_playback"
	OptMinimizeToTray     = "minimize_to_tray"
	OptMinimalisticMode   = "minimalistic_mode"
	OptSaveOnChange       = "saveOnChange"
)

// OptionNames lists every option in file order.
var OptionNames = []string{
	OptContinuousPlayback,
	OptMinimizeToTray,
	OptMinimalisticMode,
	OptSaveOnChange,
}

// Options holds the values of a profile.
type Options struct {
	ContinuousPlayback bool
	MinimizeToTray     bool
	MinimalisticMode   bool
	SaveOnChange       bool
}

func (o *Options) field(name string) (*bool, error) {
	switch name {
	case OptContinuousPlayback:
		return &o.ContinuousPlayback, nil
	case OptMinimizeToTray:
		return &o.MinimizeToTray, nil
	case OptMinimalisticMode:
		return &o.MinimalisticMode, nil
	case OptSaveOnChange:
		return &o.SaveOnChange, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOption, name)
}

// Get returns the value of the named option.
func (o Options) Get(name string) (bool, error) {
	p, err := o.field(name)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// Set assigns the named option.
func (o *Options) Set(name string, value bool) error {
	p, err := o.field(name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// prettyOptions matches the two-space layout profiles have always used.
var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// decodeOptions reads options from profile JSON. Values are coerced the
// way JSON truthiness works: true, non-zero numbers and "true" strings.
func decodeOptions(data []byte) (Options, error) {
	var o Options
	if !gjson.ValidBytes(data) {
		return o, ErrMalformed
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return o, ErrMalformed
	}
	for _, name := range OptionNames {
		_ = o.Set(name, root.Get(name).Bool())
	}
	return o, nil
}

// encodeOptions writes o into base, keeping any other keys base holds.
// A nil or invalid base starts from an empty object.
func encodeOptions(base []byte, o Options) ([]byte, error) {
	if len(base) == 0 || !gjson.ValidBytes(base) || !gjson.ParseBytes(base).IsObject() {
		base = []byte("{}")
	}
	out := base
	for _, name := range OptionNames {
		v, _ := o.Get(name)
		var err error
		out, err = sjson.SetBytes(out, name, v)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
	}
	return pretty.PrettyOptions(out, prettyOptions), nil
}
