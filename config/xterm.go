package config

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/all-yall/crtterm"
)

// xtermANSIKeys are the ITheme keys of the 16 base colors, in palette order.
var xtermANSIKeys = [16]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"brightBlack", "brightRed", "brightGreen", "brightYellow",
	"brightBlue", "brightMagenta", "brightCyan", "brightWhite",
}

// ApplyXtermTheme overlays an xterm.js ITheme JSON object onto t. Known
// keys are background, foreground, cursor, the 16 named ANSI colors and
// extendedAnsi (palette entries from 16 on). Missing keys leave t as is.
func ApplyXtermTheme(t *crtterm.Theme, data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("xterm theme: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("xterm theme: want an object, got %s", doc.Type)
	}

	set := func(dst *crtterm.RGBA, key string) error {
		v := doc.Get(key)
		if !v.Exists() {
			return nil
		}
		c, err := crtterm.ParseRGBA(v.String())
		if err != nil {
			return fmt.Errorf("xterm theme %s: %w", key, err)
		}
		*dst = c
		return nil
	}

	if err := set(&t.Background, "background"); err != nil {
		return err
	}
	if err := set(&t.Foreground, "foreground"); err != nil {
		return err
	}
	if err := set(&t.Cursor, "cursor"); err != nil {
		return err
	}
	if len(t.ANSI) < 256 {
		t.ANSI = append(t.ANSI, make([]crtterm.RGBA, 256-len(t.ANSI))...)
	}
	for i, key := range xtermANSIKeys {
		if err := set(&t.ANSI[i], key); err != nil {
			return err
		}
	}

	var err error
	doc.Get("extendedAnsi").ForEach(func(k, v gjson.Result) bool {
		i := 16 + int(k.Int())
		if i >= len(t.ANSI) {
			return false
		}
		c, perr := crtterm.ParseRGBA(v.String())
		if perr != nil {
			err = fmt.Errorf("xterm theme extendedAnsi[%d]: %w", i-16, perr)
			return false
		}
		t.ANSI[i] = c
		return true
	})
	return err
}
