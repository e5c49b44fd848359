// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interactive

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gogpu/marcher/settings"
)

var (
	selectedColor = color.New(color.FgYellow, color.Bold)
	constantColor = color.New(color.FgHiBlack)
)

func colorize(s *settings.Settings, i int, line string, selected int) string {
	switch {
	case i == selected:
		return selectedColor.Sprint(line)
	case s.IsConstant(settings.Nth(i)):
		return constantColor.Sprint(line)
	}
	return line
}

// Status returns the settings listing, one line per field, with the
// selected field in bold yellow and constants dimmed. Colors follow
// color.NoColor, so redirected output stays plain.
func Status(s *settings.Settings, selected int) string {
	var b strings.Builder
	for i, line := range s.StatusLines(selected) {
		b.WriteString(colorize(s, i, line, selected))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteStatus writes Status(s, selected) to w.
func WriteStatus(w io.Writer, s *settings.Settings, selected int) error {
	_, err := io.WriteString(w, Status(s, selected))
	return err
}
