// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

import "strings"

// StatusLines lists every field in table order as "SC key = value", where S
// is '*' on the highlighted row and C is '@' on constant fields. Pass a
// negative index to highlight nothing.
func (s *Settings) StatusLines(highlighted int) []string {
	lines := make([]string, 0, len(s.values))
	var b strings.Builder
	for i, v := range s.values {
		b.Reset()
		if i == highlighted {
			b.WriteByte('*')
		} else {
			b.WriteByte(' ')
		}
		if s.constant[i] {
			b.WriteByte('@')
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(defaults[i].name)
		b.WriteString(" = ")
		b.WriteString(v.String())
		lines = append(lines, b.String())
	}
	return lines
}

// Status joins StatusLines with newlines.
func (s *Settings) Status(highlighted int) string {
	return strings.Join(s.StatusLines(highlighted), "\n") + "\n"
}
