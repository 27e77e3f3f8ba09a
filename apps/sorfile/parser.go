// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package sorfile reads "schema-on-read" files: one row per line,
// fields wrapped in angle brackets (<1><2.5><"hello">), an empty
// bracket pair marking a missing field. The schema is not declared
// up front; it is inferred column-by-column from the widest type
// seen in any row, widening bool -> int -> float -> string.
package sorfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/SnellerInc/sneller/frame"
	"github.com/SnellerInc/sneller/table"
)

// splitFields extracts the bracketed tokens from one line, in
// order, trimming surrounding whitespace from each.
func splitFields(line string) []string {
	var fields []string
	i, n := 0, len(line)
	for i < n {
		for i < n && line[i] != '<' {
			i++
		}
		if i >= n {
			break
		}
		i++
		start := i
		for i < n && line[i] != '>' {
			i++
		}
		fields = append(fields, strings.TrimSpace(line[start:i]))
		if i < n {
			i++
		}
	}
	return fields
}

// widen returns the more general of a and b, under the ordering
// bool < int < float < string.
func widen(a, b table.ColType) table.ColType {
	rank := func(t table.ColType) int {
		switch t {
		case table.TypeBool:
			return 0
		case table.TypeInt:
			return 1
		case table.TypeFloat:
			return 2
		default:
			return 3
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// inferType classifies a single token; an empty token has no type
// of its own and does not affect widening.
func inferType(tok string) (table.ColType, bool) {
	if tok == "" {
		return 0, false
	}
	if unquote(tok) != tok {
		return table.TypeString, true
	}
	if tok == "0" || tok == "1" {
		return table.TypeBool, true
	}
	if _, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return table.TypeInt, true
	}
	if _, err := strconv.ParseFloat(tok, 32); err == nil {
		return table.TypeFloat, true
	}
	return table.TypeString, true
}

func unquote(tok string) string {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return tok[1 : len(tok)-1]
	}
	return tok
}

// Load reads the SoR file at path into a local in-memory DataFrame,
// inferring its schema from the file's own contents.
func Load(path string) (*frame.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sorfile.Load: %w", err)
	}
	defer f.Close()

	var rows [][]string
	width := 0
	types := []table.ColType(nil)

	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := scan.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		if len(fields) > width {
			width = len(fields)
			for len(types) < width {
				types = append(types, table.TypeBool)
			}
		}
		for i, tok := range fields {
			if t, ok := inferType(tok); ok {
				types[i] = widen(types[i], t)
			}
		}
		rows = append(rows, fields)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("sorfile.Load: reading %s: %w", path, err)
	}

	schema := table.FromTypes(types...)
	df := frame.New(schema)
	cols := make([]table.ColumnView, width)
	for i, t := range types {
		cols[i] = table.NewColumn(t)
	}
	for _, fields := range rows {
		for i, t := range types {
			var tok string
			if i < len(fields) {
				tok = fields[i]
			}
			appendField(cols[i], t, tok)
		}
	}
	df.Columns = cols
	df.Schema.SetLength(len(rows))
	return df, nil
}

func appendField(c table.ColumnView, t table.ColType, tok string) {
	if tok == "" {
		c.AppendMissing()
		return
	}
	switch t {
	case table.TypeBool:
		table.AsBool(c).Append(tok == "1")
	case table.TypeInt:
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			c.AppendMissing()
			return
		}
		table.AsInt(c).Append(int32(v))
	case table.TypeFloat:
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			c.AppendMissing()
			return
		}
		table.AsFloat(c).Append(float32(v))
	case table.TypeString:
		table.AsString(c).Append(unquote(tok))
	}
}
