// Package render turns command results into text.
package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
)

// MaxTableColumns is the widest result Auto still renders as a table.
const MaxTableColumns = 4

var cellReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ", "\f", " ")

func cell(r *cmdlet.Record, key string) string {
	f, ok := r.Field(key)
	if !ok || f.Null {
		return ""
	}
	return cellReplacer.Replace(f.Value)
}

// Table writes the result with one row per record. The columns are the union
// of all record keys; missing and null values are left blank.
func Table(w io.Writer, res cmdlet.Result) error {
	if len(res) == 0 {
		return nil
	}

	columns := res.Columns()
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)

	underline := make([]string, len(columns))
	for i, col := range columns {
		underline[i] = strings.Repeat("-", len([]rune(col)))
	}
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	fmt.Fprintln(tw, strings.Join(underline, "\t"))

	row := make([]string, len(columns))
	for _, r := range res {
		for i, col := range columns {
			row[i] = cell(r, col)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	return writeTrimmed(w, &buf)
}

// List writes every record as a block of "Key : value" lines.
func List(w io.Writer, res cmdlet.Result) error {
	var buf bytes.Buffer
	for i, r := range res {
		if i > 0 {
			buf.WriteString("\n")
		}

		width := 0
		for _, key := range r.Keys() {
			if n := len([]rune(key)); n > width {
				width = n
			}
		}

		for _, key := range r.Keys() {
			fmt.Fprintf(&buf, "%-*s : %s\n", width, key, cell(r, key))
		}
	}
	return writeTrimmed(w, &buf)
}

// Auto picks Table for narrow results and List for wide ones.
func Auto(w io.Writer, res cmdlet.Result) error {
	if len(res.Columns()) <= MaxTableColumns {
		return Table(w, res)
	}
	return List(w, res)
}

// writeTrimmed copies src to w with trailing spaces removed from each line.
// Lines may be arbitrarily long.
func writeTrimmed(w io.Writer, src *bytes.Buffer) error {
	bw := bufio.NewWriter(w)
	for src.Len() > 0 {
		line, err := src.ReadBytes('\n')
		line = bytes.TrimRight(bytes.TrimSuffix(line, []byte("\n")), " ")
		bw.Write(line)
		bw.WriteByte('\n')
		if err == io.EOF {
			break
		}
	}
	return bw.Flush()
}
