package commands

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
)

const csvTypeHeader = "#TYPE System.Management.Automation.PSCustomObject"

// ExportCsv writes the input as comma separated values.
func ExportCsv(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	if ctx.FS == nil {
		return nil, errNoFilesystem
	}

	fd, err := ctx.FS.Create(args.String("Path"))
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if !args.Bool("NoTypeInformation") {
		if _, err := io.WriteString(fd, csvTypeHeader+"\n"); err != nil {
			return nil, err
		}
	}

	w := csv.NewWriter(fd)
	columns := in.Columns()
	if err := w.Write(columns); err != nil {
		return nil, err
	}

	row := make([]string, len(columns))
	for _, r := range in {
		for i, col := range columns {
			row[i], _ = r.Get(col)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return cmdlet.Result{}, fd.Close()
}

// ImportCsv reads records from a file written by ExportCsv or another tool.
func ImportCsv(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	if ctx.FS == nil {
		return nil, errNoFilesystem
	}

	fd, err := ctx.FS.Open(args.String("Path"))
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	r := csv.NewReader(fd)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 && len(rows[0]) == 1 && strings.HasPrefix(rows[0][0], "#TYPE") {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, cmdlet.DomainError("The file %q has no header row.", args.String("Path"))
	}

	header := rows[0]
	out := cmdlet.Result{}
	for _, row := range rows[1:] {
		rec := cmdlet.NewRecord()
		for i, key := range header {
			if i < len(row) {
				rec.Set(key, row[i])
			} else {
				rec.SetNull(key)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func init() {
	addCmdlet(&cmdlet.Descriptor{
		Name:    "Export-Csv",
		Aliases: []string{"epcsv"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Path", cmdlet.Positional(), cmdlet.Required(), cmdlet.Usage("File to write.")),
			cmdlet.BoolArg("NoTypeInformation", cmdlet.Usage("Omit the #TYPE header.")),
		},
		Synopsis: "Converts objects into a series of comma-separated value (CSV) strings and saves the strings to a file.",
		Examples: []cmdlet.Example{
			{Description: "Save all users to a file", Lines: []string{"Get-ADUser -Filter * | Export-Csv users.csv -NoTypeInformation"}},
		},
		Command: cmdlet.CommandFunc(ExportCsv),
	})

	addCmdlet(&cmdlet.Descriptor{
		Name:    "Import-Csv",
		Aliases: []string{"ipcsv"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Path", cmdlet.Positional(), cmdlet.Required(), cmdlet.Usage("File to read.")),
		},
		Synopsis: "Creates table-like custom objects from the items in a CSV file.",
		Examples: []cmdlet.Example{
			{Description: "Read users from a file", Lines: []string{"Import-Csv users.csv | ? Name -Like A*"}},
		},
		Command: cmdlet.CommandFunc(ImportCsv),
	})
}
