package commands

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
)

// SelectObject keeps the given properties of each record and optionally only
// the first N records.
func SelectObject(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	out := project(in, splitList(args.String("Property")))

	if args.Has("First") {
		first, err := strconv.Atoi(args.String("First"))
		if err != nil || first < 0 {
			return nil, cmdlet.DomainError("Cannot validate argument on parameter 'First'. %q is not a non-negative integer.", args.String("First"))
		}
		if first < len(out) {
			out = out[:first]
		}
	}

	return out, nil
}

// WhereObject filters records on the value of a single property.
func WhereObject(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	property := args.String("Property")

	var match func(value string) bool
	switch {
	case args.Has("EQ"):
		want := args.String("EQ")
		match = func(value string) bool { return strings.EqualFold(value, want) }
	case args.Has("NE"):
		want := args.String("NE")
		match = func(value string) bool { return !strings.EqualFold(value, want) }
	default:
		pattern := wildcard(args.String("Like"))
		match = pattern.MatchString
	}

	out := cmdlet.Result{}
	for _, r := range in {
		f, ok := r.Lookup(property)
		if !ok || f.Null {
			// Null is only ever unequal to a value.
			if args.Has("NE") {
				out = append(out, r)
			}
			continue
		}
		if match(f.Value) {
			out = append(out, r)
		}
	}
	return out, nil
}

// compareValues orders null first, then numbers numerically, then strings
// ignoring case.
func compareValues(a, b cmdlet.Field, aOK, bOK bool) int {
	aNull, bNull := !aOK || a.Null, !bOK || b.Null
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return -1
	case bNull:
		return 1
	}

	af, aNum := parseNumber(a.Value)
	bf, bNum := parseNumber(b.Value)
	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}

	return strings.Compare(strings.ToLower(a.Value), strings.ToLower(b.Value))
}

// parseNumber reports whether value sorts as a number. NaN doesn't since it
// has no order.
func parseNumber(value string) (float64, bool) {
	f, err := strconv.ParseFloat(value, 64)
	return f, err == nil && !math.IsNaN(f)
}

// SortObject sorts records by one or more properties. Without properties the
// first column is used.
func SortObject(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	properties := splitList(args.String("Property"))
	if len(properties) == 0 {
		columns := in.Columns()
		if len(columns) == 0 {
			return in, nil
		}
		properties = columns[:1]
	}
	descending := args.Bool("Descending")

	out := make(cmdlet.Result, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		for _, prop := range properties {
			a, aOK := out[i].Lookup(prop)
			b, bOK := out[j].Lookup(prop)
			cmp := compareValues(a, b, aOK, bOK)
			if descending {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return out, nil
}

// MeasureObject counts the records it receives.
func MeasureObject(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	out := cmdlet.NewRecord().
		Set("Count", strconv.Itoa(len(in))).
		SetNull("Average").
		SetNull("Sum").
		SetNull("Maximum").
		SetNull("Minimum").
		SetNull("Property")
	return cmdlet.Result{out}, nil
}

func init() {
	addCmdlet(&cmdlet.Descriptor{
		Name:    "Select-Object",
		Aliases: []string{"select"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Property", cmdlet.Positional(), cmdlet.Usage("Comma separated properties to keep, * for all.")),
			cmdlet.StringArg("First", cmdlet.Usage("Number of records to keep from the start.")),
		},
		Synopsis: "Selects objects or object properties.",
		Examples: []cmdlet.Example{
			{Description: "Show only the Name of domain computers", Lines: []string{"Get-ADComputer -Filter * | select Name"}},
			{Description: "Show the first route", Lines: []string{"Get-NetRoute | Select-Object -First 1"}},
		},
		Command: cmdlet.CommandFunc(SelectObject),
	})

	addCmdlet(&cmdlet.Descriptor{
		Name:    "Where-Object",
		Aliases: []string{"where", "?"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Property", cmdlet.Positional(), cmdlet.Required(), cmdlet.Usage("Property to compare.")),
			cmdlet.StringArg("EQ", cmdlet.Usage("Keep records where the property equals the value.")),
			cmdlet.StringArg("NE", cmdlet.Usage("Keep records where the property doesn't equal the value.")),
			cmdlet.StringArg("Like", cmdlet.Usage("Keep records where the property matches the wildcard pattern.")),
		},
		Synopsis: "Selects objects from a collection based on their property values.",
		Examples: []cmdlet.Example{
			{Description: "List the default route", Lines: []string{"Get-NetRoute | ? Destination -EQ 0.0.0.0"}},
			{Description: "List workstations", Lines: []string{"Get-ADComputer -Filter * -Properties Name,operatingSystem | where operatingSystem -Like *Windows?10*"}},
		},
		Validate: cmdlet.AllRules(
			cmdlet.ExclusiveArgs("EQ", "NE", "Like"),
			cmdlet.OneOfArgs("EQ", "NE", "Like"),
		),
		Command: cmdlet.CommandFunc(WhereObject),
	})

	addCmdlet(&cmdlet.Descriptor{
		Name:    "Sort-Object",
		Aliases: []string{"sort"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Property", cmdlet.Positional(), cmdlet.Usage("Comma separated properties to sort by.")),
			cmdlet.BoolArg("Descending", cmdlet.Usage("Sort in descending order.")),
		},
		Synopsis: "Sorts objects by property values.",
		Examples: []cmdlet.Example{
			{Description: "Sort users by name", Lines: []string{"Get-ADUser -Filter * | sort Name -Descending"}},
		},
		Command: cmdlet.CommandFunc(SortObject),
	})

	addCmdlet(&cmdlet.Descriptor{
		Name:     "Measure-Object",
		Aliases:  []string{"measure"},
		Synopsis: "Counts the objects in the pipeline.",
		Examples: []cmdlet.Example{
			{Description: "Count the groups in the domain", Lines: []string{"Get-ADGroup -Filter * | measure"}},
		},
		Command: cmdlet.CommandFunc(MeasureObject),
	})
}
