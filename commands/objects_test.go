package commands

import (
	"testing"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectCommands(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"select-first": {
			line: "Get-ADGroup -Filter * | sort Name -Descending | select Name -First 2",
			want: "Name\n----\nHelpdesk\nEnterprise Admins\n",
		},
		"select-first-zero": {
			line: "Get-ADGroup -Filter * | select Name -First 0",
			want: "",
		},
		"select-first-past-end": {
			line: "Get-ADUser -Filter * | select Name -First 10",
			want: "Name\n----\nAdministrator\nAlice Smith\n",
		},
		"where-like": {
			line: "Get-ADComputer -Filter * -Properties Name,operatingSystem | where operatingSystem -Like *windows?10*",
			want: "Name operatingSystem\n---- ---------------\nWS01 Windows 10 Enterprise\n",
		},
		"where-eq": {
			line: "route | ? Destination -EQ 0.0.0.0 | select NextHop",
			want: "NextHop\n-------\n10.0.0.1\n",
		},
		"where-ne": {
			line: "route | ? Destination -NE 0.0.0.0 | measure | select Count",
			want: "Count\n-----\n2\n",
		},
		"where-ne-missing-property": {
			line: "route | ? Missing -NE x | measure | select Count",
			want: "Count\n-----\n3\n",
		},
		"where-eq-missing-property": {
			line: "route | ? Missing -EQ x | measure | select Count",
			want: "Count\n-----\n0\n",
		},
		"sort-default-column": {
			line: "Get-ADUser -Filter * -Properties sAMAccountName | sort",
			want: "sAMAccountName\n--------------\nAdministrator\nasmith\n",
		},
		"measure": {
			line: "Get-ADUser -Filter * | measure",
			want: "Count    : 2\nAverage  :\nSum      :\nMaximum  :\nMinimum  :\nProperty :\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			stdout, stderr := runLine(t, newTestInterpreter(t), tc.line)
			require.Empty(t, stderr)
			assert.Equal(t, tc.want, stdout)
		})
	}
}

func TestObjectCommands_errors(t *testing.T) {
	errorTestSuite{
		"select-bad-first": {
			Line: "route | select -First x",
			Want: `Select-Object (stage 2) : Cannot validate argument on parameter 'First'. "x" is not a non-negative integer.`,
		},
		"select-negative-first": {
			Line: "route | select -First -1",
			Want: `Select-Object (stage 2) : Cannot validate argument on parameter 'First'. "-1" is not a non-negative integer.`,
		},
		"where-no-operator": {
			Line: "route | where Destination",
			Want: "Where-Object : Specify either EQ, NE or Like",
		},
		"where-two-operators": {
			Line: "route | where Destination -EQ a -NE b",
			Want: "Where-Object : Specify either EQ or NE, not both",
		},
		"where-no-property": {
			Line: "route | where -EQ a",
			Want: "Where-Object : missing required parameter(s): Property",
		},
	}.Run(t)
}

func TestSortObject(t *testing.T) {
	in := cmdlet.Result{
		cmdlet.RecordOf("Name", "b", "Size", "10"),
		cmdlet.RecordOf("Name", "A", "Size", "9"),
		cmdlet.NewRecord().Set("Name", "c").SetNull("Size"),
		cmdlet.RecordOf("Name", "d", "Size", "2"),
	}

	names := func(res cmdlet.Result) []string {
		var out []string
		for _, r := range res {
			v, _ := r.Get("Name")
			out = append(out, v)
		}
		return out
	}

	sortBy := func(t *testing.T, argv ...string) cmdlet.Result {
		t.Helper()
		d, err := NewRegistry().Resolve("Sort-Object")
		require.NoError(t, err)
		args, err := d.Bind(tokens(argv...))
		require.NoError(t, err)
		out, err := d.Command.Execute(&cmdlet.Context{}, args, in)
		require.NoError(t, err)
		return out
	}

	t.Run("numeric", func(t *testing.T) {
		assert.Equal(t, []string{"c", "d", "A", "b"}, names(sortBy(t, "Size")))
	})

	t.Run("descending", func(t *testing.T) {
		assert.Equal(t, []string{"b", "A", "d", "c"}, names(sortBy(t, "size", "-Descending")))
	})

	t.Run("case-insensitive", func(t *testing.T) {
		assert.Equal(t, []string{"A", "b", "c", "d"}, names(sortBy(t, "Name")))
	})

	t.Run("mixed", func(t *testing.T) {
		in := cmdlet.Result{
			cmdlet.RecordOf("Name", "1a"),
			cmdlet.RecordOf("Name", "10"),
			cmdlet.RecordOf("Name", "NaN"),
			cmdlet.RecordOf("Name", "2"),
			cmdlet.RecordOf("Name", "B"),
		}
		d, err := NewRegistry().Resolve("Sort-Object")
		require.NoError(t, err)
		args, err := d.Bind(tokens("Name"))
		require.NoError(t, err)
		out, err := d.Command.Execute(&cmdlet.Context{}, args, in)
		require.NoError(t, err)

		assert.Equal(t, []string{"2", "10", "1a", "B", "NaN"}, names(out))
	})

	t.Run("input-untouched", func(t *testing.T) {
		sortBy(t, "Name")
		assert.Equal(t, []string{"b", "A", "c", "d"}, names(in))
	})
}
