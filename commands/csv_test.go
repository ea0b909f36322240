package commands

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCsv(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"type-information": {
			line: "Get-ADGroup -Filter * -Properties Name,adminCount | Export-Csv groups.csv",
			want: "#TYPE System.Management.Automation.PSCustomObject\n" +
				"Name,adminCount\n" +
				"Domain Admins,1\n" +
				"Enterprise Admins,1\n" +
				"Domain Users,\n" +
				"Helpdesk,\n",
		},
		"no-type-information": {
			line: "route | select Destination,Mask | epcsv groups.csv -NoTypeInformation",
			want: "Destination,Mask\n" +
				"0.0.0.0,0.0.0.0\n" +
				"10.0.0.0,255.255.255.0\n" +
				"127.0.0.0,255.0.0.0\n",
		},
		"quoting": {
			line: "Get-ADUser -Filter * -Properties Name,memberOf | select -First 1 | epcsv groups.csv -NoTypeInformation",
			want: "Name,memberOf\n" +
				`Administrator,"CN=Domain Admins,CN=Users,DC=corp,DC=local, CN=Enterprise Admins,CN=Users,DC=corp,DC=local"` + "\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			interp := newTestInterpreter(t)
			stdout, stderr := runLine(t, interp, tc.line)
			require.Empty(t, stderr)
			assert.Empty(t, stdout)

			got, err := afero.ReadFile(interp.FS, "groups.csv")
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestImportCsv(t *testing.T) {
	t.Run("round-trip", func(t *testing.T) {
		interp := newTestInterpreter(t)
		_, stderr := runLine(t, interp, "Get-ADGroup -Filter * -Properties Name,adminCount | Export-Csv groups.csv")
		require.Empty(t, stderr)

		stdout, stderr := runLine(t, interp, "Import-Csv groups.csv | ? adminCount -EQ 1 | select Name")
		require.Empty(t, stderr)
		assert.Equal(t, "Name\n----\nDomain Admins\nEnterprise Admins\n", stdout)
	})

	t.Run("short-rows", func(t *testing.T) {
		interp := newTestInterpreter(t)
		require.NoError(t, afero.WriteFile(interp.FS, "short.csv", []byte("A,B\n1\n2,3\n"), 0644))

		stdout, stderr := runLine(t, interp, "ipcsv short.csv")
		require.Empty(t, stderr)
		assert.Equal(t, "A B\n- -\n1\n2 3\n", stdout)
	})

	t.Run("empty", func(t *testing.T) {
		interp := newTestInterpreter(t)
		require.NoError(t, afero.WriteFile(interp.FS, "empty.csv", []byte("#TYPE Foo\n"), 0644))

		stdout, stderr := runLine(t, interp, "ipcsv empty.csv")
		assert.Empty(t, stdout)
		assert.Equal(t, "Import-Csv (stage 1) : The file \"empty.csv\" has no header row.\n", stderr)
	})

	t.Run("missing-file", func(t *testing.T) {
		interp := newTestInterpreter(t)
		_, stderr := runLine(t, interp, "ipcsv nope.csv")
		assert.Contains(t, stderr, "Import-Csv (stage 1) : ")
	})
}
