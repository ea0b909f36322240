package render

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computers() cmdlet.Result {
	return cmdlet.Result{
		cmdlet.RecordOf("Name", "DC01", "DNSHostName", "dc01.corp.local", "Enabled", "True"),
		cmdlet.RecordOf("Name", "WS01").SetNull("Enabled").Set("Description", "Kiosk"),
	}
}

func systemInfo() cmdlet.Result {
	return cmdlet.Result{
		cmdlet.RecordOf(
			"Host Name", "DC01",
			"OS Name", "Microsoft Windows Server 2019 Standard",
			"OS Version", "10.0.17763 Build 17763",
			"Time Zone", "UTC+1",
		).SetNull("Logon Server"),
		cmdlet.RecordOf("Host Name", "WS01", "Domain", "corp.local"),
	}
}

type goldenTestSuite map[string]cmdlet.Result

func (gts goldenTestSuite) Run(t *testing.T, render func(io.Writer, cmdlet.Result) error) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, res := range gts {
		t.Run(tn, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, render(&out, res))
			g.Assert(t, tn, out.Bytes())
		})
	}
}

func TestTable(t *testing.T) {
	cases := goldenTestSuite{
		"computers": computers(),
		"single-column": {
			cmdlet.RecordOf("Name", "Domain Admins"),
			cmdlet.RecordOf("Name", "Domain Users"),
		},
		"all-null": {
			cmdlet.NewRecord().SetNull("Manager").SetNull("Title"),
		},
	}

	cases.Run(t, Table)
}

func TestList(t *testing.T) {
	cases := goldenTestSuite{
		"computers":   computers(),
		"system-info": systemInfo(),
	}

	cases.Run(t, List)
}

func TestAuto(t *testing.T) {
	cases := goldenTestSuite{
		"narrow": computers(),
		"wide":   systemInfo(),
	}

	cases.Run(t, Auto)
}

func TestEmpty(t *testing.T) {
	for name, render := range map[string]func(io.Writer, cmdlet.Result) error{
		"table": Table,
		"list":  List,
		"auto":  Auto,
	} {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, render(&out, nil))
			assert.Empty(t, out.String())
		})
	}
}

func TestTable_nullKeepsLayout(t *testing.T) {
	withValue := cmdlet.Result{cmdlet.RecordOf("A", "1", "B", "2", "C", "3")}
	withNull := cmdlet.Result{cmdlet.RecordOf("A", "1").SetNull("B").Set("C", "3")}

	var a, b bytes.Buffer
	require.NoError(t, Table(&a, withValue))
	require.NoError(t, Table(&b, withNull))

	assert.Equal(t, "A B C\n- - -\n1 2 3\n", a.String())
	assert.Equal(t, "A B C\n- - -\n1   3\n", b.String())
}

func TestTable_sanitizesCells(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Table(&out, cmdlet.Result{cmdlet.RecordOf("A", "x\ty", "B", "z")}))
	assert.Equal(t, "A   B\n-   -\nx y z\n", out.String())
}

func TestAuto_longCell(t *testing.T) {
	content := strings.Repeat("a", 2*1000*1000)
	res := cmdlet.Result{cmdlet.RecordOf(
		"StatusCode", "200",
		"StatusDescription", "OK",
		"ContentType", "text/plain",
		"RawContentLength", "2000000",
		"Content", content+"\n  ",
	)}

	var out bytes.Buffer
	require.NoError(t, Auto(&out, res))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Content           : "+content, lines[4])
}
