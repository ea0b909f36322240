package cmdlet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adDescriptor(calls *int) *Descriptor {
	return &Descriptor{
		Name: "Get-ADComputer",
		Schema: Schema{
			StringArg("Identity", Positional()),
			StringArg("Filter"),
			StringArg("LDAPFilter"),
			StringArg("Properties", Default("Name")),
		},
		Validate: AllRules(
			ExclusiveArgs("Identity", "LDAPFilter"),
			OneOfArgs("Identity", "Filter", "LDAPFilter"),
		),
		Command: CommandFunc(func(ctx *Context, args Arguments, in Result) (Result, error) {
			*calls++
			return nil, nil
		}),
	}
}

func TestDescriptor_Bind(t *testing.T) {
	cases := map[string]struct {
		tokens  []string
		wantErr string
	}{
		"identity":  {tokens: []string{"DC01"}},
		"filter":    {tokens: []string{"-Filter", "*"}},
		"exclusive": {tokens: []string{"DC01", "-LDAPFilter", "(cn=x)"}, wantErr: "Specify either Identity or LDAPFilter, not both"},
		"none":      {tokens: []string{"-Properties", "*"}, wantErr: "Specify either Identity, Filter or LDAPFilter"},
		"generic":   {tokens: []string{"-Nope"}, wantErr: "unknown parameter -Nope"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			calls := 0
			d := adDescriptor(&calls)

			_, err := d.Bind(words(tc.tokens...))
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, KindBinding, KindOf(err))
				assert.Equal(t, tc.wantErr, err.Error())
			}
			assert.Equal(t, 0, calls, "binding must not execute the command")
		})
	}
}

func TestDescriptor_BindUntaggedRule(t *testing.T) {
	d := &Descriptor{
		Name:     "Test-Rule",
		Command:  nopCommand,
		Validate: func(Arguments) error { return errors.New("bad combination") },
	}

	_, err := d.Bind(nil)
	require.Error(t, err)
	assert.Equal(t, KindBinding, KindOf(err))
	assert.Equal(t, "bad combination", err.Error())
}

func TestDescriptor_Syntax(t *testing.T) {
	calls := 0
	d := adDescriptor(&calls)
	d.Schema = append(d.Schema, BoolArg("Simple"), StringArg("Server", Required()))

	assert.Equal(t,
		"Get-ADComputer [[-Identity] <String>] [-Filter <String>] [-LDAPFilter <String>] [-Properties <String>] [-Simple] -Server <String>",
		d.Syntax())
}

func TestDescriptor_AllAliases(t *testing.T) {
	d := descriptor("Where-Object", "where", "where-object", "?")
	assert.Equal(t, []string{"Where-Object", "where", "?"}, d.AllAliases())
}

func TestError(t *testing.T) {
	cause := errors.New("connection refused")

	cases := map[string]struct {
		err  *Error
		want string
	}{
		"domain": {
			err:  &Error{Kind: KindDomain, Stage: 2, Command: "Get-ADComputer", Msg: "Currently only * filter is supported"},
			want: "Get-ADComputer (stage 2) : Currently only * filter is supported",
		},
		"binding": {
			err:  &Error{Kind: KindBinding, Stage: 1, Command: "Get-ADComputer", Msg: "missing value for Filter"},
			want: "Get-ADComputer : missing value for Filter",
		},
		"tokenize": {
			err:  &Error{Kind: KindTokenize, Stage: 3, Msg: "empty pipeline stage"},
			want: "stage 3: empty pipeline stage",
		},
		"bare": {
			err:  &Error{Msg: "boom"},
			want: "boom",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}

	wrapped := AsError(fmt.Errorf("query: %w", cause))
	assert.Equal(t, KindUnhandled, wrapped.Kind)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, AsError(nil))

	domain := DomainError("bad %s", "filter")
	assert.Same(t, domain, AsError(fmt.Errorf("wrapped: %w", domain)))
	assert.Equal(t, "domain", KindOf(domain).String())
}
