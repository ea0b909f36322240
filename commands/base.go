package commands

import (
	"errors"
	"regexp"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
)

var errRPCUnavailable = errors.New("The RPC server is unavailable.")

// allCmdlets holds the command table in the order files registered them.
var allCmdlets []func(reg *cmdlet.Registry) *cmdlet.Descriptor

// addCmdlet adds a command to the table.
func addCmdlet(d *cmdlet.Descriptor) {
	allCmdlets = append(allCmdlets, func(*cmdlet.Registry) *cmdlet.Descriptor {
		return d
	})
}

// addRegistryCmdlet adds a command that needs to inspect the registry it's
// part of, e.g. to list or describe the other commands.
func addRegistryCmdlet(fn func(reg *cmdlet.Registry) *cmdlet.Descriptor) {
	allCmdlets = append(allCmdlets, fn)
}

// NewRegistry creates a registry holding every built-in command.
func NewRegistry() *cmdlet.Registry {
	reg := cmdlet.NewRegistry()
	for _, fn := range allCmdlets {
		reg.MustRegister(fn(reg))
	}
	return reg
}

// remoteSchema holds the parameters shared by commands that can run against
// another computer.
func remoteSchema() cmdlet.Schema {
	return cmdlet.Schema{
		cmdlet.StringArg("ComputerName", cmdlet.Usage("Computer to run the command against.")),
		cmdlet.StringArg("Username", cmdlet.Usage("User to authenticate as.")),
		cmdlet.StringArg("Password", cmdlet.Usage("Password of the user.")),
	}
}

// remoteTarget returns the host and credentials a remote capable command
// should use.
func remoteTarget(ctx *cmdlet.Context, args cmdlet.Arguments) (string, cmdlet.Credentials) {
	host := ctx.Host
	if args.Has("ComputerName") {
		host = args.String("ComputerName")
	}

	return host, argCredentials(ctx, args)
}

// argCredentials returns the -Username and -Password credentials if either
// was given and the session's credentials otherwise.
func argCredentials(ctx *cmdlet.Context, args cmdlet.Arguments) cmdlet.Credentials {
	if args.Has("Username") || args.Has("Password") {
		return cmdlet.Credentials{
			Username: args.String("Username"),
			Password: args.String("Password"),
		}
	}
	return ctx.Credentials
}

func managementQuery(ctx *cmdlet.Context, args cmdlet.Arguments, query string) (cmdlet.Result, error) {
	if ctx.Management == nil {
		return nil, errRPCUnavailable
	}
	host, creds := remoteTarget(ctx, args)
	return ctx.Management.Query(query, host, creds)
}

// splitList splits a comma separated parameter, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// wildcard compiles a PowerShell style pattern where * matches any run of
// characters and ? matches one. Matching ignores case.
func wildcard(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

// project builds new records holding only the given properties. The "*"
// property keeps every field. Properties a record doesn't have are null.
func project(in cmdlet.Result, properties []string) cmdlet.Result {
	if len(properties) == 0 {
		return in
	}

	out := make(cmdlet.Result, 0, len(in))
	for _, r := range in {
		projected := cmdlet.NewRecord()
		for _, prop := range properties {
			if prop == "*" {
				for _, f := range r.Fields() {
					if f.Null {
						projected.SetNull(f.Key)
					} else {
						projected.Set(f.Key, f.Value)
					}
				}
				continue
			}

			f, ok := r.Lookup(prop)
			switch {
			case !ok:
				projected.SetNull(prop)
			case f.Null:
				projected.SetNull(f.Key)
			default:
				projected.Set(f.Key, f.Value)
			}
		}
		out = append(out, projected)
	}
	return out
}
