package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
)

func getCommandDescriptor(reg *cmdlet.Registry) *cmdlet.Descriptor {
	return &cmdlet.Descriptor{
		Name:    "Get-Command",
		Aliases: []string{"gcm"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Name", cmdlet.Positional(), cmdlet.Default("*"), cmdlet.Usage("Wildcard pattern matched against names and aliases.")),
		},
		Synopsis: "Gets all commands.",
		Examples: []cmdlet.Example{
			{Description: "List all commands", Lines: []string{"Get-Command"}},
			{Description: "List the Active Directory commands", Lines: []string{"gcm Get-AD*"}},
		},
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			pattern := wildcard(args.String("Name"))

			out := cmdlet.Result{}
			for _, d := range reg.Descriptors() {
				aliases := d.AllAliases()
				matched := false
				for _, alias := range aliases {
					if pattern.MatchString(alias) {
						matched = true
						break
					}
				}
				if !matched {
					continue
				}

				out = append(out, cmdlet.NewRecord().
					Set("Name", d.Name).
					Set("Aliases", strings.Join(aliases[1:], ", ")).
					Set("Synopsis", d.Synopsis))
			}

			if len(out) == 0 {
				return nil, cmdlet.DomainError("The term '%s' is not recognized as the name of a cmdlet.", args.String("Name"))
			}
			return out, nil
		}),
	}
}

// writeHelp prints the manual page of a command.
func writeHelp(ctx *cmdlet.Context, d *cmdlet.Descriptor) {
	w := stdout(ctx)

	fmt.Fprintln(w, "NAME")
	fmt.Fprintf(w, "    %s\n\n", d.Name)

	fmt.Fprintln(w, "SYNOPSIS")
	fmt.Fprintf(w, "    %s\n\n", d.Synopsis)

	fmt.Fprintln(w, "SYNTAX")
	fmt.Fprintf(w, "    %s\n\n", d.Syntax())

	if aliases := d.AllAliases()[1:]; len(aliases) > 0 {
		fmt.Fprintln(w, "ALIASES")
		fmt.Fprintf(w, "    %s\n\n", strings.Join(aliases, ", "))
	}

	if len(d.Schema) > 0 {
		fmt.Fprintln(w, "PARAMETERS")
		for _, spec := range d.Schema {
			fmt.Fprintf(w, "    -%s <%s>\n", spec.Name, spec.Kind)
			if spec.Usage != "" {
				fmt.Fprintf(w, "        %s\n", spec.Usage)
			}

			var attrs []string
			if spec.Required {
				attrs = append(attrs, "required")
			}
			if spec.Positional {
				attrs = append(attrs, "positional")
			}
			if spec.Default != nil && spec.Kind == cmdlet.String {
				attrs = append(attrs, fmt.Sprintf("default %q", spec.Default.Str()))
			}
			if len(attrs) > 0 {
				fmt.Fprintf(w, "        (%s)\n", strings.Join(attrs, ", "))
			}
		}
		fmt.Fprintln(w)
	}

	if len(d.Examples) > 0 {
		fmt.Fprintln(w, "EXAMPLES")
		for _, example := range d.Examples {
			fmt.Fprintf(w, "    %s\n", example.Description)
			for _, line := range example.Lines {
				fmt.Fprintf(w, "    PS > %s\n", line)
			}
			fmt.Fprintln(w)
		}
	}
}

func getHelpDescriptor(reg *cmdlet.Registry) *cmdlet.Descriptor {
	return &cmdlet.Descriptor{
		Name:    "Get-Help",
		Aliases: []string{"man"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Name", cmdlet.Positional(), cmdlet.Required(), cmdlet.Usage("Command or alias to describe.")),
		},
		Synopsis: "Displays information about a command.",
		Examples: []cmdlet.Example{
			{Description: "Show help for Get-ADUser", Lines: []string{"Get-Help Get-ADUser", "man Get-ADUser"}},
		},
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			d, err := reg.Resolve(args.String("Name"))
			if err != nil {
				return nil, cmdlet.DomainError("Get-Help could not find %s in a help file in this session.", args.String("Name"))
			}
			writeHelp(ctx, d)
			return cmdlet.Result{}, nil
		}),
	}
}

func init() {
	addRegistryCmdlet(getCommandDescriptor)
	addRegistryCmdlet(getHelpDescriptor)
}
