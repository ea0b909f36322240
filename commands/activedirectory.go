package commands

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/josephlewis42/nopwsh/core/sources"
)

var errNoDirectory = errors.New("Unable to find a default server with Active Directory Web Services running.")

// adObjectType describes one family of directory objects.
type adObjectType struct {
	Name     string
	Category string
	// IdentityAttr is the attribute -Identity is matched against.
	IdentityAttr      string
	DefaultProperties string
	Synopsis          string
	Examples          []cmdlet.Example
}

// Filter builds the LDAP filter for the bound arguments. Empty values count
// as not given.
func (t *adObjectType) Filter(args cmdlet.Arguments) (string, error) {
	var inner string
	switch {
	case args.String("Identity") != "":
		inner = fmt.Sprintf("(%s=%s)", t.IdentityAttr, sources.EscapeFilterValue(args.String("Identity")))
	case args.String("LDAPFilter") != "":
		inner = args.String("LDAPFilter")
	default:
		if args.String("Filter") != "*" {
			return "", cmdlet.DomainError("Currently only * filter is supported")
		}
	}

	return fmt.Sprintf("(&(objectCategory=%s)%s)", t.Category, inner), nil
}

func (t *adObjectType) Execute(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	filter, err := t.Filter(args)
	if err != nil {
		return nil, err
	}

	if ctx.Directory == nil {
		return nil, errNoDirectory
	}

	properties := splitList(args.String("Properties"))
	return ctx.Directory.Query(args.String("SearchBase"), filter, properties, args.String("Server"), argCredentials(ctx, args))
}

func (t *adObjectType) Descriptor() *cmdlet.Descriptor {
	return &cmdlet.Descriptor{
		Name: t.Name,
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Server", cmdlet.Usage("Domain controller to query.")),
			cmdlet.StringArg("SearchBase", cmdlet.Usage("Distinguished name the search is limited to.")),
			cmdlet.StringArg("Identity", cmdlet.Positional(), cmdlet.Usage(fmt.Sprintf("Object to get, matched against %s.", t.IdentityAttr))),
			cmdlet.StringArg("Filter", cmdlet.Usage("Filter, only * is supported.")),
			cmdlet.StringArg("LDAPFilter", cmdlet.Usage("LDAP search filter.")),
			cmdlet.StringArg("Properties", cmdlet.Default(t.DefaultProperties), cmdlet.Usage("Comma separated properties to return, * for all.")),
			cmdlet.StringArg("Username", cmdlet.Usage("User to authenticate as.")),
			cmdlet.StringArg("Password", cmdlet.Usage("Password of the user.")),
		},
		Synopsis: t.Synopsis,
		Examples: t.Examples,
		Validate: cmdlet.AllRules(
			cmdlet.ExclusiveArgs("Identity", "LDAPFilter"),
			cmdlet.OneOfArgs("Identity", "Filter", "LDAPFilter"),
		),
		Command: t,
	}
}

var (
	adComputer = &adObjectType{
		Name:              "Get-ADComputer",
		Category:          "computer",
		IdentityAttr:      "cn",
		DefaultProperties: "DistinguishedName,DNSHostName,Name,ObjectClass,ObjectGUID,SamAccountName,ObjectSID,UserPrincipalName",
		Synopsis:          "Gets one or more Active Directory computers.",
		Examples: []cmdlet.Example{
			{Description: "List all properties of the DC01 domain computer", Lines: []string{"Get-ADComputer -Identity DC01 -Properties *"}},
			{Description: "List all Domain Controllers", Lines: []string{`Get-ADComputer -LDAPFilter "(msDFSR-ComputerReferenceBL=*)"`}},
			{Description: "List all computers in domain", Lines: []string{"Get-ADComputer -Filter *"}},
			{Description: "List domain controllers", Lines: []string{`Get-ADComputer -SearchBase "OU=Domain Controllers,DC=corp,DC=local" -Filter *`}},
			{Description: "List specific attributes of the DC01 domain computer", Lines: []string{"Get-ADComputer DC01 -Properties Name,operatingSystem"}},
		},
	}

	adGroup = &adObjectType{
		Name:              "Get-ADGroup",
		Category:          "group",
		IdentityAttr:      "sAMAccountName",
		DefaultProperties: "DistinguishedName,Name,ObjectClass,ObjectGUID,SamAccountName,ObjectSID",
		Synopsis:          "Gets one or more Active Directory groups.",
		Examples: []cmdlet.Example{
			{Description: "List all user groups in domain", Lines: []string{"Get-ADGroup -Filter *"}},
			{Description: "List all administrative groups in domain", Lines: []string{`Get-ADGroup -LDAPFilter "(admincount=1)" | select Name`}},
		},
	}

	adUser = &adObjectType{
		Name:              "Get-ADUser",
		Category:          "person",
		IdentityAttr:      "sAMAccountName",
		DefaultProperties: "DistinguishedName,GivenName,Name,ObjectClass,ObjectGUID,SamAccountName,ObjectSID,Surname,UserPrincipalName",
		Synopsis:          "Gets one or more Active Directory users.",
		Examples: []cmdlet.Example{
			{Description: "List all users in domain", Lines: []string{"Get-ADUser -Filter *"}},
			{Description: "List the group memberships of a user", Lines: []string{"Get-ADUser asmith -Properties memberOf"}},
			{Description: "List all administrative users in domain", Lines: []string{`Get-ADUser -LDAPFilter "(admincount=1)" | select Name`}},
		},
	}
)

func init() {
	addCmdlet(adComputer.Descriptor())
	addCmdlet(adGroup.Descriptor())
	addCmdlet(adUser.Descriptor())
}
