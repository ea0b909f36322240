package commands

import (
	"github.com/josephlewis42/nopwsh/core/cmdlet"
)

const netRouteQuery = "Select Caption, Description, Destination, Mask, NextHop From Win32_IP4RouteTable"

// GetNetRoute lists the IPv4 routing table of a computer.
func GetNetRoute(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	return managementQuery(ctx, args, netRouteQuery)
}

func init() {
	addCmdlet(&cmdlet.Descriptor{
		Name:     "Get-NetRoute",
		Aliases:  []string{"route"},
		Schema:   remoteSchema(),
		Synopsis: "Gets the IP route information from the IP routing table.",
		Examples: []cmdlet.Example{
			{Description: "Show the IP routing table", Lines: []string{"Get-NetRoute", "route"}},
			{Description: "Show the IP routing table on a remote machine using WMI", Lines: []string{
				"Get-NetRoute -ComputerName MyServer -Username MyUser -Password MyPassword",
				"route -ComputerName MyServer",
			}},
		},
		Command: cmdlet.CommandFunc(GetNetRoute),
	})
}
