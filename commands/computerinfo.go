package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
)

var wmiDateRegex = regexp.MustCompile(`([0-9]{4})([01][0-9])([0-3][0-9])([0-9]{2})([0-9]{2})([0-9]{2})`)

// wmiDate converts a WMI timestamp (yyyymmddHHMMSS.ffffff+zzz) to
// "dd-mm-yyyy, HH:MM:SS". It returns nil if value is nil or not a timestamp.
func wmiDate(value *string) *string {
	if value == nil {
		return nil
	}
	m := wmiDateRegex.FindStringSubmatch(*value)
	if m == nil {
		return nil
	}
	out := fmt.Sprintf("%s-%s-%s, %s:%s:%s", m[3], m[2], m[1], m[4], m[5], m[6])
	return &out
}

// wmiDay is like wmiDate but only keeps the day.
func wmiDay(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	m := wmiDateRegex.FindStringSubmatch(*value)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1]), true
}

// utcOffset formats a WMI time zone, minutes from UTC, as whole hours.
func utcOffset(minutes *string) *string {
	if minutes == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*minutes))
	if err != nil {
		return nil
	}
	out := fmt.Sprintf("UTC%+d", n/60)
	return &out
}

func str(s string) *string {
	return &s
}

// wmiObject reads properties of one WMI instance, missing ones are nil.
type wmiObject struct {
	*cmdlet.Record
}

func (o wmiObject) get(key string) *string {
	if o.Record == nil {
		return nil
	}
	f, ok := o.Lookup(key)
	if !ok || f.Null {
		return nil
	}
	return &f.Value
}

func (o wmiObject) getOr(key, fallback string) string {
	if v := o.get(key); v != nil {
		return *v
	}
	return fallback
}

type computerInfo struct {
	ctx  *cmdlet.Context
	args cmdlet.Arguments
}

func (c *computerInfo) query(class string) (cmdlet.Result, error) {
	return managementQuery(c.ctx, c.args, "Select * From "+class)
}

func (c *computerInfo) first(class string) (wmiObject, error) {
	res, err := c.query(class)
	if err != nil {
		return wmiObject{}, err
	}
	if len(res) == 0 {
		return wmiObject{}, nil
	}
	return wmiObject{res[0]}, nil
}

// GetComputerInfo summarizes the operating system and hardware of a computer
// in a single record.
func GetComputerInfo(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	info := &computerInfo{ctx: ctx, args: args}

	osInfo, err := info.first("Win32_OperatingSystem")
	if err != nil {
		return nil, err
	}
	if osInfo.Record == nil {
		return nil, fmt.Errorf("Win32_OperatingSystem returned no instances")
	}

	cs, err := info.first("Win32_ComputerSystem")
	if err != nil {
		return nil, err
	}

	cpus, err := info.query("Win32_Processor")
	if err != nil {
		return nil, err
	}
	var processors []string
	for _, cpu := range cpus {
		obj := wmiObject{cpu}
		processors = append(processors, fmt.Sprintf("%s ~%s Mhz", obj.getOr("Description", ""), obj.getOr("CurrentClockSpeed", "")))
	}

	bios, err := info.first("Win32_BIOS")
	if err != nil {
		return nil, err
	}
	var biosVersion *string
	if day, ok := wmiDay(bios.get("ReleaseDate")); ok {
		biosVersion = str(fmt.Sprintf("%s %s, %s", bios.getOr("Manufacturer", ""), bios.getOr("SMBIOSBIOSVersion", ""), day))
	}

	hotfixes := []string{"[unlisted]"}
	if !args.Bool("Simple") {
		fixes, err := managementQuery(ctx, args, "Select HotFixID From Win32_QuickFixEngineering")
		if err != nil {
			return nil, err
		}
		hotfixes = nil
		for _, fix := range fixes {
			hotfixes = append(hotfixes, wmiObject{fix}.getOr("HotFixID", ""))
		}
	}

	pageFile, err := info.first("Win32_PageFileUsage")
	if err != nil {
		return nil, err
	}

	var logonServer *string
	if name := osInfo.get("CSName"); name != nil {
		logonServer = str(`\\` + *name)
	}

	out := cmdlet.NewRecord().
		SetPtr("Host Name", osInfo.get("CSName")).
		SetPtr("OS Name", osInfo.get("Caption")).
		Set("OS Version", fmt.Sprintf("%s Build %s", osInfo.getOr("Version", ""), osInfo.getOr("BuildNumber", ""))).
		SetPtr("OS Manufacturer", osInfo.get("Manufacturer")).
		SetPtr("OS Build Type", osInfo.get("BuildType")).
		SetPtr("Registered Owner", osInfo.get("RegisteredUser")).
		SetPtr("Registered Organization", osInfo.get("Organization")).
		SetPtr("Product ID", osInfo.get("SerialNumber")).
		SetPtr("Original Install Date", wmiDate(osInfo.get("InstallDate"))).
		SetPtr("System Boot Time", wmiDate(osInfo.get("LastBootUpTime"))).
		SetPtr("System Manufacturer", cs.get("Manufacturer")).
		SetPtr("System Model", cs.get("Model")).
		SetPtr("System Type", cs.get("SystemType")).
		Set("Processor(s)", strings.Join(processors, ", ")).
		SetPtr("BIOS Version", biosVersion).
		SetPtr("Windows Directory", osInfo.get("WindowsDirectory")).
		SetPtr("System Directory", osInfo.get("SystemDirectory")).
		SetPtr("Boot Device", osInfo.get("BootDevice")).
		SetPtr("System Locale", osInfo.get("OSLanguage")).
		SetPtr("Input Locale", osInfo.get("OSLanguage")).
		SetPtr("Time Zone", utcOffset(osInfo.get("CurrentTimeZone"))).
		SetPtr("Total Physical Memory", osInfo.get("TotalVisibleMemorySize")).
		SetPtr("Available Physical Memory", osInfo.get("FreePhysicalMemory")).
		SetPtr("Virtual Memory: Max Size", osInfo.get("TotalVirtualMemorySize")).
		SetPtr("Virtual Memory: Available", osInfo.get("FreeVirtualMemory")).
		Set("Virtual Memory: In Use", "[not implemented]").
		SetPtr("Page File Location(s)", pageFile.get("Name")).
		SetPtr("Domain", cs.get("Domain")).
		SetPtr("Logon Server", logonServer).
		Set("Hotfix(s)", strings.Join(hotfixes, ", ")).
		Set("Network Card(s)", "[not implemented]").
		Set("Hyper-V Requirements", "[not implemented]")

	return cmdlet.Result{out}, nil
}

func init() {
	addCmdlet(&cmdlet.Descriptor{
		Name:    "Get-ComputerInfo",
		Aliases: []string{"systeminfo"},
		Schema: append(cmdlet.Schema{
			cmdlet.BoolArg("Simple", cmdlet.Usage("Skip listing installed hotfixes.")),
		}, remoteSchema()...),
		Synopsis: "Shows details about the system such as hardware and Windows installation.",
		Examples: []cmdlet.Example{
			{Description: "Show information about the system", Lines: []string{"Get-ComputerInfo", "systeminfo"}},
			{Description: "Show information about the system not listing patches", Lines: []string{"systeminfo -Simple"}},
			{Description: "Show information about a remote machine using WMI", Lines: []string{
				"Get-ComputerInfo -ComputerName MyServer -Username MyUser -Password MyPassword",
				"Get-ComputerInfo -ComputerName MyServer",
			}},
		},
		Command: cmdlet.CommandFunc(GetComputerInfo),
	})
}
