package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/juju/ratelimit"
	"github.com/spf13/afero"
)

const (
	// Downloads are capped at 2MB/s.
	webRequestRate = 2 * 1000 * 1000
	// Anything past this is dropped.
	webRequestMaxBytes = 16 * 1000 * 1000

	webRequestTimeout = 30 * time.Second
)

// webRequestSocketControl prevents basic SSRF attacks by only allowing
// certain kinds of connections.
func webRequestSocketControl(network string, address string, conn syscall.RawConn) error {
	switch network {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6":
		// Accept types used for HTTP1/2/3.
	default:
		return fmt.Errorf("unknown network type: %v", network)
	}

	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("bad network address: %v", address)
	}

	ipAddress := net.ParseIP(host)
	if ipAddress == nil {
		return fmt.Errorf("bad network address: %v", address)
	}

	if ipAddress.IsLoopback() || ipAddress.IsPrivate() || ipAddress.IsLinkLocalUnicast() {
		return fmt.Errorf("couldn't resolve: %s", address)
	}

	return nil
}

var webRequestDialer = &net.Dialer{
	Timeout: 5 * time.Second,
	Control: webRequestSocketControl,
}

var webRequestTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   5 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	DialContext:           webRequestDialer.DialContext,
}

// webRequestClient is swapped out by tests that need to reach a local
// server.
var webRequestClient = &http.Client{
	Transport: webRequestTransport,
}

// parseURI adds a scheme to bare host names the way browsers do.
func parseURI(rawURL string) (*url.URL, error) {
	// Do this first, otherwise url.Parse has issues paring URLs with ports.
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, cmdlet.DomainError("Invalid URI: The hostname could not be parsed.")
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return nil, cmdlet.DomainError("The URI prefix %q is not recognized.", parsed.Scheme)
	}
	return parsed, nil
}

// InvokeWebRequest fetches a URL and returns the response as a record, or
// saves the body to a file.
func InvokeWebRequest(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	target, err := parseURI(args.String("Uri"))
	if err != nil {
		return nil, err
	}
	if args.Has("OutFile") && ctx.FS == nil {
		return nil, errNoFilesystem
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), webRequestTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT; Windows NT 10.0; en-US) WindowsPowerShell/5.1")

	if ctx.Log != nil {
		ctx.Log.Debug("Fetching URL", "url", target.String())
	}
	response, err := webRequestClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	tokenBucket := ratelimit.NewBucketWithRate(webRequestRate, webRequestRate)
	body := io.LimitReader(ratelimit.Reader(response.Body, tokenBucket), webRequestMaxBytes)

	var content bytes.Buffer
	if _, err := io.Copy(&content, body); err != nil {
		return nil, err
	}

	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("The remote server returned an error: (%d) %s.", response.StatusCode, http.StatusText(response.StatusCode))
	}

	if args.Has("OutFile") {
		if err := afero.WriteFile(ctx.FS, args.String("OutFile"), content.Bytes(), 0644); err != nil {
			return nil, err
		}
		return cmdlet.Result{}, nil
	}

	out := cmdlet.NewRecord().
		Set("StatusCode", strconv.Itoa(response.StatusCode)).
		Set("StatusDescription", http.StatusText(response.StatusCode)).
		Set("ContentType", response.Header.Get("Content-Type")).
		Set("RawContentLength", strconv.Itoa(content.Len())).
		Set("Content", content.String())
	return cmdlet.Result{out}, nil
}

func init() {
	addCmdlet(&cmdlet.Descriptor{
		Name:    "Invoke-WebRequest",
		Aliases: []string{"iwr", "wget", "curl"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Uri", cmdlet.Positional(), cmdlet.Required(), cmdlet.Usage("URL to fetch.")),
			cmdlet.StringArg("OutFile", cmdlet.Usage("Save the response body to this file instead of returning it.")),
		},
		Synopsis: "Gets content from a web page on the internet.",
		Examples: []cmdlet.Example{
			{Description: "Fetch a page", Lines: []string{"Invoke-WebRequest http://example.com/"}},
			{Description: "Download a file", Lines: []string{"iwr http://example.com/tool.exe -OutFile tool.exe"}},
		},
		Command: cmdlet.CommandFunc(InvokeWebRequest),
	})
}
