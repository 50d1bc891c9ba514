// Utilities for turning a "Copy as cURL" request from music.youtube.com into ytmusicapi browser headers.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

func quoted(m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// ParseCurlCommand extracts headers from a cURL command.
//
// Cookies given with -b/--cookie take precedence over a Cookie header.
func ParseCurlCommand(curlCmd string) (*CurlHeaders, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\r\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")

	headers := make(map[string]string)
	var cookie string

	for _, m := range curlHeaderRe.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(quoted(m), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if cookie == "" {
				cookie = value
			}
			continue
		}
		headers[key] = value
	}

	if m := curlCookieRe.FindStringSubmatch(curlCmd); m != nil {
		cookie = quoted(m)
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{Headers: headers, Cookie: cookie}, nil
}

// ToHeadersRaw converts parsed headers to the headers_raw format ytmusicapi's setup accepts.
//
// Format is newline-separated "Key: Value" pairs sorted by key, cookie last.
func (c *CurlHeaders) ToHeadersRaw() string {
	keys := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, c.Headers[k]))
	}
	if c.Cookie != "" {
		lines = append(lines, fmt.Sprintf("cookie: %s", c.Cookie))
	}

	return strings.Join(lines, "\n")
}

// BrowserHeaders returns the lower-cased header map stored in browser.json.
func (c *CurlHeaders) BrowserHeaders() map[string]string {
	out := make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		out[strings.ToLower(k)] = v
	}
	if c.Cookie != "" {
		out["cookie"] = c.Cookie
	}
	return out
}

// Authenticated reports whether the headers can authenticate against YouTube Music,
// which requires a cookie carrying __Secure-3PAPISID or SAPISID.
func (c *CurlHeaders) Authenticated() bool {
	return strings.Contains(c.Cookie, "SAPISID")
}
