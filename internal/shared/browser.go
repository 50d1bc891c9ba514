package shared

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch rt := getRuntime(); rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

// WriteBrowserFile stores YouTube Music request headers as the browser.json file ytmusicapi reads.
func WriteBrowserFile(path string, headers map[string]string) error {
	data, err := MarshalJSON(headers, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadBrowserFile loads a browser.json file written by [WriteBrowserFile] or ytmusicapi.
func ReadBrowserFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	var headers map[string]string
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, fmt.Errorf("%w: %s is not a header map: %v", ErrInvalidInput, path, err)
	}
	if headers["cookie"] == "" {
		return nil, fmt.Errorf("%w: %s has no cookie", ErrMissingCredentials, path)
	}
	return headers, nil
}
