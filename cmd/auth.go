package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/s2yt/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin uploads a browser.json header file to the proxy's /auth/upload endpoint.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	filePath := cmd.StringArg("path")
	if filePath == "" {
		filePath = r.config.Credentials.YouTube.HeadersPath
	}
	if filePath == "" {
		return fmt.Errorf("%w: path to browser.json", shared.ErrMissingArgument)
	}

	if _, err := shared.ReadBrowserFile(filePath); err != nil {
		return err
	}
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if r.api == nil {
		return fmt.Errorf("%w: proxy client not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Infof("uploading auth headers from %v", filePath)

	resp, err := r.api.UploadJSON(ctx, "/auth/upload", fileData)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAuthFailed, resp.StatusCode, string(resp.Body))
	}

	r.logger.Info("authentication successful")
	return r.writePlain("✓ Authentication successful\n")
}

// AuthStatus checks current authentication state by calling the /health endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: proxy client not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("checking auth status")

	resp, err := r.api.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("%w: service unavailable: %v", shared.ErrServiceUnavailable, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	if !resp.IsJSON {
		return r.writePlain("✓ Service is healthy\nStatus: %s\n", string(resp.Body))
	}

	healthData, ok := resp.JSONData.(map[string]any)
	if !ok {
		return r.writePlain("✓ Service is healthy\n")
	}

	status, ok := healthData["status"].(string)
	if !ok {
		status = "unknown"
	}
	authenticated, _ := healthData["authenticated"].(bool)

	r.writePlain("✓ Service is healthy\n")
	r.writePlain("Status: %s\n", status)
	if authenticated {
		r.writePlain("Authentication: ✓ Authenticated\n")
	} else {
		r.writePlain("Authentication: ✗ Not authenticated\n")
	}
	if path := r.config.Credentials.YouTube.HeadersPath; path != "" {
		if _, err := shared.ReadBrowserFile(path); err != nil {
			r.writePlain("Local headers: ✗ %v\n", err)
		} else {
			r.writePlain("Local headers: ✓ %s\n", path)
		}
	}
	return nil
}
