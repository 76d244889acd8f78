// Package webui builds scheduler web UI links and opens them in a browser.
package webui

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"

	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/pkg/browser"
)

// JobURL returns the scheduler page of a job:
// <scheduler_url>/scheduler/<role>/<env>/<name>.
func JobURL(schedulerURL string, key scheduler.JobKey) (string, error) {
	if schedulerURL == "" {
		return "", fmt.Errorf("cluster %s has no scheduler_url configured", key.Cluster)
	}
	base, err := url.Parse(schedulerURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid scheduler_url %q for cluster %s", schedulerURL, key.Cluster)
	}
	return base.JoinPath("scheduler", key.Role, key.Environment, key.Name).String(), nil
}

// Launcher hands a URL to the desktop's URL handler.
type Launcher func(url string) error

// Browser opens URLs in the user's default browser.
type Browser struct {
	launch Launcher
}

// NewBrowser returns a browser backed by the platform URL handler
// (xdg-open, open or url.dll).
func NewBrowser() *Browser {
	browser.Stdout = io.Discard
	return &Browser{launch: browser.OpenURL}
}

// NewBrowserWith returns a browser that opens URLs with launch.
func NewBrowserWith(launch Launcher) *Browser {
	return &Browser{launch: launch}
}

// Open opens url in a new browser tab.
func (b *Browser) Open(url string) error {
	if err := b.launch(url); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return fmt.Errorf("%s not found in PATH\nOpen %s manually", execErr.Name, url)
		}
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
