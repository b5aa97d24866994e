package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/history"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/viewer"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckViewers verifies every configured viewer can produce a link.
func CheckViewers(entries []config.Viewer) Result {
	const name = "Viewers"

	if len(entries) == 0 {
		return Result{Name: name, Passed: true, Detail: "none configured"}
	}
	names := make([]string, 0, len(entries))
	for _, v := range viewer.FromConfig(entries) {
		if err := config.ValidateViewerURL(v.BaseURL); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s: %v", v.Name, err)}
		}
		if _, err := v.Link("probe"); err != nil {
			return Result{Name: name, Detail: err.Error()}
		}
		names = append(names, v.Name)
	}
	return Result{Name: name, Passed: true, Detail: strings.Join(names, ", ")}
}

// CheckViewerReachable issues a GET against the viewer's base URL. Any
// response below 500 counts as reachable.
func CheckViewerReachable(ctx context.Context, entry config.Viewer) Result {
	v := viewer.New(entry.Name, entry.Label, entry.BaseURL, entry.Param)
	name := "Viewer " + v.Label

	if strings.TrimSpace(v.BaseURL) == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, v.BaseURL, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("unhealthy (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d)", resp.StatusCode)}
}

// CheckHistory opens the history database and counts its entries.
func CheckHistory(ctx context.Context, cfg *config.Config) Result {
	const name = "History"

	if !cfg.History.Enabled {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}
	store, err := history.Open(cfg)
	if err != nil {
		if errors.Is(err, history.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.HistoryPath(), err)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: open: %v)", cfg.HistoryPath(), err)}
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.HistoryPath(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", cfg.HistoryPath(), count)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
