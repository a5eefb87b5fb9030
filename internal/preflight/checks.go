package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ssequote/internal/revai"
	"ssequote/internal/storage"
)

const checkTimeout = 15 * time.Second

// CheckBinary verifies that command resolves on PATH.
func CheckBinary(name, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

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

// CheckBucket probes bucket. A missing bucket passes because the pipeline
// creates it on first use.
func CheckBucket(ctx context.Context, store storage.Store, name, bucket string) Result {
	if store == nil {
		return Result{Name: name, Detail: "storage backend unavailable"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	err := store.HeadBucket(checkCtx, bucket)
	switch {
	case err == nil:
		return Result{Name: name, Passed: true, Detail: bucket}
	case errors.Is(err, storage.ErrNotFound):
		return Result{Name: name, Passed: true, Detail: bucket + " (will be created)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (%v)", bucket, err)}
	}
}

// CheckSpeechAPI verifies the Rev.ai key by reading the account.
func CheckSpeechAPI(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Speech API"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "API key missing (set REV_API_KEY or speech.api_key)"}
	}
	client, err := revai.New(revai.Config{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: checkTimeout},
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	account, err := client.Account(checkCtx)
	if err != nil {
		var apiErr *revai.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	detail := "Reachable"
	if account.Email != "" {
		detail = fmt.Sprintf("%s, %s balance", account.Email, time.Duration(account.BalanceSeconds)*time.Second)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
