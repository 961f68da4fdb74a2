package driver

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cdnMirrors are probed in parallel; the first mirror that answers the HEAD
// probe serves the download.
var cdnMirrors = []string{
	"https://playwright.azureedge.net",
	"https://playwright-akamai.azureedge.net",
	"https://playwright-verizon.azureedge.net",
}

const downloadTimeout = 5 * time.Minute

// InstallOptions controls Install.
type InstallOptions struct {
	// Browsers to fetch after the bundle is in place; empty installs the
	// driver only when SkipBrowsers is set, otherwise the driver default.
	Browsers     []string
	SkipBrowsers bool
	WithDeps     bool
}

// Install downloads the driver bundle for this platform if missing, extracts
// it and optionally asks the driver to install browsers.
func Install(ctx context.Context, cfg *Config, opts InstallOptions, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.IsInstalled() {
		if err := installBundle(ctx, cfg, logger); err != nil {
			return err
		}
	} else {
		logger.Debug("driver bundle already installed")
	}
	if opts.SkipBrowsers {
		return nil
	}
	args := []string{"install"}
	if opts.WithDeps {
		args = append(args, "--with-deps")
	}
	args = append(args, opts.Browsers...)
	logger.Info("installing browsers", zap.Strings("args", args))
	return cfg.RunCommand(args...)
}

func installBundle(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	dir, err := cfg.Directory()
	if err != nil {
		return err
	}
	platform, err := bundlePlatform()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("playwright-%s-%s.zip", cfg.EffectiveVersion(), platform)

	mirror, err := pickMirror(ctx, name)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/builds/driver/%s", mirror, name)
	logger.Info("downloading driver bundle", zap.String("url", url))

	archive, sum, err := download(ctx, url)
	if err != nil {
		return err
	}
	defer os.Remove(archive)
	logger.Debug("bundle downloaded", zap.String("sha256", sum))

	if err := extractZip(archive, dir); err != nil {
		return fmt.Errorf("driver: extract bundle: %w", err)
	}
	exe, err := cfg.Executable()
	if err != nil {
		return err
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(exe, 0o755); err != nil {
			return fmt.Errorf("driver: mark entrypoint executable: %w", err)
		}
		// The entrypoint shells out to the bundled node.
		if err := os.Chmod(filepath.Join(dir, "node"), 0o755); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	logger.Info("driver bundle installed", zap.String("dir", dir))
	return nil
}

// pickMirror HEAD-probes all mirrors concurrently and returns the first one
// that has the bundle.
func pickMirror(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	found := make(chan string, len(cdnMirrors))
	g, ctx := errgroup.WithContext(ctx)
	for _, mirror := range cdnMirrors {
		mirror := mirror
		g.Go(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodHead,
				fmt.Sprintf("%s/builds/driver/%s", mirror, name), nil)
			if err != nil {
				return nil
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return nil
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				select {
				case found <- mirror:
				default:
				}
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()
	select {
	case mirror := <-found:
		return mirror, nil
	default:
		return "", fmt.Errorf("driver: no mirror has bundle %s", name)
	}
}

func download(ctx context.Context, url string) (path string, sha string, err error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("driver: download bundle: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("driver: download bundle: unexpected status %s", resp.Status)
	}

	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("pagedriver-%s.zip", uuid.NewString()))
	f, err := os.Create(tmp)
	if err != nil {
		return "", "", err
	}
	hash := sha256.New()
	_, err = io.Copy(io.MultiWriter(f, hash), resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", "", fmt.Errorf("driver: write bundle: %w", err)
	}
	return tmp, hex.EncodeToString(hash.Sum(nil)), nil
}

func extractZip(archive, dir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, file := range r.File {
		target, err := sanitizePath(dir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return err
}

// sanitizePath rejects zip entries that would escape the target directory.
func sanitizePath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("driver: illegal archive path %q", name)
	}
	return target, nil
}

func bundlePlatform() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "linux-arm64", nil
		}
		return "linux", nil
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "mac-arm64", nil
		}
		return "mac", nil
	case "windows":
		return "win32_x64", nil
	default:
		return "", fmt.Errorf("driver: unsupported platform %s/%s", runtime.GOOS, runtime.GOARCH)
	}
}
