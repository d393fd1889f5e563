// Package gs drives the Ghostscript binary to rewrite PDF files with a
// fixed optimization profile. Fonts are subset and compressed, images
// are downsampled to 300dpi with bicubic filtering, duplicate images
// are deduplicated, and colors are converted to RGB.
package gs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/squeeze/pkg/squeeze/logging"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// ErrToolNotFound is returned when no Ghostscript binary is available.
// It is fatal: without the tool no file can be processed.
var ErrToolNotFound = errors.New("ghostscript not found")

// candidates are the Ghostscript binary names probed in order.
// gswin64c/gswin32c are the Windows console binaries.
var candidates = []string{"gs", "gswin64c", "gswin32c"}

// profileArgs is the fixed pdfwrite optimization profile. The output
// and input paths are appended per invocation.
var profileArgs = []string{
	"-sDEVICE=pdfwrite",
	"-dCompatibilityLevel=1.5",
	"-dNOPAUSE",
	"-dQUIET",
	"-dBATCH",
	"-dPrinted=false",
	"-dSubsetFonts=true",
	"-dCompressFonts=true",
	"-dEmbedAllFonts=true",
	"-dDetectDuplicateImages=true",
	"-dColorImageDownsampleType=/Bicubic",
	"-dColorImageResolution=300",
	"-dGrayImageDownsampleType=/Bicubic",
	"-dGrayImageResolution=300",
	"-dMonoImageDownsampleType=/Bicubic",
	"-dMonoImageResolution=300",
	"-dDownsampleColorImages=true",
	"-sProcessColorModel=DeviceRGB",
	"-sColorConversionStrategy=RGB",
	"-sColorConversionStrategyForImages=RGB",
	"-dConvertCMYKImagesToRGB=true",
}

// DefaultTimeout bounds a single Ghostscript invocation.
const DefaultTimeout = 120 * time.Second

// Find locates the Ghostscript binary on PATH. The explicit binary, if
// given, is used without probing the standard candidates.
func Find(binary string) (string, error) {
	if binary != "" {
		path, err := exec.LookPath(binary)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrToolNotFound, binary)
		}
		return path, nil
	}

	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrToolNotFound, strings.Join(candidates, ", "))
}

// Config configures the optimization tool.
type Config struct {
	// Binary is the resolved Ghostscript path (from Find).
	Binary string

	// Timeout bounds each invocation. Zero uses DefaultTimeout.
	Timeout time.Duration

	// DryRun reports the optimized size without replacing the source.
	DryRun bool
}

// Tool invokes Ghostscript to optimize individual PDF files.
type Tool struct {
	cfg    Config
	logger *logging.Logger
}

// New creates a Tool with the given configuration.
func New(cfg Config) *Tool {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Tool{
		cfg:    cfg,
		logger: logging.Get("gs"),
	}
}

// Optimize rewrites target in place if the optimized output is smaller.
// The output is written to a dot-prefixed temporary file alongside the
// source and only renamed over it on success, so the original survives
// any failure. A larger or equal output keeps the original untouched.
func (t *Tool) Optimize(ctx context.Context, target types.Target) types.Result {
	start := time.Now()
	res := types.Result{
		Path:         target.Path,
		OriginalSize: target.Size,
	}

	dir := filepath.Dir(target.Path)
	tmp := filepath.Join(dir, fmt.Sprintf(".squeeze-%s.pdf", uuid.NewString()))
	defer os.Remove(tmp)

	runCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	args := make([]string, 0, len(profileArgs)+2)
	args = append(args, profileArgs...)
	args = append(args, "-sOutputFile="+tmp, target.Path)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, t.cfg.Binary, args...)
	cmd.Stderr = &stderr

	t.logger.Debug("invoking ghostscript", "path", target.Path, "tmp", tmp)

	if err := cmd.Run(); err != nil {
		res.Status = types.StatusFailed
		res.Duration = time.Since(start)

		switch {
		case runCtx.Err() == context.DeadlineExceeded:
			res.Error = fmt.Sprintf("timed out after %s", t.cfg.Timeout)
		case ctx.Err() != nil:
			res.Error = "canceled"
		default:
			res.Error = runError(err, stderr.Bytes())
		}

		t.logger.Warn("ghostscript failed", "path", target.Path, "error", res.Error)
		return res
	}

	info, err := os.Stat(tmp)
	if err != nil {
		res.Status = types.StatusFailed
		res.Error = fmt.Sprintf("no output produced: %v", err)
		res.Duration = time.Since(start)
		return res
	}
	res.OptimizedSize = info.Size()

	if res.OptimizedSize >= target.Size {
		// Already optimal. Keep the original and report its size.
		res.Status = types.StatusNoGain
		res.OptimizedSize = target.Size
		res.Duration = time.Since(start)
		t.logger.Debug("no gain", "path", target.Path)
		return res
	}

	if t.cfg.DryRun {
		res.Status = types.StatusOptimized
		res.Duration = time.Since(start)
		return res
	}

	if err := os.Rename(tmp, target.Path); err != nil {
		res.Status = types.StatusFailed
		res.Error = fmt.Sprintf("replacing original: %v", err)
		res.OptimizedSize = 0
		res.Duration = time.Since(start)
		return res
	}

	res.Status = types.StatusOptimized
	res.Duration = time.Since(start)
	t.logger.Info("optimized",
		"path", target.Path,
		"before", target.Size,
		"after", res.OptimizedSize,
	)
	return res
}

// runError formats a subprocess failure, including the tail of stderr
// when Ghostscript produced diagnostics.
func runError(err error, stderr []byte) string {
	msg := err.Error()
	if tail := stderrTail(stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// stderrTail returns the last non-empty line of stderr output.
func stderrTail(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
