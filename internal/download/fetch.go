// Package download moves scene payloads from provider endpoints to disk
// and onward into object storage. Fetch handles the transfer mechanics
// every hub shares: skip complete files, resume partial ones, verify
// checksums. Quicklook post-processing and archive packing live here too.
package download

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	chttp "github.com/eoforge/sathub/internal/connector/http"
)

// copyBufferSize is the chunk size for streaming downloads.
const copyBufferSize = 1 << 20

// incompleteSuffix marks partial downloads until they are verified.
const incompleteSuffix = ".incomplete"

// Options tunes a single fetch.
type Options struct {
	// SkipExisting skips the transfer when the destination file already
	// has the remote size.
	SkipExisting bool

	// Resume continues a previous partial download via a Range request.
	Resume bool

	// VerifyETag compares the file's MD5 against the response ETag when
	// the header carries a plain MD5.
	VerifyETag bool

	// ChecksumMD5 is an expected MD5 hex digest verified after the
	// transfer. Empty disables the check.
	ChecksumMD5 string
}

// Result reports what a fetch did.
type Result struct {
	Path    string
	Bytes   int64
	Skipped bool
	Resumed bool
}

// Fetch streams the response of req into destPath. Complete files are
// skipped, incomplete files are continued when the server honors Range
// requests.
func Fetch(ctx context.Context, client *chttp.Client, req *chttp.Request, destPath string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}

	incomplete := destPath + incompleteSuffix
	var resumeFrom int64
	if opts.Resume {
		if info, err := os.Stat(incomplete); err == nil {
			resumeFrom = info.Size()
		}
	}
	if resumeFrom > 0 {
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers["Range"] = fmt.Sprintf("bytes=%d-", resumeFrom)
	}

	resp, err := client.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	resumed := resp.StatusCode == 206
	if !resumed {
		// Full response. A stale Range fell through to a fresh transfer.
		resumeFrom = 0

		if opts.SkipExisting && resp.ContentLength > 0 {
			if info, statErr := os.Stat(destPath); statErr == nil && info.Size() == resp.ContentLength {
				log.Debug().Str("path", destPath).Msg("download already complete, skipping")
				return &Result{Path: destPath, Bytes: info.Size(), Skipped: true}, nil
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, fmt.Errorf("create target dir: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if resumed {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(incomplete, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", incomplete, err)
	}

	buf := make([]byte, copyBufferSize)
	written, err := io.CopyBuffer(f, resp.Body, buf)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", incomplete, err)
	}

	if err := os.Rename(incomplete, destPath); err != nil {
		return nil, fmt.Errorf("finalize %s: %w", destPath, err)
	}

	total := resumeFrom + written
	if err := verifyChecksum(destPath, resp.Header.Get("ETag"), opts); err != nil {
		os.Remove(destPath)
		return nil, err
	}

	return &Result{Path: destPath, Bytes: total, Resumed: resumed}, nil
}

// verifyChecksum checks the finished file against the expected MD5, from
// options or the ETag header.
func verifyChecksum(path, etag string, opts *Options) error {
	expected := opts.ChecksumMD5
	if expected == "" && opts.VerifyETag {
		etag = strings.Trim(etag, `"`)
		// Multipart uploads carry a composite etag, not an MD5.
		if etag != "" && !strings.Contains(etag, "-") {
			expected = etag
		}
	}
	if expected == "" {
		return nil
	}

	actual, err := ComputeMD5(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("download corrupted: md5 %s, expected %s", actual, expected)
	}
	return nil
}

// ComputeMD5 returns the hexadecimal MD5 hash of a file.
func ComputeMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FormatBytes renders a byte count the way provider catalogs do, for
// logs and size fields.
func FormatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return strconv.FormatFloat(float64(n)/(1<<30), 'f', 2, 64) + " GB"
	case n >= 1<<20:
		return strconv.FormatFloat(float64(n)/(1<<20), 'f', 2, 64) + " MB"
	case n >= 1<<10:
		return strconv.FormatFloat(float64(n)/(1<<10), 'f', 2, 64) + " KB"
	default:
		return strconv.FormatInt(n, 10) + " B"
	}
}
