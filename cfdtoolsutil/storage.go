/*
Copyright © 2026 the cfdtools authors.
This file is part of cfdtools.

cfdtools is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cfdtools is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cfdtools.  If not, see <http://www.gnu.org/licenses/>.
*/

package cfdtoolsutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/YangYunjia/cfdtools/internal/hash"
	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
	"gocloud.dev/gcerrors"
)

// IsBlob returns whether the given filename represents a blob
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	for _, p := range []string{"gs://", "s3://", "file://"} {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// OpenBucket returns the blob storage bucket holding the blob at path,
// and the key of the blob within the bucket. path must be in the format
// 'provider://bucket/key'. For the "file" provider the bucket is the
// directory holding the file and the key is the file name.
// The accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, path string) (*blob.Bucket, string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, "", fmt.Errorf("cfdtoolsutil.OpenBucket: %v", err)
	}
	var bucketURL, key string
	switch u.Scheme {
	case "file":
		bucketURL = "file://" + filepath.ToSlash(filepath.Dir(u.Path))
		key = filepath.Base(u.Path)
	case "gs", "s3":
		bucketURL = u.Scheme + "://" + u.Host
		key = strings.TrimPrefix(u.Path, "/")
	default:
		return nil, "", fmt.Errorf("cfdtoolsutil.OpenBucket: invalid provider %s", u.Scheme)
	}
	if key == "" || key == "." {
		return nil, "", fmt.Errorf("cfdtoolsutil.OpenBucket: no file name in %s", path)
	}
	b, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, "", fmt.Errorf("cfdtoolsutil.OpenBucket: %v", err)
	}
	return b, key, nil
}

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob.
// If it is, it downloads the file to a temporary directory and
// returns the path to the downloaded file. The returned cleanup
// function removes the download and must be called once the file
// has been read; it does nothing for local files.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (local string, cleanup func(), err error) {
	nop := func() {}
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nop, nil
	}
	var get func(w io.Writer) error
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		get = func(w io.Writer) error { return downloadHTTP(ctx, path, w) }
	case IsBlob(path):
		get = func(w io.Writer) error { return downloadBlob(ctx, path, w) }
	default:
		return path, nop, nil
	}

	dir, err := os.MkdirTemp("", "cfdtools")
	if err != nil {
		return "", nop, fmt.Errorf("cfdtoolsutil: failed creating temporary download directory: %v", err)
	}
	cleanup = func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).Warn("cfdtoolsutil: removing temporary download directory")
		}
	}
	// The hash keeps downloads of different blobs with the same base
	// name apart.
	local = filepath.Join(dir, hash.Hash(path)[:8]+"_"+filepath.Base(path))
	w, err := os.Create(local)
	if err != nil {
		cleanup()
		return "", nop, fmt.Errorf("cfdtoolsutil: failed creating file for download: %v", err)
	}
	defer w.Close()

	err = retry(ctx, log, func() error {
		if _, err := w.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(err)
		}
		if err := w.Truncate(0); err != nil {
			return backoff.Permanent(err)
		}
		return get(w)
	})
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		cleanup()
		return "", nop, fmt.Errorf("cfdtoolsutil: downloading %s: %v", path, err)
	}
	log.WithFields(logrus.Fields{"from": path, "to": local}).Debug("cfdtoolsutil: downloaded input file")
	return local, cleanup, nil
}

// downloadHTTP downloads a file from the specified URL.
func downloadHTTP(ctx context.Context, path string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%s: %s", path, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, w io.Writer) error {
	bucket, key, err := OpenBucket(ctx, path)
	if err != nil {
		return backoff.Permanent(err)
	}
	defer bucket.Close()
	r, err := bucket.NewReader(ctx, key, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return backoff.Permanent(err)
	} else if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}

// retry runs op with exponential backoff until it succeeds, returns a
// permanent error, or the retries are exhausted.
func retry(ctx context.Context, log logrus.FieldLogger, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxRetryTime
	return backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx),
		func(err error, d time.Duration) {
			log.Warnf("%v: retrying in %v", err, d)
		},
	)
}

// Retry limits for blob transfers.
var (
	maxRetries   uint64 = 5
	maxRetryTime        = 2 * time.Minute
)

// uploader keeps track of output files that need to be copied to
// blob storage once they have been written locally.
type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// uploadOutput method is run.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = os.MkdirTemp("", "cfdtools")
		if u.err != nil {
			return ""
		}
	}
	local := filepath.Join(u.dir, fmt.Sprintf("%d_%s", len(u.files), filepath.Base(path)))
	u.files = append(u.files, [2]string{local, path})
	return local
}

// uploadOutput copies the files registered with maybeUpload to blob
// storage and removes the temporary directory.
func (u *uploader) uploadOutput(ctx context.Context, log logrus.FieldLogger) error {
	if u.err != nil {
		return u.err
	}
	if u.dir != "" {
		defer os.RemoveAll(u.dir)
	}
	for _, files := range u.files {
		err := retry(ctx, log, func() error { return uploadFile(ctx, files[0], files[1]) })
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"from": files[0], "to": files[1]}).Debug("cfdtoolsutil: uploaded output file")
	}
	return nil
}

func uploadFile(ctx context.Context, local, path string) error {
	r, err := os.Open(local)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("cfdtoolsutil: opening file '%s' for upload: %s", local, err))
	}
	defer r.Close()
	bucket, key, err := OpenBucket(ctx, path)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("cfdtoolsutil: opening bucket to upload file '%s': %s", path, err))
	}
	defer bucket.Close()
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cfdtoolsutil: opening writer to upload file '%s': %s", path, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("cfdtoolsutil: uploading file '%s' to '%s': %s", local, path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cfdtoolsutil: uploading file '%s' to '%s': %s", local, path, err)
	}
	return nil
}
