package cfdtoolsutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestIsBlob(t *testing.T) {
	for path, want := range map[string]bool{
		"gs://bucket/a.dat":    true,
		"s3://bucket/a.dat":    true,
		"file:///tmp/a.dat":    true,
		"/tmp/a.dat":           false,
		"https://host/a.dat":   false,
		"data/gs://bucket.dat": false,
	} {
		if have := IsBlob(path); have != want {
			t.Errorf("%s: have %v, want %v", path, have, want)
		}
	}
}

func TestOpenBucket(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	b, key, err := OpenBucket(ctx, "file://"+filepath.ToSlash(filepath.Join(dir, "flow.dat")))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if key != "flow.dat" {
		t.Errorf("key: have %q, want %q", key, "flow.dat")
	}
	if _, _, err := OpenBucket(ctx, "ftp://host/flow.dat"); err == nil {
		t.Error("invalid provider: want an error")
	}
	if _, _, err := OpenBucket(ctx, "gs://bucket"); err == nil {
		t.Error("missing key: want an error")
	}
}

func TestMaybeDownload(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	dir := t.TempDir()
	local := filepath.Join(dir, "flow.dat")
	if err := os.WriteFile(local, []byte(lineFile), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("local", func(t *testing.T) {
		have, cleanup, err := maybeDownload(ctx, local, log)
		if err != nil {
			t.Fatal(err)
		}
		if have != local {
			t.Errorf("have %s, want %s", have, local)
		}
		cleanup()
		checkFile(t, local, lineFile)
	})
	t.Run("blob", func(t *testing.T) {
		have, cleanup, err := maybeDownload(ctx, "file://"+filepath.ToSlash(local), log)
		if err != nil {
			t.Fatal(err)
		}
		if have == local {
			t.Fatal("blob was not downloaded")
		}
		checkFile(t, have, lineFile)
		cleanup()
		if _, err := os.Stat(filepath.Dir(have)); !os.IsNotExist(err) {
			t.Errorf("download directory %s still exists after cleanup: %v", filepath.Dir(have), err)
		}
	})
	t.Run("http", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/flow.dat" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, lineFile)
		}))
		defer ts.Close()
		have, cleanup, err := maybeDownload(ctx, ts.URL+"/flow.dat", log)
		if err != nil {
			t.Fatal(err)
		}
		defer cleanup()
		checkFile(t, have, lineFile)

		_, _, err = maybeDownload(ctx, ts.URL+"/missing.dat", log)
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Errorf("have %v, want a 404 error", err)
		}
	})
	t.Run("missing blob", func(t *testing.T) {
		defer func(n uint64) { maxRetries = n }(maxRetries)
		maxRetries = 0
		if _, _, err := maybeDownload(ctx, "file://"+filepath.ToSlash(filepath.Join(dir, "missing.dat")), log); err == nil {
			t.Error("want an error")
		}
	})
}

func TestUploader(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	dir := t.TempDir()

	var u uploader
	local := filepath.Join(dir, "local.dat")
	if have := u.maybeUpload(local); have != local {
		t.Errorf("local path: have %s, want %s", have, local)
	}
	remote := "file://" + filepath.ToSlash(filepath.Join(dir, "remote.dat"))
	tmp := u.maybeUpload(remote)
	if tmp == remote || tmp == "" {
		t.Fatalf("blob path was not replaced: %q", tmp)
	}
	if err := os.WriteFile(tmp, []byte("uploaded"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := u.uploadOutput(ctx, log); err != nil {
		t.Fatal(err)
	}
	checkFile(t, filepath.Join(dir, "remote.dat"), "uploaded")
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("temporary file was not removed: %v", err)
	}
}

func checkFile(t *testing.T, path, want string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != want {
		t.Errorf("%s: have %q, want %q", path, b, want)
	}
}
