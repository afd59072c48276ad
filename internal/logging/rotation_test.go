package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		dir := t.TempDir()
		logPath := filepath.Join(dir, "nested", "dir", FileName)

		rw, err := NewRotatingWriter(logPath, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer func() { _ = rw.Close() }()

		if _, err := os.Stat(logPath); os.IsNotExist(err) {
			t.Errorf("log file was not created at %s", logPath)
		}
	})

	t.Run("appends to existing file", func(t *testing.T) {
		dir := t.TempDir()
		logPath := filepath.Join(dir, FileName)

		if err := os.WriteFile(logPath, []byte("initial\n"), 0644); err != nil {
			t.Fatalf("failed to write initial content: %v", err)
		}

		rw, err := NewRotatingWriter(logPath, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		if rw.currentSize != int64(len("initial\n")) {
			t.Errorf("currentSize = %d, want %d", rw.currentSize, len("initial\n"))
		}
		if _, err := rw.Write([]byte("appended\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		_ = rw.Close()

		content, _ := os.ReadFile(logPath)
		if string(content) != "initial\nappended\n" {
			t.Errorf("content = %q", string(content))
		}
	})
}

func TestRotatingWriterRotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, FileName)

	rw, err := NewRotatingWriter(logPath, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.maxSizeB = 10

	for _, chunk := range []string{"aaaaaaaa\n", "bbbbbbbb\n", "cccccccc\n", "dddddddd\n"} {
		if _, err := rw.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	_ = rw.Close()

	tests := []struct {
		path string
		want string
	}{
		{logPath, "dddddddd\n"},
		{logPath + ".1", "cccccccc\n"},
		{logPath + ".2", "bbbbbbbb\n"},
	}
	for _, tt := range tests {
		content, err := os.ReadFile(tt.path)
		if err != nil {
			t.Fatalf("failed to read %s: %v", tt.path, err)
		}
		if string(content) != tt.want {
			t.Errorf("%s = %q, want %q", filepath.Base(tt.path), string(content), tt.want)
		}
	}

	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Error("backup beyond MaxBackups was kept")
	}
}

func TestRotatingWriterNoBackups(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, FileName)

	rw, err := NewRotatingWriter(logPath, RotationConfig{MaxSizeMB: 1, MaxBackups: 0})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.maxSizeB = 10

	_, _ = rw.Write([]byte("first line\n"))
	_, _ = rw.Write([]byte("second\n"))
	_ = rw.Close()

	content, _ := os.ReadFile(logPath)
	if string(content) != "second\n" {
		t.Errorf("content = %q, want %q", string(content), "second\n")
	}
	if _, err := os.Stat(logPath + ".1"); !os.IsNotExist(err) {
		t.Error("backup created with MaxBackups = 0")
	}
}

func TestRotatingWriterCompression(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, FileName)

	rw, err := NewRotatingWriter(logPath, RotationConfig{MaxSizeMB: 1, MaxBackups: 3, Compress: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.maxSizeB = 10

	_, _ = rw.Write([]byte("compress me\n"))
	_, _ = rw.Write([]byte("next\n"))
	_ = rw.Close()

	f, err := os.Open(logPath + ".1.gz")
	if err != nil {
		t.Fatalf("compressed backup missing: %v", err)
	}
	defer func() { _ = f.Close() }()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader failed: %v", err)
	}
	data, _ := io.ReadAll(zr)
	if !strings.Contains(string(data), "compress me") {
		t.Errorf("decompressed backup = %q", string(data))
	}
	if _, err := os.Stat(logPath + ".1"); !os.IsNotExist(err) {
		t.Error("uncompressed backup left behind")
	}
}

func TestRotatingWriterClose(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewRotatingWriter(filepath.Join(dir, FileName), DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	if err := rw.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if _, err := rw.Write([]byte("x")); err == nil {
		t.Error("Write after Close succeeded")
	}
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSizeMB != 5 || cfg.MaxBackups != 5 || cfg.Compress {
		t.Errorf("DefaultRotationConfig() = %+v", cfg)
	}
}
