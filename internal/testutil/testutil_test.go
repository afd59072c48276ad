package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestWriteExecutable(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := filepath.Join("/opt", "1cv8", "8.3.20", "ras")

	WriteExecutable(t, fs, path, "#!/bin/sh\n")

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat() = %v", err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("mode = %v, want executable", info.Mode())
	}
}

func TestMkdirAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	MkdirAll(t, fs, "/root", "8.3.20", "common")

	for _, d := range []string{"8.3.20", "common"} {
		if ok, _ := afero.DirExists(fs, filepath.Join("/root", d)); !ok {
			t.Errorf("%s not created", d)
		}
	}
}

func TestWriteConfig(t *testing.T) {
	path := WriteConfig(t, "sessions:\n  terminate_all: true\n")

	data, err := afero.ReadFile(afero.NewOsFs(), path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if string(data) != "sessions:\n  terminate_all: true\n" {
		t.Errorf("content = %q", data)
	}
}
