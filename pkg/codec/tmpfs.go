package codec

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
)

func newFs(path string) (*afero.BasePathFs, error) {
	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, path); err != nil {
		return nil, err
	} else if !exists {
		return nil, errors.Errorf("dir %s not exists", path)
	}
	return afero.NewBasePathFs(fs, path).(*afero.BasePathFs), nil
}

// NewTmpFs roots scratch files for subprocesses under dir, the system temp
// dir when empty.
func NewTmpFs(dir string) (*TmpFs, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	fs, err := newFs(dir)
	if err != nil {
		return nil, fmt.Errorf("create tmpdir failed: %w", err)
	}

	return &TmpFs{fs: fs}, nil
}

type TmpFs struct {
	fs *afero.BasePathFs
}

// NewFile returns the real path of a fresh, not yet created file.
func (t *TmpFs) NewFile(ext string) string {
	p, _ := t.fs.RealPath(xid.New().String() + ext)
	return p
}

func (t *TmpFs) Remove(path string) {
	_ = os.Remove(path)
}
