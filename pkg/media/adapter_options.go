package media

import (
	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"degrader/pkg/codec"
)

type Option func(a *Adapter)

// WithInputFs reads local sources from fs instead of the OS filesystem.
func WithInputFs(fs afero.Fs) Option {
	return func(a *Adapter) {
		a.in = fs
	}
}

// WithOutputFs writes results into fs instead of the output dir.
func WithOutputFs(fs afero.Fs) Option {
	return func(a *Adapter) {
		a.out = fs
	}
}

func WithTmpFs(tmp *codec.TmpFs) Option {
	return func(a *Adapter) {
		a.tmp = tmp
	}
}

func WithHTTPClient(cli *resty.Client) Option {
	return func(a *Adapter) {
		a.cli = cli
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = l.With(zap.String("via", "media"))
	}
}
