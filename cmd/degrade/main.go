package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"degrader/pkg/codec"
	"degrader/pkg/degrade"
	"degrader/pkg/frame"
	"degrader/pkg/media"
	"degrader/pkg/pipeline"
	"degrader/pkg/runner"
)

var inputs = flag.StringSliceP("input", "i", nil, "source paths or urls")
var mediaType = flag.StringP("type", "t", "", "media type (image, video), detected when empty")
var effect = flag.StringP("effect", "e", "", "single effect or stage name")
var params = flag.StringP("params", "p", "", "effect params as yaml or json mapping")
var configs = flag.StringSliceP("config", "c", nil, "pipeline definition files, one request set each")
var output = flag.StringP("output", "o", "processed", "output directory")
var tmpDir = flag.String("tmp", "", "scratch directory for codec files")
var seed = flag.Int64("seed", 0, "random seed, 0 picks one per run")
var ffmpegBin = flag.String("ffmpeg", "ffmpeg", "ffmpeg binary")
var ffprobeBin = flag.String("ffprobe", "ffprobe", "ffprobe binary")
var timeout = flag.Duration("timeout", codec.DefaultTimeout, "timeout of a single codec call")
var concurrency = flag.IntP("concurrency", "j", 1, "requests processed at once")
var format = flag.String("format", "json", "report format (json, yaml)")
var debug = flag.Bool("debug", false, "set debug")
var list = flag.Bool("list", false, "list effects and stages")

func main() {
	flag.Parse()

	if *list {
		listEffects(os.Stdout)
		return
	}

	reqs, err := requests(append(*inputs, flag.Args()...))
	if err != nil {
		log.Fatal(err)
	}

	var failed bool

	app := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		fx.Provide(
			newLogger,
			newCodec,
			newAdapter,
			newRunner,
		),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, r *runner.Runner, logger *zap.Logger) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						defer close(done)
						rep, err := r.Batch(ctx, reqs)
						if err != nil {
							logger.With(zap.Error(err)).Info("batch interrupted")
						}
						if rep != nil {
							failed = rep.Summary.Failed > 0
							if err := writeReport(os.Stdout, rep); err != nil {
								logger.With(zap.Error(err)).Info("write report failed")
							}
						}
						_ = sd.Shutdown()
					}()
					return nil
				},
				OnStop: func(stop context.Context) error {
					cancel()
					select {
					case <-done:
					case <-stop.Done():
					}
					return nil
				},
			})
		}),
	)

	app.Run()

	if failed {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if *debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newCodec(logger *zap.Logger) (*codec.FFmpeg, *codec.TmpFs, error) {
	tmp, err := codec.NewTmpFs(*tmpDir)
	if err != nil {
		return nil, nil, err
	}
	return codec.NewFFmpeg(tmp,
		codec.WithBinary(*ffmpegBin),
		codec.WithProbe(*ffprobeBin),
		codec.WithTimeout(*timeout),
		codec.WithLogger(logger),
	), tmp, nil
}

func newAdapter(ff *codec.FFmpeg, tmp *codec.TmpFs, logger *zap.Logger) (*media.Adapter, error) {
	return media.NewAdapter(media.Config{OutputDir: *output}, ff,
		media.WithTmpFs(tmp),
		media.WithLogger(logger),
	)
}

func newRunner(a *media.Adapter, ff *codec.FFmpeg, logger *zap.Logger) *runner.Runner {
	opts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithProgress(os.Stderr),
		runner.WithConcurrency(*concurrency),
		runner.WithPipelineOptions(pipeline.WithCodec(ff)),
	}
	opts = append(opts, runner.WithSeed(lo.Ternary(*seed != 0, *seed, time.Now().UnixNano())))
	return runner.New(a, opts...)
}

func requests(sources []string) ([]runner.Request, error) {
	if len(sources) == 0 {
		return nil, errors.New("no input given")
	}

	mt := frame.MediaUnknown
	if *mediaType != "" {
		var err error
		if mt, err = frame.ParseMediaType(*mediaType); err != nil {
			return nil, err
		}
	}

	var sets [][]pipeline.Config

	if *effect != "" {
		p := degrade.Params{}
		if *params != "" {
			if err := yaml.Unmarshal([]byte(*params), &p); err != nil {
				return nil, errors.Wrap(err, "parse params")
			}
		}
		sets = append(sets, []pipeline.Config{pipeline.NewConfig(*effect, p)})
	}

	fs := afero.NewOsFs()
	for _, path := range *configs {
		bs, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, err
		}
		set, err := pipeline.ParseConfigs(bs)
		if err != nil {
			return nil, errors.Wrapf(err, "config %s", path)
		}
		sets = append(sets, set)
	}

	if len(sets) == 0 {
		return nil, errors.New("either --effect or --config is required")
	}

	reqs := runner.Expand(sources, sets)
	for i := range reqs {
		reqs[i].MediaType = mt
	}
	return reqs, nil
}

func listEffects(w io.Writer) {
	names := degrade.Builtin.Names()
	sort.Strings(names)
	_, _ = fmt.Fprintf(w, "effects: %s\n", strings.Join(names, ", "))
	_, _ = fmt.Fprintf(w, "stages:  %s\n", strings.Join(degrade.StageNames, ", "))
	_, _ = fmt.Fprintf(w, "special: %s\n", strings.Join(degrade.SpecialEffects, ", "))
}

func writeReport(w io.Writer, rep *runner.Report) error {
	switch *format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() {
			_ = enc.Close()
		}()
		return enc.Encode(rep)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
}
