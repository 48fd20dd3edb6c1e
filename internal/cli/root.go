// Package cli implements the card-codec command line.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/config"
	"card-codec/internal/format"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
	"github.com/spf13/cobra"
)

// App holds the state shared by the commands of one invocation.
type App struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string

	cfg   *config.Config
	log   logging.Logger
	index *scribe.Index
}

// Execute runs the command line against the process streams.
func Execute() error {
	return NewRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	app := &App{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "card-codec",
		Short: "Convert, validate and serve vCard data",
		Long: `card-codec reads and writes vCard 2.1, 3.0 and 4.0 text, xCard, jCard
and hCard. It converts between them, validates records against a vCard
version and keeps an address book that can be served over HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		app.newConvertCommand(),
		app.newValidateCommand(),
		app.newImportCommand(),
		app.newExportCommand(),
		app.newListCommand(),
		app.newServeCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewZapLogger(logging.LogConfig{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Output: a.errOut,
	})
	if err != nil {
		return errors.ConfigError("creating logger").WithContext("cause", err.Error())
	}
	logging.SetGlobalLogger(logger)

	a.cfg = cfg
	a.log = logger
	a.index = scribe.NewDefaultIndex()
	return nil
}

// options returns the format options for the configured settings, writing
// vCard text in version v.
func (a *App) options(v vcard.Version) format.Options {
	return format.Options{
		Index:            a.index,
		Logger:           a.log,
		Version:          v,
		FoldLength:       a.cfg.Card.FoldLength,
		CaretEncoding:    a.cfg.Card.CaretEncoding,
		ProductID:        a.cfg.Card.ProductID,
		IncludeProductID: a.cfg.Card.IncludeProductID,
		MaxDepth:         a.cfg.Card.MaxDepth,
		BaseURL:          a.cfg.Card.BaseURL,
	}
}

// targetVersion resolves a --target-version flag, falling back to the
// configured version.
func (a *App) targetVersion(flag string) (vcard.Version, error) {
	if flag == "" {
		return a.cfg.Card.TargetVersion(), nil
	}
	v, ok := vcard.ParseVersion(flag)
	if !ok {
		return vcard.VersionUnknown, errors.ValidationError("unknown vCard version \"" + flag + "\"")
	}
	return v, nil
}

// input is one decoded source.
type input struct {
	name     string
	format   format.Format
	records  []*vcard.Record
	warnings vcard.Warnings
}

// readInputs decodes every path, or standard input when paths is empty or
// "-". from forces the format; otherwise it is taken from the file extension
// or sniffed from the content.
func (a *App) readInputs(ctx context.Context, paths []string, from string) ([]input, error) {
	var forced format.Format
	if from != "" {
		f, err := format.Parse(from)
		if err != nil {
			return nil, err
		}
		forced = f
	}
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	inputs := make([]input, 0, len(paths))
	for _, path := range paths {
		data, name, err := a.readSource(path)
		if err != nil {
			return inputs, err
		}

		f := forced
		if f == "" {
			var ok bool
			if f, ok = format.ForPath(path); !ok {
				f = format.Sniff(data)
			}
		}

		log := a.log.WithContext(logging.ContextWithFormat(logging.ContextWithSource(ctx, name), string(f)))
		opts := a.options(a.cfg.Card.TargetVersion())
		opts.Logger = log
		records, warnings, err := format.Decode(f, bytes.NewReader(data), opts)
		if err != nil {
			return inputs, fmt.Errorf("%s: %w", name, err)
		}
		log.Debug("input read",
			logging.Int("records", len(records)),
			logging.Int("warnings", len(warnings)))
		inputs = append(inputs, input{name: name, format: f, records: records, warnings: warnings})
	}
	return inputs, nil
}

func (a *App) readSource(path string) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return nil, "", errors.IOError("reading standard input", err)
		}
		return data, "<stdin>", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.IOError("reading "+path, err)
	}
	return data, filepath.Base(path), nil
}

// reportWarnings logs the warnings of one source.
func (a *App) reportWarnings(source string, warnings vcard.Warnings) {
	for _, w := range warnings {
		a.log.Warn(w.String(), logging.String("source", source), logging.Int("code", w.Code))
	}
}

// openOutput returns the file at path, or standard output when path is empty
// or "-". The returned close function must be called.
func (a *App) openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.IOError("creating "+path, err)
	}
	return f, f.Close, nil
}

func allRecords(inputs []input) []*vcard.Record {
	var records []*vcard.Record
	for _, in := range inputs {
		records = append(records, in.records...)
	}
	return records
}
