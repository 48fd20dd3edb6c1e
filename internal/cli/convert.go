package cli

import (
	"context"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/common/validation"
	"card-codec/internal/format"
	"github.com/spf13/cobra"
)

type convertOptions struct {
	from          string
	to            string
	targetVersion string
	output        string
	document      bool
	title         string
	indent        bool
}

func (a *App) newConvertCommand() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Convert records between vCard text, xCard, jCard and hCard",
		Long: `Reads every record of the given files (standard input when none are
given) and writes them in the target format. Properties that the target
version or format cannot carry are left out with a warning.`,
		Example: `  card-codec convert --to jcard contacts.vcf
  card-codec convert --target-version 2.1 -o old.vcf contacts.vcf
  cat page.html | card-codec convert --from hcard --to xcard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "input format: vcf, xcard, jcard or hcard (default: by extension or content)")
	cmd.Flags().StringVar(&opts.to, "to", "vcf", "output format: vcf, xcard, jcard or hcard")
	cmd.Flags().StringVar(&opts.targetVersion, "target-version", "", "vCard text version written (default: CARD_VERSION)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: standard output)")
	cmd.Flags().BoolVar(&opts.document, "document", false, "write hCards as a complete HTML page")
	cmd.Flags().StringVar(&opts.title, "title", "Contacts", "HTML page title")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "pretty-print xCard and jCard output")
	return cmd
}

// validate rejects layout flags that the output format ignores.
func (o *convertOptions) validate(to format.Format) error {
	v := validation.NewValidatorWithPrefix("convert")
	v.ValidateIf(o.document && to != format.HCard, func() error {
		return errors.ValidationError("--document applies to hcard output only")
	})
	v.ValidateIf(o.indent && to != format.XCard && to != format.JCard, func() error {
		return errors.ValidationError("--indent applies to xcard and jcard output only")
	})
	if o.document {
		v.RequireString(o.title, "--title")
	}
	return v.Error()
}

func (a *App) runConvert(ctx context.Context, args []string, opts *convertOptions) error {
	to, err := format.Parse(opts.to)
	if err != nil {
		return err
	}
	if err := opts.validate(to); err != nil {
		return err
	}
	version, err := a.targetVersion(opts.targetVersion)
	if err != nil {
		return err
	}

	inputs, err := a.readInputs(ctx, args, opts.from)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		a.reportWarnings(in.name, in.warnings)
	}

	out, closeOut, err := a.openOutput(opts.output)
	if err != nil {
		return err
	}
	defer closeOut()

	fo := a.options(version)
	fo.Document = opts.document
	fo.Title = opts.title
	fo.Indent = opts.indent

	records := allRecords(inputs)
	warnings, err := format.Encode(to, out, records, fo)
	a.reportWarnings(string(to), warnings)
	if err != nil {
		return err
	}
	a.log.Debug("records converted", logging.Int("records", len(records)), logging.String("to", string(to)))
	return closeOut()
}
