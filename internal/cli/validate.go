package cli

import (
	"context"
	"fmt"

	"card-codec/internal/common/errors"
	"card-codec/internal/vcard"
	"github.com/spf13/cobra"
)

func (a *App) newValidateCommand() *cobra.Command {
	var (
		from          string
		targetVersion string
	)
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check records against a vCard version",
		Long: `Reads every record and reports parse warnings and validation problems:
missing required properties, properties and parameters the version does not
support and malformed values. Exits with an error when a problem is found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.Context(), args, from, targetVersion)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format (default: by extension or content)")
	cmd.Flags().StringVar(&targetVersion, "target-version", "", "version to validate against (default: each record's own version)")
	return cmd
}

func (a *App) runValidate(ctx context.Context, args []string, from, targetVersion string) error {
	var forced vcard.Version
	if targetVersion != "" {
		v, err := a.targetVersion(targetVersion)
		if err != nil {
			return err
		}
		forced = v
	}

	inputs, err := a.readInputs(ctx, args, from)
	if err != nil {
		return err
	}

	problems := 0
	for _, in := range inputs {
		for _, w := range in.warnings {
			fmt.Fprintf(a.out, "%s: %s\n", in.name, w)
			problems++
		}
		for i, rec := range in.records {
			v := rec.Version
			if forced != vcard.VersionUnknown {
				v = forced
			}
			label := fmt.Sprintf("%s: record %d", in.name, i+1)
			if fn := rec.FormattedName(); fn != "" {
				label += " (" + fn + ")"
			}

			warnings := a.index.Validate(rec, v)
			if len(warnings) == 0 {
				fmt.Fprintf(a.out, "%s: valid vCard %s\n", label, v)
				continue
			}
			for _, w := range warnings {
				fmt.Fprintf(a.out, "%s: %s\n", label, w)
			}
			problems += len(warnings)
		}
	}

	if problems > 0 {
		return errors.ValidationError(fmt.Sprintf("%d problems found", problems))
	}
	return nil
}
