package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"card-codec/internal/common/cache"
	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/format"
	"card-codec/internal/interop"
	"card-codec/internal/storage"
	_ "card-codec/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

// openBook opens the configured address book. The returned close function
// must be called.
func (a *App) openBook() (*storage.AddressBook, func() error, error) {
	store, err := storage.NewStorage(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	bookCfg := storage.AddressBookConfig{
		Index:    a.index,
		Logger:   a.log,
		MaxDepth: a.cfg.Card.MaxDepth,
	}
	if a.cfg.Cache.TTL > 0 {
		bookCfg.Cache = cache.NewLocalCache(a.cfg.Cache)
	}
	book := storage.NewAddressBook(store, bookCfg)
	return book, store.Close, nil
}

func (a *App) newImportCommand() *cobra.Command {
	var (
		from    string
		goVCard bool
	)
	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Store records in the address book",
		Long: `Reads every record and stores it in the address book (ADDRESSBOOK_PATH)
as vCard 4.0. Records without UID are given a urn:uuid: UID; a record whose
UID is already stored replaces it.

With --go-vcard, vCard text is decoded by github.com/emersion/go-vcard, the
decoder CardDAV clients built on go-webdav use, before it is stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if goVCard {
				if from != "" && from != string(format.VCF) {
					return errors.ValidationError("--go-vcard reads vCard text only").WithContext("from", from)
				}
				return a.runImport(cmd.Context(), args, "", a.readGoVCard)
			}
			return a.runImport(cmd.Context(), args, from, a.readInputs)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format (default: by extension or content)")
	cmd.Flags().BoolVar(&goVCard, "go-vcard", false, "decode vCard text with go-vcard")
	return cmd
}

type inputReader func(ctx context.Context, paths []string, from string) ([]input, error)

func (a *App) runImport(ctx context.Context, args []string, from string, read inputReader) error {
	inputs, err := read(ctx, args, from)
	if err != nil {
		return err
	}

	book, closeBook, err := a.openBook()
	if err != nil {
		return err
	}
	defer closeBook()

	total := 0
	for _, in := range inputs {
		a.reportWarnings(in.name, in.warnings)
		cards, warnings, err := book.Import(in.records)
		a.reportWarnings(in.name, warnings)
		if err != nil {
			return err
		}
		for _, card := range cards {
			fmt.Fprintf(a.out, "%s\t%s\n", card.UID, card.FormattedName)
		}
		total += len(cards)
	}
	a.log.Info("cards imported", logging.Int("count", total), logging.String("path", a.cfg.AddressBookPath))
	return nil
}

// readGoVCard decodes every path as vCard text with go-vcard. Cards without
// VERSION are read as vCard 4.0.
func (a *App) readGoVCard(ctx context.Context, paths []string, _ string) ([]input, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	inputs := make([]input, 0, len(paths))
	for _, path := range paths {
		data, name, err := a.readSource(path)
		if err != nil {
			return inputs, err
		}
		log := a.log.WithContext(logging.ContextWithFormat(logging.ContextWithSource(ctx, name), "go-vcard"))
		records, warnings, err := interop.DecodeCards(bytes.NewReader(data), interop.Config{Index: a.index, Logger: log})
		if err != nil {
			return inputs, fmt.Errorf("%s: %w", name, err)
		}
		log.Debug("input read", logging.Int("records", len(records)), logging.Int("warnings", len(warnings)))
		inputs = append(inputs, input{name: name, format: format.VCF, records: records, warnings: warnings})
	}
	return inputs, nil
}

func (a *App) newListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Summarize the cards of the address book",
		Long: `Prints one line per stored card: UID, formatted name and email addresses,
separated by tabs. With --json each line is a JSON object that also carries
KIND, telephones and categories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per card")
	return cmd
}

func (a *App) runList(asJSON bool) error {
	book, closeBook, err := a.openBook()
	if err != nil {
		return err
	}
	defer closeBook()

	records, err := book.Records()
	if err != nil {
		return err
	}

	cfg := interop.Config{Index: a.index, Logger: a.log}
	enc := json.NewEncoder(a.out)
	for _, rec := range records {
		card, warnings, err := interop.ToCard(rec, cfg)
		a.reportWarnings("list", warnings)
		if err != nil {
			return err
		}
		summary := interop.Summarize(card)
		if asJSON {
			if err := enc.Encode(summary); err != nil {
				return errors.IOError("writing summary", err)
			}
			continue
		}
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", summary.UID, summary.FormattedName, strings.Join(summary.Emails, ","))
	}
	return nil
}

func (a *App) newExportCommand() *cobra.Command {
	var (
		to            string
		targetVersion string
		output        string
		document      bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record of the address book",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(to, targetVersion, output, document)
		},
	}
	cmd.Flags().StringVar(&to, "to", "vcf", "output format: vcf, xcard, jcard or hcard")
	cmd.Flags().StringVar(&targetVersion, "target-version", "", "vCard text version written (default: CARD_VERSION)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")
	cmd.Flags().BoolVar(&document, "document", false, "write hCards as a complete HTML page")
	return cmd
}

func (a *App) runExport(to, targetVersion, output string, document bool) error {
	f, err := format.Parse(to)
	if err != nil {
		return err
	}
	version, err := a.targetVersion(targetVersion)
	if err != nil {
		return err
	}

	book, closeBook, err := a.openBook()
	if err != nil {
		return err
	}
	defer closeBook()

	records, err := book.Records()
	if err != nil {
		return err
	}

	out, closeOut, err := a.openOutput(output)
	if err != nil {
		return err
	}
	defer closeOut()

	opts := a.options(version)
	opts.Document = document
	opts.Title = "Address book"
	warnings, err := format.Encode(f, out, records, opts)
	a.reportWarnings("export", warnings)
	if err != nil {
		return err
	}
	return closeOut()
}
