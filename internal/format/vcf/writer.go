package vcf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
)

// DefaultProductID is written as PRODID when a record has none.
const DefaultProductID = "-//card-codec//EN"

// WriterConfig configures a Writer.
type WriterConfig struct {
	// Index resolves values to scribes. Required.
	Index *scribe.Index
	// Logger receives debug entries for skipped properties.
	Logger logging.Logger
	// Version is the version every record is written in.
	Version vcard.Version
	// FoldLength is the maximum line length in octets; 0 disables folding.
	FoldLength int
	// CaretEncoding enables RFC 6868 parameter value encoding (3.0 and 4.0).
	CaretEncoding bool
	// ProductID is written as PRODID (3.0 and 4.0) when IncludeProductID is
	// set and the record carries no PRODID of its own.
	ProductID        string
	IncludeProductID bool
	// MaxDepth bounds embedded AGENT records.
	MaxDepth int
}

// DefaultWriterConfig returns the configuration used when none is given.
func DefaultWriterConfig(v vcard.Version) WriterConfig {
	return WriterConfig{
		Index:            scribe.NewDefaultIndex(),
		Version:          v,
		FoldLength:       75,
		ProductID:        DefaultProductID,
		IncludeProductID: true,
		MaxDepth:         DefaultMaxDepth,
	}
}

func (c *WriterConfig) normalize() {
	if c.Index == nil {
		c.Index = scribe.NewDefaultIndex()
	}
	c.Logger = logging.OrNop(c.Logger)
	if c.Version == vcard.VersionUnknown {
		c.Version = vcard.V30
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.ProductID == "" {
		c.ProductID = DefaultProductID
	}
}

// Writer writes records as vCard text.
type Writer struct {
	out      io.Writer
	cfg      WriterConfig
	log      logging.Logger
	warnings vcard.Warnings
}

// NewWriter creates a writer to w.
func NewWriter(w io.Writer, cfg WriterConfig) *Writer {
	cfg.normalize()
	return &Writer{
		out: w,
		cfg: cfg,
		log: cfg.Logger.WithFields(logging.String("format", "vcf")),
	}
}

// Warnings returns the warnings produced while writing the last record.
func (w *Writer) Warnings() vcard.Warnings {
	return w.warnings
}

// Write converts r to the configured version and writes it. Properties that
// cannot be written are left out with a warning; only I/O fails.
func (w *Writer) Write(r *vcard.Record) error {
	w.warnings = nil
	var buf bytes.Buffer
	w.writeRecord(&buf, r, w.cfg.FoldLength, 0)
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return errors.IOError("writing vCard", err)
	}
	return nil
}

// Marshal writes records to a string.
func Marshal(records []*vcard.Record, cfg WriterConfig) (string, vcard.Warnings, error) {
	var (
		buf      bytes.Buffer
		warnings vcard.Warnings
	)
	w := NewWriter(&buf, cfg)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return "", warnings, err
		}
		warnings = append(warnings, w.Warnings()...)
	}
	return buf.String(), warnings, nil
}

func (w *Writer) writeRecord(buf *bytes.Buffer, r *vcard.Record, fold, depth int) {
	v := w.cfg.Version
	w.writeLine(buf, "BEGIN:VCARD", -1, fold)
	w.writeLine(buf, "VERSION:"+v.String(), -1, fold)

	if depth == 0 && w.cfg.IncludeProductID && v != vcard.V21 && len(vcard.Find[*vcard.ProductID](r)) == 0 {
		w.writeLine(buf, "PRODID:"+vcard.EscapeText(w.cfg.ProductID, v), -1, fold)
	}

	for _, prop := range scribe.ExpandLabels(r, v) {
		ctx := &scribe.WriteContext{Version: v, Record: r, Warnings: &w.warnings}
		written, err := w.cfg.Index.WriteText(prop, ctx)
		if err != nil {
			w.log.Debug("property skipped", logging.String("property", ctx.Name), logging.Err(err))
			continue
		}

		if written.Embedded != nil {
			if depth+1 > w.cfg.MaxDepth {
				ctx.Warn(vcard.WarnTooDeep, w.cfg.MaxDepth)
				w.log.Debug("property skipped", logging.String("property", ctx.Name),
					logging.Err(errors.DepthError(w.cfg.MaxDepth)))
				continue
			}
			if v == vcard.V21 {
				w.writeProperty(buf, written, fold)
				w.writeRecord(buf, written.Embedded, fold, depth+1)
				continue
			}
			var child bytes.Buffer
			w.writeRecord(&child, written.Embedded, 0, depth+1)
			text := strings.ReplaceAll(strings.TrimRight(child.String(), "\r\n"), "\r\n", "\n")
			written.Text = vcard.EscapeText(text, v)
		}
		w.writeProperty(buf, written, fold)
	}

	w.writeLine(buf, "END:VCARD", -1, fold)
}

// writeProperty renders "group.NAME;params:value". Multi-line 2.1 values
// are written quoted-printable.
func (w *Writer) writeProperty(buf *bytes.Buffer, written *scribe.Written, fold int) {
	v := w.cfg.Version
	value := written.Text
	params := written.Params

	qp := false
	if v == vcard.V21 && strings.ContainsAny(value, "\r\n") {
		qp = true
		params.Replace(vcard.ParamEncoding, vcard.EncodingQuotedPrintable)
		if params.Charset() == "" {
			params.SetCharset("UTF-8")
		}
		value = encodeQuotedPrintable(value)
	}

	var b strings.Builder
	if written.Group != "" {
		b.WriteString(written.Group)
		b.WriteByte('.')
	}
	b.WriteString(written.Name)
	w.writeParams(&b, params)
	b.WriteByte(':')
	valueStart := -1
	if qp {
		valueStart = b.Len()
	}
	b.WriteString(value)
	w.writeLine(buf, b.String(), valueStart, fold)
}

// listParams hold comma-separated lists; their commas are not quoted.
var listParams = map[string]bool{vcard.ParamType: true, vcard.ParamPid: true, vcard.ParamSortAs: true}

func (w *Writer) writeParams(b *strings.Builder, params *vcard.Params) {
	v := w.cfg.Version
	for _, name := range params.Names() {
		values := params.GetAll(name)
		if v == vcard.V21 {
			for _, value := range values {
				value = sanitizeParam(value, false)
				if name == vcard.ParamType {
					for _, t := range strings.Split(value, ",") {
						fmt.Fprintf(b, ";%s", strings.ToUpper(strings.TrimSpace(t)))
					}
					continue
				}
				fmt.Fprintf(b, ";%s=%s", name, value)
			}
			continue
		}

		encoded := make([]string, len(values))
		for i, value := range values {
			value = sanitizeParam(value, w.cfg.CaretEncoding)
			special := strings.ContainsAny(value, ":;") || (!listParams[name] && strings.Contains(value, ","))
			if special {
				value = `"` + value + `"`
			}
			encoded[i] = value
		}
		fmt.Fprintf(b, ";%s=%s", name, strings.Join(encoded, ","))
	}
}

// sanitizeParam makes a parameter value safe to write: with caret encoding
// newlines and quotes are encoded, otherwise they are replaced.
func sanitizeParam(value string, caret bool) string {
	if caret {
		return encodeCaret(value)
	}
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value)
	return strings.ReplaceAll(value, `"`, "'")
}

// writeLine folds line to fold octets. Continuation lines start with a
// space. For a quoted-printable line valueStart is the offset of the value;
// such lines end in a soft line break instead.
func (w *Writer) writeLine(buf *bytes.Buffer, line string, valueStart, fold int) {
	if fold <= 0 || len(line) <= fold {
		buf.WriteString(line)
		buf.WriteString("\r\n")
		return
	}
	if valueStart >= 0 {
		foldQuotedPrintable(buf, line, valueStart, fold)
		return
	}

	first := true
	for len(line) > 0 {
		limit := fold
		if !first {
			limit--
			buf.WriteByte(' ')
		}
		cut := len(line)
		if cut > limit {
			cut = limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n")
		line = line[cut:]
		first = false
	}
}

// foldQuotedPrintable breaks line with "=" soft line breaks. The name and
// parameters stay on the first line and no "=XX" escape is split. A
// continuation line never starts with white space, which would read as
// folding.
func foldQuotedPrintable(buf *bytes.Buffer, line string, min, fold int) {
	limit := fold - 1
	if limit < 4 {
		limit = 4
	}
	for len(line) > fold {
		cut := limit
		if cut < min {
			cut = min
		}
		if cut >= len(line) {
			break
		}
		if i := strings.LastIndexByte(line[:cut], '='); i >= min && i > cut-3 {
			cut = i
		}
		buf.WriteString(line[:cut])
		buf.WriteString("=\r\n")
		line = line[cut:]
		if line[0] == ' ' || line[0] == '\t' {
			line = fmt.Sprintf("=%02X", line[0]) + line[1:]
		}
		min = 0
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

// encodeQuotedPrintable encodes a value for a single logical line: line
// breaks become =0D=0A and every byte outside printable ASCII is escaped.
func encodeQuotedPrintable(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			b.WriteString("=0D=0A")
		case c == '=' || c < ' ' || c > '~':
			fmt.Fprintf(&b, "=%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
