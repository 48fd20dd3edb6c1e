// Package vcf reads and writes the vCard text format (versions 2.1, 3.0 and
// 4.0). Property values are handled by the scribes of a scribe.Index; this
// package owns framing: line folding, parameters, quoted-printable and
// character sets, and nested records.
package vcf

import (
	"bytes"
	"io"
	"mime/quotedprintable"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
	"github.com/emersion/go-message/charset"
)

// DefaultMaxDepth bounds how deeply AGENT records may nest.
const DefaultMaxDepth = 8

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	// Index resolves property names to scribes. Required.
	Index *scribe.Index
	// Logger receives debug entries for skipped and downgraded properties.
	Logger logging.Logger
	// MaxDepth is the deepest embedded record that is parsed; deeper ones
	// are skipped with a warning.
	MaxDepth int
	// DefaultVersion applies until a VERSION property is read.
	DefaultVersion vcard.Version
	// CaretDecoding enables RFC 6868 parameter value decoding.
	CaretDecoding bool
}

// DefaultReaderConfig returns a configuration using the default scribes.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Index:          scribe.NewDefaultIndex(),
		MaxDepth:       DefaultMaxDepth,
		DefaultVersion: vcard.V21,
		CaretDecoding:  true,
	}
}

func (c *ReaderConfig) normalize() {
	if c.Index == nil {
		c.Index = scribe.NewDefaultIndex()
	}
	c.Logger = logging.OrNop(c.Logger)
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.DefaultVersion == vcard.VersionUnknown {
		c.DefaultVersion = vcard.V21
	}
}

// Reader reads records from a vCard text stream.
type Reader struct {
	cfg      ReaderConfig
	lines    *lineReader
	log      logging.Logger
	warnings *vcard.Warnings
}

// NewReader creates a reader over r.
func NewReader(r io.Reader, cfg ReaderConfig) *Reader {
	cfg.normalize()
	return &Reader{
		cfg:      cfg,
		lines:    newLineReader(r, cfg.CaretDecoding),
		log:      cfg.Logger.WithFields(logging.String("format", "vcf")),
		warnings: &vcard.Warnings{},
	}
}

// Warnings returns the warnings produced while reading the last record,
// including those of its embedded records.
func (r *Reader) Warnings() vcard.Warnings {
	return *r.warnings
}

// Read returns the next record, or io.EOF when the stream holds no more.
// Lines outside BEGIN:VCARD/END:VCARD are ignored. A record that is not
// terminated is a syntax error.
func (r *Reader) Read() (*vcard.Record, error) {
	r.warnings = &vcard.Warnings{}
	return r.next(0)
}

func (r *Reader) next(depth int) (*vcard.Record, error) {
	for {
		l, err := r.lines.next()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, errors.IOError("reading vCard stream", err)
		}
		if l.is("BEGIN", "VCARD") {
			return r.readRecord(l.number, depth)
		}
		r.log.Debug("ignoring line outside of a record", logging.Int("line", l.number))
	}
}

// ReadAll reads every record of r. Warnings of all records are returned
// together, in input order.
func ReadAll(r io.Reader, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	reader := NewReader(r, cfg)
	var (
		records  []*vcard.Record
		warnings vcard.Warnings
	)
	for {
		rec, err := reader.Read()
		warnings = append(warnings, reader.Warnings()...)
		if err == io.EOF {
			return records, warnings, nil
		}
		if err != nil {
			return records, warnings, err
		}
		records = append(records, rec)
	}
}

// Parse reads every record of s.
func Parse(s string, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	return ReadAll(strings.NewReader(s), cfg)
}

func (r *Reader) warn(code, line int, property string, args ...interface{}) {
	w := vcard.NewWarning(code, args...)
	w.Line = line
	w.Property = property
	r.warnings.Add(w)
	r.log.Debug(w.Message, logging.Int("line", line), logging.String("property", property), logging.Int("code", code))
}

// pendingAgent is a 2.1 AGENT whose record follows as a nested block.
type pendingAgent struct {
	outcome scribe.Outcome
	line    int
}

func (r *Reader) readRecord(start, depth int) (*vcard.Record, error) {
	rec := vcard.NewRecord(r.cfg.DefaultVersion)
	r.lines.version = rec.Version
	var pending *pendingAgent

	for {
		l, err := r.lines.next()
		if err == io.EOF {
			r.log.Warn("record is not terminated", logging.Int("line", start))
			return nil, errors.SyntaxError("record is not terminated by END:VCARD", start)
		}
		if err != nil {
			return nil, errors.IOError("reading vCard stream", err)
		}
		if l.malformed {
			r.warn(vcard.WarnMalformedLine, l.number, "", l.value)
			continue
		}

		switch {
		case l.is("BEGIN", "VCARD"):
			if err := r.nested(rec, l, depth, pending); err != nil {
				return nil, err
			}
			pending = nil
			continue
		case l.is("END", "VCARD"):
			if pending != nil {
				r.warn(vcard.WarnBadEmbedded, pending.line, vcard.PropAgent, "no nested record follows")
			}
			scribe.AttachLabels(rec)
			r.lines.version = r.cfg.DefaultVersion
			return rec, nil
		case l.name == vcard.PropVersion:
			v, ok := vcard.ParseVersion(l.value)
			if !ok {
				r.warn(vcard.WarnUnknownVersion, l.number, vcard.PropVersion, strings.TrimSpace(l.value), rec.Version)
				continue
			}
			rec.Version = v
			r.lines.version = v
			continue
		}

		if pending != nil {
			r.warn(vcard.WarnBadEmbedded, pending.line, vcard.PropAgent, "no nested record follows")
			pending = nil
		}
		pending = r.property(rec, l, depth)
	}
}

// nested handles a BEGIN:VCARD inside a record: the body of a pending 2.1
// AGENT, or a stray block that is skipped.
func (r *Reader) nested(rec *vcard.Record, l *contentLine, depth int, pending *pendingAgent) error {
	if pending == nil {
		r.warn(vcard.WarnBadEmbedded, l.number, "", "nested record without an AGENT property")
		return r.skipRecord(l.number)
	}
	if depth+1 > r.cfg.MaxDepth {
		r.warn(vcard.WarnTooDeep, l.number, vcard.PropAgent, r.cfg.MaxDepth)
		return r.skipRecord(l.number)
	}

	version := r.lines.version
	child, err := r.readRecord(l.number, depth+1)
	r.lines.version = version
	if err != nil {
		return err
	}
	pending.outcome.Embedded.Inject(child)
	rec.AddProperty(pending.outcome.Property)
	return nil
}

// skipRecord consumes lines up to the END:VCARD matching a BEGIN:VCARD
// already read.
func (r *Reader) skipRecord(start int) error {
	open := 1
	for open > 0 {
		l, err := r.lines.next()
		if err == io.EOF {
			return errors.SyntaxError("record is not terminated by END:VCARD", start)
		}
		if err != nil {
			return errors.IOError("reading vCard stream", err)
		}
		switch {
		case l.is("BEGIN", "VCARD"):
			open++
		case l.is("END", "VCARD"):
			open--
		}
	}
	return nil
}

// property parses one content line into rec. It returns a pending agent
// when the value is a record that follows in the stream.
func (r *Reader) property(rec *vcard.Record, l *contentLine, depth int) *pendingAgent {
	ctx := &scribe.ParseContext{Version: rec.Version, Warnings: r.warnings, Line: l.number, Name: l.name}
	value := r.decode(l, ctx)

	out := r.cfg.Index.ParseText(l.group, l.name, l.params, value, ctx)
	switch out.Kind {
	case scribe.OutcomeSkip:
		r.log.Debug("property skipped", logging.String("property", l.name), logging.Int("line", l.number),
			logging.String("reason", out.Reason))
	case scribe.OutcomeCannotParse:
		r.log.Debug("property kept as raw value", logging.String("property", l.name), logging.Int("line", l.number),
			logging.String("reason", out.Reason))
		rec.AddProperty(out.Property)
	case scribe.OutcomeValue:
		rec.AddProperty(out.Property)
	case scribe.OutcomeEmbedded:
		if out.Embedded.Text == "" {
			return &pendingAgent{outcome: out, line: l.number}
		}
		r.embedded(rec, out, l, depth)
	}
	return nil
}

// embedded parses a record carried as escaped text in a property value.
func (r *Reader) embedded(rec *vcard.Record, out scribe.Outcome, l *contentLine, depth int) {
	if depth+1 > r.cfg.MaxDepth {
		r.warn(vcard.WarnTooDeep, l.number, l.name, r.cfg.MaxDepth)
		return
	}
	sub := &Reader{
		cfg:      r.cfg,
		lines:    newLineReader(strings.NewReader(out.Embedded.Text), r.cfg.CaretDecoding),
		log:      r.log,
		warnings: r.warnings,
	}
	child, err := sub.next(depth + 1)
	if err != nil {
		r.warn(vcard.WarnBadEmbedded, l.number, l.name, err.Error())
		return
	}
	out.Embedded.Inject(child)
	rec.AddProperty(out.Property)
}

// decode undoes quoted-printable encoding and converts the value to UTF-8
// when a CHARSET parameter names another character set.
func (r *Reader) decode(l *contentLine, ctx *scribe.ParseContext) string {
	value := l.value
	if strings.EqualFold(l.params.Encoding(), vcard.EncodingQuotedPrintable) {
		decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(value)))
		if err != nil {
			ctx.Warn(vcard.WarnBadQuotedPrintable, err.Error())
		} else {
			value = strings.ReplaceAll(string(decoded), "\r\n", "\n")
			l.params.RemoveAll(vcard.ParamEncoding)
		}
	}

	cs := l.params.Charset()
	if cs == "" {
		return value
	}
	if strings.EqualFold(cs, "utf-8") || strings.EqualFold(cs, "us-ascii") {
		l.params.RemoveAll(vcard.ParamCharset)
		return value
	}
	cr, err := charset.Reader(cs, bytes.NewReader([]byte(value)))
	if err != nil {
		ctx.Warn(vcard.WarnUnknownCharset, cs)
		return value
	}
	converted, err := io.ReadAll(cr)
	if err != nil {
		ctx.Warn(vcard.WarnUnknownCharset, cs)
		return value
	}
	l.params.RemoveAll(vcard.ParamCharset)
	return string(converted)
}
