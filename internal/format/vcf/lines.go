package vcf

import (
	"bufio"
	"io"
	"strings"

	"card-codec/internal/vcard"
)

// contentLine is one unfolded "group.NAME;params:value" line.
type contentLine struct {
	group     string
	name      string
	params    *vcard.Params
	value     string
	number    int
	malformed bool
}

func (l *contentLine) is(name, value string) bool {
	return strings.EqualFold(l.name, name) && strings.EqualFold(strings.TrimSpace(l.value), value)
}

// lineReader unfolds physical lines into content lines. The version decides
// how nameless 2.1 parameters and caret escapes are read.
type lineReader struct {
	br       *bufio.Reader
	lineNo   int
	peeked   *string
	peekedNo int
	version  vcard.Version
	caret    bool
}

func newLineReader(r io.Reader, caret bool) *lineReader {
	return &lineReader{br: bufio.NewReader(r), version: vcard.V21, caret: caret}
}

func (lr *lineReader) physical() (string, int, error) {
	if lr.peeked != nil {
		s, n := *lr.peeked, lr.peekedNo
		lr.peeked = nil
		return s, n, nil
	}
	s, err := lr.br.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", 0, err
	}
	lr.lineNo++
	return strings.TrimRight(s, "\r\n"), lr.lineNo, nil
}

func (lr *lineReader) unread(s string, n int) {
	lr.peeked, lr.peekedNo = &s, n
}

// next returns the next non-blank content line, or io.EOF.
func (lr *lineReader) next() (*contentLine, error) {
	var (
		text   string
		number int
	)
	for {
		s, n, err := lr.physical()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) != "" {
			text, number = s, n
			break
		}
	}

	for {
		s, n, err := lr.physical()
		if err != nil {
			break
		}
		if s != "" && (s[0] == ' ' || s[0] == '\t') {
			text += s[1:]
			continue
		}
		lr.unread(s, n)
		break
	}

	l := lr.parse(text, number)
	if l.malformed {
		return l, nil
	}

	// Quoted-printable soft line breaks: a value ending in "=" continues on
	// the next physical line.
	if strings.EqualFold(l.params.Encoding(), vcard.EncodingQuotedPrintable) {
		for strings.HasSuffix(l.value, "=") {
			s, _, err := lr.physical()
			if err != nil {
				break
			}
			l.value = l.value[:len(l.value)-1] + strings.TrimLeft(s, " \t")
		}
	}
	return l, nil
}

// parse splits a content line. Parameter values may be double-quoted, in
// which case ':' and ';' inside them are literal.
func (lr *lineReader) parse(text string, number int) *contentLine {
	l := &contentLine{number: number, params: vcard.NewParams()}

	var (
		inQuotes bool
		segments []string
		start    int
		colon    = -1
	)
	for i := 0; i < len(text) && colon < 0; i++ {
		switch text[i] {
		case '"':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				segments = append(segments, text[start:i])
				start = i + 1
			}
		case ':':
			if !inQuotes {
				segments = append(segments, text[start:i])
				colon = i
			}
		}
	}
	if colon < 0 || segments[0] == "" {
		l.malformed = true
		l.value = text
		return l
	}

	l.name = segments[0]
	if dot := strings.IndexByte(l.name, '.'); dot >= 0 {
		l.group, l.name = l.name[:dot], l.name[dot+1:]
	}
	l.name = strings.ToUpper(strings.TrimSpace(l.name))
	l.value = text[colon+1:]

	for _, seg := range segments[1:] {
		lr.parseParam(l.params, seg)
	}
	return l
}

func (lr *lineReader) parseParam(params *vcard.Params, seg string) {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return
	}
	name, value, ok := strings.Cut(seg, "=")
	if !ok {
		params.Put(namelessParam(seg), seg)
		return
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	} else {
		value = strings.ReplaceAll(value, `"`, "")
	}
	if lr.caret && lr.version != vcard.V21 {
		value = decodeCaret(value)
	}
	params.Put(strings.TrimSpace(name), value)
}

// namelessParam infers the parameter a 2.1 nameless value belongs to.
func namelessParam(value string) string {
	switch strings.ToUpper(value) {
	case vcard.EncodingQuotedPrintable, vcard.EncodingBase64, vcard.Encoding7Bit, vcard.Encoding8Bit, "B":
		return vcard.ParamEncoding
	case "INLINE", "URL", "CONTENT-ID", "CID":
		return vcard.ParamValue
	}
	return vcard.ParamType
}

// decodeCaret applies RFC 6868: ^n is a newline, ^' a double quote, ^^ a
// caret. Any other caret sequence is kept.
func decodeCaret(s string) string {
	if !strings.Contains(s, "^") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '^' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n', 'N':
			b.WriteByte('\n')
		case '\'':
			b.WriteByte('"')
		case '^':
			b.WriteByte('^')
		default:
			b.WriteByte('^')
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

// encodeCaret is the inverse of decodeCaret.
func encodeCaret(s string) string {
	r := strings.NewReplacer("^", "^^", "\r\n", "^n", "\n", "^n", `"`, "^'")
	return r.Replace(s)
}
