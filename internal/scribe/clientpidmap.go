package scribe

import (
	"strconv"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
)

// clientPidMapScribe serves CLIENTPIDMAP, "pid;uri". Both parts are
// required; a value missing either is skipped.
type clientPidMapScribe struct{}

func NewClientPidMapScribe() Scribe { return clientPidMapScribe{} }

func (clientPidMapScribe) Name() string                                 { return vcard.PropClientPidMap }
func (clientPidMapScribe) Versions() []vcard.Version                    { return only40 }
func (clientPidMapScribe) NewValue() vcard.Value                        { return &vcard.ClientPidMap{} }
func (clientPidMapScribe) DefaultDataType(vcard.Version) vcard.DataType { return vcard.DataTypeText }

func clientPidMapFrom(pid, uri string) (vcard.Value, error) {
	pid, uri = strings.TrimSpace(pid), strings.TrimSpace(uri)
	if pid == "" || uri == "" {
		return nil, errors.SkipError("CLIENTPIDMAP needs both a PID and a URI")
	}
	n, err := strconv.Atoi(pid)
	if err != nil {
		return nil, errors.CannotParseError(vcard.Message(vcard.WarnBadPid, pid))
	}
	return &vcard.ClientPidMap{PID: &n, URI: uri}, nil
}

func checkClientPidMap(value vcard.Value) (*vcard.ClientPidMap, error) {
	m, err := cast[*vcard.ClientPidMap](value)
	if err != nil {
		return nil, err
	}
	if m.PID == nil || m.URI == "" {
		return nil, errors.SkipError("CLIENTPIDMAP needs both a PID and a URI")
	}
	return m, nil
}

func (clientPidMapScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	m, err := checkClientPidMap(value)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(*m.PID) + ";" + vcard.EscapeText(m.URI, ctx.Version), nil
}

func (clientPidMapScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	parts := vcard.SplitSemiStructured(raw, 2)
	return clientPidMapFrom(vcard.Part(parts, 0), vcard.Part(parts, 1))
}

func (clientPidMapScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	m, err := checkClientPidMap(value)
	if err != nil {
		return err
	}
	el.AddText("sourceid", strconv.Itoa(*m.PID))
	addXMLValue(el, vcard.DataTypeURI, m.URI)
	return nil
}

func (clientPidMapScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return clientPidMapFrom(el.ChildText(ns, "sourceid"), el.ChildText(ns, "uri"))
}

// WriteJSON produces ["1", "urn:uuid:..."].
func (clientPidMapScribe) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	m, err := checkClientPidMap(value)
	if err != nil {
		return JSONValue{}, err
	}
	return Structured([][]string{{strconv.Itoa(*m.PID)}, {m.URI}}), nil
}

func (clientPidMapScribe) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	c := value.AsStructured()
	return clientPidMapFrom(strings.Join(vcard.Component(c, 0), ","), strings.Join(vcard.Component(c, 1), ","))
}
