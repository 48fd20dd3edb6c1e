package testutil

// JaneDoeUID is the UID of the Jane Doe fixtures
const JaneDoeUID = "urn:uuid:f81d4fae-7dec-11d0-a765-00a0c91e6bf6"

// JaneDoeVCF30 is one vCard 3.0 record
const JaneDoeVCF30 = "BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"UID:" + JaneDoeUID + "\r\n" +
	"FN:Jane Doe\r\n" +
	"N:Doe;Jane;;;\r\n" +
	"EMAIL;TYPE=work:jane@example.com\r\n" +
	"END:VCARD\r\n"

// JohnSmithJCard is one jCard without UID
const JohnSmithJCard = `["vcard",[["version",{},"text","4.0"],["fn",{},"text","John Smith"]]]`

// AnnLeeHCard is one hCard without UID
const AnnLeeHCard = `<div class="vcard"><span class="fn">Ann Lee</span></div>`

// BoChenXCard is one xCard without UID
const BoChenXCard = `<?xml version="1.0"?>` +
	`<vcards xmlns="urn:ietf:params:xml:ns:vcard-4.0"><vcard><fn><text>Bo Chen</text></fn></vcard></vcards>`

// WithFormattedName returns a copy of JaneDoeVCF30 without UID and with FN
// replaced by fn
func WithFormattedName(fn string) string {
	return "BEGIN:VCARD\r\n" +
		"VERSION:3.0\r\n" +
		"FN:" + fn + "\r\n" +
		"N:Doe;Jane;;;\r\n" +
		"EMAIL;TYPE=work:jane@example.com\r\n" +
		"END:VCARD\r\n"
}
