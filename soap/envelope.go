package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	encodingNS = "http://schemas.xmlsoap.org/soap/encoding/"
)

// ActionArg is one in-argument bound to a request envelope: a declared
// argument name paired with its stringified input value, in declared order
// (inputs are bound to in-arguments in declared order).
type ActionArg struct {
	Name  string
	Value string
}

// BuildRequest renders the SOAP 1.1 request envelope: namespace prefix
// "s" for the envelope, "u" for serviceType, one child element per in
// argument named after the argument with its stringified value as text.
func BuildRequest(serviceType, actionName string, args []ActionArg) []byte {
	var body bytes.Buffer
	body.WriteString(fmt.Sprintf(`<u:%s xmlns:u=%q>`, actionName, serviceType))
	for _, a := range args {
		body.WriteString(fmt.Sprintf("<%s>%s</%s>", a.Name, xmlEscape(a.Value), a.Name))
	}
	body.WriteString(fmt.Sprintf(`</u:%s>`, actionName))

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf,
		`<s:Envelope xmlns:s=%q s:encodingStyle=%q><s:Body>%s</s:Body></s:Envelope>`,
		envelopeNS, encodingNS, body.String())
	return buf.Bytes()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// SOAPAction renders the SOAPACTION header value: "<service_type>#<action_name>".
func SOAPAction(serviceType, actionName string) string {
	return fmt.Sprintf("%q", serviceType+"#"+actionName)
}
