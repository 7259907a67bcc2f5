package soap

import (
	"fmt"

	"github.com/castbridge/upnpgo/description"
)

// ParseResponse parses a SOAP response body with the generic XML tree
// parser, locates Envelope/Body/<ActionName>Response, and returns the
// out-argument text values keyed by argument name. If the body carries a
// SOAP Fault instead, ParseResponse returns an *ActionError of kind
// ActionFault.
func ParseResponse(body []byte, actionName string) (map[string]string, error) {
	tree, err := description.ParseXML(body)
	if err != nil {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName, Err: fmt.Errorf("parse response XML: %w", err)}
	}

	envBody := findBody(tree)
	if envBody == nil {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName, Err: fmt.Errorf("no SOAP Body in response")}
	}

	if fault := envBody.Child("Fault"); fault != nil {
		code, desc := extractFault(fault)
		return nil, &ActionError{Kind: ActionFault, Action: actionName, FaultCode: code, FaultDesc: desc}
	}

	respNode := envBody.Child(actionName + "Response")
	if respNode == nil && len(envBody.Children) == 1 {
		// Some stacks omit the "u:" prefix or use a differently-cased
		// response element; fall back to the sole child of Body.
		for _, kids := range envBody.Children {
			if len(kids) == 1 {
				respNode = kids[0]
				break
			}
		}
	}
	if respNode == nil {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName, Err: fmt.Errorf("no %sResponse element in body", actionName)}
	}

	out := make(map[string]string)
	for name, kids := range respNode.Children {
		if len(kids) > 0 {
			out[name] = kids[0].Text
		}
	}
	return out, nil
}

// findBody walks an Envelope root (whatever its namespace prefix
// canonicalised to) to its Body child.
func findBody(root *description.Node) *description.Node {
	if root == nil {
		return nil
	}
	if body := root.Child("Body"); body != nil {
		return body
	}
	// Some parsers surface the Envelope itself as the root with Body
	// directly reachable; guard against a root that already IS the body.
	if root.Name == "Body" {
		return root
	}
	return nil
}

// extractFault pulls faultcode/faultstring out of a SOAP 1.1 Fault element,
// preferring the UPnP detail/UPnPError block's errorCode/errorDescription
// when present, since that's the actual machine-readable error UPnP devices
// emit.
func extractFault(fault *description.Node) (code, desc string) {
	code = fault.TextOf("faultcode")
	desc = fault.TextOf("faultstring")
	detail := fault.Child("detail")
	if detail == nil {
		return code, desc
	}
	upnpErr := detail.Child("UPnPError")
	if upnpErr == nil {
		return code, desc
	}
	if ec := upnpErr.TextOf("errorCode"); ec != "" {
		code = ec
	}
	if ed := upnpErr.TextOf("errorDescription"); ed != "" {
		desc = ed
	}
	return code, desc
}
