package soap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/castbridge/upnpgo/description"
	"github.com/castbridge/upnpgo/internal/log"
)

// Dispatcher is the SOAP action dispatcher: for a Service's parsed
// Actions, it exposes Invoke(actionName, positionalInputs) and coerces
// every out argument by the service's state table.
type Dispatcher struct {
	client *http.Client
	logger log.Logger
}

// NewDispatcher creates a Dispatcher with a conservative default timeout;
// UPnP control actions are expected to complete quickly, unlike the 30s
// description-fetch budget.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: log.Default(),
	}
}

// Invoke calls actionName on svc, binding positionalInputs to the action's
// declared in-arguments in order, and returns the coerced out arguments
// keyed by argument name.
func (d *Dispatcher) Invoke(ctx context.Context, svc *description.Service, actionName string, positionalInputs []string) (map[string]Value, error) {
	action, ok := svc.ActionByName(actionName)
	if !ok {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName, Err: fmt.Errorf("unknown action %q", actionName)}
	}

	inArgs := action.InArguments()
	if len(positionalInputs) != len(inArgs) {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName,
			Err: fmt.Errorf("expected %d input(s), got %d", len(inArgs), len(positionalInputs))}
	}
	var args []ActionArg
	for i, arg := range inArgs {
		args = append(args, ActionArg{Name: arg.Name, Value: positionalInputs[i]})
	}

	reqBody := BuildRequest(svc.ServiceType, actionName, args)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.ControlURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName, Err: err}
	}
	req.Header.Set("CONTENT-TYPE", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", SOAPAction(svc.ServiceType, actionName))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ActionError{Kind: ActionTransport, Action: actionName, Err: err}
	}

	// A SOAP Fault is conventionally carried on HTTP 500; parse the body
	// regardless of status so Fault details surface instead of a bare
	// "unexpected status" error.
	rawOut, parseErr := ParseResponse(respBody, actionName)
	if parseErr != nil {
		return nil, parseErr
	}

	out := make(map[string]Value, len(rawOut))
	for _, arg := range action.OutArguments() {
		text, present := rawOut[arg.Name]
		if !present {
			continue
		}
		sv, ok := svc.StateVariableByName(arg.RelatedStateVariable)
		if !ok {
			return nil, &ActionError{Kind: ActionMissingStateVar, Action: actionName, Argument: arg.Name}
		}
		val, err := Coerce(sv.DataType, text)
		if err != nil {
			return nil, &ActionError{Kind: ActionCoerce, Action: actionName, Argument: arg.Name, Err: err}
		}
		out[arg.Name] = val
	}
	return out, nil
}
