package description

import "strings"

// ParseSCPD implements the state-table/action population: walk a
// parsed SCPD tree into StateVariables and Actions.
func ParseSCPD(scpd *Node) ([]*StateVariable, []*Action, error) {
	var vars []*StateVariable
	if table := scpd.Child("serviceStateTable"); table != nil {
		for _, svNode := range table.All("stateVariable") {
			vars = append(vars, parseStateVariable(svNode))
		}
	}

	var actions []*Action
	if list := scpd.Child("actionList"); list != nil {
		for _, actionNode := range list.All("action") {
			actions = append(actions, parseAction(actionNode))
		}
	}

	return vars, actions, nil
}

func parseStateVariable(n *Node) *StateVariable {
	sv := &StateVariable{
		Name:     strings.TrimSpace(n.TextOf("name")),
		DataType: strings.TrimSpace(n.TextOf("dataType")),
	}
	if sendEvents, ok := n.Attrs["sendEvents"]; ok {
		sv.SendEvents = strings.EqualFold(sendEvents, "yes")
	}
	if def := n.Child("defaultValue"); def != nil {
		sv.HasDefault = true
		sv.DefaultValue = def.Text
	}
	if rng := n.Child("allowedValueRange"); rng != nil {
		sv.HasRange = true
		sv.AllowedMin = rng.TextOf("minimum")
		sv.AllowedMax = rng.TextOf("maximum")
	}
	if list := n.Child("allowedValueList"); list != nil {
		for _, v := range list.All("allowedValue") {
			sv.AllowedValues = append(sv.AllowedValues, v.Text)
		}
	}
	return sv
}

func parseAction(n *Node) *Action {
	a := &Action{Name: strings.TrimSpace(n.TextOf("name"))}
	if list := n.Child("argumentList"); list != nil {
		for _, argNode := range list.All("argument") {
			a.Arguments = append(a.Arguments, parseArgument(argNode))
		}
	}
	return a
}

func parseArgument(n *Node) Argument {
	dir := DirectionIn
	if strings.EqualFold(strings.TrimSpace(n.TextOf("direction")), "out") {
		dir = DirectionOut
	}
	return Argument{
		Name:                 strings.TrimSpace(n.TextOf("name")),
		Direction:            dir,
		RelatedStateVariable: strings.TrimSpace(n.TextOf("relatedStateVariable")),
	}
}
