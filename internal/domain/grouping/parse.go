package grouping

// ParseOutcome is the tagged result of decoding a model grouping response:
// either Parsed with at least one group, or Unparsable with a reason.
type ParseOutcome struct {
	groups []Group
	reason string
}

// Parsed wraps successfully resolved groups.
func Parsed(groups []Group) ParseOutcome {
	return ParseOutcome{groups: groups}
}

// Unparsable records why a response could not be used.
func Unparsable(reason string) ParseOutcome {
	return ParseOutcome{reason: reason}
}

// Groups returns the parsed groups and true, or nil and false when unparsable.
func (o ParseOutcome) Groups() ([]Group, bool) {
	if len(o.groups) == 0 {
		return nil, false
	}
	return o.groups, true
}

// Reason returns the failure reason of an unparsable outcome.
func (o ParseOutcome) Reason() string { return o.reason }
