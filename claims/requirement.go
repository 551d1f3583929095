package claims

// Requirement is a three-valued policy field for a claim check:
// required with allowed values, explicitly disabled, or unspecified.
// The zero value is unspecified, and a validator that needs an explicit
// choice rejects it at call time with a ConfigurationError. This keeps
// "I intentionally skip this check" distinguishable from "I forgot to
// set this".
type Requirement struct {
	mode   reqMode
	values []string
}

type reqMode int

const (
	reqUnspecified reqMode = iota
	reqRequired
	reqDisabled
)

// Require returns a Requirement that the claim match one of the given values.
func Require(values ...string) Requirement {
	return Requirement{mode: reqRequired, values: values}
}

// Disable returns a Requirement that explicitly opts out of the check.
func Disable() Requirement {
	return Requirement{mode: reqDisabled}
}

// Specified reports whether the caller made an explicit choice.
func (r Requirement) Specified() bool { return r.mode != reqUnspecified }

// Disabled reports whether the check is explicitly opted out of.
func (r Requirement) Disabled() bool { return r.mode == reqDisabled }

// Values returns the allowed values of a required check.
func (r Requirement) Values() []string { return r.values }
