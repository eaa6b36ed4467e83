package cpu

import (
	"fmt"
)

// UnknownPolicy selects what the CPU does after reporting an
// unrecognized instruction.
type UnknownPolicy int

const (
	UNKNOWN_STALL = UnknownPolicy(0) // stall: keep re-fetching the same address
	UNKNOWN_SKIP  = UnknownPolicy(1) // skip: step over the unknown byte
	UNKNOWN_HALT  = UnknownPolicy(2) // halt: stop with ErrOpcodeUnknown
)

var policyName = map[UnknownPolicy]string{
	UNKNOWN_STALL: "stall",
	UNKNOWN_SKIP:  "skip",
	UNKNOWN_HALT:  "halt",
}

func (up UnknownPolicy) String() string {
	name, ok := policyName[up]
	if !ok {
		return fmt.Sprintf("UnknownPolicy(%d)", int(up))
	}

	return name
}

// MarshalText encodes the policy name.
func (up UnknownPolicy) MarshalText() (text []byte, err error) {
	name, ok := policyName[up]
	if !ok {
		err = ErrPolicyInvalid
		return
	}

	text = []byte(name)
	return
}

// UnmarshalText decodes a policy name.
func (up *UnknownPolicy) UnmarshalText(text []byte) (err error) {
	for policy, name := range policyName {
		if name == string(text) {
			*up = policy
			return
		}
	}

	err = fmt.Errorf("%w: %q", ErrPolicyInvalid, string(text))
	return
}
