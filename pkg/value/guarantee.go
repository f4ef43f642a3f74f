package value

import "strings"

// TypeGuarantee is a bitset of constraint categories a value satisfies.
// Function slots use the same type to declare which categories they accept.
type TypeGuarantee uint16

const (
	// GuaranteeInteger is satisfied by numbers without a fractional part.
	GuaranteeInteger TypeGuarantee = 1 << iota

	// GuaranteeReal is satisfied by every number.
	GuaranteeReal

	// GuaranteeBoolean is satisfied by booleans.
	GuaranteeBoolean

	// GuaranteeText is satisfied by text.
	GuaranteeText

	// GuaranteeVector is satisfied by vectors.
	GuaranteeVector

	// GuaranteeReference is satisfied by context-valued objects.
	GuaranteeReference

	// GuaranteeError is satisfied by error values.
	GuaranteeError

	// GuaranteeNull is satisfied by the null value.
	GuaranteeNull
)

const (
	// GuaranteeRealAny accepts any number, integral or not.
	GuaranteeRealAny = GuaranteeInteger | GuaranteeReal

	// GuaranteeAny accepts every value, errors included.
	GuaranteeAny = GuaranteeInteger | GuaranteeReal | GuaranteeBoolean | GuaranteeText |
		GuaranteeVector | GuaranteeReference | GuaranteeError | GuaranteeNull

	// GuaranteeNonError accepts every value except errors.
	GuaranteeNonError = GuaranteeAny &^ GuaranteeError
)

var guaranteeNames = []struct {
	flag TypeGuarantee
	name string
}{
	{GuaranteeInteger, "Integer"},
	{GuaranteeReal, "Real"},
	{GuaranteeBoolean, "Boolean"},
	{GuaranteeText, "Text"},
	{GuaranteeVector, "Vector"},
	{GuaranteeReference, "Reference"},
	{GuaranteeError, "Error"},
	{GuaranteeNull, "Null"},
}

// Satisfies reports whether g shares at least one category with required.
func (g TypeGuarantee) Satisfies(required TypeGuarantee) bool {
	return g&required != 0
}

// String renders the guarantee as "Integer|Real", with the common unions
// collapsed to their names.
func (g TypeGuarantee) String() string {
	switch g {
	case 0:
		return "None"
	case GuaranteeAny:
		return "Any"
	case GuaranteeNonError:
		return "NonError"
	case GuaranteeReal, GuaranteeRealAny:
		return "Real"
	}

	var parts []string
	for _, gn := range guaranteeNames {
		if g&gn.flag != 0 {
			parts = append(parts, gn.name)
		}
	}
	return strings.Join(parts, "|")
}
