package enums

import "fmt"

// CreditType identifies one of the three consumable balances on a profile.
type CreditType string

const (
	CreditChat      CreditType = "chat"
	CreditDiagnosis CreditType = "diagnosis"
	CreditScan      CreditType = "scan"
)

var validCreditTypes = []CreditType{
	CreditChat,
	CreditDiagnosis,
	CreditScan,
}

// String implements fmt.Stringer.
func (c CreditType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CreditType) IsValid() bool {
	for _, candidate := range validCreditTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCreditType converts raw input into a CreditType.
func ParseCreditType(value string) (CreditType, error) {
	for _, candidate := range validCreditTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit type %q", value)
}
