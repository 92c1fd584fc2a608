package domain

import (
	dErrors "civreg/pkg/domain-errors"
)

// NIDANumber is a national identification number. NIDA issues 20-digit
// numbers; the registry stores them verbatim and enforces global uniqueness
// at the store layer.
type NIDANumber string

const nidaLength = 20

// ParseNIDANumber validates the raw input at trust boundaries.
func ParseNIDANumber(s string) (NIDANumber, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "NIDA number cannot be empty")
	}
	if len(s) != nidaLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "NIDA number must be 20 digits")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "NIDA number must contain only digits")
		}
	}
	return NIDANumber(s), nil
}

func (n NIDANumber) String() string { return string(n) }

func (n NIDANumber) IsZero() bool { return n == "" }
