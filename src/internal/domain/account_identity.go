package domain

import "strings"

// AccountIdentity is the normalized bank-account identity used to
// cross-match records between stores: trimmed holder name plus the
// digits-only account number.
type AccountIdentity struct {
	Holder        string
	AccountDigits string
}

func NewAccountIdentity(holder, accountNumber string) AccountIdentity {
	return AccountIdentity{
		Holder:        strings.TrimSpace(holder),
		AccountDigits: DigitsOnlyAccountNumber(accountNumber),
	}
}

func (a AccountIdentity) Empty() bool {
	return a.Holder == "" || a.AccountDigits == ""
}
