package domain

import "strings"

// MaskResidentNumber keeps the birth-date half and the first digit of
// the serial half of a 13-digit resident registration number, e.g.
// "880101-1******". Values that are not a full resident number are
// returned unchanged.
func MaskResidentNumber(residentNumber string) string {
	cleaned := strings.ReplaceAll(residentNumber, "-", "")
	if len(cleaned) != 13 || !digitsOnly(cleaned) {
		return residentNumber
	}
	return cleaned[:6] + "-" + cleaned[6:7] + "******"
}

// ValidateResidentNumber checks the length, date fields, gender code
// and check digit of a resident registration number.
func ValidateResidentNumber(residentNumber string) bool {
	cleaned := strings.ReplaceAll(residentNumber, "-", "")
	if len(cleaned) != 13 || !digitsOnly(cleaned) {
		return false
	}

	month := int(cleaned[2]-'0')*10 + int(cleaned[3]-'0')
	day := int(cleaned[4]-'0')*10 + int(cleaned[5]-'0')
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}

	genderCode := int(cleaned[6] - '0')
	if genderCode < 1 || genderCode > 4 {
		return false
	}

	weights := []int{2, 3, 4, 5, 6, 7, 8, 9, 2, 3, 4, 5}
	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(cleaned[i]-'0') * weights[i]
	}

	checkDigit := (11 - sum%11) % 10
	return checkDigit == int(cleaned[12]-'0')
}

// DigitsOnlyAccountNumber strips every non-digit rune, the normalized
// form used for cross-source account matching.
func DigitsOnlyAccountNumber(accountNumber string) string {
	var b strings.Builder
	for _, r := range accountNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsOnly(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
