package valueobject

import (
	"fmt"
	"strings"
)

// DocumentType distinguishes individual and company tax ids
type DocumentType string

const (
	DocumentCPF  DocumentType = "CPF"
	DocumentCNPJ DocumentType = "CNPJ"
)

// Document is a validated CPF or CNPJ, stored as digits only
type Document struct {
	number string
	kind   DocumentType
}

// ParseDocument accepts a CPF (11 digits) or CNPJ (14 digits) with or without punctuation
func ParseDocument(raw string) (Document, error) {
	digits := OnlyDigits(raw)
	switch len(digits) {
	case 11:
		if !IsValidCPF(digits) {
			return Document{}, fmt.Errorf("invalid CPF")
		}
		return Document{number: digits, kind: DocumentCPF}, nil
	case 14:
		if !IsValidCNPJ(digits) {
			return Document{}, fmt.Errorf("invalid CNPJ")
		}
		return Document{number: digits, kind: DocumentCNPJ}, nil
	default:
		return Document{}, fmt.Errorf("document must be a CPF or CNPJ")
	}
}

// Number returns the digits
func (d Document) Number() string { return d.number }

// Type returns CPF or CNPJ
func (d Document) Type() DocumentType { return d.kind }

// IsCompany reports whether the document is a CNPJ
func (d Document) IsCompany() bool { return d.kind == DocumentCNPJ }

// Formatted returns 000.000.000-00 or 00.000.000/0000-00
func (d Document) Formatted() string {
	n := d.number
	switch d.kind {
	case DocumentCPF:
		return n[:3] + "." + n[3:6] + "." + n[6:9] + "-" + n[9:]
	case DocumentCNPJ:
		return n[:2] + "." + n[2:5] + "." + n[5:8] + "/" + n[8:12] + "-" + n[12:]
	}
	return n
}

func (d Document) String() string { return d.number }

// OnlyDigits strips every non-digit rune
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// IsValidCPF checks the two CPF check digits
func IsValidCPF(raw string) bool {
	cpf := OnlyDigits(raw)
	if len(cpf) != 11 || allSame(cpf) {
		return false
	}
	digit := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(cpf[i]-'0') * (n + 1 - i)
		}
		rest := (sum * 10) % 11
		if rest == 10 {
			rest = 0
		}
		return rest
	}
	return digit(9) == int(cpf[9]-'0') && digit(10) == int(cpf[10]-'0')
}

// IsValidCNPJ checks the two CNPJ check digits
func IsValidCNPJ(raw string) bool {
	cnpj := OnlyDigits(raw)
	if len(cnpj) != 14 || allSame(cnpj) {
		return false
	}
	weights1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	weights2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	digit := func(weights []int) int {
		sum := 0
		for i, w := range weights {
			sum += int(cnpj[i]-'0') * w
		}
		rest := sum % 11
		if rest < 2 {
			return 0
		}
		return 11 - rest
	}
	return digit(weights1) == int(cnpj[12]-'0') && digit(weights2) == int(cnpj[13]-'0')
}
