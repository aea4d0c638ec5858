package valueobject

import (
	"fmt"
	"strings"
)

// Address is a Brazilian postal address. Zero value is the empty address
type Address struct {
	ZipCode    string `json:"zip_code"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	IBGECode   string `json:"ibge_code"`
}

var brazilianStates = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {}, "ES": {}, "GO": {},
	"MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {}, "PB": {}, "PR": {}, "PE": {}, "PI": {},
	"RJ": {}, "RN": {}, "RS": {}, "RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// NewAddress normalizes and validates an address. Every field is optional
// but the ones that are set must be well formed
func NewAddress(a Address) (Address, error) {
	a.ZipCode = OnlyDigits(a.ZipCode)
	a.Street = strings.TrimSpace(a.Street)
	a.Number = strings.TrimSpace(a.Number)
	a.Complement = strings.TrimSpace(a.Complement)
	a.District = strings.TrimSpace(a.District)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	a.IBGECode = OnlyDigits(a.IBGECode)

	if a.ZipCode != "" && !IsValidCEP(a.ZipCode) {
		return Address{}, fmt.Errorf("zip code must have 8 digits")
	}
	if a.State != "" {
		if _, ok := brazilianStates[a.State]; !ok {
			return Address{}, fmt.Errorf("invalid state: %s", a.State)
		}
	}
	if a.IBGECode != "" && len(a.IBGECode) != 7 {
		return Address{}, fmt.Errorf("IBGE city code must have 7 digits")
	}
	if len(a.Street) > 200 || len(a.Complement) > 100 || len(a.District) > 100 || len(a.City) > 100 {
		return Address{}, fmt.Errorf("address field too long")
	}
	return a, nil
}

// IsEmpty reports whether no field is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// NeedsLookup reports whether only the zip code is filled in
func (a Address) NeedsLookup() bool {
	return a.ZipCode != "" && a.Street == "" && a.City == ""
}

// Merge fills blank fields of a from other, keeping what a already has
func (a Address) Merge(other Address) Address {
	pick := func(mine, theirs string) string {
		if mine != "" {
			return mine
		}
		return theirs
	}
	return Address{
		ZipCode:    pick(a.ZipCode, other.ZipCode),
		Street:     pick(a.Street, other.Street),
		Number:     pick(a.Number, other.Number),
		Complement: pick(a.Complement, other.Complement),
		District:   pick(a.District, other.District),
		City:       pick(a.City, other.City),
		State:      pick(a.State, other.State),
		IBGECode:   pick(a.IBGECode, other.IBGECode),
	}
}

// FormattedZip returns the zip as 00000-000
func (a Address) FormattedZip() string {
	if len(a.ZipCode) != 8 {
		return a.ZipCode
	}
	return a.ZipCode[:5] + "-" + a.ZipCode[5:]
}

// String renders a single-line address
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	var parts []string
	line := a.Street
	if a.Number != "" {
		line += ", " + a.Number
	}
	if a.Complement != "" {
		line += " - " + a.Complement
	}
	if line != "" {
		parts = append(parts, line)
	}
	if a.District != "" {
		parts = append(parts, a.District)
	}
	if a.City != "" {
		city := a.City
		if a.State != "" {
			city += "/" + a.State
		}
		parts = append(parts, city)
	}
	if a.ZipCode != "" {
		parts = append(parts, "CEP "+a.FormattedZip())
	}
	return strings.Join(parts, ", ")
}

// IsValidCEP reports whether s is an 8-digit zip code after stripping punctuation
func IsValidCEP(s string) bool {
	return len(OnlyDigits(s)) == 8
}
