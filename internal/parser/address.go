// Package parser turns loosely formatted request fields into a structured Message.
//
// Address text is disambiguated with a small set of order-sensitive rules: the
// last '<' in the text opens the email part, which runs to the next '>' or to the
// end of the text. Everything else, with every copy of the email text removed,
// becomes the display name.
package parser

import (
	"strings"
)

// AddressParser parses address text and delimited address lists.
type AddressParser struct {
	delimiter  rune
	restricted string
}

// NewAddressParser creates an AddressParser splitting lists on delimiter.
// The delimiter is always stripped from parsed values along with ',', '<' and '>'.
func NewAddressParser(delimiter rune) *AddressParser {
	restricted := restrictedChars
	if !strings.ContainsRune(restricted, delimiter) {
		restricted += string(delimiter)
	}
	return &AddressParser{
		delimiter:  delimiter,
		restricted: restricted,
	}
}

// Delimiter returns the list delimiter used by the parser.
func (p *AddressParser) Delimiter() rune {
	return p.delimiter
}

// ParseAddress parses one raw value into an Address.
// It returns ErrInvalidInput when raw is not a string.
func (p *AddressParser) ParseAddress(raw any) (*Address, error) {
	text, ok := raw.(string)
	if !ok {
		return nil, ErrInvalidInput
	}
	addr := p.parseText(text)
	return &addr, nil
}

func (p *AddressParser) parseText(text string) Address {
	open := strings.LastIndex(text, "<")
	if open < 0 {
		value := p.clean(text)
		return Address{Name: value, Email: value}
	}

	email := text[open+1:]
	if end := strings.Index(email, ">"); end >= 0 {
		email = email[:end]
	}

	// The email text is removed from the whole input, not only from between
	// the brackets, so a copy of it outside the brackets never reaches the name.
	name := p.clean(strings.ReplaceAll(text, email, ""))
	email = p.clean(email)

	if email != "" && name == "" {
		name = email
	}
	if name != "" && email == "" {
		email = name
	}
	return Address{Name: name, Email: email}
}

// clean drops restricted characters and surrounding whitespace.
func (p *AddressParser) clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(p.restricted, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
