package parser

import "strings"

// ParseAddressList splits raw after every delimiter and parses each token.
// Empty tokens are kept, including a trailing one when raw ends with the
// delimiter. It returns nil when raw is not a string.
func (p *AddressParser) ParseAddressList(raw any) AddressList {
	text, ok := raw.(string)
	if !ok {
		return nil
	}

	// SplitAfter leaves the delimiter on the preceding token; parseText strips it.
	tokens := strings.SplitAfter(text, string(p.delimiter))

	list := make(AddressList, 0, len(tokens))
	for _, token := range tokens {
		list = append(list, p.parseText(token))
	}
	if len(list) == 0 {
		return nil
	}
	return list
}
