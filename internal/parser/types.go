package parser

import "errors"

// ErrInvalidInput is returned when a raw field is absent or not text.
var ErrInvalidInput = errors.New("parser: input is not a string")

// DefaultDelimiter separates entries of a to/cc/bcc field.
const DefaultDelimiter = ','

// restrictedChars are removed from every parsed display name and email text.
const restrictedChars = ",<>"

// Field names of the request surface.
const (
	FieldFrom    = "from"
	FieldTo      = "to"
	FieldCc      = "cc"
	FieldBcc     = "bcc"
	FieldSubject = "subject"
	FieldContent = "content"
)

// Address is a display name and email text pair extracted from free text.
// Neither part is validated as an RFC 5322 address.
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddressList is an ordered list of addresses. A nil list means the field was
// absent, which is distinct from a present list.
type AddressList []Address

// Message is the structured email assembled from the raw request fields.
// Nil pointers and nil lists mark absent fields.
type Message struct {
	From    *Address    `json:"from"`
	To      AddressList `json:"to"`
	Cc      AddressList `json:"cc"`
	Bcc     AddressList `json:"bcc"`
	Subject *string     `json:"subject"`
	Content *string     `json:"content"`
}

// HasMandatoryFields reports whether from, to, subject and content are all present.
func (m *Message) HasMandatoryFields() bool {
	return m != nil && m.From != nil && m.To != nil && m.Subject != nil && m.Content != nil
}
