package parser

import (
	"encoding/json"
	"strconv"
)

// MessageBuilder assembles a Message from raw request fields.
type MessageBuilder struct {
	addresses *AddressParser
}

// NewMessageBuilder creates a MessageBuilder backed by the given AddressParser.
func NewMessageBuilder(addresses *AddressParser) *MessageBuilder {
	if addresses == nil {
		addresses = NewAddressParser(DefaultDelimiter)
	}
	return &MessageBuilder{addresses: addresses}
}

// Build assembles a Message from six positional raw values. It never fails:
// values that cannot be used become absent fields.
func (b *MessageBuilder) Build(from, to, cc, bcc, subject, content any) *Message {
	msg := &Message{
		To:      b.addresses.ParseAddressList(to),
		Cc:      b.addresses.ParseAddressList(cc),
		Bcc:     b.addresses.ParseAddressList(bcc),
		Subject: simpleText(subject),
		Content: simpleText(content),
	}
	if addr, err := b.addresses.ParseAddress(from); err == nil {
		msg.From = addr
	}
	return msg
}

// BuildFromFields reads the named request fields from a string-keyed map.
// Missing keys are absent inputs.
func (b *MessageBuilder) BuildFromFields(fields map[string]any) *Message {
	return b.Build(
		fields[FieldFrom],
		fields[FieldTo],
		fields[FieldCc],
		fields[FieldBcc],
		fields[FieldSubject],
		fields[FieldContent],
	)
}

// simpleText keeps strings and numbers whose text form is non-empty.
func simpleText(raw any) *string {
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case json.Number:
		text = v.String()
	case int:
		text = strconv.Itoa(v)
	case int32:
		text = strconv.FormatInt(int64(v), 10)
	case int64:
		text = strconv.FormatInt(v, 10)
	case uint:
		text = strconv.FormatUint(uint64(v), 10)
	case uint64:
		text = strconv.FormatUint(v, 10)
	case float32:
		text = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil
	}
	if text == "" {
		return nil
	}
	return &text
}
