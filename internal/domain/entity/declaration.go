package entity

import "strings"

// NotProvided marks a declaration field absent from the query.
const NotProvided = "not provided"

// DeclarationField pairs a markup tag with its display name.
type DeclarationField struct {
	Tag  string
	Name string
}

// DeclarationFieldSet lists the known trade-declaration fields in report order.
var DeclarationFieldSet = []DeclarationField{
	{Tag: "submissiondate", Name: "Date Of Submission"},
	{Tag: "dateofdeparture", Name: "Date Of Departure"},
	{Tag: "place", Name: "Place"},
	{Tag: "address", Name: "Address"},
	{Tag: "changeindicator", Name: "Change Indicator"},
	{Tag: "carts", Name: "Cart Information"},
	{Tag: "cartnumberinformation", Name: "Cart Number Information"},
	{Tag: "sequencenumber", Name: "Sequence Number"},
	{Tag: "userid", Name: "User ID"},
	{Tag: "type", Name: "Transaction Type"},
	{Tag: "actioncode", Name: "Action Code"},
	{Tag: "mailboxid", Name: "Mailbox ID"},
}

// DeclarationFields holds one value per known field, keyed by tag.
type DeclarationFields map[string]string

// NewDeclarationFields returns a set with every field NotProvided.
func NewDeclarationFields() DeclarationFields {
	d := make(DeclarationFields, len(DeclarationFieldSet))
	for _, f := range DeclarationFieldSet {
		d[f.Tag] = NotProvided
	}
	return d
}

// Get returns the value for tag, NotProvided when unknown or missing.
func (d DeclarationFields) Get(tag string) string {
	if v, ok := d[tag]; ok && v != "" {
		return v
	}
	return NotProvided
}

// Provided counts fields that carry a value.
func (d DeclarationFields) Provided() int {
	n := 0
	for _, f := range DeclarationFieldSet {
		if d.Get(f.Tag) != NotProvided {
			n++
		}
	}
	return n
}

// Render writes the fields as "Field Name: value" lines in report order.
func (d DeclarationFields) Render() string {
	var b strings.Builder
	for i, f := range DeclarationFieldSet {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(d.Get(f.Tag))
	}
	return b.String()
}

// ParseDeclarationSummary reads an extraction summary of "Field Name: value"
// lines. Field names may also be given as their tag. Lines that do not name a
// known field are ignored and unmentioned fields stay NotProvided.
func ParseDeclarationSummary(summary string) DeclarationFields {
	d := NewDeclarationFields()
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field, ok := lookupDeclarationField(name)
		if !ok {
			continue
		}
		d[field.Tag] = normaliseDeclarationValue(value)
	}
	return d
}

func lookupDeclarationField(name string) (DeclarationField, bool) {
	name = strings.Trim(strings.TrimSpace(name), "*<>/` ")
	for _, f := range DeclarationFieldSet {
		if strings.EqualFold(name, f.Name) || strings.EqualFold(name, f.Tag) {
			return f, true
		}
	}
	return DeclarationField{}, false
}

func normaliseDeclarationValue(value string) string {
	value = strings.Trim(strings.TrimSpace(value), "*`\"'[] ")
	if value == "" || strings.EqualFold(value, NotProvided) {
		return NotProvided
	}
	return value
}
