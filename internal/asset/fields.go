package asset

// Field names a column the service reads directly.
type Field string

// Identity fields, in match precedence order.
const (
	FieldSerialNo  Field = "Mc Serial No"
	FieldHostName  Field = "Host Name"
	FieldIPAddress Field = "IP Address"
)

// IdentityFields lists the fields used to locate a record.
var IdentityFields = []Field{FieldSerialNo, FieldHostName, FieldIPAddress}

func (f Field) String() string { return string(f) }

// identityNames returns IdentityFields as plain column names.
func identityNames() []string {
	names := make([]string, len(IdentityFields))
	for i, f := range IdentityFields {
		names[i] = string(f)
	}
	return names
}
