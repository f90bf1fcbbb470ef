package model

// IdentityRecord holds the contact details used to fill lead-capture
// forms that gate document downloads. Read-only shared configuration.
type IdentityRecord struct {
	Name    string `toml:"name"`
	Email   string `toml:"email"`
	Phone   string `toml:"phone"`
	Company string `toml:"company"`
}

// DefaultIdentity returns the stock professional identity used when the
// operator does not configure one.
func DefaultIdentity() IdentityRecord {
	return IdentityRecord{
		Name:    "John Doe",
		Email:   "johndoe@email.com",
		Phone:   "555-123-4567",
		Company: "Real Estate Investments LLC",
	}
}
