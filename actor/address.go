package actor

import "github.com/google/uuid"

// Address uniquely identifies an actor within a system: a human-readable
// name plus a generated id that disambiguates names reused after a prior
// occupant has died.
type Address struct {
	Name string
	ID   string
}

// NewAddress returns an Address for name with a fresh id.
func NewAddress(name string) Address {
	return Address{Name: name, ID: uuid.NewString()}
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Name + "#" + a.ID
}
