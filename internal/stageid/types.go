package stageid

// Kind is the first segment of an address.
type Kind string

// Stage kinds.
const (
	Core       Kind = "core"
	Component  Kind = "component"
	Automation Kind = "automation"
)

// Address is the structured representation of a stage identifier.
type Address struct {
	Kind Kind
	// Domain is set for component stages only.
	Domain string
	ID     string
	// Index is 0 for the first stage with this path, then 2, 3...
	Index int
}

// CoreAddress returns the address of the core stage.
func CoreAddress() *Address {
	return &Address{Kind: Core}
}

// ComponentAddress returns the address of a component block's stage.
func ComponentAddress(domain, id string) *Address {
	return &Address{Kind: Component, Domain: domain, ID: id}
}

// AutomationAddress returns the address of an automation's stage.
func AutomationAddress(id string) *Address {
	return &Address{Kind: Automation, ID: id}
}

// WithIndex returns a copy of a carrying index i.
func (a *Address) WithIndex(i int) *Address {
	cp := *a
	cp.Index = i
	return &cp
}
