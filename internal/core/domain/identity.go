package domain

// Identity is the principal resolved for one request. It is a closed set:
// AuthenticatedUser and AuthenticatedMachine are its only implementations.
type Identity interface {
	HasPermission(p Permission) bool
	// Identifier is a namespaced label for audit logs. It must never be used
	// for equality or authorization decisions.
	Identifier() string

	identity()
}

var (
	_ Identity = AuthenticatedUser{}
	_ Identity = AuthenticatedMachine{}
)

// AuthenticatedUser is an identity established through a login session.
type AuthenticatedUser struct {
	User User
}

func (AuthenticatedUser) identity() {}

func (a AuthenticatedUser) HasPermission(p Permission) bool {
	return userPolicy[a.User.Role][p]
}

func (a AuthenticatedUser) Identifier() string {
	return "user:" + a.User.Username
}

// AuthenticatedMachine is an identity established through a machine key.
type AuthenticatedMachine struct {
	Machine MachineKey
}

func (AuthenticatedMachine) identity() {}

func (a AuthenticatedMachine) HasPermission(p Permission) bool {
	return machinePolicy[p]
}

func (a AuthenticatedMachine) Identifier() string {
	return "machine:" + a.Machine.Description
}

// HasPermission reports whether id may perform p. A nil identity is denied.
func HasPermission(id Identity, p Permission) bool {
	switch v := id.(type) {
	case AuthenticatedUser:
		return v.HasPermission(p)
	case AuthenticatedMachine:
		return v.HasPermission(p)
	default:
		return false
	}
}

// Identifier returns the audit label for id, or "anonymous" for nil.
func Identifier(id Identity) string {
	switch v := id.(type) {
	case AuthenticatedUser:
		return v.Identifier()
	case AuthenticatedMachine:
		return v.Identifier()
	default:
		return "anonymous"
	}
}
