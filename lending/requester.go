package lending

// Role is the requester's permission level.
type Role int

const (
	RoleRegular Role = iota
	RolePrivileged
)

func (r Role) String() string {
	if r == RolePrivileged {
		return "privileged"
	}
	return "regular"
}

// Requester is the identity a request acts as. It is never mutated by this package.
type Requester struct {
	ID   string
	Name string
	Role Role
}

func (r Requester) Privileged() bool { return r.Role == RolePrivileged }

// CanActOn reports whether r may mutate or view a loan owned by ownerID.
func (r Requester) CanActOn(ownerID string) bool {
	return r.Privileged() || r.ID == ownerID
}
