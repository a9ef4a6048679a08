package models

// Role is the closed set of account roles. Authorization is checked against
// the capability table below, not inferred from menu visibility.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStaff     Role = "staff"     // Staf Kepegawaian
	RoleVerifier  Role = "verifier"  // Pejabat Verifikator
	RoleLeader    Role = "leader"    // Pimpinan
	RolePersonnel Role = "personnel" // Personel
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleVerifier, RoleLeader, RolePersonnel:
		return true
	}
	return false
}

// Operations gated by role.
const (
	OpManageUsers     = "users:manage"
	OpManagePersonnel = "personnel:manage"
	OpSubmitRequest   = "requests:submit"
	OpVerifyRequest   = "requests:verify"
	OpViewAuditLog    = "audit:view"
	OpViewReports     = "reports:view"
)

var rolePermissions = map[Role][]string{
	RoleAdmin:     {OpManageUsers, OpManagePersonnel, OpSubmitRequest, OpViewAuditLog, OpViewReports},
	RoleStaff:     {OpManagePersonnel, OpSubmitRequest, OpViewReports},
	RoleVerifier:  {OpVerifyRequest},
	RoleLeader:    {OpViewAuditLog, OpViewReports},
	RolePersonnel: {OpSubmitRequest},
}

// Can reports whether the role is allowed to perform op.
func (r Role) Can(op string) bool {
	for _, p := range rolePermissions[r] {
		if p == op {
			return true
		}
	}
	return false
}

// verifierRoleByType maps each request type to the role allowed to decide it.
// Currently every type is decided by the verifier role; the table is the
// extension point if types ever get dedicated deciders.
var verifierRoleByType = map[RequestType]Role{
	TypeMutation:   RoleVerifier,
	TypeRetirement: RoleVerifier,
	TypePromotion:  RoleVerifier,
	TypeCorrection: RoleVerifier,
}

// VerifierRoleFor returns the role required to verify requests of type t.
func VerifierRoleFor(t RequestType) Role {
	return verifierRoleByType[t]
}
