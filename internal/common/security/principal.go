package security

const (
	AdminTypeRegular = "Regular User"
	AdminTypeAdmin   = "Admin"
	AdminTypeSuper   = "Super Admin"

	QuizPermissionNone = "None"
	QuizPermissionOwn  = "Own"
	QuizPermissionAll  = "All"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	AdminType      string `json:"admin_type"`
	QuizPermission string `json:"quiz_permission"`
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.AdminType == AdminTypeSuper
}

func (p *Principal) IsAdminRole() bool {
	return p != nil && (p.AdminType == AdminTypeAdmin || p.AdminType == AdminTypeSuper)
}

// CanManageQuizzes gates the quiz write endpoints.
func (p *Principal) CanManageQuizzes() bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.IsAdminRole() && p.QuizPermission != QuizPermissionNone && p.QuizPermission != ""
}

// CanManageAllQuizzes lifts the created-by restriction on listings.
func (p *Principal) CanManageAllQuizzes() bool {
	return p.IsSuperAdmin() || (p.IsAdminRole() && p.QuizPermission == QuizPermissionAll)
}

// Owns reports whether p may act on a record created by ownerID.
// Super admins own everything.
func (p *Principal) Owns(ownerID string) bool {
	if !p.IsAdminRole() {
		return false
	}
	return p.IsSuperAdmin() || p.UserID == ownerID
}

// IsContestAdmin reports whether p administers a contest created by ownerID.
func (p *Principal) IsContestAdmin(ownerID string) bool {
	if p == nil {
		return false
	}
	return p.IsSuperAdmin() || (p.IsAdminRole() && p.UserID == ownerID)
}
