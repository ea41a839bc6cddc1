package membership

// Membership links a user to an organization.
type Membership struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	IsActive       bool   `json:"is_active"`
}
