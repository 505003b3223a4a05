package domain

// Identity is the pre-authenticated caller forwarded by the gateway
type Identity struct {
	UserID         string
	Roles          []string
	OrganizationID string
	TeamIDs        []string
}

// HasRole reports whether the caller carries role
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// InTeam reports whether the caller belongs to teamID
func (i Identity) InTeam(teamID string) bool {
	for _, t := range i.TeamIDs {
		if t == teamID {
			return true
		}
	}
	return false
}
