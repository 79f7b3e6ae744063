package model

// Requester is the authenticated caller a service acts on behalf of.
type Requester struct {
	UserID string
	Email  string
	Role   string
}

func (r Requester) Is(roles ...string) bool {
	for _, role := range roles {
		if r.Role == role {
			return true
		}
	}

	return false
}
