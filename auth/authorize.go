package auth

import "github.com/jjpaste/jjbin/models"

// Authorization is a pure function of the identity and the target; it never
// looks at which mechanism produced the identity.

func ownsPaste(id Identity, p *models.Paste) bool {
	if !id.IsAuthenticated() {
		return false
	}
	return p.UserID != nil && *p.UserID == id.User().ID
}

// CanReadPaste reports whether id may view p. Public pastes are readable by
// anyone; private pastes only by their owner or a superuser.
func CanReadPaste(id Identity, p *models.Paste) bool {
	if p.IsPublic {
		return true
	}
	return ownsPaste(id, p) || (id.IsAuthenticated() && id.User().IsSuperuser)
}

// CanWritePaste reports whether id may modify p. Ownership, not visibility,
// gates writes.
func CanWritePaste(id Identity, p *models.Paste) bool {
	return ownsPaste(id, p) || (id.IsAuthenticated() && id.User().IsSuperuser)
}

// CanDeletePaste reports whether id may delete p.
func CanDeletePaste(id Identity, p *models.Paste) bool {
	return CanWritePaste(id, p)
}

// CanDeleteUser reports whether id may delete target. Only superusers may
// delete accounts, and a superuser may delete themself or any non-superuser
// but never another superuser.
func CanDeleteUser(id Identity, target *models.User) bool {
	if !id.IsAuthenticated() || !id.User().IsSuperuser {
		return false
	}
	if target.IsSuperuser && id.User().ID != target.ID {
		return false
	}
	return true
}
