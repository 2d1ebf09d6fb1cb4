package domain

// Identity is the verified caller handed to every operation by the
// authentication layer: who is calling, as which role, and from which home
// center (nil for roles that are not center-bound).
//
// The core trusts this identity was authenticated upstream, but scoped
// operations still re-validate role/center consistency against the data store
// on every access; an Identity is a claim, not an authorization.
type Identity struct {
	UserID   UserID
	Role     Role
	CenterID *CenterID
}

// HasCenter reports whether the caller carries a home center.
func (i Identity) HasCenter() bool {
	return i.CenterID != nil && !i.CenterID.IsNil()
}
