package domain

// allowedTargets is the complete role -> settable status table. A role that
// is not listed may not set any status.
var allowedTargets = [...]StatusSet{
	RoleVendor:  NewStatusSet(AllStatuses()...),
	RoleServer:  NewStatusSet(StatusServed),
	RoleKitchen: NewStatusSet(StatusReady),
	RoleBilling: NewStatusSet(StatusBilled, StatusCompleted),
}

func AllowedTargets(r Role) StatusSet {
	if !r.Valid() {
		return 0
	}
	return allowedTargets[r]
}

// MaySet reports whether r may move an order to target. Sequence is not
// enforced; only the table is consulted.
func (r Role) MaySet(target Status) bool {
	return AllowedTargets(r).Has(target)
}

// MayAmend reports whether r may change an order currently in status from.
// Completed orders are frozen for everyone but the owner, who may correct them.
func (r Role) MayAmend(from Status) bool {
	if from != StatusCompleted {
		return true
	}
	return r.IsOwner()
}
