package entity

// MemberSummary is the part of a loyalty member shown alongside an order.
type MemberSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CustomerRef is either an unresolved member id or a resolved summary.
type CustomerRef struct {
	id      int64
	summary *MemberSummary
}

// UnresolvedCustomer references a member by id only.
func UnresolvedCustomer(id int64) CustomerRef {
	return CustomerRef{id: id}
}

// ResolvedCustomer references a member whose record was loaded.
func ResolvedCustomer(summary MemberSummary) CustomerRef {
	return CustomerRef{id: summary.ID, summary: &summary}
}

// ID returns the referenced member id.
func (c CustomerRef) ID() int64 {
	return c.id
}

// Resolved returns the member summary when it was loaded.
func (c CustomerRef) Resolved() (MemberSummary, bool) {
	if c.summary == nil {
		return MemberSummary{}, false
	}
	return *c.summary, true
}
