package domain

// ListChange announces that the registry published a new revision of the
// list of one component kind.
type ListChange struct {
	Kind     Kind
	Revision uint64
	ETag     string
}

type ListChangeEmitter interface {
	EmitListChange(change ListChange)
}
