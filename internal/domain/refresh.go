package domain

// RefreshTarget names a remote endpoint a category can be refreshed
// from. Only PERSONAL and LOCAL have remote sources; SAVED is local
// state and has no target type, which keeps "refresh SAVED" out of the
// API entirely.
type RefreshTarget interface {
	Category() Category
	refreshTarget()
}

// PersonalTarget refreshes the PERSONAL category from the user's saved
// source ids.
type PersonalTarget struct {
	SourceIDs []string
}

func (PersonalTarget) Category() Category { return CategoryPersonal }
func (PersonalTarget) refreshTarget()     {}

// LocalTarget refreshes the LOCAL category by country code.
type LocalTarget struct {
	Country string
}

func (LocalTarget) Category() Category { return CategoryLocal }
func (LocalTarget) refreshTarget()     {}
