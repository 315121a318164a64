package analysis

type Repository interface {
	// Command

	Store(a *Analysis) error

	// Query

	List(limit int) ([]*Analysis, error)
	Find(id AnalysisID) (*Analysis, error)

	Truncate() error
	Close() error
}
