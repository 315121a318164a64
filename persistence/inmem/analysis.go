package inmem

import (
	"bytes"
	"slices"
	"sync"

	"github.com/flarexio/devguide/analysis"
)

func NewAnalysisRepository() (analysis.Repository, error) {
	repo := new(analysisRepository)
	repo.analyses = make(map[analysis.AnalysisID]*analysis.Analysis)
	return repo, nil
}

type analysisRepository struct {
	analyses map[analysis.AnalysisID]*analysis.Analysis
	sync.RWMutex
}

func (repo *analysisRepository) Store(a *analysis.Analysis) error {
	repo.Lock()
	defer repo.Unlock()

	repo.analyses[a.ID] = a
	return nil
}

// List returns the newest analyses first. A limit of zero or less returns
// every analysis.
func (repo *analysisRepository) List(limit int) ([]*analysis.Analysis, error) {
	repo.RLock()
	defer repo.RUnlock()

	results := make([]*analysis.Analysis, 0, len(repo.analyses))
	for _, a := range repo.analyses {
		results = append(results, a)
	}

	slices.SortFunc(results, func(a, b *analysis.Analysis) int {
		return bytes.Compare(b.ID.Bytes(), a.ID.Bytes())
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (repo *analysisRepository) Find(id analysis.AnalysisID) (*analysis.Analysis, error) {
	repo.RLock()
	defer repo.RUnlock()

	a, ok := repo.analyses[id]
	if !ok {
		return nil, analysis.ErrAnalysisNotFound
	}

	return a, nil
}

func (repo *analysisRepository) Truncate() error {
	repo.Lock()
	defer repo.Unlock()

	clear(repo.analyses)
	return nil
}

func (repo *analysisRepository) Close() error {
	return nil
}
