package kv

import (
	"encoding/json"
	"errors"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
)

var analysisPrefix = []byte("analyses:")

func analysisKey(id analysis.AnalysisID) []byte {
	return append(append([]byte{}, analysisPrefix...), id.Bytes()...)
}

func NewAnalysisRepository(cfg conf.Persistence) (analysis.Repository, error) {
	opts := badger.DefaultOptions(filepath.Join(cfg.Host, cfg.Name)).
		WithLogger(nil)

	if cfg.InMem {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	repo := new(analysisRepository)
	repo.db = db
	return repo, nil
}

type analysisRepository struct {
	db *badger.DB
}

func (repo *analysisRepository) Store(a *analysis.Analysis) error {
	bs, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return repo.db.Update(func(txn *badger.Txn) error {
		return txn.Set(analysisKey(a.ID), bs)
	})
}

// List walks the keyspace backwards; keys embed the ULID so the newest
// analysis comes first.
func (repo *analysisRepository) List(limit int) ([]*analysis.Analysis, error) {
	results := make([]*analysis.Analysis, 0)

	err := repo.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = analysisPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, analysisPrefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(analysisPrefix); it.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var a *analysis.Analysis
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			})
			if err != nil {
				return err
			}

			results = append(results, a)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (repo *analysisRepository) Find(id analysis.AnalysisID) (*analysis.Analysis, error) {
	var a *analysis.Analysis

	err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(analysisKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return analysis.ErrAnalysisNotFound
			}

			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		})
	})

	if err != nil {
		return nil, err
	}

	return a, nil
}

func (repo *analysisRepository) Truncate() error {
	return repo.db.DropPrefix(analysisPrefix)
}

func (repo *analysisRepository) Close() error {
	return repo.db.Close()
}
