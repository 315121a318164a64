package persistence

import (
	"errors"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
	"github.com/flarexio/devguide/persistence/db"
	"github.com/flarexio/devguide/persistence/inmem"
	"github.com/flarexio/devguide/persistence/kv"
)

func NewAnalysisRepository(cfg conf.Persistence) (analysis.Repository, error) {
	switch cfg.Driver {
	case conf.SQLite:
		return db.NewAnalysisRepository(cfg)
	case conf.BadgerDB:
		return kv.NewAnalysisRepository(cfg)
	case conf.InMem:
		return inmem.NewAnalysisRepository()
	default:
		return nil, errors.New("driver not supported")
	}
}
