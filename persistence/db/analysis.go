package db

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
)

func NewAnalysisRepository(cfg conf.Persistence) (analysis.Repository, error) {
	filename := cfg.Host + "/" + cfg.Name + ".db"
	if cfg.InMem {
		filename = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(filename), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Analysis{}); err != nil {
		return nil, err
	}

	repo := new(analysisRepository)
	repo.db = db
	return repo, nil
}

type analysisRepository struct {
	db *gorm.DB
}

func (repo *analysisRepository) Store(a *analysis.Analysis) error {
	data := NewAnalysis(a) // convert Domain to Data model
	return repo.db.Save(data).Error
}

func (repo *analysisRepository) List(limit int) ([]*analysis.Analysis, error) {
	var analyses []*Analysis

	tx := repo.db.Order("id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	if err := tx.Find(&analyses).Error; err != nil {
		return nil, err
	}

	results := make([]*analysis.Analysis, 0, len(analyses))
	for _, a := range analyses {
		result, err := a.reconstitute()
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return results, nil
}

func (repo *analysisRepository) Find(id analysis.AnalysisID) (*analysis.Analysis, error) {
	var a *Analysis

	result := repo.db.Take(&a, "id = ?", id.String())
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, analysis.ErrAnalysisNotFound
		}

		return nil, err
	}

	return a.reconstitute()
}

func (repo *analysisRepository) Truncate() error {
	return repo.db.Exec("DELETE FROM analyses").Error
}

func (repo *analysisRepository) Close() error {
	sqlDB, err := repo.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
