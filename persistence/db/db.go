package db

import "time"

type DataModel struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}
