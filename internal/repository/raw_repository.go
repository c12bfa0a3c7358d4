package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"robovac/internal/model"
)

// RawRepository persists raw product records keyed by source_id, so a
// re-crawl refreshes the stored capture instead of duplicating it.
type RawRepository struct {
	DB *sql.DB
}

func (r *RawRepository) Save(p model.RawProduct) error {
	attrs, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes for %s: %w", p.SourceID, err)
	}

	var exists bool
	err = r.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM vacuum_raw_products WHERE source_id = $1)", p.SourceID,
	).Scan(&exists)
	if err != nil {
		return err
	}

	rating := sql.NullFloat64{}
	if p.Rating != nil {
		rating = sql.NullFloat64{Float64: *p.Rating, Valid: true}
	}
	ratingCount := sql.NullInt64{}
	if p.RatingCount != nil {
		ratingCount = sql.NullInt64{Int64: int64(*p.RatingCount), Valid: true}
	}

	if exists {
		_, err = r.DB.Exec(`
			UPDATE vacuum_raw_products
			SET source_url = $1, product_name = $2, price_raw = $3,
			    rating = $4, rating_count = $5, attributes = $6, fetch_status = $7
			WHERE source_id = $8
		`, p.SourceURL, p.Name, p.PriceRaw, rating, ratingCount, attrs, string(p.Status), p.SourceID)
	} else {
		_, err = r.DB.Exec(`
			INSERT INTO vacuum_raw_products
			(id, source_id, source_url, product_name, price_raw, rating, rating_count, attributes, fetch_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, uuid.New().String(), p.SourceID, p.SourceURL, p.Name, p.PriceRaw, rating, ratingCount, attrs, string(p.Status))
	}

	return err
}

func (r *RawRepository) List() ([]model.RawProduct, error) {
	rows, err := r.DB.Query(`
		SELECT source_id, source_url, product_name, price_raw, rating, rating_count, attributes, fetch_status
		FROM vacuum_raw_products
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.RawProduct
	for rows.Next() {
		var (
			p           model.RawProduct
			rating      sql.NullFloat64
			ratingCount sql.NullInt64
			attrs       []byte
			status      string
		)
		if err := rows.Scan(&p.SourceID, &p.SourceURL, &p.Name, &p.PriceRaw, &rating, &ratingCount, &attrs, &status); err != nil {
			return nil, err
		}
		if rating.Valid {
			p.Rating = &rating.Float64
		}
		if ratingCount.Valid {
			n := int(ratingCount.Int64)
			p.RatingCount = &n
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
				return nil, fmt.Errorf("decode attributes for %s: %w", p.SourceID, err)
			}
		}
		p.Status = model.FetchStatus(status)
		list = append(list, p)
	}

	return list, rows.Err()
}
