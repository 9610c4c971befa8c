// Package postgres loads question-bank categories from a JSONB column, for
// deployments that outgrow the flat quizdata directory.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiznix-service/internal/domain"
	"quiznix-service/internal/questionbank"
)

// BankLoader reads category documents from the categories table.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) Categories(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT id FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, id)
	}
	return categories, rows.Err()
}

func (l *BankLoader) Load(ctx context.Context, category string, lang domain.Language) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM categories WHERE id=$1`, category).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load category %s: %w", category, err)
	}
	var doc questionbank.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse category %s: %w", category, err)
	}
	return doc.ResolveAll(lang), nil
}
