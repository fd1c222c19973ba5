package repository

import (
	"MenuHub/entity"
	"context"
	"errors"
	"fmt"
	"time"
)

func (s *Supabase) GetFiscalSettings(_ context.Context, companyID string) (*entity.FiscalSettings, error) {
	var rows []entity.FiscalSettings
	_, err := s.client.From(fiscalTable).
		Select("company_id,focus_token,ambiente,nfce_enabled", "", false).
		Eq("company_id", companyID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select fiscal settings: %w", err)
	}
	settings, err := first(rows)
	if errors.Is(err, errNoRows) {
		return nil, entity.ErrFiscalNotConfigured
	}
	return settings, nil
}

func (s *Supabase) SaveNfce(_ context.Context, rec *entity.NfceRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	var rows []entity.NfceRecord
	_, err := s.client.From(nfceTable).
		Upsert(rec, "company_id,ref", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("upsert nfce: %w", err)
	}
	return nil
}
