package core

import (
	"MenuHub/entity"
	"MenuHub/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// HandleNfce issues or queries a consumer invoice for a company.
func (c *Core) HandleNfce(ctx context.Context, req *entity.NfceRequest) (*entity.NfceResult, error) {
	if c.fiscal == nil {
		return nil, fmt.Errorf("%w: fiscal service", entity.ErrServiceUnavailable)
	}

	settings, err := c.repo.GetFiscalSettings(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled || settings.Token == "" {
		return nil, entity.ErrFiscalNotConfigured
	}

	var result *entity.NfceResult
	switch req.Action {
	case entity.NfceActionIssue:
		result, err = c.fiscal.Issue(ctx, settings, req.Ref, req.Payload)
	case entity.NfceActionQuery:
		result, err = c.fiscal.Query(ctx, settings, req.Ref)
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownAction, req.Action)
	}
	if err != nil {
		return nil, err
	}

	rec := &entity.NfceRecord{
		CompanyID: req.CompanyID,
		OrderID:   req.OrderID,
		Ref:       req.Ref,
		Status:    result.Status,
		AccessKey: result.AccessKey,
		DanfeUrl:  result.DanfeUrl,
		Message:   result.MessageSefaz,
		UpdatedAt: time.Now(),
	}
	if err = c.repo.SaveNfce(ctx, rec); err != nil {
		c.log.With(
			slog.String("company_id", req.CompanyID),
			slog.String("ref", req.Ref),
			sl.Err(err),
		).Error("save nfce")
	}

	return result, nil
}
