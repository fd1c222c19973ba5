package core

import (
	"MenuHub/entity"
	"MenuHub/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

func (c *Core) SendPasswordReset(ctx context.Context, email string) error {
	return c.sendAuthLink(ctx, entity.EmailKindReset, entity.LinkRecovery, email, c.resetRedirect)
}

func (c *Core) SendConfirmation(ctx context.Context, email string) error {
	return c.sendAuthLink(ctx, entity.EmailKindConfirmation, entity.LinkConfirmation, email, c.confirmRedirect)
}

// sendAuthLink reports success for addresses without an account.
func (c *Core) sendAuthLink(ctx context.Context, kind string, link entity.LinkKind, email, redirect string) error {
	log := c.log.With(
		slog.String("kind", kind),
		sl.Secret("email", email),
	)

	allowed, err := c.repo.CheckEmailRateLimit(ctx, email, kind)
	if err != nil {
		log.With(sl.Err(err)).Error("email rate limit check")
		return fmt.Errorf("%w: rate limit check", entity.ErrServiceUnavailable)
	}
	if !allowed {
		return entity.ErrRateLimited
	}

	if c.mailer == nil {
		return fmt.Errorf("%w: mailer", entity.ErrServiceUnavailable)
	}

	url, err := c.repo.GenerateLink(ctx, link, email, redirect)
	if errors.Is(err, entity.ErrUserNotFound) {
		log.Info("no account for address, email skipped")
		return nil
	}
	if err != nil {
		log.With(sl.Err(err)).Error("generate link")
		return fmt.Errorf("%w: generate link", entity.ErrServiceUnavailable)
	}

	if err = c.mailer.SendLink(ctx, kind, email, url); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrServiceUnavailable, err)
	}

	log.Info("auth email sent")
	return nil
}
