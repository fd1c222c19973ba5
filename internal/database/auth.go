package repository

import (
	"MenuHub/entity"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/supabase-community/gotrue-go/types"
)

func (s *Supabase) CheckEmailRateLimit(_ context.Context, email, kind string) (bool, error) {
	body := s.client.Rpc("check_email_rate_limit", "", map[string]any{
		"p_email": email,
		"p_type":  kind,
	})
	var allowed bool
	if err := decodeRpc("check_email_rate_limit", body, &allowed); err != nil {
		return false, err
	}
	return allowed, nil
}

// GenerateLink creates a one-time auth link through the GoTrue admin API.
func (s *Supabase) GenerateLink(_ context.Context, kind entity.LinkKind, email, redirect string) (string, error) {
	resp, err := s.client.Auth.WithToken(s.serviceKey).AdminGenerateLink(types.AdminGenerateLinkRequest{
		Type:       types.LinkType(kind),
		Email:      email,
		RedirectTo: redirect,
	})
	if err != nil {
		return "", linkError(kind, err)
	}
	if resp.ActionLink == "" {
		return "", fmt.Errorf("generate %s link: empty action link", kind)
	}
	return resp.ActionLink, nil
}

var statusCodeRe = regexp.MustCompile(`status code (\d{3})`)

// linkError wraps a GoTrue failure with ErrUserNotFound when the address has
// no account. GoTrue reports that as 404, or 422 with a "not found" message.
func linkError(kind entity.LinkKind, err error) error {
	msg := err.Error()
	status := 0
	if m := statusCodeRe.FindStringSubmatch(msg); m != nil {
		status, _ = strconv.Atoi(m[1])
	}
	lower := strings.ToLower(msg)
	if status == 404 || (status == 422 && strings.Contains(lower, "not found")) {
		return fmt.Errorf("generate %s link: %w: %w", kind, entity.ErrUserNotFound, err)
	}
	return fmt.Errorf("generate %s link: %w", kind, err)
}
