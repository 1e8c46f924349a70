package main

import (
	"errors"

	"igsaved/pkg/auth"
	"igsaved/pkg/config"
	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/instagram"
	"igsaved/pkg/logger"
	"igsaved/pkg/ratelimit"
)

// newClient builds the Instagram client from the configuration
func newClient(cfg *config.Config, log logger.Logger) *instagram.Client {
	pacer := ratelimit.NewPacer(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
	return instagram.NewClient(instagram.ClientConfig{
		BaseURL:   cfg.Instagram.BaseURL,
		UserAgent: cfg.Instagram.UserAgent,
		Timeout:   cfg.Instagram.Timeout,
	}, pacer, log)
}

// resolveSession finds the session ID to log in with. Explicit values from
// flags, environment or config file win over stored credentials. When
// nothing is found and ask is set, the user is prompted.
func resolveSession(cfg *config.Config, log logger.Logger, p *prompter, ask bool) (string, error) {
	if cfg.Instagram.SessionID != "" {
		log.Debug("using session ID from configuration")
		return cfg.Instagram.SessionID, nil
	}

	if manager, err := auth.NewManager(); err != nil {
		log.WithError(err).Debug("credential store unavailable")
	} else {
		var account *auth.Account
		if profile != "" {
			account, err = manager.Retrieve(profile)
		} else {
			account, err = manager.RetrieveDefault()
		}
		if err == nil {
			log.WithField("profile", account.Profile).Info("using stored credentials")
			return account.SessionID, nil
		}
		if profile != "" {
			return "", apperrors.Auth("no stored credentials for profile "+profile, err)
		}
		if !errors.Is(err, auth.ErrCredentialsNotFound) {
			log.WithError(err).Warn("failed to read stored credentials")
		}
	}

	if !ask {
		return "", apperrors.Auth("no session ID found; run 'igsaved auth login' or set IGSAVED_SESSION_ID", nil)
	}
	id, err := p.sessionID()
	if err != nil {
		return "", apperrors.Auth("failed to read session ID", err)
	}
	return id, nil
}
