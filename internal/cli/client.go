package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/chat"
)

// newClient builds the API client from the loaded configuration.
func newClient() *api.Client {
	tokenPath := cfg.Server.TokenPath
	if tokenPath == "" {
		tokenPath = api.DefaultTokenPath()
	}
	return api.NewClient(cfg.ServerURL(), api.NewFileTokenStore(tokenPath))
}

// newStore builds a chat store for the resolved project.
func newStore() (*chat.Store, error) {
	project, err := projectID()
	if err != nil {
		return nil, err
	}
	return chat.NewStore(project, newClient()), nil
}

// wrapAuthError turns auth failures into actionable messages.
func wrapAuthError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrAuthExpired) {
		return fmt.Errorf("session expired: run 'strand login' to authenticate again")
	}
	if errors.Is(err, api.ErrNoToken) {
		return fmt.Errorf("not logged in: run 'strand login' first")
	}
	return err
}

// resolveSession loads the project's sessions and finds one by id or
// title prefix, so commands accept either.
func resolveSession(ctx context.Context, client *api.Client, project, ref string) (api.Session, error) {
	sessions, err := client.ListSessions(ctx, project)
	if err != nil {
		return api.Session{}, wrapAuthError(err)
	}
	for _, s := range sessions {
		if s.ID == ref {
			return s, nil
		}
	}
	var match *api.Session
	for i, s := range sessions {
		if len(ref) > 0 && len(s.Title) >= len(ref) && s.Title[:len(ref)] == ref {
			if match != nil {
				return api.Session{}, fmt.Errorf("conversation %q is ambiguous", ref)
			}
			match = &sessions[i]
		}
	}
	if match == nil {
		return api.Session{}, fmt.Errorf("conversation %q not found", ref)
	}
	return *match, nil
}
