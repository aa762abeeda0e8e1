package main

import (
	"errors"

	"github.com/matsen/vocabmap/internal/config"
	"github.com/matsen/vocabmap/internal/session"
)

// mustLoadConfig loads the global config, exiting on parse errors.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// resolveSessionsRoot returns the sessions directory, preferring the
// --sessions flag over config and environment.
func resolveSessionsRoot() string {
	if sessionsRoot != "" {
		return config.ExpandTilde(sessionsRoot)
	}
	return mustLoadConfig().ResolveSessionsRoot()
}

// mustLoadSession loads a session by name, exiting with a session error
// naming the missing artifact on failure.
func mustLoadSession(root, name string) *session.Session {
	s, err := session.Load(root, name)
	if err != nil {
		var storageErr *session.StorageError
		if errors.As(err, &storageErr) {
			exitWithError(ExitSessionError, "loading session %s: %v", name, err)
		}
		exitWithError(ExitError, "loading session %s: %v", name, err)
	}
	return s
}

// mustSaveMatches persists the session's match snapshot, exiting on failure.
func mustSaveMatches(root string, s *session.Session) {
	if err := session.SaveMatches(root, s); err != nil {
		exitWithError(ExitError, "saving matches: %v", err)
	}
}
