package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
)

var errInvalidToken = errors.NewSentinel("invalid API token")

type apiToken struct {
	investigator string
	hash         [sha256.Size]byte
}

// apiTokens are the investigator tokens. Only their hashes are kept in memory.
type apiTokens []apiToken

// parseAPITokens reads name:token pairs.
func parseAPITokens(pairs []string) (apiTokens, error) {
	tokens := make(apiTokens, 0, len(pairs))
	for i, pair := range pairs {
		name, token, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		token = strings.TrimSpace(token)
		if !ok || name == "" || token == "" {
			return nil, errors.Wrap(errInvalidToken, "expected name:token", slog.Int("index", i))
		}
		tokens = append(tokens, apiToken{investigator: name, hash: sha256.Sum256([]byte(token))})
	}
	return tokens, nil
}

// lookup returns the investigator owning the token. Every token is compared in constant time.
func (t apiTokens) lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	hash := sha256.Sum256([]byte(token))
	investigator := ""
	for _, candidate := range t {
		if subtle.ConstantTimeCompare(hash[:], candidate.hash[:]) == 1 {
			investigator = candidate.investigator
		}
	}
	return investigator, investigator != ""
}

func (t apiTokens) hasInvestigator(name string) bool {
	for _, candidate := range t {
		if candidate.investigator == name {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
