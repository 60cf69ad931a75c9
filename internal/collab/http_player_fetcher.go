package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/faforever/game-session-engine/internal/model"
)

// HTTPPlayerFetcher implements PlayerFetcher against the upstream player/
// presence service over plain JSON-over-HTTP (no ecosystem HTTP client
// shows up anywhere in the retrieved stack, so this stays on net/http
// rather than importing one for a single GET).
//
// Every outbound request carries a signed service token (this engine's
// identity), and every response must carry one back identifying the player
// service, verified before the body is trusted — the mutual check auth.go's
// TokenSigner/VerifyServiceToken exist for.
type HTTPPlayerFetcher struct {
	baseURL string
	client  *http.Client
	signer  *TokenSigner
	secret  []byte
	logger  *zap.Logger
}

// NewHTTPPlayerFetcher builds a fetcher that signs outbound requests as
// service "session-engine" and verifies the "player-service" identity on
// responses, both using secret.
func NewHTTPPlayerFetcher(baseURL string, secret []byte, client *http.Client, logger *zap.Logger) *HTTPPlayerFetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPPlayerFetcher{
		baseURL: baseURL,
		client:  client,
		signer:  NewTokenSigner(secret, "session-engine"),
		secret:  secret,
		logger:  logger,
	}
}

type onlinePlayerResponse struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

// FetchOnlinePlayer implements PlayerFetcher.
func (f *HTTPPlayerFetcher) FetchOnlinePlayer(ctx context.Context, id int) (*model.Player, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/players/"+strconv.Itoa(id)+"/online", nil)
	if err != nil {
		return nil, false, err
	}

	token, err := f.signer.Sign(30 * time.Second)
	if err != nil {
		return nil, false, fmt.Errorf("signing service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("player service returned status %d", resp.StatusCode)
	}

	if service, err := VerifyServiceToken(f.secret, resp.Header.Get("X-Service-Token")); err != nil || service != "player-service" {
		f.logger.Warn("rejecting online-player response with invalid service token",
			zap.Int("playerId", id), zap.Error(err))
		return nil, false, fmt.Errorf("untrusted response from player service")
	}

	var body onlinePlayerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("decoding online-player response: %w", err)
	}

	return model.NewPlayer(body.ID, body.Login), true, nil
}
