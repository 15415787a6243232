// =============================================================================
// FILE: internal/cards/http.go
// =============================================================================
// Client for an external shuffled-deck service with the deckofcardsapi.com
// request/response contract:
//
//   GET {base}/api/deck/new/shuffle/?deck_count=N
//       -> {"success": true, "deck_id": "3p40paa87x90", "remaining": 312}
//
//   GET {base}/api/deck/{deck_id}/draw/?count=N
//       -> {"success": true, "cards": [{"code": "KH", "value": "KING", "suit": "HEARTS"}], "remaining": 310}
//
// Any transport failure, non-200 status, success=false or short draw is
// reported as an error; the card game turns it into a safe terminal state.
// =============================================================================

package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPSource talks to a remote deck API.
type HTTPSource struct {
	baseURL   string
	deckCount int
	client    *http.Client
}

// NewHTTPSource creates a client for the deck API at baseURL.
func NewHTTPSource(baseURL string, deckCount int, timeout time.Duration) *HTTPSource {
	if deckCount < 1 {
		deckCount = 1
	}
	return &HTTPSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		deckCount: deckCount,
		client:    &http.Client{Timeout: timeout},
	}
}

type shuffleResponse struct {
	Success   bool   `json:"success"`
	DeckID    string `json:"deck_id"`
	Remaining int    `json:"remaining"`
	Error     string `json:"error"`
}

type drawResponse struct {
	Success   bool   `json:"success"`
	DeckID    string `json:"deck_id"`
	Cards     []Card `json:"cards"`
	Remaining int    `json:"remaining"`
	Error     string `json:"error"`
}

func (s *HTTPSource) Shuffle(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/api/deck/new/shuffle/?deck_count=%d", s.baseURL, s.deckCount)

	var resp shuffleResponse
	if err := s.get(ctx, endpoint, &resp); err != nil {
		return "", fmt.Errorf("shuffle: %w", err)
	}
	if !resp.Success || resp.DeckID == "" {
		return "", fmt.Errorf("shuffle: deck api refused: %s", resp.Error)
	}
	return resp.DeckID, nil
}

func (s *HTTPSource) Draw(ctx context.Context, deckID string, count int) ([]Card, error) {
	endpoint := fmt.Sprintf("%s/api/deck/%s/draw/?count=%s", s.baseURL, url.PathEscape(deckID), strconv.Itoa(count))

	var resp drawResponse
	if err := s.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("draw: deck api refused: %s", resp.Error)
	}
	if len(resp.Cards) != count {
		return nil, fmt.Errorf("draw: got %d cards, want %d: %w", len(resp.Cards), count, ErrExhausted)
	}
	return resp.Cards, nil
}

func (s *HTTPSource) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("deck api status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode deck api response: %w", err)
	}
	return nil
}
