package services

import (
	"fmt"
	"strings"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// tickerRule matches JSE share codes such as NPN or SOL.
const tickerRule = "alpha,min=2,max=5"

// NormaliseTicker trims and upper-cases a JSE ticker. An empty ticker is
// returned unchanged; anything other than 2 to 5 letters is ErrInvalidInput.
func NormaliseTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		return "", nil
	}
	if err := settingsValidate.Var(ticker, tickerRule); err != nil {
		return "", fmt.Errorf("%w: ticker %q must be 2 to 5 letters", domain.ErrInvalidInput, raw)
	}
	return ticker, nil
}
