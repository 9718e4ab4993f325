package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Token minting for public links and human-readable numbers. Opaque tokens
// come from crypto/rand; there is no library shortcut for the exact alphabets
// and lengths these formats require.

const quoteTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
const quoteTokenLength = 20

// newQuoteToken mints a 20 character URL-safe token for public quote pages
func newQuoteToken() (string, error) {
	buf := make([]byte, quoteTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate quote token: %w", err)
	}
	for i, b := range buf {
		buf[i] = quoteTokenAlphabet[int(b)%len(quoteTokenAlphabet)]
	}
	return string(buf), nil
}

// newPermanentSignatureToken mints a UUID token for permanent signature links
func newPermanentSignatureToken() string {
	return uuid.New().String()
}

// newTimedSignatureToken mints a 32 hex character token for time-boxed
// signature links
func newTimedSignatureToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate signature token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// newQuoteNumber builds a time-derived quote number with a random suffix.
// Quote numbers are display identifiers, not uniqueness-checked.
func newQuoteNumber(now time.Time) (string, error) {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}
	return fmt.Sprintf("QT-%s-%s", now.UTC().Format("20060102-150405"), hex.EncodeToString(buf)), nil
}

// formatInvoiceNumber renders a project invoice number (PRJ-YYYY-NNNN)
func formatInvoiceNumber(year, sequence int) string {
	return fmt.Sprintf("PRJ-%d-%04d", year, sequence)
}

// formatIncidentNumber renders an incident number (INC-NNNNN)
func formatIncidentNumber(sequence int) string {
	return fmt.Sprintf("INC-%05d", sequence)
}

// newContractNumber builds a time-derived contract number with a random suffix
func newContractNumber(now time.Time) (string, error) {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate contract number: %w", err)
	}
	return fmt.Sprintf("CT-%s-%s", now.UTC().Format("20060102-150405"), hex.EncodeToString(buf)), nil
}
