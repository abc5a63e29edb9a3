package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"Front", "Encore", "Backstage", "Lucky", "Golden",
	"Midnight", "Velvet", "Neon", "Acoustic", "Opening",
	"Headline", "Sold", "Balcony", "Electric", "Matinee",
}

var nouns = []string{
	"Row", "Seat", "Usher", "Stage", "Crowd",
	"Ticket", "Lobby", "Aisle", "Curtain", "Spotlight",
	"Chorus", "Venue", "Pass", "Box", "Gallery",
}

func pick(n int) (int64, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return idx.Int64(), nil
}

// GenerateDisplayName creates a random public name in the format "Adjective_Noun_XXXX"
func GenerateDisplayName() (string, error) {
	adj, err := pick(len(adjectives))
	if err != nil {
		return "", fmt.Errorf("failed to generate random adjective: %w", err)
	}
	noun, err := pick(len(nouns))
	if err != nil {
		return "", fmt.Errorf("failed to generate random noun: %w", err)
	}
	suffix, err := pick(10000)
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}

	return fmt.Sprintf("%s_%s_%04d", adjectives[adj], nouns[noun], suffix), nil
}
