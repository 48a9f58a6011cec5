package handler

import (
	"errors"
	"strings"

	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/partner"
)

// parseSegment validates and converts a segment query parameter
func parseSegment(raw string) (partner.CustomerSegment, error) {
	segment := partner.CustomerSegment(strings.ToLower(strings.TrimSpace(raw)))
	if !segment.IsValid() {
		return "", errors.New("segment must be one of: premium, standard, budget, wholesale, retail")
	}
	return segment, nil
}
