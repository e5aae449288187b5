package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// IndividualSerial is EVT{yy}-{id:06d}, yy taken from the registration time.
func IndividualSerial(registrationID uint, createdAt time.Time) string {
	return fmt.Sprintf("EVT%02d-%06d", createdAt.Year()%100, registrationID)
}

// TeamSerial is TEAM{id:03d}-{letter}, where index 0 is A.
func TeamSerial(registrationID uint, index int) string {
	return fmt.Sprintf("TEAM%03d-%c", registrationID, rune('A'+index))
}

func NormalizeSerial(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}

// ParseMembers accepts a JSON array of names or a comma-separated list.
// Entries are trimmed and empty ones dropped.
func ParseMembers(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return nil, fmt.Errorf("members must be a JSON array of names: %w", err)
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	members := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			members = append(members, p)
		}
	}
	return members, nil
}
