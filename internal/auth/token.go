package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// The auth token is a base64-encoded JSON object {"userId": N}. It carries no
// signature and no expiry; this is a placeholder scheme, not real session
// security. See DESIGN.md before changing the format.

type tokenPayload struct {
	UserID int64 `json:"userId"`
}

func EncodeToken(userID int64) string {
	data, _ := json.Marshal(tokenPayload{UserID: userID})
	return base64.StdEncoding.EncodeToString(data)
}

func DecodeToken(token string) (int64, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("invalid token encoding: %w", err)
	}
	var p tokenPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("invalid token payload: %w", err)
	}
	if p.UserID <= 0 {
		return 0, fmt.Errorf("invalid token payload: missing userId")
	}
	return p.UserID, nil
}
