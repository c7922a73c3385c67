package rdx

import (
	"strconv"
	"time"

	"panenku/globals"
)

const presenceKey = "presence:users"

// SetOnline marks a user online. Called on WebSocket connect and heartbeat.
func SetOnline(userID string) error {
	return Conn.HSet(globals.Ctx, presenceKey, userID, "online").Err()
}

// SetOffline records the user's last-seen timestamp.
func SetOffline(userID string) error {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return Conn.HSet(globals.Ctx, presenceKey, userID, ts).Err()
}

// GetPresence returns "online" or a unix last-seen timestamp string.
// Empty string means the user has never connected.
func GetPresence(userID string) (string, error) {
	val, err := Conn.HGet(globals.Ctx, presenceKey, userID).Result()
	if err != nil {
		return "", nil
	}
	return val, nil
}
