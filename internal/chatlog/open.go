package chatlog

import (
	"fmt"

	"travelchat/internal/domain"
)

// Open returns the sink selected by kind ("jsonl" or "sqlite").
func Open(kind, path string) (domain.ChatLog, error) {
	switch kind {
	case "jsonl", "":
		return NewJSONL(path), nil
	case "sqlite":
		if path == "" {
			path = "chat_logs.db"
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown chat log type: %s", kind)
	}
}
