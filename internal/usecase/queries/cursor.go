package queries

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	MaxListLimit     = 200
	DefaultListLimit = 20
	CursorVersionV1  = "v1"
)

var ErrInvalidCursor = errs.New("invalid cursor")

// Uses microsecond precision to align with PostgreSQL timestamp precision
func EncodeAfterCursor(t time.Time, id uuid.UUID) string {
	cursorData := CursorVersionV1 + ":" + strconv.FormatInt(t.UnixMicro(), 10) + "-" + id.String()
	return base64.URLEncoding.EncodeToString([]byte(cursorData))
}

func DecodeAfterCursor(cursor string) (*shared.Position, error) {
	if cursor == "" {
		return nil, nil
	}
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, invalidCursor("not base64url")
	}
	payload, ok := strings.CutPrefix(string(decoded), CursorVersionV1+":")
	if !ok {
		return nil, invalidCursor("unknown version")
	}

	micros, rawID, ok := strings.Cut(payload, "-")
	if !ok {
		return nil, invalidCursor("expected '<micros>-<uuid>'")
	}
	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return nil, invalidCursor("bad timestamp")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, invalidCursor("bad id")
	}
	return &shared.Position{At: time.UnixMicro(ts).UTC(), ID: id}, nil
}

func invalidCursor(detail string) error {
	return errs.Mark(errs.Wrap(ErrInvalidCursor, detail), errs.ErrValidation)
}

type Cursor struct {
	After string `json:"after,omitempty"`
}

func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
