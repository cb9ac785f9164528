package repositories

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"podbase-blog/models"
)

// ErrInvalidCursor is returned when a pagination cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// Cursor 는 (published_at, _id) 정렬 키 한 지점을 가리킨다.
// 클라이언트에는 base64 문자열로만 노출되며 내부 구조를 알 필요가 없다.
type Cursor struct {
	PublishedAt time.Time
	ID          primitive.ObjectID
}

func CursorOf(p models.Post) Cursor {
	return Cursor{PublishedAt: p.PublishedAt, ID: p.ID}
}

// Encode returns the opaque string form: base64url("<unix-millis>:<hex id>").
func (c Cursor) Encode() string {
	raw := strconv.FormatInt(c.PublishedAt.UnixMilli(), 10) + ":" + c.ID.Hex()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	millis, hexID, ok := strings.Cut(string(raw), ":")
	if !ok {
		return Cursor{}, ErrInvalidCursor
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return Cursor{PublishedAt: time.UnixMilli(ms).UTC(), ID: id}, nil
}
