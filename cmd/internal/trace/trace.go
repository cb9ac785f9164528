// Package trace 는 하나의 흐름(API 요청 한 건, TUI 동작 한 번)을 컨텍스트로 따라간다.
// 흐름 ID 는 X-Request-Id 로, 흐름 안의 outbound 호출 순번(hop)은 X-Span-Id 로 전파된다.
package trace

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

type flowKey struct{}

// Flow 는 컨텍스트에 실리는 흐름 정보다.
// hops 는 이 흐름에서 나간 호출 수이며 inbound 자체는 0 이다.
type Flow struct {
	ID   string
	Op   string
	hops atomic.Int64
}

// NewID 는 하이픈 없는 32자리 hex 흐름 ID 를 만든다.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Start 는 op 이름으로 새 흐름을 연다.
func Start(ctx context.Context, op string) context.Context {
	return Join(ctx, "", op)
}

// Join 은 바깥에서 전달받은 id 로 흐름을 잇는다. id 가 비어 있으면 새로 발급한다.
func Join(ctx context.Context, id, op string) context.Context {
	if id == "" {
		id = NewID()
	}
	return context.WithValue(ctx, flowKey{}, &Flow{ID: id, Op: op})
}

// From returns the flow carried by ctx, or nil.
func From(ctx context.Context) *Flow {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(flowKey{}).(*Flow)
	return f
}

func ID(ctx context.Context) string {
	if f := From(ctx); f != nil {
		return f.ID
	}
	return ""
}

func Op(ctx context.Context) string {
	if f := From(ctx); f != nil {
		return f.Op
	}
	return ""
}

// Hop 은 현재 hop 값을 헤더 문자열로 돌려준다. 증가시키지 않는다.
func Hop(ctx context.Context) string {
	f := From(ctx)
	if f == nil {
		return "0"
	}
	return strconv.FormatInt(f.hops.Load(), 10)
}

// NextHop 은 outbound 호출 하나를 기록하고 (흐름 ID, hop) 을 돌려준다.
// 흐름이 없으면 일회성 ID 와 hop 1 을 쓴다.
func NextHop(ctx context.Context) (string, string) {
	f := From(ctx)
	if f == nil {
		return NewID(), "1"
	}
	return f.ID, strconv.FormatInt(f.hops.Add(1), 10)
}
