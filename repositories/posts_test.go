package repositories

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"podbase-blog/models"
)

func TestCursorEncodeDecode(t *testing.T) {
	c := Cursor{
		PublishedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		ID:          primitive.NewObjectID(),
	}

	decoded, err := DecodeCursor(c.Encode())
	require.NoError(t, err)
	assert.True(t, c.PublishedAt.Equal(decoded.PublishedAt))
	assert.Equal(t, c.ID, decoded.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, in := range []string{"***", "bm9jb2xvbg", "MTIzOm5vdGhleA"} {
		_, err := DecodeCursor(in)
		if !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("expected ErrInvalidCursor for %q, got %v", in, err)
		}
	}
}

func TestPlanPageFirstPage(t *testing.T) {
	plan, err := planPage(PostQuery{PageSize: 3})
	require.NoError(t, err)

	assert.Equal(t, int64(0), plan.skip)
	assert.Equal(t, int64(3), plan.limit)
	assert.False(t, plan.reverse)
	assert.Equal(t, bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}}, plan.sort)
	assert.Empty(t, plan.filter)
}

func TestPlanPageClampsPageSize(t *testing.T) {
	plan, err := planPage(PostQuery{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(MaxPageSize), plan.limit)

	plan, err = planPage(PostQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultPageSize), plan.limit)
}

func TestPlanPageForwardFromCursor(t *testing.T) {
	after := Cursor{PublishedAt: time.Now().UTC(), ID: primitive.NewObjectID()}.Encode()

	plan, err := planPage(PostQuery{PageSize: 3, SkipPages: 2, After: after})
	require.NoError(t, err)

	assert.Equal(t, int64(3), plan.skip)
	assert.False(t, plan.reverse)
	assert.Equal(t, -1, plan.sort[0].Value)
	assert.Contains(t, plan.filter, "$or")
}

func TestPlanPageBackwardFromCursor(t *testing.T) {
	before := Cursor{PublishedAt: time.Now().UTC(), ID: primitive.NewObjectID()}.Encode()

	plan, err := planPage(PostQuery{PageSize: 3, SkipPages: -1, Before: before, Search: "go"})
	require.NoError(t, err)

	assert.Equal(t, int64(0), plan.skip)
	assert.True(t, plan.reverse)
	// 역방향 조회는 정렬을 뒤집은 뒤 결과를 다시 뒤집는다.
	assert.Equal(t, 1, plan.sort[0].Value)
	assert.Contains(t, plan.filter, "$and")
}

func TestPlanPageForwardWithoutCursorUsesOffset(t *testing.T) {
	plan, err := planPage(PostQuery{PageSize: 3, SkipPages: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(6), plan.skip)
}

func TestPlanPageInvalidCursor(t *testing.T) {
	_, err := planPage(PostQuery{PageSize: 3, SkipPages: 1, After: "%%%"})
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestPlanPageSkipExtremes(t *testing.T) {
	after := CursorOf(models.Post{ID: primitive.NewObjectID(), PublishedAt: time.Now()}).Encode()

	tests := []struct {
		name  string
		q     PostQuery
		empty bool
		skip  int64
	}{
		{"largest in range", PostQuery{PageSize: MaxPageSize, SkipPages: MaxSkipPages}, false, int64(MaxSkipPages) * MaxPageSize},
		{"smallest in range", PostQuery{PageSize: MaxPageSize, SkipPages: -MaxSkipPages, Before: after}, false, int64(MaxSkipPages-1) * MaxPageSize},
		{"half max int", PostQuery{PageSize: 3, SkipPages: math.MaxInt64 / 2}, true, 0},
		{"max int with cursor", PostQuery{PageSize: MaxPageSize, SkipPages: math.MaxInt64, After: after}, true, 0},
		{"min int", PostQuery{PageSize: 3, SkipPages: math.MinInt64}, true, 0},
		{"min int with cursor", PostQuery{PageSize: 3, SkipPages: math.MinInt64, Before: after}, true, 0},
		{"just past range", PostQuery{PageSize: 3, SkipPages: MaxSkipPages + 1}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planPage(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.empty, plan.empty)
			assert.Equal(t, tt.skip, plan.skip)
			assert.GreaterOrEqual(t, plan.skip, int64(0))
		})
	}
}

func TestBaseFilterIgnoresSentinelAndBlankCategories(t *testing.T) {
	f := baseFilter([]string{AllCategoriesSentinel, "", "  "}, "")
	assert.Empty(t, f)

	f = baseFilter([]string{AllCategoriesSentinel, "Tech"}, "kube")
	require.Contains(t, f, "categories")
	in := f["categories"].(bson.M)["$in"].([]interface{})
	require.Len(t, in, 1)
	assert.Equal(t, primitive.Regex{Pattern: "^Tech$", Options: "i"}, in[0])
	assert.Contains(t, f, "$or")
}
