package repositories

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"podbase-blog/models"
)

const (
	DefaultPageSize = 3
	MaxPageSize     = 100
	// MaxSkipPages 를 넘는 이동은 결과가 없는 페이지로 처리한다.
	MaxSkipPages = 1_000_000
)

// AllCategoriesSentinel 는 UI 가 "필터 없음"을 표현할 때 쓰는 값이다.
// 필터에 섞여 들어오면 무시한다.
const AllCategoriesSentinel = "All Categories"

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// UpsertByLink upserts a post uniquely identified by link
func (r *PostRepository) UpsertByLink(ctx context.Context, p *models.Post) (*mongo.UpdateResult, error) {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	filter := bson.M{"link": p.Link}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at": p.CreatedAt,
			"featured":   false,
		},
		"$set": bson.M{
			"updated_at":    p.UpdatedAt,
			"source":        p.Source,
			"title":         p.Title,
			"link":          p.Link,
			"author":        p.Author,
			"summary":       p.Summary,
			"thumbnail_url": p.ThumbnailURL,
			"categories":    p.Categories,
			"tags":          p.Tags,
			"published_at":  p.PublishedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}

// MarkFeatured clears every featured flag and sets it on the newest n posts.
func (r *PostRepository) MarkFeatured(ctx context.Context, n int) error {
	if _, err := r.col.UpdateMany(ctx, bson.M{"featured": true}, bson.M{
		"$set": bson.M{"featured": false, "updated_at": time.Now()},
	}); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(n)).
		SetProjection(bson.M{"_id": 1})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		ids = append(ids, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err = r.col.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{
		"$set": bson.M{"featured": true, "updated_at": time.Now()},
	})
	return err
}

// Featured returns featured posts, newest first.
func (r *PostRepository) Featured(ctx context.Context, limit int) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"featured": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns the distinct, non-empty categories sorted by name.
func (r *PostRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.col.Distinct(ctx, "categories", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

// PostQuery 는 커서 기반 목록 조회 조건이다.
//   - After: 이전 페이지의 마지막 항목 커서 (SkipPages > 0 에서 사용)
//   - Before: 이전 페이지의 첫 항목 커서 (SkipPages < 0 에서 사용)
type PostQuery struct {
	Categories []string
	Search     string
	SortAsc    bool
	PageSize   int
	SkipPages  int
	After      string
	Before     string
}

type PostPage struct {
	Posts []models.Post
	First string
	Last  string
	Total int64
}

// pagePlan 은 PostQuery 를 Mongo find 인자로 옮긴 결과다.
// reverse 가 true 면 조회 결과를 뒤집어야 표시 순서가 된다.
type pagePlan struct {
	base    bson.M
	filter  bson.M
	sort    bson.D
	skip    int64
	limit   int64
	reverse bool
	empty   bool
}

func planPage(q PostQuery) (pagePlan, error) {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	base := baseFilter(q.Categories, q.Search)
	plan := pagePlan{base: base, filter: base, limit: int64(size)}
	if q.SkipPages > MaxSkipPages || q.SkipPages < -MaxSkipPages {
		plan.empty = true
		return plan, nil
	}

	// 표시 순서 방향 (desc 가 기본)
	dir := -1
	if q.SortAsc {
		dir = 1
	}

	switch {
	case q.SkipPages > 0 && q.After != "":
		c, err := DecodeCursor(q.After)
		if err != nil {
			return pagePlan{}, err
		}
		op := "$lt"
		if q.SortAsc {
			op = "$gt"
		}
		plan.filter = and(base, keysetFilter(c, op))
		plan.skip = int64((q.SkipPages - 1) * size)
	case q.SkipPages > 0:
		// 커서 없이 앞으로 이동하면 오프셋으로만 이동한다.
		plan.skip = int64(q.SkipPages * size)
	case q.SkipPages < 0 && q.Before != "":
		c, err := DecodeCursor(q.Before)
		if err != nil {
			return pagePlan{}, err
		}
		op := "$gt"
		if q.SortAsc {
			op = "$lt"
		}
		plan.filter = and(base, keysetFilter(c, op))
		plan.skip = int64((-q.SkipPages - 1) * size)
		plan.reverse = true
		dir = -dir
	}

	plan.sort = bson.D{{Key: "published_at", Value: dir}, {Key: "_id", Value: dir}}
	return plan, nil
}

// Query returns one page of posts. Out-of-range pages yield an empty page.
func (r *PostRepository) Query(ctx context.Context, q PostQuery) (PostPage, error) {
	plan, err := planPage(q)
	if err != nil {
		return PostPage{}, err
	}

	total, err := r.col.CountDocuments(ctx, plan.base)
	if err != nil {
		return PostPage{}, err
	}
	if plan.empty {
		return PostPage{Posts: []models.Post{}, Total: total}, nil
	}

	opts := options.Find().SetSort(plan.sort).SetSkip(plan.skip).SetLimit(plan.limit)
	cur, err := r.col.Find(ctx, plan.filter, opts)
	if err != nil {
		return PostPage{}, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return PostPage{}, err
	}
	if plan.reverse {
		for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
			posts[i], posts[j] = posts[j], posts[i]
		}
	}

	page := PostPage{Posts: posts, Total: total}
	if len(posts) > 0 {
		page.First = CursorOf(posts[0]).Encode()
		page.Last = CursorOf(posts[len(posts)-1]).Encode()
	}
	return page, nil
}

// baseFilter builds the category/search filter shared by the page and the count.
func baseFilter(categories []string, search string) bson.M {
	filter := bson.M{}

	cats := make([]interface{}, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || c == AllCategoriesSentinel {
			continue
		}
		cats = append(cats, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(c) + "$", Options: "i"})
	}
	if len(cats) > 0 {
		filter["categories"] = bson.M{"$in": cats}
	}

	if s := strings.TrimSpace(search); s != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": rx},
			{"summary": rx},
		}
	}
	return filter
}

// keysetFilter matches posts strictly beyond c in the (published_at, _id) order given by op.
func keysetFilter(c Cursor, op string) bson.M {
	return bson.M{"$or": []bson.M{
		{"published_at": bson.M{op: c.PublishedAt}},
		{"published_at": c.PublishedAt, "_id": bson.M{op: c.ID}},
	}}
}

func and(a, b bson.M) bson.M {
	if len(a) == 0 {
		return b
	}
	return bson.M{"$and": []bson.M{a, b}}
}
