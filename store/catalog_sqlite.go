package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rushteam/vitrine/core"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLiteCatalog 是关系型目录实现，商品目录与用户商品在同一个库中。
type SQLiteCatalog struct {
	db *sql.DB
}

// OpenSQLiteCatalog 打开（必要时创建）数据库并执行迁移。
// path 为 ":memory:" 时使用独立的共享缓存内存库。
func OpenSQLiteCatalog(ctx context.Context, path string) (*SQLiteCatalog, error) {
	memory := path == ":memory:"
	connStr := path
	if memory {
		// 每个实例一个独立的内存库，连接池内共享
		connStr = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if !memory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if _, err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteCatalog{db: db}, nil
}

// runMigrations 执行所有未应用的迁移，返回当前版本。
func runMigrations(db *sql.DB) (uint, error) {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}

func (s *SQLiteCatalog) Close() error { return s.db.Close() }

const catalogColumns = `id, name, brand, price, discounted_price, rating, base_colour, colour1, colour2, gender, article_type, article_display, image_url`

func scanCatalogItem(rows *sql.Rows) (core.CatalogItem, error) {
	var (
		it         core.CatalogItem
		discounted sql.NullFloat64
		typeName   sql.NullString
		display    sql.NullString
	)
	err := rows.Scan(&it.ID, &it.Name, &it.Brand, &it.Price, &discounted, &it.Rating,
		&it.BaseColor, &it.Color1, &it.Color2, &it.Gender, &typeName, &display, &it.Image)
	if err != nil {
		return it, err
	}
	if discounted.Valid {
		v := discounted.Float64
		it.DiscountedPrice = &v
	}
	if typeName.Valid {
		it.Category = &core.Category{TypeName: typeName.String, DisplayName: display.String}
	}
	return it, nil
}

func (s *SQLiteCatalog) queryItems(ctx context.Context, query string, args ...any) ([]core.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("sqlite: query catalog", err)
	}
	defer rows.Close()

	var out []core.CatalogItem
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, unavailable("sqlite: scan catalog", err)
		}
		out = append(out, it)
	}
	return out, unavailable("sqlite: iterate catalog", rows.Err())
}

func (s *SQLiteCatalog) Window(ctx context.Context, q core.CatalogQuery) ([]core.CatalogItem, error) {
	var (
		where []string
		args  []any
	)
	if len(q.Genders) > 0 {
		where = append(where, "gender IN ("+placeholders(len(q.Genders))+")")
		for _, g := range q.Genders {
			args = append(args, g)
		}
	}
	if q.PriceCeiling != nil {
		where = append(where, "price < ?")
		args = append(args, *q.PriceCeiling)
	}
	if q.Category != "" {
		where = append(where, "article_type = ?")
		args = append(args, q.Category)
	}
	if len(q.ExcludeIDs) > 0 {
		where = append(where, "id NOT IN ("+placeholders(len(q.ExcludeIDs))+")")
		for _, id := range q.ExcludeIDs {
			args = append(args, id)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + catalogColumns + " FROM catalog_items")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY rating DESC, rowid ASC LIMIT ? OFFSET ?")
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, max(q.Offset, 0))

	return s.queryItems(ctx, b.String(), args...)
}

func (s *SQLiteCatalog) ByIDs(ctx context.Context, ids []string) ([]core.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.queryItems(ctx,
		"SELECT "+catalogColumns+" FROM catalog_items WHERE id IN ("+placeholders(len(ids))+")", args...)
}

func (s *SQLiteCatalog) Search(ctx context.Context, terms []string, limit int) ([]core.CatalogItem, error) {
	cond, args := likeAny(terms, "name", "brand", "gender", "base_colour")
	if cond == "" {
		return nil, nil
	}
	args = append(args, limitOrAll(limit))
	return s.queryItems(ctx,
		"SELECT "+catalogColumns+" FROM catalog_items WHERE "+cond+" ORDER BY rating DESC, rowid ASC LIMIT ?", args...)
}

// UpsertItems 写入或覆盖目录行，用于导入与测试。
func (s *SQLiteCatalog) UpsertItems(ctx context.Context, items []core.CatalogItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("sqlite: begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO catalog_items (`+catalogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, brand = excluded.brand, price = excluded.price,
			discounted_price = excluded.discounted_price, rating = excluded.rating,
			base_colour = excluded.base_colour, colour1 = excluded.colour1, colour2 = excluded.colour2,
			gender = excluded.gender, article_type = excluded.article_type,
			article_display = excluded.article_display, image_url = excluded.image_url`)
	if err != nil {
		return unavailable("sqlite: prepare", err)
	}
	defer stmt.Close()

	for _, it := range items {
		var typeName, display any
		if it.Category != nil {
			typeName, display = it.Category.TypeName, it.Category.DisplayName
		}
		var discounted any
		if it.DiscountedPrice != nil {
			discounted = *it.DiscountedPrice
		}
		if _, err := stmt.ExecContext(ctx, it.ID, it.Name, it.Brand, it.Price, discounted, it.Rating,
			it.BaseColor, it.Color1, it.Color2, it.Gender, typeName, display, it.Image); err != nil {
			return unavailable("sqlite: upsert item", err)
		}
	}
	return unavailable("sqlite: commit", tx.Commit())
}

const listingColumns = `id, seller_id, name, brand, description, price, colors, category, sizes, image_urls, market, status, deleted_at, quantity_sold, created_at`

// AddListing 写入一条用户商品。
func (s *SQLiteCatalog) AddListing(ctx context.Context, l core.Listing) error {
	colors, _ := json.Marshal(nonNil(l.Colors))
	sizes, _ := json.Marshal(nonNil(l.Sizes))
	images, _ := json.Marshal(nonNil(l.Images))
	var category, deletedAt any
	if l.Category != nil {
		category = l.Category.TypeName
	}
	if l.Deleted {
		deletedAt = time.Now().UnixMilli()
	}
	created := l.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO listings (`+listingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SellerID, l.Name, l.Brand, l.Description, l.Price, string(colors), category,
		string(sizes), string(images), string(l.Market), string(l.Status), deletedAt, l.QuantitySold, created.UnixMilli())
	return unavailable("sqlite: insert listing", err)
}

func (s *SQLiteCatalog) queryListings(ctx context.Context, query string, args ...any) ([]core.Listing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("sqlite: query listings", err)
	}
	defer rows.Close()

	var out []core.Listing
	for rows.Next() {
		var (
			l                     core.Listing
			colors, sizes, images string
			category              sql.NullString
			deletedAt             sql.NullInt64
			market, status        string
			created               int64
		)
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Name, &l.Brand, &l.Description, &l.Price, &colors,
			&category, &sizes, &images, &market, &status, &deletedAt, &l.QuantitySold, &created); err != nil {
			return nil, unavailable("sqlite: scan listing", err)
		}
		_ = json.Unmarshal([]byte(colors), &l.Colors)
		_ = json.Unmarshal([]byte(sizes), &l.Sizes)
		_ = json.Unmarshal([]byte(images), &l.Images)
		if category.Valid {
			l.Category = &core.Category{TypeName: category.String}
		}
		l.Market = core.Market(market)
		l.Status = core.ListingStatus(status)
		l.Deleted = deletedAt.Valid
		l.CreatedAt = time.UnixMilli(created)
		out = append(out, l)
	}
	return out, unavailable("sqlite: iterate listings", rows.Err())
}

func (s *SQLiteCatalog) Listings(ctx context.Context, q core.ListingQuery) ([]core.Listing, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any
	if q.Market != "" {
		where = append(where, "market = ?")
		args = append(args, string(q.Market))
	}
	if len(q.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(q.Statuses))+")")
		for _, st := range q.Statuses {
			args = append(args, string(st))
		}
	}
	if q.ExcludeSeller != "" {
		where = append(where, "seller_id <> ?")
		args = append(args, q.ExcludeSeller)
	}
	args = append(args, limitOrAll(q.Limit), max(q.Offset, 0))
	return s.queryListings(ctx, "SELECT "+listingColumns+" FROM listings WHERE "+strings.Join(where, " AND ")+
		" ORDER BY created_at DESC, rowid ASC LIMIT ? OFFSET ?", args...)
}

func (s *SQLiteCatalog) SearchListings(ctx context.Context, terms []string, limit int) ([]core.Listing, error) {
	cond, args := likeAny(terms, "name", "description", "brand", "category")
	if cond == "" {
		return nil, nil
	}
	args = append(args, limitOrAll(limit))
	return s.queryListings(ctx, "SELECT "+listingColumns+" FROM listings WHERE deleted_at IS NULL AND ("+cond+
		") ORDER BY created_at DESC LIMIT ?", args...)
}

var (
	_ core.CatalogStore = (*SQLiteCatalog)(nil)
	_ core.ListingStore = (*SQLiteCatalog)(nil)
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// likeAny 生成 (col1 LIKE ? OR col2 LIKE ? ...) 条件，大小写不敏感。
func likeAny(terms []string, cols ...string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	for _, t := range terms {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" {
			continue
		}
		for _, c := range cols {
			conds = append(conds, "LOWER(COALESCE("+c+", '')) LIKE ?")
			args = append(args, "%"+t+"%")
		}
	}
	return strings.Join(conds, " OR "), args
}

func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
