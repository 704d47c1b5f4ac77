package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stylefeed/catalog-service/internal/types"
)

// PostgresStore persists the catalog in Postgres via pgx. Images, sizes,
// colors, and tags are text arrays; price history is jsonb.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const brandColumns = "id, name, website, api_key, api_endpoint, api_type, created_at"

func (s *PostgresStore) ListBrands(ctx context.Context) ([]types.Brand, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+brandColumns+" FROM brands ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}
	defer rows.Close()

	brands := make([]types.Brand, 0)
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, *brand)
	}
	return brands, rows.Err()
}

func (s *PostgresStore) GetBrand(ctx context.Context, id int64) (*types.Brand, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+brandColumns+" FROM brands WHERE id = $1", id)
	brand, err := scanBrand(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: "brand", ID: id}
	}
	return brand, err
}

func (s *PostgresStore) GetBrandByName(ctx context.Context, name string) (*types.Brand, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+brandColumns+" FROM brands WHERE lower(name) = lower($1)", name)
	brand, err := scanBrand(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: "brand", Name: name}
	}
	return brand, err
}

func (s *PostgresStore) CreateBrand(ctx context.Context, brand types.Brand) (*types.Brand, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO brands (name, website, api_key, api_endpoint, api_type, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING `+brandColumns,
		brand.Name, brand.Website, brand.APIKey, brand.APIEndpoint, brand.APIType)
	created, err := scanBrand(row)
	if err != nil {
		return nil, fmt.Errorf("creating brand %s: %w", brand.Name, err)
	}
	return created, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]types.Category, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]types.Category, 0)
	for rows.Next() {
		var c types.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const productColumns = `id, external_id, name, description, price, discounted_price,
	brand_id, category_id, images, rating, review_count, in_stock, is_new,
	sizes, colors, tags, url, price_history, last_updated`

func (s *PostgresStore) FindProductByExternalID(ctx context.Context, brandID int64, externalID string) (*types.Product, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE brand_id = $1 AND external_id = $2",
		brandID, externalID)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return product, err
}

func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: "product", ID: id}
	}
	return product, err
}

func (s *PostgresStore) ListProducts(ctx context.Context, filters types.ProductFilters) ([]types.Product, int, error) {
	where, args := buildProductFilter(filters)

	var total int
	countQuery := "SELECT count(*) FROM products" + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	page, limit := normalizePage(filters)
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY id LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := make([]types.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *product)
	}
	return products, total, rows.Err()
}

func (s *PostgresStore) CreateProduct(ctx context.Context, draft types.ProductDraft, history []types.PricePoint) (*types.Product, error) {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encoding price history: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (external_id, name, description, price, discounted_price,
			brand_id, category_id, images, rating, review_count, in_stock, is_new,
			sizes, colors, tags, url, price_history, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now())
		RETURNING `+productColumns,
		draft.ExternalID, draft.Name, draft.Description, draft.Price, draft.DiscountedPrice,
		draft.BrandID, draft.CategoryID, draft.Images, draft.Rating, draft.ReviewCount,
		draft.InStock, draft.IsNew, draft.Sizes, draft.Colors, draft.Tags, draft.URL, historyJSON)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("creating product %s: %w", draft.ExternalID, err)
	}
	return product, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id int64, draft types.ProductDraft, history []types.PricePoint) (*types.Product, error) {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encoding price history: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE products SET external_id = $2, name = $3, description = $4, price = $5,
			discounted_price = $6, brand_id = $7, category_id = $8, images = $9,
			rating = $10, review_count = $11, in_stock = $12, is_new = $13,
			sizes = $14, colors = $15, tags = $16, url = $17, price_history = $18,
			last_updated = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, draft.ExternalID, draft.Name, draft.Description, draft.Price, draft.DiscountedPrice,
		draft.BrandID, draft.CategoryID, draft.Images, draft.Rating, draft.ReviewCount,
		draft.InStock, draft.IsNew, draft.Sizes, draft.Colors, draft.Tags, draft.URL, historyJSON)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	return product, nil
}

const syncLogColumns = "id, brand_id, started_at, completed_at, status, products_added, products_updated, error"

func (s *PostgresStore) OpenSyncLog(ctx context.Context, brandID int64) (*types.SyncLog, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO sync_logs (brand_id, started_at, status)
		VALUES ($1, now(), $2)
		RETURNING `+syncLogColumns,
		brandID, types.SyncStatusRunning)
	log, err := scanSyncLog(row)
	if err != nil {
		return nil, fmt.Errorf("opening sync log for brand %d: %w", brandID, err)
	}
	return log, nil
}

func (s *PostgresStore) CloseSyncLog(ctx context.Context, id int64, close types.SyncLogClose) (*types.SyncLog, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE sync_logs SET completed_at = $2, status = $3, products_added = $4,
			products_updated = $5, error = $6
		WHERE id = $1
		RETURNING `+syncLogColumns,
		id, close.CompletedAt, close.Status, close.ProductsAdded, close.ProductsUpdated, close.Error)
	log, err := scanSyncLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: "sync log", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("closing sync log %d: %w", id, err)
	}
	return log, nil
}

func (s *PostgresStore) ListSyncLogs(ctx context.Context, brandID int64) ([]types.SyncLog, error) {
	query := "SELECT " + syncLogColumns + " FROM sync_logs"
	args := []any{}
	if brandID != 0 {
		query += " WHERE brand_id = $1"
		args = append(args, brandID)
	}
	query += " ORDER BY started_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sync logs: %w", err)
	}
	defer rows.Close()

	logs := make([]types.SyncLog, 0)
	for rows.Next() {
		log, err := scanSyncLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func (s *PostgresStore) MarkOrphanedSyncLogs(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sync_logs SET status = $1, completed_at = now(),
			error = 'sync interrupted by service restart'
		WHERE status = $2`,
		types.SyncStatusFailed, types.SyncStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("marking orphaned sync logs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

const alertColumns = "id, user_id, product_id, target_price, is_active, notification_type, created_at, last_notified_at"

func (s *PostgresStore) ListActiveAlerts(ctx context.Context) ([]types.PriceAlert, error) {
	return s.queryAlerts(ctx, "SELECT "+alertColumns+" FROM price_alerts WHERE is_active ORDER BY id")
}

func (s *PostgresStore) ListAlertsByUser(ctx context.Context, userID string) ([]types.PriceAlert, error) {
	return s.queryAlerts(ctx, "SELECT "+alertColumns+" FROM price_alerts WHERE user_id = $1 ORDER BY id", userID)
}

func (s *PostgresStore) queryAlerts(ctx context.Context, query string, args ...any) ([]types.PriceAlert, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing price alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]types.PriceAlert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

func (s *PostgresStore) GetAlert(ctx context.Context, id int64) (*types.PriceAlert, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+alertColumns+" FROM price_alerts WHERE id = $1", id)
	alert, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: "price alert", ID: id}
	}
	return alert, err
}

func (s *PostgresStore) CreateAlert(ctx context.Context, alert types.PriceAlert) (*types.PriceAlert, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO price_alerts (user_id, product_id, target_price, is_active, notification_type, created_at)
		VALUES ($1, $2, $3, true, $4, now())
		RETURNING `+alertColumns,
		alert.UserID, alert.ProductID, alert.TargetPrice, alert.NotificationType)
	created, err := scanAlert(row)
	if err != nil {
		return nil, fmt.Errorf("creating price alert: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateAlert(ctx context.Context, id int64, targetPrice *float64, isActive *bool) (*types.PriceAlert, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE price_alerts SET
			target_price = COALESCE($2, target_price),
			is_active = COALESCE($3, is_active)
		WHERE id = $1
		RETURNING `+alertColumns,
		id, targetPrice, isActive)
	alert, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Kind: "price alert", ID: id}
	}
	return alert, err
}

func (s *PostgresStore) DeleteAlert(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM price_alerts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting price alert %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &types.NotFoundError{Kind: "price alert", ID: id}
	}
	return nil
}

func (s *PostgresStore) TouchAlertNotified(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "UPDATE price_alerts SET last_notified_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("touching price alert %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &types.NotFoundError{Kind: "price alert", ID: id}
	}
	return nil
}

func (s *PostgresStore) CreateWishlist(ctx context.Context, wishlist types.Wishlist) (*types.Wishlist, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO wishlists (user_id, name, created_at)
		VALUES ($1, $2, now())
		RETURNING id, user_id, name, created_at`,
		wishlist.UserID, wishlist.Name)
	var created types.Wishlist
	if err := row.Scan(&created.ID, &created.UserID, &created.Name, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("creating wishlist: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) ListWishlists(ctx context.Context, userID string) ([]types.Wishlist, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, user_id, name, created_at FROM wishlists WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlists: %w", err)
	}
	defer rows.Close()

	lists := make([]types.Wishlist, 0)
	for rows.Next() {
		var w types.Wishlist
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning wishlist: %w", err)
		}
		lists = append(lists, w)
	}
	return lists, rows.Err()
}

func (s *PostgresStore) AddWishlistItem(ctx context.Context, item types.WishlistItem) (*types.WishlistItem, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO wishlist_items (wishlist_id, product_id, added_at)
		VALUES ($1, $2, now())
		RETURNING id, wishlist_id, product_id, added_at`,
		item.WishlistID, item.ProductID)
	var created types.WishlistItem
	if err := row.Scan(&created.ID, &created.WishlistID, &created.ProductID, &created.AddedAt); err != nil {
		return nil, fmt.Errorf("adding wishlist item: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) ListWishlistItems(ctx context.Context, wishlistID int64) ([]types.WishlistItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, wishlist_id, product_id, added_at FROM wishlist_items WHERE wishlist_id = $1 ORDER BY id",
		wishlistID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist items: %w", err)
	}
	defer rows.Close()

	items := make([]types.WishlistItem, 0)
	for rows.Next() {
		var it types.WishlistItem
		if err := rows.Scan(&it.ID, &it.WishlistID, &it.ProductID, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning wishlist item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func scanBrand(row pgx.Row) (*types.Brand, error) {
	var b types.Brand
	err := row.Scan(&b.ID, &b.Name, &b.Website, &b.APIKey, &b.APIEndpoint, &b.APIType, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning brand: %w", err)
	}
	return &b, nil
}

func scanProduct(row pgx.Row) (*types.Product, error) {
	var p types.Product
	var historyJSON []byte
	err := row.Scan(&p.ID, &p.ExternalID, &p.Name, &p.Description, &p.Price, &p.DiscountedPrice,
		&p.BrandID, &p.CategoryID, &p.Images, &p.Rating, &p.ReviewCount, &p.InStock, &p.IsNew,
		&p.Sizes, &p.Colors, &p.Tags, &p.URL, &historyJSON, &p.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &p.PriceHistory); err != nil {
			return nil, fmt.Errorf("decoding price history for product %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

func scanSyncLog(row pgx.Row) (*types.SyncLog, error) {
	var l types.SyncLog
	err := row.Scan(&l.ID, &l.BrandID, &l.StartedAt, &l.CompletedAt, &l.Status,
		&l.ProductsAdded, &l.ProductsUpdated, &l.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync log: %w", err)
	}
	return &l, nil
}

func scanAlert(row pgx.Row) (*types.PriceAlert, error) {
	var a types.PriceAlert
	err := row.Scan(&a.ID, &a.UserID, &a.ProductID, &a.TargetPrice, &a.IsActive,
		&a.NotificationType, &a.CreatedAt, &a.LastNotifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning price alert: %w", err)
	}
	return &a, nil
}

// buildProductFilter renders a WHERE clause from the query filters.
// Size matching uses array overlap; search is a case-insensitive substring
// match on name and description.
func buildProductFilter(f types.ProductFilters) (string, []any) {
	clauses := make([]string, 0)
	args := make([]any, 0)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.BrandIDs) > 0 {
		clauses = append(clauses, "brand_id = ANY("+arg(f.BrandIDs)+")")
	}
	if len(f.CategoryIDs) > 0 {
		clauses = append(clauses, "category_id = ANY("+arg(f.CategoryIDs)+")")
	}
	if f.InStockOnly {
		clauses = append(clauses, "in_stock")
	}
	if f.PriceMin != nil {
		clauses = append(clauses, "COALESCE(discounted_price, price) >= "+arg(*f.PriceMin))
	}
	if f.PriceMax != nil {
		clauses = append(clauses, "COALESCE(discounted_price, price) <= "+arg(*f.PriceMax))
	}
	if len(f.Sizes) > 0 {
		clauses = append(clauses, "sizes && "+arg(f.Sizes))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		p := arg(pattern)
		clauses = append(clauses, "(name ILIKE "+p+" OR description ILIKE "+p+")")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
