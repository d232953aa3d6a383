// Package sandbox is the development backend: a chi server over an embedded
// SQLite database that implements the same HTTP and WebSocket contract as the
// production inventory service. It exists so the SDK, the CLI, and the test
// suite have a real collaborator to run against.
package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required

	"stockdeck/internal/model"
	"stockdeck/pkg/uid"
)

// Store persistence errors, mapped to HTTP statuses by the handlers.
const (
	ErrNotFound  storeError = "not found"
	ErrDuplicate storeError = "already exists"
)

type storeError string

func (e storeError) Error() string { return string(e) }

// Store is the SQLite-backed persistence layer. A single mutex serializes
// writers; SQLite supports only one.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (and if needed initializes) the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logrus.WithField("path", dbPath).Info("sandbox store initialized")
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS store_staff (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE(store_id, user_id)
	);
	CREATE TABLE IF NOT EXISTS skus (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS inventory (
		id TEXT PRIMARY KEY,
		sku_id TEXT NOT NULL REFERENCES skus(id) ON DELETE CASCADE,
		store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE(sku_id, store_id)
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_store ON inventory(store_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_sku ON inventory(sku_id);
	CREATE INDEX IF NOT EXISTS idx_skus_category ON skus(category);
	`
	_, err := db.Exec(query)
	return err
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// --- users ---

// CreateUser inserts a new account.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string, role model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := model.User{
		ID:        uid.New(),
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, passwordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername returns the account and its password hash.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, created_at, updated_at
		 FROM users WHERE username = ?`, username)
	return scanUserWithHash(row)
}

// GetUserByID returns the account and its password hash.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	return scanUserWithHash(row)
}

func scanUserWithHash(row *sql.Row) (*model.User, string, error) {
	var u model.User
	var hash, role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &hash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan user: %w", err)
	}
	u.Role = model.Role(role)
	return &u, hash, nil
}

// ListUsers returns one page of accounts ordered by creation time.
func (s *Store) ListUsers(ctx context.Context, page, limit int) (*model.UserList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, email, role, created_at, updated_at
		 FROM users ORDER BY created_at ASC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	list := &model.UserList{
		Users:      []model.User{},
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = model.Role(role)
		list.Users = append(list.Users, u)
	}
	return list, rows.Err()
}

// UpdateUser applies the non-nil fields of req.
func (s *Store) UpdateUser(ctx context.Context, req model.UpdateUserRequest) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, _, err := s.GetUserByID(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	u.UpdatedAt = now()

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, role = ?, updated_at = ? WHERE id = ?`,
		u.Username, u.Email, string(u.Role), u.UpdatedAt, u.ID)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces an account's password hash.
func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(res)
}

// DeleteUser removes an account and its staff assignments.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM store_staff WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete staff assignments: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(res)
}

// --- stores ---

// CreateStore inserts a new store.
func (s *Store) CreateStore(ctx context.Context, req model.CreateStoreRequest) (*model.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.Store{
		ID:        uid.New(),
		Name:      req.Name,
		Address:   req.Address,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stores (id, name, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.Address, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert store: %w", err)
	}
	return &st, nil
}

// ListStores returns every store ordered by name.
func (s *Store) ListStores(ctx context.Context) (*model.StoreList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, created_at, updated_at FROM stores ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	list := &model.StoreList{Items: []model.Store{}}
	for rows.Next() {
		var st model.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Address, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		list.Items = append(list.Items, st)
	}
	return list, rows.Err()
}

// GetStore returns one store by id.
func (s *Store) GetStore(ctx context.Context, id string) (*model.Store, error) {
	var st model.Store
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, created_at, updated_at FROM stores WHERE id = ?`, id).
		Scan(&st.ID, &st.Name, &st.Address, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &st, nil
}

// DeleteStore removes a store, its staff assignments, and its inventory.
func (s *Store) DeleteStore(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM store_staff WHERE store_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete staff assignments: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM inventory WHERE store_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete store inventory: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	return requireAffected(res)
}

// AddStaff assigns a user to a store.
func (s *Store) AddStaff(ctx context.Context, req model.AddStaffRequest) (*model.StoreStaffAssociation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assoc := model.StoreStaffAssociation{
		ID:        uid.New(),
		StoreID:   req.StoreID,
		UserID:    req.UserID,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO store_staff (id, store_id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		assoc.ID, assoc.StoreID, assoc.UserID, assoc.CreatedAt, assoc.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert staff assignment: %w", err)
	}
	return &assoc, nil
}

// ListStoreStaff returns the users assigned to a store.
func (s *Store) ListStoreStaff(ctx context.Context, storeID string) (*model.StoreStaffList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.role, u.created_at, u.updated_at
		 FROM store_staff ss JOIN users u ON u.id = ss.user_id
		 WHERE ss.store_id = ? ORDER BY u.username ASC`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list store staff: %w", err)
	}
	defer rows.Close()

	list := &model.StoreStaffList{StoreID: storeID, Staff: []model.User{}}
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff user: %w", err)
		}
		u.Role = model.Role(role)
		list.Staff = append(list.Staff, u)
	}
	return list, rows.Err()
}

// DeleteStaff removes one staff assignment by association id.
func (s *Store) DeleteStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM store_staff WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff assignment: %w", err)
	}
	return requireAffected(res)
}

// StaffStoreIDs returns the store ids a user is assigned to.
func (s *Store) StaffStoreIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT store_id FROM store_staff WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff stores: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan store id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// --- skus ---

var skuSortColumns = map[string]string{
	"name":       "name",
	"category":   "category",
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// CreateSKU inserts a catalog entry.
func (s *Store) CreateSKU(ctx context.Context, req model.SKURequest) (*model.SKU, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sku := model.SKU{
		ID:          uid.New(),
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Version:     1,
		CreatedAt:   now(),
		UpdatedAt:   now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO skus (id, name, category, description, price, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sku.ID, sku.Name, sku.Category, sku.Description, sku.Price, sku.Version, sku.CreatedAt, sku.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sku: %w", err)
	}
	return &sku, nil
}

// GetSKU returns one catalog entry by id.
func (s *Store) GetSKU(ctx context.Context, id string) (*model.SKU, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, description, price, version, created_at, updated_at
		 FROM skus WHERE id = ?`, id)
	return scanSKU(row)
}

func scanSKU(row *sql.Row) (*model.SKU, error) {
	var sku model.SKU
	err := row.Scan(&sku.ID, &sku.Name, &sku.Category, &sku.Description,
		&sku.Price, &sku.Version, &sku.CreatedAt, &sku.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sku: %w", err)
	}
	return &sku, nil
}

// ListSKUs returns one filtered, sorted page of the catalog.
func (s *Store) ListSKUs(ctx context.Context, f model.SKUFilters) (*model.SKUList, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	where := []string{"1=1"}
	args := []interface{}{}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM skus WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count skus: %w", err)
	}

	column, ok := skuSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		direction = "ASC"
	}

	queryArgs := append(args, f.PageSize, (f.Page-1)*f.PageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category, description, price, version, created_at, updated_at
		 FROM skus WHERE `+cond+` ORDER BY `+column+` `+direction+` LIMIT ? OFFSET ?`,
		queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list skus: %w", err)
	}
	defer rows.Close()

	list := &model.SKUList{
		Items:      []model.SKU{},
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages(total, f.PageSize),
	}
	for rows.Next() {
		var sku model.SKU
		if err := rows.Scan(&sku.ID, &sku.Name, &sku.Category, &sku.Description,
			&sku.Price, &sku.Version, &sku.CreatedAt, &sku.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sku: %w", err)
		}
		list.Items = append(list.Items, sku)
	}
	return list, rows.Err()
}

// ListSKUCategories returns the distinct category names.
func (s *Store) ListSKUCategories(ctx context.Context) (*model.SKUCategories, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM skus ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	out := &model.SKUCategories{Categories: []string{}}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out.Categories = append(out.Categories, c)
	}
	return out, rows.Err()
}

// UpdateSKU replaces a catalog entry's mutable fields and bumps its version.
func (s *Store) UpdateSKU(ctx context.Context, id string, req model.SKURequest) (*model.SKU, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE skus SET name = ?, category = ?, description = ?, price = ?,
		 version = version + 1, updated_at = ? WHERE id = ?`,
		req.Name, req.Category, req.Description, req.Price, now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update sku: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetSKU(ctx, id)
}

// DeleteSKU removes a catalog entry and its inventory rows.
func (s *Store) DeleteSKU(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM inventory WHERE sku_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete sku inventory: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM skus WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sku: %w", err)
	}
	return requireAffected(res)
}

// --- inventory ---

var inventorySortColumns = map[string]string{
	"quantity":   "i.quantity",
	"created_at": "i.created_at",
	"updated_at": "i.updated_at",
}

const inventorySelect = `
	SELECT i.id, i.sku_id, i.store_id, i.quantity, i.version, i.created_at, i.updated_at,
	       k.id, k.name, k.category, k.description, k.price, k.version, k.created_at, k.updated_at,
	       t.id, t.name, t.address, t.created_at, t.updated_at
	FROM inventory i
	JOIN skus k ON k.id = i.sku_id
	JOIN stores t ON t.id = i.store_id`

func scanInventoryRow(scan func(dest ...interface{}) error) (*model.InventoryRecord, error) {
	var r model.InventoryRecord
	var sku model.SKU
	var st model.Store
	err := scan(
		&r.ID, &r.SKUID, &r.StoreID, &r.Quantity, &r.Version, &r.CreatedAt, &r.UpdatedAt,
		&sku.ID, &sku.Name, &sku.Category, &sku.Description, &sku.Price, &sku.Version, &sku.CreatedAt, &sku.UpdatedAt,
		&st.ID, &st.Name, &st.Address, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory record: %w", err)
	}
	r.SKU = &sku
	r.Store = &st
	return &r, nil
}

// CreateInventory inserts a record for a (sku, store) pair.
func (s *Store) CreateInventory(ctx context.Context, req model.CreateInventoryRequest) (*model.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uid.New()
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory (id, sku_id, store_id, quantity, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		id, req.SKUID, req.StoreID, req.Quantity, ts, ts)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert inventory record: %w", err)
	}
	return s.GetInventory(ctx, id)
}

// GetInventory returns one record with its denormalized SKU and store.
func (s *Store) GetInventory(ctx context.Context, id string) (*model.InventoryRecord, error) {
	row := s.db.QueryRowContext(ctx, inventorySelect+` WHERE i.id = ?`, id)
	return scanInventoryRow(row.Scan)
}

// ListInventory returns one filtered, sorted page of records.
func (s *Store) ListInventory(ctx context.Context, f model.InventoryFilters) (*model.InventoryList, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	where := []string{"1=1"}
	args := []interface{}{}
	if f.StoreID != "" {
		where = append(where, "i.store_id = ?")
		args = append(args, f.StoreID)
	}
	if f.SKUID != "" {
		where = append(where, "i.sku_id = ?")
		args = append(args, f.SKUID)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory i WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count inventory: %w", err)
	}

	column, ok := inventorySortColumns[f.SortBy]
	if !ok {
		column = "i.updated_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		direction = "ASC"
	}

	queryArgs := append(args, f.PageSize, (f.Page-1)*f.PageSize)
	rows, err := s.db.QueryContext(ctx,
		inventorySelect+` WHERE `+cond+` ORDER BY `+column+` `+direction+` LIMIT ? OFFSET ?`,
		queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	list := &model.InventoryList{
		Items:      []model.InventoryRecord{},
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages(total, f.PageSize),
	}
	for rows.Next() {
		record, err := scanInventoryRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, *record)
	}
	return list, rows.Err()
}

// SetInventoryQuantity writes an absolute quantity and bumps the version.
// Returns the updated record plus the quantity it replaced.
func (s *Store) SetInventoryQuantity(ctx context.Context, id string, quantity int) (*model.InventoryRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old int
	err := s.db.QueryRowContext(ctx, `SELECT quantity FROM inventory WHERE id = ?`, id).Scan(&old)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read inventory quantity: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE inventory SET quantity = ?, version = version + 1, updated_at = ? WHERE id = ?`,
		quantity, now(), id)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to update inventory: %w", err)
	}

	record, err := s.GetInventory(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return record, old, nil
}

// AdjustInventoryQuantity applies a signed delta, rejecting negative results.
func (s *Store) AdjustInventoryQuantity(ctx context.Context, id string, delta int) (*model.InventoryRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old int
	err := s.db.QueryRowContext(ctx, `SELECT quantity FROM inventory WHERE id = ?`, id).Scan(&old)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read inventory quantity: %w", err)
	}
	if old+delta < 0 {
		return nil, 0, fmt.Errorf("insufficient quantity: have %d, delta %d", old, delta)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE inventory SET quantity = quantity + ?, version = version + 1, updated_at = ? WHERE id = ?`,
		delta, now(), id)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to adjust inventory: %w", err)
	}

	record, err := s.GetInventory(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return record, old, nil
}

// DeleteInventory removes a record. The caller receives the deleted row for
// event construction.
func (s *Store) DeleteInventory(ctx context.Context, id string) (*model.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.GetInventory(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete inventory: %w", err)
	}
	return record, nil
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
