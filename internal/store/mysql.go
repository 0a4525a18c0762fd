package store

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id    BIGINT        NOT NULL AUTO_INCREMENT,
	name  VARCHAR(255)  NOT NULL,
	price DECIMAL(12,2) NOT NULL,
	stock BIGINT        NOT NULL,
	PRIMARY KEY (id)
)`

// SQL is the MySQL-backed Store.
type SQL struct {
	db *sqlx.DB
}

// OpenSQL connects to MySQL with the given DSN and verifies the connection.
func OpenSQL(dsn string) (*SQL, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect mysql")
	}
	return &SQL{db: db}, nil
}

// EnsureSchema creates the products table when it does not exist yet. This is
// bootstrap only; the service carries no migrations.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "ensure schema")
}

// Close releases the connection pool.
func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) FindAll(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := s.db.SelectContext(ctx, &out, `SELECT id, name, price, stock FROM products ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "find all products")
	}
	return out, nil
}

func (s *SQL) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := s.db.GetContext(ctx, &p, `SELECT id, name, price, stock FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, model.ErrNotFound
	}
	if err != nil {
		return model.Product{}, errors.Wrapf(err, "find product %d", id)
	}
	return p, nil
}

func (s *SQL) Insert(ctx context.Context, p model.Product) (model.Product, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, price, stock) VALUES (?, ?, ?)`,
		p.Name, p.Price, p.Stock)
	if err != nil {
		return model.Product{}, errors.Wrap(err, "insert product")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, errors.Wrap(err, "insert product id")
	}
	p.ID = id
	return p, nil
}

func (s *SQL) Update(ctx context.Context, p model.Product) (model.Product, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, stock = ? WHERE id = ?`,
		p.Name, p.Price, p.Stock, p.ID)
	if err != nil {
		return model.Product{}, errors.Wrapf(err, "update product %d", p.ID)
	}
	return p, nil
}

func (s *SQL) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
