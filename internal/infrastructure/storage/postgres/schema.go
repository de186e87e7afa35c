package postgres

import (
	"context"
	"fmt"
)

// schemaDDL creates the tables owned by this module.
// quantity carries a CHECK so the non-negative stock invariant holds at
// the storage layer even if application code regresses.
// stock_movements is append-only: rows are inserted by the ledger and
// never updated or deleted.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS suppliers (
	id          UUID PRIMARY KEY,
	name        VARCHAR(100) NOT NULL,
	document    VARCHAR(20)  NOT NULL UNIQUE,
	email       VARCHAR(200) NOT NULL DEFAULT '',
	phone       VARCHAR(30)  NOT NULL DEFAULT '',
	city        VARCHAR(100) NOT NULL DEFAULT '',
	state       VARCHAR(2)   NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ  NOT NULL,
	updated_at  TIMESTAMPTZ  NOT NULL
);

CREATE TABLE IF NOT EXISTS customers (
	id          UUID PRIMARY KEY,
	name        VARCHAR(100) NOT NULL,
	document    VARCHAR(20)  NOT NULL UNIQUE,
	email       VARCHAR(200) NOT NULL DEFAULT '',
	phone       VARCHAR(30)  NOT NULL DEFAULT '',
	city        VARCHAR(100) NOT NULL DEFAULT '',
	state       VARCHAR(2)   NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ  NOT NULL,
	updated_at  TIMESTAMPTZ  NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id           UUID PRIMARY KEY,
	description  VARCHAR(100)   NOT NULL,
	price        NUMERIC(10,2)  NOT NULL CHECK (price >= 0),
	quantity     BIGINT         NOT NULL CHECK (quantity >= 0),
	min_quantity BIGINT         NOT NULL DEFAULT 10 CHECK (min_quantity >= 1),
	supplier_id  UUID           NOT NULL REFERENCES suppliers(id) ON DELETE RESTRICT,
	created_at   TIMESTAMPTZ    NOT NULL,
	updated_at   TIMESTAMPTZ    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_quantity ON products (quantity);

CREATE TABLE IF NOT EXISTS stock_movements (
	id              UUID PRIMARY KEY,
	product_id      UUID        NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
	kind            VARCHAR(10) NOT NULL CHECK (kind IN ('inbound', 'outbound', 'adjustment')),
	quantity        BIGINT      NOT NULL CHECK (quantity > 0),
	quantity_before BIGINT      NOT NULL,
	quantity_after  BIGINT      NOT NULL,
	note            TEXT        NOT NULL DEFAULT '',
	user_id         UUID        NULL,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_product_time
	ON stock_movements (product_id, created_at DESC);

CREATE TABLE IF NOT EXISTS sales (
	id          UUID PRIMARY KEY,
	customer_id UUID          NOT NULL REFERENCES customers(id) ON DELETE RESTRICT,
	sale_date   DATE          NOT NULL,
	total       NUMERIC(10,2) NOT NULL DEFAULT 0,
	note        TEXT          NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ   NOT NULL,
	updated_at  TIMESTAMPTZ   NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (sale_date DESC);

CREATE TABLE IF NOT EXISTS sale_lines (
	id         UUID PRIMARY KEY,
	sale_id    UUID          NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
	product_id UUID          NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
	quantity   BIGINT        NOT NULL CHECK (quantity > 0),
	subtotal   NUMERIC(10,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sale_lines_sale ON sale_lines (sale_id);
CREATE INDEX IF NOT EXISTS idx_sale_lines_product ON sale_lines (product_id);
`

// Migrate applies the schema DDL. Idempotent.
func Migrate(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
