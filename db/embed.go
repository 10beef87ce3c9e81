// Package db embeds the storefront schema so binaries can apply it on start
// without shipping migration files alongside the executable.
package db

import _ "embed"

// Schema holds the DDL for the orders, carts, coupons, products and
// operator_keys tables. It is idempotent and safe to re-apply.
//
//go:embed migrations/001_schema.sql
var Schema string
