package postgres

import (
	"context"
	"fmt"
)

// schemaDDL crea las tablas si no existen. No es un sistema de migraciones:
// solo permite arrancar contra una base vacía (DB_AUTO_MIGRATE=true).
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS presentaciones (
		id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		nombre      VARCHAR(100) NOT NULL,
		descripcion TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS productos (
		id              BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		nombre          VARCHAR(25) NOT NULL,
		descripcion     TEXT NOT NULL,
		precio          NUMERIC(12,2) NOT NULL DEFAULT 0,
		stock           INTEGER NOT NULL DEFAULT 0,
		fecha_alta      TIMESTAMPTZ NOT NULL DEFAULT now(),
		imagen_producto TEXT NOT NULL DEFAULT '',
		presentacion_id BIGINT UNIQUE REFERENCES presentaciones(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_productos_nombre ON productos (nombre)`,
	`CREATE TABLE IF NOT EXISTS _users (
		id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name  VARCHAR(100) NOT NULL DEFAULT '',
		email      VARCHAR(255) NOT NULL UNIQUE,
		password   VARCHAR(100) NOT NULL,
		role       VARCHAR(10) NOT NULL CHECK (role IN ('ADMIN', 'USER'))
	)`,
}

// EnsureSchema ejecuta el DDL de arranque.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaDDL {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
