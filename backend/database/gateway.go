package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

// SessionSetting is the Postgres setting row-level-security policies read
// the caller identity from.
const SessionSetting = "app.current_user_id"

// ErrIdentityBinding is returned when the identity (or role) could not be
// bound to the transaction. The unit of work is rolled back.
var ErrIdentityBinding = errors.New("could not bind caller identity to transaction")

// Binder associates identity with the connection executing tx. It must only
// use transaction-local state so nothing survives commit or rollback.
type Binder func(tx *gorm.DB, userID string) error

// SetLocalIdentity binds userID with set_config(..., is_local => true), the
// parameterized form of SET LOCAL.
func SetLocalIdentity(tx *gorm.DB, userID string) error {
	return tx.Exec("SELECT set_config(?, ?, true)", SessionSetting, userID).Error
}

// Gateway is the only path to the store. Every unit of work runs in a
// transaction whose first statements bind the caller identity.
type Gateway struct {
	db   *gorm.DB
	bind Binder
	role string
}

type Option func(*Gateway)

// WithBinder replaces SetLocalIdentity.
func WithBinder(b Binder) Option {
	return func(g *Gateway) { g.bind = b }
}

// WithRole makes every transaction assume role via SET LOCAL ROLE.
func WithRole(role string) Option {
	return func(g *Gateway) { g.role = role }
}

func NewGateway(db *gorm.DB, opts ...Option) *Gateway {
	g := &Gateway{db: db, bind: SetLocalIdentity}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do runs fn inside one transaction scoped to the identity carried by ctx.
// Without an identity the statements run with only the service role's
// privileges. fn must use tx for every statement of the unit of work.
func (g *Gateway) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	userID, scoped := UserIDFromContext(ctx)
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if g.role != "" {
			if err := tx.Exec("SET LOCAL ROLE " + pgx.Identifier{g.role}.Sanitize()).Error; err != nil {
				return fmt.Errorf("%w: set role: %v", ErrIdentityBinding, err)
			}
		}
		if scoped {
			if err := g.bind(tx, userID); err != nil {
				return fmt.Errorf("%w: %v", ErrIdentityBinding, err)
			}
		}
		return fn(tx)
	})
}

// Ping checks the underlying pool.
func (g *Gateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Dialect is the name of the underlying gorm dialector.
func (g *Gateway) Dialect() string {
	return g.db.Dialector.Name()
}
