package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an account with a bcrypt-hashed password. The integer id is
// internal; users are addressed by username everywhere outside the store.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	Username     string    `bun:"username,notnull,unique" json:"username"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash" json:"-"`
	IsSuperuser  bool      `bun:"is_superuser,notnull,default:false" json:"is_superuser"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
