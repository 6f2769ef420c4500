package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Challenge binds a subject email to the currently valid OTP code.
// CodeHash holds a bcrypt hash of the code; the plaintext value only
// exists in the outbound email.
type Challenge struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	CodeHash  string             `bson:"code_hash" json:"-"`
	Consumed  bool               `bson:"consumed" json:"consumed"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}

// ResetToken records a server-issued, single-use token handed out after a
// successful verification. The token itself is a signed JWT; this record
// tracks consumption by token ID.
type ResetToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TokenID   string             `bson:"token_id" json:"token_id"`
	Email     string             `bson:"email" json:"email"`
	Consumed  bool               `bson:"consumed" json:"consumed"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}
