// Package otp issues and checks the numeric one-time codes used to verify
// email addresses before a session is granted access.
package otp

import (
	"context"
	"math/rand"
	"strconv"
	"time"
)

// Deliverer sends an issued code to its recipient. Implementations report
// delivery failure through the returned error; there is no retry here.
type Deliverer interface {
	Deliver(ctx context.Context, email, code string) error
}

// Generator produces 4-digit codes in [1000, 9999].
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator builds a generator around rnd; a nil rnd gets a time seed.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// Issue returns a fresh 4-digit numeric code.
func (g *Generator) Issue() string {
	return strconv.Itoa(1000 + g.rnd.Intn(9000))
}

// Verify compares the user-entered code against the issued one. Exact string
// equality only: no expiry and no attempt limit, matching the product's
// current single-session code lifetime.
func Verify(entered, issued string) bool {
	return issued != "" && entered == issued
}
