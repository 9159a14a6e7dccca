// Package fixtures generates request payloads for the banking checks.
// Generation is deterministic for a given seed so failures reproduce.
package fixtures

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Member is the payload for creating a member.
type Member struct {
	ExternalID string `json:"external_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birth_date"`
}

// Account is the payload for opening an account.
type Account struct {
	Type           string  `json:"type"`
	Nickname       string  `json:"nickname"`
	OpeningDeposit float64 `json:"opening_deposit"`
}

// Transfer is the payload for moving money between accounts.
type Transfer struct {
	FromAccountID string  `json:"from_account_id"`
	ToAccountID   string  `json:"to_account_id"`
	Amount        float64 `json:"amount"`
	Memo          string  `json:"memo"`
}

var firstNames = []string{"Ava", "Noah", "Mia", "Liam", "Zoe", "Ethan", "Ruby", "Owen", "Isla", "Felix"}
var lastNames = []string{"Kim", "Novak", "Chen", "Okafor", "Silva", "Haddad", "Berg", "Roux", "Tanaka", "Moss"}

// Generator produces fixture payloads from a seeded source.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. Seed zero derives one from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Member generates a plausible new member with a unique email.
func (g *Generator) Member() Member {
	g.mu.Lock()
	defer g.mu.Unlock()

	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]
	tag := g.rng.Intn(1_000_000)

	age := 18 + g.rng.Intn(60)
	birth := time.Now().AddDate(-age, -g.rng.Intn(12), -g.rng.Intn(28))

	return Member{
		ExternalID: uuid.NewString(),
		FirstName:  first,
		LastName:   last,
		Email:      fmt.Sprintf("%s.%s.%06d@example.test", strings.ToLower(first), strings.ToLower(last), tag),
		Phone:      fmt.Sprintf("+1555%07d", g.rng.Intn(10_000_000)),
		BirthDate:  birth.Format("2006-01-02"),
	}
}

// Checking generates a checking account payload.
func (g *Generator) Checking() Account {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Account{
		Type:           "checking",
		Nickname:       fmt.Sprintf("everyday-%04d", g.rng.Intn(10_000)),
		OpeningDeposit: float64(25+g.rng.Intn(476)) + 0.50,
	}
}

// Savings generates a savings account payload.
func (g *Generator) Savings() Account {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Account{
		Type:           "savings",
		Nickname:       fmt.Sprintf("rainy-day-%04d", g.rng.Intn(10_000)),
		OpeningDeposit: float64(100 + g.rng.Intn(901)),
	}
}

// Transfer generates a transfer between two accounts.
func (g *Generator) Transfer(fromID, toID string) Transfer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Transfer{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        float64(1+g.rng.Intn(50)) + 0.25,
		Memo:          fmt.Sprintf("probe transfer %04d", g.rng.Intn(10_000)),
	}
}

// Amount generates a transaction amount within [1, max).
func (g *Generator) Amount(max int) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if max <= 1 {
		max = 2
	}
	return float64(1+g.rng.Intn(max-1)) + 0.10
}
