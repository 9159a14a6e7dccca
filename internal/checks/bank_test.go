package checks

// An in-memory banking backend used to exercise every check group without
// a real deployment. Behavior mirrors the contract the checks assert:
// conflict on duplicate email, overdraft rejection, statement rendering,
// alert lifecycle, bearer-token auth.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

type bankMember struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birth_date"`
	CreatedAt  string `json:"created_at"`
}

type bankAccount struct {
	ID       string  `json:"id"`
	MemberID string  `json:"member_id"`
	Type     string  `json:"type"`
	Nickname string  `json:"nickname"`
	Balance  float64 `json:"balance"`
	OpenedAt string  `json:"opened_at"`
}

type bankTransaction struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Memo     string  `json:"memo"`
	PostedAt string  `json:"posted_at"`
}

type bankAlert struct {
	ID        string  `json:"id"`
	AccountID string  `json:"account_id"`
	Type      string  `json:"type"`
	Threshold float64 `json:"threshold"`
	CreatedAt string  `json:"created_at"`
}

type fakeBank struct {
	mu           sync.Mutex
	members      map[string]*bankMember
	emails       map[string]bool
	accounts     map[string]*bankAccount
	transactions map[string][]bankTransaction
	alerts       map[string]*bankAlert
	tokens       map[string]bool
	username     string
	password     string
}

func newFakeBank() *fakeBank {
	return &fakeBank{
		members:      make(map[string]*bankMember),
		emails:       make(map[string]bool),
		accounts:     make(map[string]*bankAccount),
		transactions: make(map[string][]bankTransaction),
		alerts:       make(map[string]*bankAlert),
		tokens:       make(map[string]bool),
		username:     "probe",
		password:     "probe-pass",
	}
}

func (b *fakeBank) server() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		writeJSON(w, 200, map[string]any{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", b.handleLogin)
	mux.HandleFunc("GET /api/members/me", b.handleMe)
	mux.HandleFunc("POST /api/members", b.handleCreateMember)
	mux.HandleFunc("GET /api/members/{id}", b.handleGetMember)
	mux.HandleFunc("PATCH /api/members/{id}", b.handlePatchMember)
	mux.HandleFunc("POST /api/members/{id}/accounts", b.handleOpenAccount)
	mux.HandleFunc("GET /api/accounts/{id}", b.handleGetAccount)
	mux.HandleFunc("POST /api/accounts/{id}/transactions", b.handlePostTransaction)
	mux.HandleFunc("GET /api/accounts/{id}/transactions", b.handleListTransactions)
	mux.HandleFunc("POST /api/transfers", b.handleTransfer)
	mux.HandleFunc("GET /api/accounts/{id}/statements", b.handleStatement)
	mux.HandleFunc("GET /api/accounts/{id}/statements/pdf", b.handleStatementPDF)
	mux.HandleFunc("POST /api/alerts", b.handleCreateAlert)
	mux.HandleFunc("GET /api/alerts", b.handleListAlerts)
	mux.HandleFunc("GET /api/alerts/{id}", b.handleGetAlert)
	mux.HandleFunc("DELETE /api/alerts/{id}", b.handleDeleteAlert)

	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (b *fakeBank) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil || body.Username != b.username || body.Password != b.password {
		writeError(w, 401, "invalid credentials")
		return
	}

	token := uuid.NewString()
	b.mu.Lock()
	b.tokens[token] = true
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "session", Value: token, Path: "/"})
	writeJSON(w, 200, map[string]any{"token": token})
}

func (b *fakeBank) authorized(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return b.tokens[auth[7:]]
	}
	if c, err := r.Cookie("session"); err == nil {
		return b.tokens[c.Value]
	}
	return false
}

func (b *fakeBank) handleMe(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		writeError(w, 401, "authentication required")
		return
	}
	writeJSON(w, 200, map[string]any{"username": b.username})
}

func (b *fakeBank) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var body bankMember
	if err := decode(r, &body); err != nil || body.Email == "" {
		writeError(w, 422, "invalid member payload")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.emails[body.Email] {
		writeError(w, 409, "email already registered")
		return
	}

	m := body
	m.ID = uuid.NewString()
	m.CreatedAt = now()
	b.members[m.ID] = &m
	b.emails[m.Email] = true

	writeJSON(w, 201, m)
}

func (b *fakeBank) handleGetMember(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	m, ok := b.members[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		writeError(w, 404, "member not found")
		return
	}
	writeJSON(w, 200, m)
}

func (b *fakeBank) handlePatchMember(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decode(r, &body); err != nil {
		writeError(w, 422, "invalid payload")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.members[r.PathValue("id")]
	if !ok {
		writeError(w, 404, "member not found")
		return
	}
	if phone, ok := body["phone"].(string); ok {
		m.Phone = phone
	}
	if email, ok := body["email"].(string); ok && email != "" {
		m.Email = email
	}
	writeJSON(w, 200, m)
}

func (b *fakeBank) handleOpenAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type           string  `json:"type"`
		Nickname       string  `json:"nickname"`
		OpeningDeposit float64 `json:"opening_deposit"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, 422, "invalid payload")
		return
	}
	if body.Type != "checking" && body.Type != "savings" {
		writeError(w, 422, "unknown account type")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.members[r.PathValue("id")]; !ok {
		writeError(w, 404, "member not found")
		return
	}

	a := &bankAccount{
		ID:       uuid.NewString(),
		MemberID: r.PathValue("id"),
		Type:     body.Type,
		Nickname: body.Nickname,
		Balance:  body.OpeningDeposit,
		OpenedAt: now(),
	}
	b.accounts[a.ID] = a
	writeJSON(w, 201, a)
}

func (b *fakeBank) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	a, ok := b.accounts[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		writeError(w, 404, "account not found")
		return
	}
	writeJSON(w, 200, a)
}

func (b *fakeBank) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type   string  `json:"type"`
		Amount float64 `json:"amount"`
		Memo   string  `json:"memo"`
	}
	if err := decode(r, &body); err != nil || body.Amount <= 0 {
		writeError(w, 422, "invalid transaction")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[r.PathValue("id")]
	if !ok {
		writeError(w, 404, "account not found")
		return
	}

	switch body.Type {
	case "deposit":
		a.Balance += body.Amount
	case "withdrawal":
		if body.Amount > a.Balance {
			writeError(w, 422, "insufficient funds")
			return
		}
		a.Balance -= body.Amount
	default:
		writeError(w, 422, "unknown transaction type")
		return
	}

	txn := bankTransaction{
		ID:       uuid.NewString(),
		Type:     body.Type,
		Amount:   body.Amount,
		Memo:     body.Memo,
		PostedAt: now(),
	}
	b.transactions[a.ID] = append(b.transactions[a.ID], txn)
	writeJSON(w, 201, txn)
}

func (b *fakeBank) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	b.mu.Lock()
	all := append([]bankTransaction(nil), b.transactions[r.PathValue("id")]...)
	b.mu.Unlock()

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	items := make([]any, 0, end-start)
	for _, txn := range all[start:end] {
		items = append(items, txn)
	}

	writeJSON(w, 200, map[string]any{
		"items":     items,
		"page":      page,
		"page_size": pageSize,
		"total":     len(all),
	})
}

func (b *fakeBank) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FromAccountID string  `json:"from_account_id"`
		ToAccountID   string  `json:"to_account_id"`
		Amount        float64 `json:"amount"`
		Memo          string  `json:"memo"`
	}
	if err := decode(r, &body); err != nil || body.Amount <= 0 {
		writeError(w, 422, "invalid transfer")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	from, okFrom := b.accounts[body.FromAccountID]
	to, okTo := b.accounts[body.ToAccountID]
	if !okFrom || !okTo {
		writeError(w, 404, "account not found")
		return
	}
	if body.Amount > from.Balance {
		writeError(w, 422, "insufficient funds")
		return
	}

	from.Balance -= body.Amount
	to.Balance += body.Amount

	writeJSON(w, 201, map[string]any{
		"id":              uuid.NewString(),
		"from_account_id": from.ID,
		"to_account_id":   to.ID,
		"amount":          body.Amount,
		"memo":            body.Memo,
		"status":          "completed",
		"created_at":      now(),
	})
}

func (b *fakeBank) handleStatement(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" || from > to {
		writeError(w, 422, "invalid statement period")
		return
	}

	b.mu.Lock()
	_, ok := b.accounts[r.PathValue("id")]
	txns := b.transactions[r.PathValue("id")]
	entries := make([]any, 0, len(txns))
	for _, txn := range txns {
		entries = append(entries, txn)
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, 404, "account not found")
		return
	}

	writeJSON(w, 200, map[string]any{
		"account_id":   r.PathValue("id"),
		"period_start": from,
		"period_end":   to,
		"entries":      entries,
	})
}

func (b *fakeBank) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	_, ok := b.accounts[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		writeError(w, 404, "account not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	fmt.Fprint(w, "%PDF-1.7 fake statement")
}

func (b *fakeBank) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountID string  `json:"account_id"`
		Type      string  `json:"type"`
		Threshold float64 `json:"threshold"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, 422, "invalid payload")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[body.AccountID]; !ok {
		writeError(w, 404, "account not found")
		return
	}

	a := &bankAlert{
		ID:        uuid.NewString(),
		AccountID: body.AccountID,
		Type:      body.Type,
		Threshold: body.Threshold,
		CreatedAt: now(),
	}
	b.alerts[a.ID] = a
	writeJSON(w, 201, a)
}

func (b *fakeBank) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")

	b.mu.Lock()
	out := make([]any, 0)
	for _, a := range b.alerts {
		if accountID == "" || a.AccountID == accountID {
			out = append(out, a)
		}
	}
	b.mu.Unlock()

	writeJSON(w, 200, out)
}

func (b *fakeBank) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	a, ok := b.alerts[r.PathValue("id")]
	b.mu.Unlock()
	if !ok {
		writeError(w, 404, "alert not found")
		return
	}
	writeJSON(w, 200, a)
}

func (b *fakeBank) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.alerts[r.PathValue("id")]; !ok {
		writeError(w, 404, "alert not found")
		return
	}
	delete(b.alerts, r.PathValue("id"))
	w.WriteHeader(204)
}
