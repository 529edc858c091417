// Package httpapi is the JSON API surface. Handlers read store views and
// invoke the session transactions; ledger arithmetic never happens here.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitcoin-app/fitcoin/internal/account"
	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/domain"
	"github.com/fitcoin-app/fitcoin/internal/health"
	"github.com/fitcoin-app/fitcoin/internal/market"
	"github.com/fitcoin-app/fitcoin/internal/session"
	"github.com/fitcoin-app/fitcoin/internal/tracker"
	"github.com/fitcoin-app/fitcoin/pkg/metrics"
)

// Handlers bundles the services the API surface exposes.
type Handlers struct {
	store   *session.Store
	tracker *tracker.Tracker
	account *account.Service
	market  *market.Service
	checker *health.Checker
	log     *slog.Logger
	now     func() time.Time
}

// NewHandlers wires the API handlers.
func NewHandlers(
	store *session.Store,
	trk *tracker.Tracker,
	acc *account.Service,
	mkt *market.Service,
	checker *health.Checker,
	log *slog.Logger,
) *Handlers {
	return &Handlers{
		store:   store,
		tracker: trk,
		account: acc,
		market:  mkt,
		checker: checker,
		log:     log,
		now:     time.Now,
	}
}

type dashboardResponse struct {
	User     *domain.User       `json:"user"`
	Coins    domain.Coin        `json:"coins"`
	Today    session.TodayStats `json:"today"`
	Tracking bool               `json:"is_tracking"`
	Progress tracker.Progress   `json:"progress"`
}

// Dashboard returns the session snapshot plus live tracker progress.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := h.store.User()
	if user == nil {
		writeError(w, r, h.log, session.ErrNoSession)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		User:     user,
		Coins:    h.store.Coins(),
		Today:    h.store.Today(h.now()),
		Tracking: h.store.IsTracking(),
		Progress: h.tracker.Progress(),
	})
}

type trackerStartRequest struct {
	ActivityType domain.ActivityType `json:"activity_type"`
}

// TrackerStart begins a tracking session.
func (h *Handlers) TrackerStart(w http.ResponseWriter, r *http.Request) {
	var req trackerStartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.ActivityType == "" {
		req.ActivityType = domain.ActivityWorkout
	}

	if err := h.tracker.Start(r.Context(), req.ActivityType); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.tracker.Progress())
}

type trackerStopResponse struct {
	Record *domain.ActivityRecord `json:"record"`
	Coins  domain.Coin            `json:"coins"`
}

// TrackerStop ends the session and returns the finalized record, or null
// when nothing was burned.
func (h *Handlers) TrackerStop(w http.ResponseWriter, r *http.Request) {
	record, err := h.tracker.Stop(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, trackerStopResponse{
		Record: record,
		Coins:  h.store.Coins(),
	})
}

type itemsResponse struct {
	Items []domain.MarketplaceItem `json:"items"`
}

// MarketplaceItems lists the catalog, optionally filtered by category.
func (h *Handlers) MarketplaceItems(w http.ResponseWriter, r *http.Request) {
	category := domain.ItemCategory(r.URL.Query().Get("category"))

	items, err := h.market.Items(r.Context(), category)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if items == nil {
		items = []domain.MarketplaceItem{}
	}

	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

type purchaseRequest struct {
	ItemID string `json:"item_id"`
}

type purchaseResponse struct {
	Item  *domain.MarketplaceItem `json:"item"`
	Coins domain.Coin             `json:"coins"`
}

// Purchase redeems a catalog item for coins.
func (h *Handlers) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.ItemID == "" {
		writeError(w, r, h.log, apperr.NewValidationError("item_id is required"))
		return
	}

	item, err := h.market.Purchase(r.Context(), req.ItemID)
	if err != nil {
		metrics.RecordPurchase(categoryLabel(item), "failed")
		writeError(w, r, h.log, err)
		return
	}

	metrics.RecordPurchase(categoryLabel(item), "ok")
	writeJSON(w, http.StatusOK, purchaseResponse{
		Item:  item,
		Coins: h.store.Coins(),
	})
}

type profileResponse struct {
	User     *domain.User            `json:"user"`
	Coins    domain.Coin             `json:"coins"`
	Lifetime session.LifetimeStats   `json:"lifetime"`
	Recent   []domain.ActivityRecord `json:"recent"`
}

// Profile returns the user with lifetime stats and recent history.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	user := h.store.User()
	if user == nil {
		writeError(w, r, h.log, session.ErrNoSession)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User:     user,
		Coins:    h.store.Coins(),
		Lifetime: h.store.Lifetime(),
		Recent:   h.store.Recent(10),
	})
}

type sessionResponse struct {
	User  *domain.User `json:"user"`
	Coins domain.Coin  `json:"coins"`
}

// Register creates a new account and opens a session.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var input account.RegistrationInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, err := h.account.Register(r.Context(), input)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Coins: h.store.Coins()})
}

// Login restores the persisted session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	user, err := h.account.Login(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: user, Coins: h.store.Coins()})
}

type walletConnectRequest struct {
	Address string `json:"address"`
}

// WalletConnect logs in by wallet address.
func (h *Handlers) WalletConnect(w http.ResponseWriter, r *http.Request) {
	var req walletConnectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, err := h.account.ConnectWallet(r.Context(), req.Address)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: user, Coins: h.store.Coins()})
}

// Logout clears the session. Safe to call repeatedly.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.account.Logout(r.Context()); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Healthz runs the registered health checks.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	results := h.checker.Check(r.Context())

	status := http.StatusOK
	if !health.Healthy(results) {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, results)
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.NewValidationError("invalid request body")
	}
	return nil
}

func categoryLabel(item *domain.MarketplaceItem) string {
	if item == nil {
		return "unknown"
	}
	return string(item.Category)
}
