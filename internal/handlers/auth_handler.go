package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"boundless-travel/internal/dto"
	helpers "boundless-travel/internal/handlers/internal"
	"boundless-travel/internal/middleware"
	"boundless-travel/internal/services"
	"boundless-travel/internal/state"
	"boundless-travel/internal/utils"
	"boundless-travel/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NonceTTL lifetime of a sign-in challenge
const NonceTTL = 5 * time.Minute

var errNonceNotFound = errors.New("nonce not found or expired")

type pendingNonce struct {
	account   string
	message   string
	expiresAt time.Time
}

// NonceStore single-use sign-in challenges
type NonceStore struct {
	mu     sync.Mutex
	nonces map[string]pendingNonce
	now    func() time.Time
}

// NewNonceStore creates an empty store
func NewNonceStore() *NonceStore {
	return &NonceStore{nonces: make(map[string]pendingNonce), now: time.Now}
}

// Issue creates a challenge for account
func (s *NonceStore) Issue(account string) (nonce, message string, expiresAt time.Time) {
	nonce = uuid.NewString()
	now := s.now()
	expiresAt = now.Add(NonceTTL)
	message = fmt.Sprintf("Boundless Travel Sign-In\nAccount: %s\nNonce: %s\nIssued At: %s", account, nonce, now.UTC().Format(time.RFC3339))

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.nonces {
		if now.After(p.expiresAt) {
			delete(s.nonces, k)
		}
	}
	s.nonces[nonce] = pendingNonce{account: strings.ToLower(account), message: message, expiresAt: expiresAt}
	return nonce, message, expiresAt
}

// Consume removes nonce and returns the message signed for account
func (s *NonceStore) Consume(nonce, account string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.nonces[nonce]
	if !ok {
		return "", errNonceNotFound
	}
	delete(s.nonces, nonce)
	if s.now().After(p.expiresAt) || p.account != strings.ToLower(account) {
		return "", errNonceNotFound
	}
	return p.message, nil
}

// AuthHandler wallet sign-in
type AuthHandler struct {
	tokens     *middleware.TokenManager
	nonces     *NonceStore
	store      *state.Store
	onboarding *services.OnboardingService
}

// NewAuthHandler creates the sign-in handler
func NewAuthHandler(tokens *middleware.TokenManager, nonces *NonceStore, store *state.Store, onboarding *services.OnboardingService) *AuthHandler {
	return &AuthHandler{tokens: tokens, nonces: nonces, store: store, onboarding: onboarding}
}

// NonceHandler issues a message for the wallet to personal_sign
// GET /api/auth/nonce?address=0x...
func (h *AuthHandler) NonceHandler(c *gin.Context) {
	addr, err := utils.NormalizeAddress(c.Query("address"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid address", err.Error())
		return
	}
	nonce, message, expiresAt := h.nonces.Issue(addr.Hex())
	c.JSON(http.StatusOK, dto.NonceResponse{Nonce: nonce, Message: message, ExpiresAt: expiresAt.Unix()})
}

// ConnectHandler verifies the signed challenge, connects the session and issues a token
// POST /api/auth/connect
func (h *AuthHandler) ConnectHandler(c *gin.Context) {
	var req dto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	addr, err := utils.NormalizeAddress(req.Account)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid address", err.Error())
		return
	}
	kind, err := wallet.ParseConnectorKind(req.Connector)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Unsupported connector", err.Error())
		return
	}

	message, err := h.nonces.Consume(req.Nonce, addr.Hex())
	if err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid nonce", err.Error())
		return
	}
	if err := wallet.VerifyPersonalSignature(addr, message, req.Signature); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Signature verification failed", err.Error())
		return
	}

	sess := h.store.Get(addr.Hex())
	sess.Connect(kind)
	st, err := h.onboarding.EnsureTravelInfo(c.Request.Context(), sess)
	if err != nil {
		// the wallet stays connected; travel info is retried on the next page load
		helpers.LogError("Connect", "load travel info of "+addr.Hex(), err)
	}

	token, expiresAt, err := h.tokens.Issue(addr.Hex(), kind.String())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Token generation failed", err.Error())
		return
	}

	helpers.LogSuccess("Connect", "wallet %s connected via %s", addr.Hex(), kind)
	c.JSON(http.StatusOK, dto.ConnectResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		State:     &st,
	})
}

// LogoutHandler disconnects the wallet and clears its session
// POST /api/auth/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	account, ok := middleware.AccountFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication required", "")
		return
	}
	h.store.Remove(account)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SessionHandler current session state
// GET /api/auth/session
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	sess, ok := helpers.Session(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}
