package main

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/clothex/storefront/address"
	"github.com/clothex/storefront/backend"
	"github.com/clothex/storefront/cart"
	"github.com/clothex/storefront/checkout"
	"github.com/clothex/storefront/payment"
	"github.com/clothex/storefront/session"
)

const adminRole = session.RoleAdmin

var (
	errLoginRequired = errors.New("login required")
	errAdminOnly     = errors.New("admin access required")
)

// sessionViews is the per-session mutable view state: the local,
// reconciled copies of the server-owned collections, plus the backend
// client bound to this session's token.
type sessionViews struct {
	client     *backend.Client
	cart       *cart.State
	addresses  *address.Book
	flow       *checkout.Flow
	payments   *payment.Processor
	userID     string
	cartLoaded bool
}

// clientFor builds a backend client bound to sess: its token rides every
// request, and a 401 response clears the session globally.
func (fe *frontendServer) clientFor(sess *session.Session) *backend.Client {
	return backend.New(fe.cfg.Backend.Addr, fe.cfg.Backend.Timeout,
		backend.WithTokenSource(sess),
		backend.WithAuthExpiredHook(sess.Clear),
		backend.WithHTTPClient(fe.httpClient),
	)
}

// viewsFor returns the view state for the request's session, rebuilding
// it when the cart identity changed (login or logout swaps the anonymous
// session ID for a username).
func (fe *frontendServer) viewsFor(r *http.Request) *sessionViews {
	sid := sessionID(r)
	sess := fe.sessions.Get(sid)
	userID := cartUserID(sess)

	fe.mu.Lock()
	defer fe.mu.Unlock()

	v, ok := fe.views[sid]
	if !ok || v.userID != userID {
		client := fe.clientFor(sess)
		cartState := cart.NewState(client, userID)
		book := address.NewBook(client)
		v = &sessionViews{
			client:    client,
			cart:      cartState,
			addresses: book,
			flow:      checkout.NewFlow(client, cartState, book),
			payments:  payment.NewProcessor(client),
			userID:    userID,
		}
		fe.views[sid] = v
	}
	return v
}

// dropViews discards the view state for a session (logout).
func (fe *frontendServer) dropViews(sid string) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	delete(fe.views, sid)
}

// loadedCart returns the session's cart, seeded from the server on first
// touch.
func (fe *frontendServer) loadedCart(r *http.Request) (*cart.State, error) {
	v := fe.viewsFor(r)
	fe.mu.Lock()
	loaded := v.cartLoaded
	fe.mu.Unlock()
	if !loaded {
		if err := v.cart.Load(r.Context()); err != nil {
			return nil, err
		}
		fe.mu.Lock()
		v.cartLoaded = true
		fe.mu.Unlock()
	}
	return v.cart, nil
}

// cartUserID returns the cart identity: the username once logged in,
// otherwise the anonymous session ID. Cart and order operations share
// this identifier.
func cartUserID(sess *session.Session) string {
	if u := sess.User(); u != nil {
		return u.ID
	}
	return sess.ID()
}

func sessionID(r *http.Request) string {
	v := r.Context().Value(ctxKeySessionID{})
	if v != nil {
		return v.(string)
	}
	return ""
}

func logOf(r *http.Request) logrus.FieldLogger {
	if log, ok := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func renderError(log logrus.FieldLogger, w http.ResponseWriter, err error, code int) {
	log.WithField("error", err).Error("request error")
	respond(w, code, map[string]interface{}{
		"error":  err.Error(),
		"status": http.StatusText(code),
	})
}

// renderBackendError maps a failed backend call onto the error taxonomy:
// 401 clears the persisted token and tells the client to re-login, 404
// passes through, anything else surfaces as a bad-gateway toast (local
// state has already rolled back by the time this runs).
func renderBackendError(log logrus.FieldLogger, w http.ResponseWriter, err error) {
	switch {
	case backend.IsAuthError(err):
		clearTokenCookie(w)
		respond(w, http.StatusUnauthorized, map[string]interface{}{
			"error":    "session expired",
			"redirect": baseUrl + "/login",
		})
	case backend.IsNotFound(err):
		renderError(log, w, err, http.StatusNotFound)
	default:
		renderError(log, w, err, http.StatusBadGateway)
	}
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieToken,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieToken,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "invalid JSON body")
	}
	return nil
}
