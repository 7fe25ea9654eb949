// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"net/http"

	"github.com/clothex/storefront/backend"
	"github.com/clothex/storefront/validator"
)

// registerHandler handles signup (POST /api/auth/register).
func (fe *frontendServer) registerHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	var payload validator.RegisterPayload
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		renderError(log, w, err, http.StatusUnprocessableEntity)
		return
	}

	v := fe.viewsFor(r)
	if err := v.client.Register(r.Context(), backend.Registration{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	}); err != nil {
		log.WithField("error", err).Warn("registration failed")
		renderBackendError(log, w, err)
		return
	}

	log.WithField("email", payload.Email).Info("user registered")
	respond(w, http.StatusCreated, map[string]string{"message": "registered"})
}

// loginHandler handles login (POST /api/auth/login). On success the token
// is persisted in a cookie, the session is hydrated, and the anonymous
// cart is migrated onto the user's cart.
func (fe *frontendServer) loginHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	var payload validator.LoginPayload
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		renderError(log, w, err, http.StatusUnprocessableEntity)
		return
	}

	sess := fe.sessions.Get(sessionID(r))
	anonymousViews := fe.viewsFor(r)

	client := fe.clientFor(sess)
	result, err := client.Login(r.Context(), backend.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		log.WithField("error", err).Warn("login failed")
		renderBackendError(log, w, err)
		return
	}

	if err := sess.Hydrate(r.Context(), result.Token, client, fe.cfg.Session.ProfileRetries); err != nil {
		renderError(log, w, err, http.StatusBadGateway)
		return
	}
	setTokenCookie(w, result.Token)
	log.WithField("user", sess.User().ID).Info("user logged in")

	// Migrate the anonymous cart onto the user's cart. Failures are
	// logged, not fatal: login must not be blocked by a cart hiccup.
	userViews := fe.viewsFor(r)
	if len(anonymousViews.cart.Items()) == 0 {
		if err := anonymousViews.cart.Load(r.Context()); err != nil {
			log.WithField("error", err).Warn("failed to load anonymous cart for migration")
		}
	}
	if items := anonymousViews.cart.Items(); len(items) > 0 {
		if err := userViews.cart.MigrateFrom(r.Context(), anonymousViews.cart); err != nil {
			log.WithField("error", err).Warn("failed to migrate anonymous cart")
		} else {
			log.WithField("items", len(items)).Info("migrated anonymous cart to user cart")
		}
	}

	respond(w, http.StatusOK, sess.User())
}

// logoutHandler clears the session, its view state and the token cookie
// (POST /api/auth/logout).
func (fe *frontendServer) logoutHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	log.Debug("logging out")

	sid := sessionID(r)
	fe.sessions.Get(sid).Clear()
	fe.dropViews(sid)
	clearTokenCookie(w)

	respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// profileHandler returns the resolved user (GET /api/users/me). A session
// still resolving its profile is not authenticated.
func (fe *frontendServer) profileHandler(w http.ResponseWriter, r *http.Request) {
	sess := fe.sessions.Get(sessionID(r))
	if !sess.Authenticated() {
		renderError(logOf(r), w, errLoginRequired, http.StatusUnauthorized)
		return
	}
	respond(w, http.StatusOK, sess.User())
}
