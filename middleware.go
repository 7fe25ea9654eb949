// Copyright 2018 Google LLC
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
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKeyLog struct{}
type ctxKeyRequestID struct{}

type logHandler struct {
	log  *logrus.Logger
	next http.Handler
}

type responseRecorder struct {
	b      int
	status int
	w      http.ResponseWriter
}

func (r *responseRecorder) Header() http.Header { return r.w.Header() }

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.w.Write(p)
	r.b += n
	return n, err
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.w.WriteHeader(statusCode)
}

func (lh *logHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.New()
	ctx = context.WithValue(ctx, ctxKeyRequestID{}, requestID.String())

	start := time.Now()
	rr := &responseRecorder{w: w}
	log := lh.log.WithFields(logrus.Fields{
		"http.req.path":   r.URL.Path,
		"http.req.method": r.Method,
		"http.req.id":     requestID.String(),
	})
	if v, ok := ctx.Value(ctxKeySessionID{}).(string); ok {
		log = log.WithField("session", v)
	}
	log.Debug("request started")
	defer func() {
		log.WithFields(logrus.Fields{
			"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
			"http.resp.status":  rr.status,
			"http.resp.bytes":   rr.b,
		}).Debugf("request complete")
	}()

	ctx = context.WithValue(ctx, ctxKeyLog{}, logrus.FieldLogger(log))
	r = r.WithContext(ctx)
	lh.next.ServeHTTP(rr, r)
}

func ensureSessionID(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		c, err := r.Cookie(cookieSessionID)
		if err == http.ErrNoCookie {
			u := uuid.New()
			sessionID = u.String()
			http.SetCookie(w, &http.Cookie{
				Name:   cookieSessionID,
				Value:  sessionID,
				Path:   "/",
				MaxAge: cookieMaxAge,
			})
		} else if err != nil {
			return
		} else {
			sessionID = c.Value
		}
		ctx := context.WithValue(r.Context(), ctxKeySessionID{}, sessionID)
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	}
}

// hydrateSession resolves the persisted token cookie into a full session
// before handlers run. A token whose profile cannot be resolved within
// the bounded retries is dropped entirely, cookie included, so a request
// never proceeds half-authenticated.
func (fe *frontendServer) hydrateSession(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := fe.sessions.Get(sessionID(r))
		c, err := r.Cookie(cookieToken)
		if err == nil && c.Value != "" && sess.Token() == "" {
			client := fe.clientFor(sess)
			if err := sess.Hydrate(r.Context(), c.Value, client, fe.cfg.Session.ProfileRetries); err != nil {
				if log, ok := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
					log.WithField("error", err).Warn("session hydration failed, clearing session")
				}
				clearTokenCookie(w)
			}
		}
		next.ServeHTTP(w, r)
	}
}

// requireAuth gates a handler on a fully resolved session. A resolving
// session (token present, user not yet resolved) is not authenticated.
func (fe *frontendServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := fe.sessions.Get(sessionID(r))
		if !sess.Authenticated() {
			renderError(logOf(r), w, errLoginRequired, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// requireAdmin additionally gates on the admin role.
func (fe *frontendServer) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return fe.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		sess := fe.sessions.Get(sessionID(r))
		if sess.Role() != adminRole {
			renderError(logOf(r), w, errAdminOnly, http.StatusForbidden)
			return
		}
		next(w, r)
	})
}
