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

	"github.com/pkg/errors"

	"github.com/clothex/storefront/payment"
)

// paymentReturnHandler is the one-shot reconciliation of a gateway return
// visit (GET /payment/{momo,vnpay}/return). The raw query parameters are
// forwarded for verification exactly once; on confirmed success the cart
// is cleared. Either way the user lands back on the home screen — a
// failed verification is terminal for this visit.
func (fe *frontendServer) paymentReturnHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	v := fe.viewsFor(r)
	outcome, err := v.payments.Process(r.Context(), r.URL.Query())
	if err != nil {
		if errors.Is(err, payment.ErrUnrecognized) {
			log.Warn("payment return with unrecognizable parameters")
		} else {
			log.WithField("error", err).Error("payment verification failed")
		}
		redirectHome(w, "payment=error")
		return
	}

	if !outcome.Confirmed {
		log.WithField("order", outcome.OrderID).Warn("payment not confirmed")
		v.flow.Settle(false)
		redirectHome(w, "payment=failed")
		return
	}

	log.WithField("order", outcome.OrderID).WithField("provider", outcome.Provider).Info("payment confirmed")
	v.flow.Settle(true)
	if err := v.cart.Clear(r.Context()); err != nil {
		log.WithField("error", err).Warn("failed to clear cart after payment")
	}
	redirectHome(w, "payment=success")
}

func redirectHome(w http.ResponseWriter, query string) {
	target := baseUrl + "/"
	if query != "" {
		target += "?" + query
	}
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusFound)
}
