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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/clothex/storefront/address"
	"github.com/clothex/storefront/checkout"
	"github.com/clothex/storefront/validator"
)

// prepareCheckoutHandler seeds the checkout flow from the server and
// moves it to ready (POST /api/checkout/prepare).
func (fe *frontendServer) prepareCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	log.Debug("preparing checkout")

	v := fe.viewsFor(r)
	if err := v.flow.Prepare(r.Context()); err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to prepare checkout"))
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"stage":     v.flow.Stage(),
		"cart":      viewOf(v.cart),
		"addresses": v.addresses.Addresses(),
	})
}

// placeOrderHandler confirms the checkout (POST /api/checkout). Empty
// cart and missing address are refused before any backend call.
func (fe *frontendServer) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	log.Debug("placing order")

	var payload validator.PlaceOrderPayload
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		renderError(log, w, err, http.StatusUnprocessableEntity)
		return
	}

	v := fe.viewsFor(r)
	if err := v.flow.SelectAddress(payload.AddressID); err != nil {
		if errors.Is(err, address.ErrNotFound) {
			renderError(log, w, err, http.StatusNotFound)
			return
		}
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if err := v.flow.SelectMethod(payload.PaymentMethod); err != nil {
		renderError(log, w, err, http.StatusUnprocessableEntity)
		return
	}

	result, err := v.flow.Confirm(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrNoAddress):
		renderError(log, w, err, http.StatusConflict)
		return
	case errors.Is(err, checkout.ErrNotReady):
		renderError(log, w, err, http.StatusConflict)
		return
	default:
		renderBackendError(log, w, errors.Wrap(err, "failed to complete the order"))
		return
	}

	log.WithField("order", result.OrderID).Info("order placed")
	respond(w, http.StatusOK, map[string]interface{}{
		"orderId":     result.OrderID,
		"redirectUrl": result.RedirectURL,
		"stage":       v.flow.Stage(),
	})
}

func (fe *frontendServer) orderHistoryHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	log.Debug("view order history")

	v := fe.viewsFor(r)
	orders, err := v.client.ListOrders(r.Context())
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve order history"))
		return
	}
	respond(w, http.StatusOK, orders)
}

func (fe *frontendServer) orderHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	v := fe.viewsFor(r)
	order, err := v.client.GetOrder(r.Context(), id)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve order"))
		return
	}
	respond(w, http.StatusOK, order)
}

// cancelOrderHandler requests cancellation; the backend refuses anything
// past pending.
func (fe *frontendServer) cancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]
	log.WithField("order", id).Debug("cancelling order")

	v := fe.viewsFor(r)
	order, err := v.client.CancelOrder(r.Context(), id)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to cancel order"))
		return
	}
	respond(w, http.StatusOK, order)
}
