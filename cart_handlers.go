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

	"github.com/clothex/storefront/backend"
	"github.com/clothex/storefront/cart"
	"github.com/clothex/storefront/validator"
)

type cartView struct {
	Items []backend.CartItem `json:"items"`
	Size  int                `json:"size"`
	Total int64              `json:"total"`
}

func viewOf(state *cart.State) cartView {
	items := state.Items()
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return cartView{Items: items, Size: state.Size(), Total: total}
}

func (fe *frontendServer) viewCartHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	log.Debug("view user cart")

	state, err := fe.loadedCart(r)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve cart"))
		return
	}
	respond(w, http.StatusOK, viewOf(state))
}

// addToCartHandler resolves the variant being added and applies the
// optimistic mutation (POST /api/cart/items).
func (fe *frontendServer) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	var payload validator.AddToCartPayload
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		renderError(log, w, err, http.StatusUnprocessableEntity)
		return
	}
	log.WithField("product", payload.ProductID).WithField("quantity", payload.Quantity).Debug("adding to cart")

	state, err := fe.loadedCart(r)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve cart"))
		return
	}

	v := fe.viewsFor(r)
	product, err := v.client.GetProduct(r.Context(), payload.ProductID)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve product"))
		return
	}
	variant := findVariant(product, payload.VariantID)
	if variant == nil {
		renderError(log, w, errors.New("variant not found"), http.StatusNotFound)
		return
	}

	price := variant.Price
	if variant.SalePrice > 0 && variant.SalePrice < price {
		price = variant.SalePrice
	}
	item := backend.CartItem{
		ProductID: product.ID,
		VariantID: variant.ID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		Color:     variant.Color,
		Size:      variant.Size,
		Price:     price,
		Quantity:  payload.Quantity,
	}
	if err := state.Add(r.Context(), item); err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to add to cart"))
		return
	}
	respond(w, http.StatusOK, viewOf(state))
}

// updateCartItemHandler sets a line's quantity (PUT /api/cart/items).
// Quantities below 1 never reach the network.
func (fe *frontendServer) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	var payload validator.UpdateCartPayload
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		renderError(log, w, err, http.StatusUnprocessableEntity)
		return
	}
	log.WithField("product", payload.ProductID).WithField("quantity", payload.Quantity).Debug("updating cart item quantity")

	state, err := fe.loadedCart(r)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve cart"))
		return
	}

	err = state.UpdateQuantity(r.Context(), payload.ProductID, payload.VariantID, payload.Quantity)
	switch {
	case err == nil:
		respond(w, http.StatusOK, viewOf(state))
	case errors.Is(err, cart.ErrQuantityTooLow):
		renderError(log, w, err, http.StatusUnprocessableEntity)
	case errors.Is(err, cart.ErrItemNotFound):
		renderError(log, w, err, http.StatusNotFound)
	default:
		renderBackendError(log, w, errors.Wrap(err, "failed to update cart item"))
	}
}

func (fe *frontendServer) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	vars := mux.Vars(r)
	productID, variantID := vars["productId"], vars["variantId"]
	log.WithField("product", productID).Debug("removing cart item")

	state, err := fe.loadedCart(r)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve cart"))
		return
	}

	err = state.Remove(r.Context(), productID, variantID)
	switch {
	case err == nil:
		respond(w, http.StatusOK, viewOf(state))
	case errors.Is(err, cart.ErrItemNotFound):
		renderError(log, w, err, http.StatusNotFound)
	default:
		renderBackendError(log, w, errors.Wrap(err, "failed to remove cart item"))
	}
}

func (fe *frontendServer) emptyCartHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	log.Debug("emptying cart")

	state, err := fe.loadedCart(r)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve cart"))
		return
	}
	if err := state.Clear(r.Context()); err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to empty cart"))
		return
	}
	respond(w, http.StatusOK, viewOf(state))
}

func findVariant(product *backend.Product, variantID string) *backend.Variant {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			return &product.Variants[i]
		}
	}
	return nil
}
