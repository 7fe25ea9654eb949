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

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/clothex/storefront/address"
	"github.com/clothex/storefront/validator"
)

func (fe *frontendServer) listAddressesHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	book := fe.viewsFor(r).addresses
	if err := book.Load(r.Context()); err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve addresses"))
		return
	}
	respond(w, http.StatusOK, book.Addresses())
}

// addAddressHandler appends an address (POST /api/addresses). The
// five-entry cap short-circuits before any backend call.
func (fe *frontendServer) addAddressHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	var payload validator.AddressPayload
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		renderError(log, w, err, http.StatusUnprocessableEntity)
		return
	}

	book := fe.viewsFor(r).addresses
	err := book.Add(r.Context(), payload.Street, payload.City)
	switch {
	case err == nil:
		respond(w, http.StatusCreated, book.Addresses())
	case errors.Is(err, address.ErrLimitReached):
		renderError(log, w, err, http.StatusConflict)
	default:
		renderBackendError(log, w, errors.Wrap(err, "failed to add address"))
	}
}

func (fe *frontendServer) setDefaultAddressHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	book := fe.viewsFor(r).addresses
	err := book.SetDefault(r.Context(), id)
	switch {
	case err == nil:
		respond(w, http.StatusOK, book.Addresses())
	case errors.Is(err, address.ErrNotFound):
		renderError(log, w, err, http.StatusNotFound)
	default:
		renderBackendError(log, w, errors.Wrap(err, "failed to set default address"))
	}
}

func (fe *frontendServer) deleteAddressHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	book := fe.viewsFor(r).addresses
	err := book.Delete(r.Context(), id)
	switch {
	case err == nil:
		respond(w, http.StatusOK, book.Addresses())
	case errors.Is(err, address.ErrNotFound):
		renderError(log, w, err, http.StatusNotFound)
	default:
		renderBackendError(log, w, errors.Wrap(err, "failed to delete address"))
	}
}
