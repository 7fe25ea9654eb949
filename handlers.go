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

	"github.com/clothex/storefront/catalog"
)

func (fe *frontendServer) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	query := catalog.ParseQuery(r.URL.Query())
	log.WithField("page", query.Page).WithField("query", query.Search).Debug("listing products")

	v := fe.viewsFor(r)
	page, err := v.client.ListProducts(r.Context(), query.Values())
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve products"))
		return
	}
	respond(w, http.StatusOK, page)
}

func (fe *frontendServer) productHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]
	if id == "" {
		renderError(log, w, errors.New("product id not specified"), http.StatusBadRequest)
		return
	}
	log.WithField("id", id).Debug("serving product")

	v := fe.viewsFor(r)
	product, err := v.client.GetProduct(r.Context(), id)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve product"))
		return
	}
	respond(w, http.StatusOK, product)
}

func (fe *frontendServer) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	v := fe.viewsFor(r)
	categories, err := v.client.ListCategories(r.Context())
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve categories"))
		return
	}
	respond(w, http.StatusOK, categories)
}
