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
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/tealeg/xlsx"

	"github.com/clothex/storefront/backend"
)

func (fe *frontendServer) adminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	v := fe.viewsFor(r)
	users, err := v.client.ListUsers(r.Context())
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve users"))
		return
	}
	respond(w, http.StatusOK, users)
}

func (fe *frontendServer) adminUpdateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	var payload struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if payload.Role == "" {
		renderError(log, w, errors.New("role is required"), http.StatusUnprocessableEntity)
		return
	}

	v := fe.viewsFor(r)
	user, err := v.client.UpdateUserRole(r.Context(), id, payload.Role)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to update role"))
		return
	}
	log.WithField("user", id).WithField("role", payload.Role).Info("user role updated")
	respond(w, http.StatusOK, user)
}

func (fe *frontendServer) adminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	v := fe.viewsFor(r)
	if err := v.client.DeleteUser(r.Context(), id); err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to delete user"))
		return
	}
	log.WithField("user", id).Info("user deleted")
	respond(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (fe *frontendServer) adminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	status := r.URL.Query().Get("status")

	v := fe.viewsFor(r)
	orders, err := v.client.ListAllOrders(r.Context(), status)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve orders"))
		return
	}
	respond(w, http.StatusOK, orders)
}

func (fe *frontendServer) adminUpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	var payload struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	switch payload.Status {
	case backend.OrderPending, backend.OrderConfirmed, backend.OrderShipped,
		backend.OrderDelivered, backend.OrderCancelled:
	default:
		renderError(log, w, errors.Errorf("unknown status %q", payload.Status), http.StatusUnprocessableEntity)
		return
	}

	v := fe.viewsFor(r)
	order, err := v.client.UpdateOrderStatus(r.Context(), id, payload.Status)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to update order status"))
		return
	}
	log.WithField("order", id).WithField("status", payload.Status).Info("order status updated")
	respond(w, http.StatusOK, order)
}

// adminExportOrdersHandler streams the order list as an xlsx workbook
// (GET /api/admin/orders/export).
func (fe *frontendServer) adminExportOrdersHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	status := r.URL.Query().Get("status")

	v := fe.viewsFor(r)
	orders, err := v.client.ListAllOrders(r.Context(), status)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "could not retrieve orders"))
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		renderError(log, w, errors.Wrap(err, "failed to build workbook"), http.StatusInternalServerError)
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"Order ID", "User", "Status", "Payment", "Items", "Total (VND)", "Created"} {
		header.AddCell().Value = title
	}
	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().Value = order.ID
		row.AddCell().Value = order.UserID
		row.AddCell().Value = order.Status
		row.AddCell().Value = order.PaymentMethod
		row.AddCell().Value = strconv.Itoa(len(order.Items))
		row.AddCell().Value = strconv.FormatInt(order.TotalPrice, 10)
		row.AddCell().Value = order.CreatedAt
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.xlsx"`)
	if err := file.Write(w); err != nil {
		log.WithField("error", err).Error("failed to write xlsx export")
	}
	log.WithField("orders", len(orders)).Info("exported orders")
}

func (fe *frontendServer) adminCreateProductHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	var product backend.Product
	if err := decodeJSON(r, &product); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	if product.Name == "" {
		renderError(log, w, errors.New("product name is required"), http.StatusUnprocessableEntity)
		return
	}

	v := fe.viewsFor(r)
	created, err := v.client.CreateProduct(r.Context(), product)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to create product"))
		return
	}
	log.WithField("product", created.ID).Info("product created")
	respond(w, http.StatusCreated, created)
}

func (fe *frontendServer) adminUpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	var product backend.Product
	if err := decodeJSON(r, &product); err != nil {
		renderError(log, w, err, http.StatusBadRequest)
		return
	}
	product.ID = id

	v := fe.viewsFor(r)
	updated, err := v.client.UpdateProduct(r.Context(), product)
	if err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to update product"))
		return
	}
	respond(w, http.StatusOK, updated)
}

func (fe *frontendServer) adminDeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)
	id := mux.Vars(r)["id"]

	v := fe.viewsFor(r)
	if err := v.client.DeleteProduct(r.Context(), id); err != nil {
		renderBackendError(log, w, errors.Wrap(err, "failed to delete product"))
		return
	}
	log.WithField("product", id).Info("product deleted")
	respond(w, http.StatusOK, map[string]string{"message": "deleted"})
}
