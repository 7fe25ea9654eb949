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

	"github.com/gorilla/websocket"

	"github.com/clothex/storefront/chat"
)

// supportUserID is the identity of the shop's support agent; the widget
// always opens the customer↔support conversation.
const supportUserID = "support"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatHandler bridges the browser chat widget to the messaging provider
// (GET /api/chat/ws). The provider connection is acquired when the widget
// connects and released when it goes away, listener included.
func (fe *frontendServer) chatHandler(w http.ResponseWriter, r *http.Request) {
	log := logOf(r)

	sess := fe.sessions.Get(sessionID(r))
	if !sess.Authenticated() {
		renderError(log, w, errLoginRequired, http.StatusUnauthorized)
		return
	}
	userID := sess.User().ID

	browser, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer browser.Close()

	messenger := fe.newMessenger()
	if err := messenger.Connect(r.Context(), userID); err != nil {
		log.WithField("error", err).Error("failed to connect chat provider")
		browser.WriteJSON(map[string]string{"error": "chat unavailable"}) //nolint:errcheck
		return
	}
	defer messenger.Disconnect() //nolint:errcheck

	conversationID := chat.ConversationID(userID, supportUserID)
	log.WithField("conversation", conversationID).Debug("chat widget connected")

	messenger.OnMessage(func(msg chat.Message) {
		if msg.ConversationID != conversationID {
			return
		}
		if err := browser.WriteJSON(msg); err != nil {
			log.WithField("error", err).Debug("dropping chat message, browser gone")
		}
	})

	for {
		var incoming struct {
			Text string `json:"text"`
		}
		if err := browser.ReadJSON(&incoming); err != nil {
			return
		}
		if incoming.Text == "" {
			continue
		}
		if err := messenger.SendMessage(r.Context(), conversationID, incoming.Text); err != nil {
			log.WithField("error", err).Warn("failed to send chat message")
		}
	}
}
