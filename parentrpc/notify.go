// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parentrpc

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// NotificationClient subscribes to a parent-chain websocket endpoint that
// pushes a message every time a new burn transaction is seen, so a node
// can call ListSideChainDeposits promptly instead of only on a poll
// interval. It is optional: a node can ignore it and poll instead.
type NotificationClient struct {
	conn *websocket.Conn
}

// burnNotification is the push message shape: just enough to know a new
// block or burn was observed, since the actual deposit data still comes
// from ListSideChainDeposits.
type burnNotification struct {
	Type string `json:"type"`
}

// DialNotificationClient opens a websocket connection to url (typically
// the parent node's own notification endpoint).
func DialNotificationClient(ctx context.Context, url string) (*NotificationClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("parentrpc: dialing notification endpoint: %w", err)
	}
	return &NotificationClient{conn: conn}, nil
}

// Close closes the underlying connection.
func (n *NotificationClient) Close() error {
	return n.conn.Close()
}

// Next blocks until a new burn notification arrives, returning its type
// string ("block" or "sidechaindeposit"). The caller decides whether to
// react by calling ListSideChainDeposits.
func (n *NotificationClient) Next() (string, error) {
	var msg burnNotification
	if err := n.conn.ReadJSON(&msg); err != nil {
		return "", err
	}
	log.Debugf("received parent-chain notification: %s", msg.Type)
	return msg.Type, nil
}
