package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"panenku/db"
	"panenku/middleware"
	"panenku/models"
	"panenku/rdx"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	Room   string
	UserID string
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// inboundPayload represents what clients send us:
type inboundPayload struct {
	Action  string `json:"action"` // "chat", "heartbeat"
	Content string `json:"content,omitempty"`
}

// outboundPayload is what we broadcast to every client:
type outboundPayload struct {
	Action    string `json:"action"`
	ID        string `json:"id"`
	Room      string `json:"room,omitempty"`
	SenderID  string `json:"senderId,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func isParticipant(ctx context.Context, userID, roomID string) bool {
	cnt, _ := db.ChatRoomsCollection.CountDocuments(ctx, bson.M{
		"roomid":       roomID,
		"participants": userID,
	})
	return cnt > 0
}

// WebSocketHandler upgrades the connection for one room. The token travels
// in the query string because browsers cannot set headers on WS upgrades.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room := ps.ByName("room")

		claims, err := middleware.ValidateJWT("Bearer " + r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userID := claims.UserID

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		member := isParticipant(ctx, userID, room)
		cancel()
		if !member {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			Room:   room,
			UserID: userID,
		}

		if err := rdx.SetOnline(userID); err != nil {
			log.Println("presence online:", err)
		}

		// send last 30 messages as chat actions, oldest first
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			opts := options.Find().
				SetSort(bson.D{{Key: "timestamp", Value: -1}}).
				SetLimit(30)

			cur, err := db.MessagesCollection.Find(ctx, bson.M{"room": room}, opts)
			if err != nil {
				log.Println("history find:", err)
				return
			}
			defer cur.Close(ctx)

			var history []models.Message
			if err := cur.All(ctx, &history); err != nil {
				log.Println("history decode:", err)
				return
			}
			for i := len(history) - 1; i >= 0; i-- {
				m := history[i]
				out := outboundPayload{
					Action:    "chat",
					ID:        m.MessageID,
					Room:      m.Room,
					SenderID:  m.SenderID,
					Content:   m.Content,
					Timestamp: m.Timestamp,
				}
				if data, err := json.Marshal(out); err == nil {
					client.Send <- data
				}
			}
		}()

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
		if err := rdx.SetOffline(c.UserID); err != nil {
			log.Println("presence offline:", err)
		}
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var in inboundPayload
		if err := json.Unmarshal(data, &in); err != nil {
			log.Printf("invalid payload: %v", err)
			continue
		}

		switch in.Action {
		case "chat":
			if in.Content == "" {
				continue
			}
			msg, err := appendMessage(context.Background(), c.Room, c.UserID, in.Content)
			if err != nil {
				log.Printf("append message: %v", err)
				continue
			}
			out, _ := json.Marshal(outboundPayload{
				Action:    "chat",
				ID:        msg.MessageID,
				Room:      msg.Room,
				SenderID:  msg.SenderID,
				Content:   msg.Content,
				Timestamp: msg.Timestamp,
			})
			hub.Broadcast(c.Room, out)

		case "heartbeat":
			if err := rdx.SetOnline(c.UserID); err != nil {
				log.Println("presence heartbeat:", err)
			}

		default:
			log.Printf("unknown action: %q", in.Action)
		}
	}
}
