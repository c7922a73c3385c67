package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"panenku/db"
	"panenku/models"
	"panenku/rdx"
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sortedPair returns the two participants in a stable order so rooms can be
// compared set-wise.
func sortedPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

// sameParticipants compares two sorted participant lists.
func sameParticipants(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// findRoom scans the user's existing rooms for one with the same
// participant set, type and (for inquiries) product. A linear scan is fine
// at this scale.
func findRoom(ctx context.Context, rooms []models.ChatRoom, participants []string, roomType, productID string) *models.ChatRoom {
	for i := range rooms {
		r := &rooms[i]
		if r.Type != roomType {
			continue
		}
		if !sameParticipants(r.Participants, participants) {
			continue
		}
		if roomType == models.RoomProductInquiry && r.ProductID != productID {
			continue
		}
		return r
	}
	return nil
}

// FindOrCreateRoom handles POST /api/chat/rooms. It returns the existing
// room for this participant pair (and product, for inquiries) or creates
// one lazily.
func FindOrCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		PeerID    string `json:"peerId"`
		Type      string `json:"type"`
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.PeerID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "peerId is required")
		return
	}
	if input.Type != models.RoomSupport && input.Type != models.RoomProductInquiry {
		utils.RespondWithError(w, http.StatusBadRequest, "type must be support or product_inquiry")
		return
	}
	if input.Type == models.RoomProductInquiry && input.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "productId is required for inquiries")
		return
	}
	if input.PeerID == userID {
		utils.RespondWithError(w, http.StatusBadRequest, "Cannot open a room with yourself")
		return
	}

	cursor, err := db.ChatRoomsCollection.Find(ctx, bson.M{"participants": userID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not look up rooms")
		return
	}
	defer cursor.Close(ctx)

	var rooms []models.ChatRoom
	if err := cursor.All(ctx, &rooms); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading rooms")
		return
	}

	participants := sortedPair(userID, input.PeerID)
	if existing := findRoom(ctx, rooms, participants, input.Type, input.ProductID); existing != nil {
		utils.RespondWithJSON(w, http.StatusOK, existing)
		return
	}

	now := time.Now()
	room := models.ChatRoom{
		RoomID:       utils.GetUUID(),
		Participants: participants,
		Type:         input.Type,
		ProductID:    input.ProductID,
		LastActive:   now,
		CreatedAt:    now,
	}
	if _, err := db.ChatRoomsCollection.InsertOne(ctx, room); err != nil {
		log.Println("FindOrCreateRoom InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, room)
}

// ListMyRooms returns the user's rooms, most recently active first.
func ListMyRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cursor, err := db.ChatRoomsCollection.Find(ctx, bson.M{"participants": userID},
		options.Find().SetSort(bson.M{"lastActive": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve rooms")
		return
	}
	defer cursor.Close(ctx)

	var rooms []models.ChatRoom
	if err := cursor.All(ctx, &rooms); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading rooms")
		return
	}
	if len(rooms) == 0 {
		rooms = []models.ChatRoom{}
	}

	utils.RespondWithJSON(w, http.StatusOK, rooms)
}

// GetMessages returns a room's messages ordered by timestamp. ?before=
// (unix seconds) pages backwards.
func GetMessages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	roomID := ps.ByName("room")
	if !isParticipant(ctx, userID, roomID) {
		utils.RespondWithError(w, http.StatusForbidden, "Not a participant of this room")
		return
	}

	filter := bson.M{"room": roomID}
	if before := r.URL.Query().Get("before"); before != "" {
		if ts, err := strconv.ParseInt(before, 10, 64); err == nil {
			filter["timestamp"] = bson.M{"$lt": ts}
		}
	}

	cursor, err := db.MessagesCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(50))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve messages")
		return
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading messages")
		return
	}
	if len(msgs) == 0 {
		msgs = []models.Message{}
	}

	// oldest first for rendering
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	utils.RespondWithJSON(w, http.StatusOK, msgs)
}

// SendMessage is the REST append used alongside the WebSocket path.
func SendMessage(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		userID := utils.GetUserIDFromRequest(r)
		if userID == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		roomID := ps.ByName("room")
		if !isParticipant(ctx, userID, roomID) {
			utils.RespondWithError(w, http.StatusForbidden, "Not a participant of this room")
			return
		}

		var input struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Content == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "content is required")
			return
		}

		msg, err := appendMessage(ctx, roomID, userID, input.Content)
		if err != nil {
			log.Println("SendMessage error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send message")
			return
		}

		out, _ := json.Marshal(outboundPayload{
			Action:    "chat",
			ID:        msg.MessageID,
			Room:      msg.Room,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
		hub.Broadcast(roomID, out)

		utils.RespondWithJSON(w, http.StatusCreated, msg)
	}
}

// appendMessage buffers the message in Redis (the flush worker moves it to
// Mongo in bulk) and falls back to a direct insert when Redis is down. It
// also bumps the room's lastMessage preview.
func appendMessage(ctx context.Context, roomID, senderID, content string) (models.Message, error) {
	msg := models.Message{
		MessageID: utils.GetUUID(),
		Room:      roomID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().Unix(),
	}

	if err := rdx.BufferMessage(msg); err != nil {
		log.Println("redis buffer failed, inserting directly:", err)
		if _, err := db.MessagesCollection.InsertOne(ctx, msg); err != nil {
			return models.Message{}, err
		}
	}

	if _, err := db.ChatRoomsCollection.UpdateOne(ctx,
		bson.M{"roomid": roomID},
		bson.M{"$set": bson.M{"lastMessage": content, "lastActive": time.Now()}},
	); err != nil {
		log.Println("room lastMessage update error:", err)
	}

	return msg, nil
}
