package chat

import (
	"net/http"

	"panenku/rdx"
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
)

// GetPresence reports whether a user is online or when they were last seen.
func GetPresence(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if utils.GetUserIDFromRequest(r) == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	val, err := rdx.GetPresence(ps.ByName("userid"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Presence lookup failed")
		return
	}

	if val == "online" {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"online": true})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"online": false, "lastSeen": val})
}

// Heartbeat refreshes the caller's online flag. Page-unload handlers call
// the companion offline endpoint.
func Heartbeat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := rdx.SetOnline(userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Presence update failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"online": true})
}

// GoOffline records last-seen for the caller.
func GoOffline(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := rdx.SetOffline(userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Presence update failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"online": false})
}
