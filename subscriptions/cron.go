package subscriptions

import (
	"context"
	"net/http"
	"os"
	"time"

	"panenku/checkout"
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
)

// RunScheduler handles POST /api/cron/subscriptions. The endpoint is invoked
// by an external cron and guarded by a bearer secret, not a user session.
func RunScheduler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	secret := os.Getenv("CRON_SECRET")
	if secret == "" || r.Header.Get("Authorization") != "Bearer "+secret {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	scheduler := NewScheduler(mongoSubs{}, checkout.MongoProducts(), checkout.MongoOrders())
	report := scheduler.Run(ctx, time.Now())

	utils.RespondWithJSON(w, http.StatusOK, report)
}
