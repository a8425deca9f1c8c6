package slots

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crumbhq/crumb-backend/api/middleware"
	"github.com/crumbhq/crumb-backend/api/responses"
	"github.com/crumbhq/crumb-backend/api/validators"
	"github.com/crumbhq/crumb-backend/internal/timeslots"
	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
	"github.com/crumbhq/crumb-backend/pkg/logger"
)

const defaultManageRange = 7 * 24 * time.Hour

// ListAvailable returns the bookable upcoming slots of a bakery keyed by pickup date.
func ListAvailable(svc timeslots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bakeryID, err := bakeryIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		grouped, err := svc.ListAvailable(r.Context(), bakeryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grouped)
	}
}

// ListManaged returns the dashboard view of every slot in [from, to).
func ListManaged(svc timeslots.Service, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return func(w http.ResponseWriter, r *http.Request) {
		bakeryID, err := bakeryIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from", now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to", from.Add(defaultManageRange))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.ListForBakery(r.Context(), bakeryID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

type createSlotRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	MaxOrders int       `json:"max_orders" validate:"gt=0"`
}

func Create(svc timeslots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bakeryID, err := bakeryIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createSlotRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slot, err := svc.Create(r.Context(), timeslots.CreateSlotInput{
			BakeryID:  bakeryID,
			StartTime: payload.StartTime,
			EndTime:   payload.EndTime,
			MaxOrders: payload.MaxOrders,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, slot)
	}
}

type generateSlotsRequest struct {
	Date            string `json:"date" validate:"required"`
	StartHour       int    `json:"start_hour" validate:"gte=0,max=23"`
	EndHour         int    `json:"end_hour" validate:"gte=0,max=24"`
	IntervalMinutes int    `json:"interval_minutes" validate:"gt=0"`
	MaxOrders       int    `json:"max_orders" validate:"gt=0"`
	Timezone        string `json:"timezone,omitempty"`
}

// Generate creates one day of windows. Start times the bakery already has are skipped.
func Generate(svc timeslots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bakeryID, err := bakeryIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload generateSlotsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := time.Parse(time.DateOnly, payload.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD").
				WithDetails(map[string]any{"field": "date"}))
			return
		}
		var loc *time.Location
		if payload.Timezone != "" {
			loc, err = time.LoadLocation(payload.Timezone)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown timezone").
					WithDetails(map[string]any{"field": "timezone"}))
				return
			}
		}
		created, err := svc.Generate(r.Context(), timeslots.GenerateSlotsInput{
			BakeryID:        bakeryID,
			Date:            date,
			StartHour:       payload.StartHour,
			EndHour:         payload.EndHour,
			IntervalMinutes: payload.IntervalMinutes,
			MaxOrders:       payload.MaxOrders,
			Location:        loc,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"created": len(created),
			"slots":   created,
		})
	}
}

func Deactivate(svc timeslots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bakeryID, err := bakeryIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slotID, err := validators.ParseUUIDParam(r, "slotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), bakeryID, slotID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func bakeryIDFromContext(r *http.Request) (uuid.UUID, error) {
	bakeryID, ok := middleware.BakeryIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "bakery context missing")
	}
	return bakeryID, nil
}
