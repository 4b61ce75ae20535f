package handler

import (
    "context"  // contexts for DB calls and the post-commit publish
    "errors"   // errors.Is comparisons against repository sentinels
    "log"      // best-effort cleanup failures are logged, never surfaced
    "net/http" // HTTP status codes
    "os"       // direct unlink fallback when the broker is unreachable
    "strconv"  // parsing path parameters
    "strings"  // input trimming
    "time"     // timeouts and event timestamps

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/kngrck/mern-project/internal/config"     // pinned-location override
    "github.com/kngrck/mern-project/internal/model"      // place record type
    "github.com/kngrck/mern-project/internal/queue"      // place.deleted event payload
    "github.com/kngrck/mern-project/internal/repository" // repository layer
    queuepub "github.com/kngrck/mern-project/internal/service"
)

// PlaceHandler groups the repositories needed to read and mutate places.
// Reads are public.  Mutations assume the JWTAuth middleware already ran;
// they re-check ownership against the stored creator and run every
// dual-entity write (the place row plus the owner's user_places row)
// inside a transaction so the two can never diverge.
type PlaceHandler struct {
	Cfg    config.Config
	Places *repository.PlaceRepo
	Users  *repository.UserRepo
}

// NewPlaceHandler constructs a PlaceHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewPlaceHandler(cfg config.Config, places *repository.PlaceRepo, users *repository.UserRepo) *PlaceHandler {
	if places == nil || users == nil {
		panic("nil repository passed to NewPlaceHandler")
	}
	return &PlaceHandler{Cfg: cfg, Places: places, Users: users}
}

// ----- DTOs -----

type locationPart struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// placePart is the public projection of a place record.
type placePart struct {
	ID          uint64       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Address     string       `json:"address"`
	Location    locationPart `json:"location"`
	Image       string       `json:"image"`
	Creator     uint64       `json:"creator"`
}

func toPlacePart(p model.Place) placePart {
	return placePart{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Location:    locationPart{Lat: p.Lat, Lng: p.Lng},
		Image:       p.Image,
		Creator:     p.CreatorID,
	}
}

type createPlaceReq struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Address     string       `json:"address"`
	Location    locationPart `json:"location"`
	Image       string       `json:"image"`
}

type updatePlaceReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func validPlaceInput(title, description string) bool {
	return strings.TrimSpace(title) != "" && len(strings.TrimSpace(description)) >= 5
}

// GetPlaceByID handles GET /api/places/:pid.  No authentication or
// ownership check applies; reads are public in this design.
func (h *PlaceHandler) GetPlaceByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("pid"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Places.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Could not find a place for the provided id."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not find a place."})
	}
	return c.JSON(http.StatusOK, echo.Map{"place": toPlacePart(p)})
}

// GetPlacesByUserID handles GET /api/places/user/:uid.  It returns the
// user's owned-place set, which may legitimately be empty; only an
// unknown user id yields 404.
func (h *PlaceHandler) GetPlacesByUserID(c echo.Context) error {
	uid, err := strconv.ParseUint(c.Param("uid"), 10, 64)
	if err != nil || uid == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Could not find places for the provided user id."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not find places."})
	}
	places, err := h.Places.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not find places."})
	}
	out := make([]placePart, 0, len(places))
	for _, p := range places {
		out = append(out, toPlacePart(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"places": out})
}

// CreatePlace handles POST /api/places.  The place row and the owner's
// user_places row are written inside one transaction; if either insert
// fails neither store is mutated.
func (h *PlaceHandler) CreatePlace(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": authFailedPlaceMsg})
	}
	var req createPlaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}
	if !validPlaceInput(req.Title, req.Description) || strings.TrimSpace(req.Address) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Resolve the authenticated identity to a stored user. A verified
	// token whose subject is gone means the system itself is inconsistent,
	// so this is reported as a server fault rather than a client error.
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("place: verified token references missing user %d", userID)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Creating place failed, please try again."})
	}

	lat, lng := req.Location.Lat, req.Location.Lng
	if pl, pg, ok := h.Cfg.PinnedLocation(); ok {
		lat, lng = pl, pg
	}
	place := model.Place{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		Lat:         lat,
		Lng:         lng,
		Image:       req.Image,
		CreatorID:   user.ID,
	}

	tx, err := h.Places.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Creating place failed, please try again."})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Places.CreateTx(ctx, tx, &place); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Creating place failed, please try again."})
	}
	if err := h.Users.AddPlaceTx(ctx, tx, user.ID, place.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Creating place failed, please try again."})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Creating place failed, please try again."})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{"place": toPlacePart(place)})
}

// UpdatePlace handles PATCH /api/places/:pid.  Only the creator may edit;
// a mismatch fails before anything is written.  The write touches a
// single entity so no transaction is needed.
func (h *PlaceHandler) UpdatePlace(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": authFailedPlaceMsg})
	}
	id, err := strconv.ParseUint(c.Param("pid"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}
	var req updatePlaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}
	if !validPlaceInput(req.Title, req.Description) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Invalid inputs passed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	place, err := h.Places.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Could not find a place for the provided id."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not update a place."})
	}
	if place.CreatorID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You are not allowed to edit this place."})
	}

	updated, err := h.Places.Update(ctx, id, strings.TrimSpace(req.Title), strings.TrimSpace(req.Description))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not update a place."})
	}
	return c.JSON(http.StatusOK, echo.Map{"place": toPlacePart(updated)})
}

// DeletePlace handles DELETE /api/places/:pid.  The place row and the
// owner's user_places row are removed inside one transaction.  Only after
// the commit succeeds is the image cleanup kicked off, as a best-effort
// step that can fail without failing the request.
func (h *PlaceHandler) DeletePlace(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": authFailedPlaceMsg})
	}
	id, err := strconv.ParseUint(c.Param("pid"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid place id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	place, err := h.Places.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Could not find a place."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not delete a place."})
	}
	if place.CreatorID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You are not allowed to delete this place."})
	}

	tx, err := h.Places.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not delete a place."})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Places.DeleteTx(ctx, tx, id); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Could not find a place."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not delete a place."})
	}
	if err := h.Users.RemovePlaceTx(ctx, tx, place.CreatorID, place.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not delete a place."})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Something went wrong, could not delete a place."})
	}
	committed = true

	h.releaseImage(place)

	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted place."})
}

// releaseImage hands the orphaned image to the cleanup consumer via the
// broker.  When the broker is unreachable it falls back to unlinking the
// file in-process.  Failures on either path are logged only; the place is
// already gone and the request has succeeded.
func (h *PlaceHandler) releaseImage(place model.Place) {
	ev := queue.PlaceDeletedEvent{
		PlaceID:   place.ID,
		CreatorID: place.CreatorID,
		Title:     place.Title,
		ImagePath: place.Image,
		DeletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	pubCtx, pubCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pubCancel()
	if err := queuepub.PublishPlaceDeleted(pubCtx, ev); err != nil && place.Image != "" {
		if rmErr := os.Remove(place.Image); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("place: image cleanup for %q failed: %v", place.Image, rmErr)
		}
	}
}

// authFailedPlaceMsg duplicates the middleware's answer for the case
// where a mutating handler runs without a usable identity in context.
const authFailedPlaceMsg = "Authentication failed!"
