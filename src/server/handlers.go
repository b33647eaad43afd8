package server

import (
	"errors"
	"net/http"
	"strconv"

	app "eventserv/src/app"
	db "eventserv/src/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type (
	AppHandler struct {
		store    *db.EventStore
		geocoder app.Geocoder
		mailer   app.Mailer
		storage  app.ImageStorage
		verifier app.TokenVerifier
	}

	categoryFilterBody struct {
		Category            string `json:"category"`
		StartDateOfCategory string `json:"startDateOfCategory"`
	}

	cityFilterBody struct {
		City            string `json:"city"`
		StartDateOfCity string `json:"startDateOfCity"`
	}

	prefectureFilterBody struct {
		Prefecture            string `json:"prefecture"`
		StartDateOfPrefecture string `json:"startDateOfPrefecture"`
	}

	startDateFilterBody struct {
		StartDate string `json:"startDate"`
	}
)

func NewHandler(store *db.EventStore, geocoder app.Geocoder, mailer app.Mailer,
	storage app.ImageStorage, verifier app.TokenVerifier) *AppHandler {
	return &AppHandler{
		store:    store,
		geocoder: geocoder,
		mailer:   mailer,
		storage:  storage,
		verifier: verifier,
	}
}

// fail writes the shared error body shape and stops the handler chain.
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// failWith propagates an HttpError unchanged; anything else becomes a 500
// with the handler's generic message.
func failWith(c *gin.Context, err error, fallback string) {
	var httpErr *app.HttpError
	if errors.As(err, &httpErr) {
		fail(c, httpErr.Status, httpErr.Message)
		return
	}
	fail(c, http.StatusInternalServerError, fallback)
}

// idParam parses a numeric path parameter. A malformed value is reported
// exactly like a well-formed id that matches nothing.
func idParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func (a *AppHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (a *AppHandler) GetEvents(c *gin.Context) {
	events, err := a.store.Events()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events failed, please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventByID(c *gin.Context) {
	eventID, ok := idParam(c, "eid")
	if !ok {
		fail(c, http.StatusNotFound, "Could not find an event for the provided id.")
		return
	}

	event, err := a.store.EventByID(eventID)
	if err != nil {
		if notFound(err) {
			fail(c, http.StatusNotFound, "Could not find an event for the provided id.")
			return
		}
		fail(c, http.StatusInternalServerError, "Something went wrong, could not find an event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (a *AppHandler) GetEventNested(c *gin.Context) {
	eventID, ok := idParam(c, "eid")
	if !ok {
		c.JSON(http.StatusOK, gin.H{"event": nil})
		return
	}

	event, err := a.store.EventNested(eventID)
	if err != nil {
		// An absent id yields an empty body here, not a 404.
		if notFound(err) {
			c.JSON(http.StatusOK, gin.H{"event": nil})
			return
		}
		fail(c, http.StatusInternalServerError, "Could not fetch categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (a *AppHandler) GetEventsByUserID(c *gin.Context) {
	userID, ok := idParam(c, "uid")
	if !ok {
		c.JSON(http.StatusOK, gin.H{"events": []db.Event{}})
		return
	}

	events, err := a.store.EventsMatching(db.EventFilter{UserID: &userID, Joined: true})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetSpecificEvent(c *gin.Context) {
	eventID, ok := idParam(c, "eid")
	if !ok {
		c.JSON(http.StatusOK, gin.H{"specEvent": []db.Event{}})
		return
	}

	specEvent, err := a.store.SpecificEvent(eventID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not fetch specific event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"specEvent": specEvent})
}

func (a *AppHandler) GetEventsByCategory(c *gin.Context) {
	var body categoryFilterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this category failed, please try again")
		return
	}

	// An empty date means no date predicate; an empty category name is a
	// real predicate and matches nothing.
	filter := db.EventFilter{CategoryName: &body.Category, Joined: true}
	if body.StartDateOfCategory != "" {
		filter.StartDate = &body.StartDateOfCategory
	}

	events, err := a.store.EventsMatching(filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this category failed, please try again")
		return
	}

	if len(events) == 0 && body.StartDateOfCategory != "" {
		fail(c, http.StatusNotFound, "No events found for this category and this specific date.")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "No events found for this category.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByCategoryID(c *gin.Context) {
	categoryID, ok := idParam(c, "catid")
	if !ok {
		fail(c, http.StatusNotFound, "No events found for this category.")
		return
	}

	events, err := a.store.EventsMatching(db.EventFilter{CategoryID: &categoryID, Joined: true})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this category failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "No events found for this category.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByCity(c *gin.Context) {
	var body cityFilterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this city failed, please try again")
		return
	}

	filter := db.EventFilter{CityName: &body.City, Joined: true}
	if body.StartDateOfCity != "" {
		filter.StartDate = &body.StartDateOfCity
	}

	events, err := a.store.EventsMatching(filter)
	if err != nil {
		if body.StartDateOfCity != "" {
			fail(c, http.StatusInternalServerError, "Fetching events for this city and date failed, please try again")
			return
		}
		fail(c, http.StatusInternalServerError, "Fetching events for this city failed, please try again")
		return
	}

	if len(events) == 0 && body.StartDateOfCity != "" {
		fail(c, http.StatusNotFound, "No events found for this city and this specific date.")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "No events found for this city.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByCityID(c *gin.Context) {
	cityID, ok := idParam(c, "ctid")
	if !ok {
		fail(c, http.StatusNotFound, "Could not find an event for the provided city id.")
		return
	}

	events, err := a.store.EventsMatching(db.EventFilter{CityID: &cityID, Joined: true})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this city failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "Could not find an event for the provided city id.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByPrefecture(c *gin.Context) {
	var body prefectureFilterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this prefecture failed, please try again")
		return
	}

	filter := db.EventFilter{PrefectureName: &body.Prefecture, Joined: true}
	if body.StartDateOfPrefecture != "" {
		filter.StartDate = &body.StartDateOfPrefecture
	}

	events, err := a.store.EventsMatching(filter)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this prefecture failed, please try again")
		return
	}

	if len(events) == 0 && body.StartDateOfPrefecture != "" {
		fail(c, http.StatusNotFound, "No events found for this prefecture and this specific date.")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "No events found for this prefecture.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByPrefectureID(c *gin.Context) {
	prefectureID, ok := idParam(c, "prefid")
	if !ok {
		fail(c, http.StatusNotFound, "Could not find an event for the provided prefecture id.")
		return
	}

	events, err := a.store.EventsMatching(db.EventFilter{PrefectureID: &prefectureID, Joined: true})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this prefecture failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "Could not find an event for the provided prefecture id.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByStartDate(c *gin.Context) {
	var body startDateFilterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this starting date failed, please try again")
		return
	}

	// The date is applied even when empty: an empty date matches nothing.
	events, err := a.store.EventsMatching(db.EventFilter{StartDate: &body.StartDate})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this starting date failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "No events found for this date.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByStartDateParam(c *gin.Context) {
	startDate := c.Param("date")

	events, err := a.store.EventsMatching(db.EventFilter{StartDate: &startDate})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this starting date failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "Could not find an event for the provided start date.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByCityIDAndStartDate(c *gin.Context) {
	cityID, ok := idParam(c, "ctid")
	if !ok {
		fail(c, http.StatusNotFound, "Could not find an event for the provided city and date.")
		return
	}

	startDate := c.Param("date")
	events, err := a.store.EventsMatching(db.EventFilter{
		CityID:    &cityID,
		StartDate: &startDate,
		Joined:    true,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this starting date and city failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "Could not find an event for the provided city and date.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByPrefIDAndStartDate(c *gin.Context) {
	prefectureID, ok := idParam(c, "prefid")
	if !ok {
		fail(c, http.StatusNotFound, "Could not find an event for the provided prefecture and date.")
		return
	}

	startDate := c.Param("date")
	events, err := a.store.EventsMatching(db.EventFilter{
		PrefectureID: &prefectureID,
		StartDate:    &startDate,
		Joined:       true,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this starting date and city failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "Could not find an event for the provided prefecture and date.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetEventsByCategoryIDAndStartDate(c *gin.Context) {
	categoryID, ok := idParam(c, "catid")
	if !ok {
		fail(c, http.StatusNotFound, "Could not find an event for the provided category and date.")
		return
	}

	startDate := c.Param("date")
	events, err := a.store.EventsMatching(db.EventFilter{
		CategoryID: &categoryID,
		StartDate:  &startDate,
		Joined:     true,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching events for this starting date and category failed, please try again")
		return
	}
	if len(events) == 0 {
		fail(c, http.StatusNotFound, "Could not find an event for the provided category and date.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *AppHandler) GetCities(c *gin.Context) {
	cities, err := a.store.ActiveCities()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching cities failed, please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

func (a *AppHandler) GetCategories(c *gin.Context) {
	categories, err := a.store.ActiveCategories()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching categories failed, please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (a *AppHandler) GetPrefectures(c *gin.Context) {
	prefectures, err := a.store.ActivePrefectures()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Fetching prefectures failed, please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"prefectures": prefectures})
}

func (a *AppHandler) GetComments(c *gin.Context) {
	eventID, ok := idParam(c, "eid")
	if !ok {
		fail(c, http.StatusNotFound, "could not find comments")
		return
	}

	comment, err := a.store.CommentsForEvent(eventID)
	if err != nil {
		fail(c, http.StatusNotFound, "could not find comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}
