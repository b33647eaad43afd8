package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	db "eventserv/src/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// reportThreshold is the report count an event may accumulate before its
// creator is notified by mail.
const reportThreshold = 5

type (
	createEventBody struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required,min=5"`
		Address     string `json:"address" binding:"required"`
		City        string `json:"city" binding:"required"`
		Prefecture  string `json:"prefecture" binding:"required"`
		Category    string `json:"category" binding:"required"`
		StartDate   string `json:"startDate" binding:"required"`
		EndDate     string `json:"endDate" binding:"required"`
		StartTime   string `json:"startTime" binding:"required"`
		Images      string `json:"images"`
	}

	updateEventBody struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required,min=5"`
		Address     string `json:"address" binding:"required"`
		City        string `json:"city"`
		Prefecture  string `json:"prefecture"`
		Category    string `json:"category"`
		StartDate   string `json:"startDate" binding:"required"`
		EndDate     string `json:"endDate" binding:"required"`
		StartTime   string `json:"startTime" binding:"required"`
	}

	addReportBody struct {
		UserID    uint `json:"userId"`
		CreatorID uint `json:"creatorId"`
	}

	addCommentBody struct {
		UserID  uint    `json:"userId"`
		Comment string  `json:"comment"`
		Images  *string `json:"images"`
	}
)

func (a *AppHandler) CreateEvent(c *gin.Context) {
	var body createEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	coordinates, err := a.geocoder.Geocode(c.Request.Context(), body.Address)
	if err != nil {
		failWith(c, err, "Something went wrong, could not locate the address.")
		return
	}

	// Three read-only lookups resolve the submitted names to foreign keys;
	// the first failure stops the chain before anything is written.
	city, err := a.store.CityByName(body.City)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}
	prefecture, err := a.store.PrefectureByName(body.Prefecture)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}
	category, err := a.store.CategoryByName(body.Category)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}

	userID := authedUser(c)
	if _, err := a.store.UserByID(userID); err != nil {
		if notFound(err) {
			fail(c, http.StatusNotFound, "Could not find user for the provided id.")
			return
		}
		fail(c, http.StatusInternalServerError, "No such user.")
		return
	}

	event := &db.Event{
		Title:        body.Title,
		Description:  body.Description,
		Address:      body.Address,
		Lat:          coordinates.Lat,
		Lng:          coordinates.Lng,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		StartTime:    body.StartTime,
		Images:       body.Images,
		CityID:       city.ID,
		PrefectureID: prefecture.ID,
		CategoryID:   category.ID,
		UserID:       userID,
	}
	if err := a.store.CreateEvent(event); err != nil {
		fail(c, http.StatusInternalServerError, "Creating event failed, please check your inserted data input.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

func (a *AppHandler) UpdateEvent(c *gin.Context) {
	var body updateEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	coordinates, err := a.geocoder.Geocode(c.Request.Context(), body.Address)
	if err != nil {
		failWith(c, err, "Something went wrong, could not locate the address.")
		return
	}

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
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}

	city, err := a.store.CityByName(body.City)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}
	prefecture, err := a.store.PrefectureByName(body.Prefecture)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}
	category, err := a.store.CategoryByName(body.Category)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}

	if event.UserID != authedUser(c) {
		fail(c, http.StatusUnauthorized, "You are not allowed to edit this Event.")
		return
	}

	// Full overwrite: omitted fields are reassigned, not preserved.
	event.Title = body.Title
	event.Address = body.Address
	event.Lat = coordinates.Lat
	event.Lng = coordinates.Lng
	event.StartDate = body.StartDate
	event.EndDate = body.EndDate
	event.StartTime = body.StartTime
	event.CityID = city.ID
	event.PrefectureID = prefecture.ID
	event.CategoryID = category.ID
	event.Description = body.Description

	if err := a.store.SaveEvent(event); err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not update event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (a *AppHandler) DeleteEvent(c *gin.Context) {
	eventID, ok := idParam(c, "eid")
	if !ok {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not delete event.")
		return
	}

	event, err := a.store.EventByID(eventID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not delete event.")
		return
	}

	if event.UserID != authedUser(c) {
		fail(c, http.StatusUnauthorized, "You are not allowed to delete this Event.")
		return
	}

	if err := a.store.DeleteEvent(event); err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not delete event.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted."})
}

func (a *AppHandler) AddReport(c *gin.Context) {
	eventID, ok := idParam(c, "eid")
	if !ok {
		fail(c, http.StatusInternalServerError, "Could not add report")
		return
	}

	var body addReportBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusInternalServerError, "Could not add report")
		return
	}

	addedReport := &db.Report{
		UserID:  body.UserID,
		EventID: eventID,
	}
	if err := a.store.CreateReport(addedReport); err != nil {
		fail(c, http.StatusInternalServerError, "You have already reported this event.")
		return
	}

	count, err := a.store.ReportCountForEvent(eventID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "could not find that event.")
		return
	}

	creator, err := a.store.UserByID(body.CreatorID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "could not find that user.")
		return
	}

	event, err := a.store.EventByID(eventID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not find this event")
		return
	}

	if count > reportThreshold {
		subject := fmt.Sprintf("Your Event with title %s has been reported many times.", event.Title)
		if err := a.mailer.Send(c.Request.Context(), creator.Email, subject,
			"<h1>Warning! Please delete the Event.</h1>"); err != nil {
			logrus.WithError(err).Error("could not send report warning mail")
		}
	}

	c.JSON(http.StatusOK, gin.H{"addedReport": addedReport})
}

func (a *AppHandler) AddComment(c *gin.Context) {
	eventID, ok := idParam(c, "eid")
	if !ok {
		fail(c, http.StatusInternalServerError, "Could not add comment")
		return
	}

	var body addCommentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusInternalServerError, "Could not add comment")
		return
	}

	images := "[]"
	if body.Images != nil {
		images = *body.Images
	}

	addedComment := &db.Comment{
		Content: body.Comment,
		Images:  images,
		UserID:  body.UserID,
		EventID: eventID,
	}
	if err := a.store.CreateComment(addedComment); err != nil {
		fail(c, http.StatusInternalServerError, "Could not add comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"addedComment": addedComment})
}

// DeleteComment removes the comment by primary key. The event id in the
// path is accepted but not applied as a constraint.
func (a *AppHandler) DeleteComment(c *gin.Context) {
	commentID, ok := idParam(c, "comid")
	if !ok {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not delete comment.")
		return
	}

	comment, err := a.store.CommentByID(commentID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not delete comment.")
		return
	}
	if err := a.store.DeleteComment(comment); err != nil {
		fail(c, http.StatusInternalServerError, "Something went wrong, could not delete comment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted."})
}

// UploadImages stores each multipart file in object storage and records one
// Image row per file against the caller-supplied event id. The event is not
// verified to exist or to belong to the caller.
func (a *AppHandler) UploadImages(c *gin.Context) {
	if a.storage == nil {
		fail(c, http.StatusInternalServerError, "could not add images.")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not add images.")
		return
	}

	eventID, _ := strconv.ParseUint(c.PostForm("eventId"), 10, 64)

	images := make([]db.Image, 0, len(form.File["images"]))
	for _, fileHeader := range form.File["images"] {
		file, err := fileHeader.Open()
		if err != nil {
			fail(c, http.StatusInternalServerError, "could not add images.")
			return
		}

		key := fmt.Sprintf("uploads/images/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
		err = a.storage.UploadFile(c.Request.Context(), key, file, fileHeader.Size,
			fileHeader.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			fail(c, http.StatusInternalServerError, "could not add images.")
			return
		}

		image := db.Image{Path: key, EventID: uint(eventID)}
		if err := a.store.CreateImage(&image); err != nil {
			fail(c, http.StatusInternalServerError, "could not add images.")
			return
		}
		images = append(images, image)
	}

	c.JSON(http.StatusOK, gin.H{"images": images})
}
