package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waste_tracker/internal/config"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/models"
	"waste_tracker/internal/urls"
)

// collectionView adds the public photo URL to a record.
type collectionView struct {
	models.WasteCollection
	PhotoURL string `json:"photo_url,omitempty"`
}

func viewOf(rec models.WasteCollection) collectionView {
	v := collectionView{WasteCollection: rec}
	if rec.Photo != "" && config.Photos != nil {
		v.PhotoURL = config.Photos.URL(rec.Photo)
	}
	return v
}

// collectionsView lists the acting collector's own records. Dashboard and
// List share it and differ only in template.
func collectionsView(template string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.CurrentPrincipal(c)

		var records []models.WasteCollection
		err := config.DB.WithContext(c.Request.Context()).
			Where("collector_id = ?", p.UserID).
			Preload("LocalBody").
			Order("created_at DESC, id DESC").
			Find(&records).Error
		if err != nil {
			serverError(c, err, "could not load collections")
			return
		}

		views := make([]collectionView, 0, len(records))
		for _, rec := range records {
			views = append(views, viewOf(rec))
		}
		render(c, http.StatusOK, template, gin.H{"collections": views})
	}
}

// Dashboard is the collector's landing page.
var Dashboard = collectionsView("waste_collector_dashboard.html")

// CollectionList is the compact table of the same records.
var CollectionList = collectionsView("waste_collect_list.html")

// CreateCollection logs a pickup for the acting collector.
func CreateCollection(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	ctx := c.Request.Context()

	state := formState{Action: urls.Path(urls.CollectionCreate)}
	customer := lookupCustomer(c)
	if customer != nil {
		state.Action += "?customer_id=" + strconv.FormatUint(uint64(customer.ID), 10)
		state.CustomerID = customer.ID
		if customer.LocalBodyID != nil {
			state.LocalBodyID = *customer.LocalBodyID
		}
	}

	if c.Request.Method != http.MethodPost {
		renderForm(c, http.StatusOK, state)
		return
	}

	limitBody(c)
	sub, fieldErrs, err := bindCollection(c)
	if err != nil {
		serverError(c, err, "could not validate collection")
		return
	}
	state.applySubmission(sub)
	if len(fieldErrs) > 0 {
		state.Errors = fieldErrs
		renderForm(c, http.StatusUnprocessableEntity, state)
		return
	}

	record := models.WasteCollection{
		CollectorID: p.UserID,
		Kg:          sub.kg,
		LocalBodyID: sub.localBodyID,
	}
	if customer != nil {
		record.CustomerID = &customer.ID
		if record.LocalBodyID == nil {
			record.LocalBodyID = customer.LocalBodyID
		}
	}
	record.ApplyPricing(config.App.UnitPrice)

	if sub.photo != nil {
		key, err := config.Photos.Save(ctx, *sub.photo)
		if err != nil {
			serverError(c, err, "could not store photo")
			return
		}
		record.Photo = key
	}

	if err := config.DB.WithContext(ctx).Create(&record).Error; err != nil {
		if record.Photo != "" {
			logrus.WithField("photo", record.Photo).Warn("collection insert failed, photo left orphaned")
		}
		serverError(c, err, "could not save collection")
		return
	}

	logrus.WithFields(logrus.Fields{
		"collection_id": record.ID,
		"collector_id":  record.CollectorID,
		"kg":            record.Kg.String(),
	}).Info("collection logged")
	redirectTo(c, urls.Dashboard)
}

// UpdateCollection edits one of the acting collector's records. Reads and
// empty POSTs only render the form.
func UpdateCollection(c *gin.Context) {
	record, ok := loadOwnedCollection(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	state := formState{
		ID:     record.ID,
		Action: urls.Path(urls.CollectionUpdate, record.ID),
		Kg:     record.Kg.String(),
	}
	if record.LocalBodyID != nil {
		state.LocalBodyID = *record.LocalBodyID
	}
	if record.CustomerID != nil {
		state.CustomerID = *record.CustomerID
	}
	state.PhotoURL = viewOf(record).PhotoURL

	limitBody(c)
	if !hasSubmission(c) {
		renderForm(c, http.StatusOK, state)
		return
	}

	sub, fieldErrs, err := bindCollection(c)
	if err != nil {
		serverError(c, err, "could not validate collection")
		return
	}
	state.applySubmission(sub)
	if len(fieldErrs) > 0 {
		state.Errors = fieldErrs
		renderForm(c, http.StatusUnprocessableEntity, state)
		return
	}

	oldPhoto := record.Photo
	record.Kg = sub.kg
	record.LocalBodyID = sub.localBodyID
	record.ApplyPricing(config.App.UnitPrice)

	if sub.photo != nil {
		key, err := config.Photos.Save(ctx, *sub.photo)
		if err != nil {
			serverError(c, err, "could not store photo")
			return
		}
		record.Photo = key
	}

	err = config.DB.WithContext(ctx).
		Omit("CollectorID", "CreatedAt", clause.Associations).
		Save(&record).Error
	if err != nil {
		serverError(c, err, "could not update collection")
		return
	}

	if sub.photo != nil && oldPhoto != "" {
		removePhoto(c, oldPhoto)
	}
	redirectTo(c, urls.Dashboard)
}

// DeleteCollection asks for confirmation on GET and deletes on POST.
func DeleteCollection(c *gin.Context) {
	record, ok := loadOwnedCollection(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "waste_collect_delete.html", gin.H{"waste": viewOf(record)})
		return
	}

	if err := config.DB.WithContext(c.Request.Context()).Delete(&record).Error; err != nil {
		serverError(c, err, "could not delete collection")
		return
	}
	if record.Photo != "" {
		removePhoto(c, record.Photo)
	}

	logrus.WithFields(logrus.Fields{
		"collection_id": record.ID,
		"collector_id":  record.CollectorID,
	}).Info("collection deleted")
	redirectTo(c, urls.Dashboard)
}

// loadOwnedCollection finds :id among the acting collector's records and
// writes the 404/500 itself when it cannot.
func loadOwnedCollection(c *gin.Context) (models.WasteCollection, bool) {
	p := middleware.CurrentPrincipal(c)
	var record models.WasteCollection

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return record, false
	}

	err = config.DB.WithContext(c.Request.Context()).
		Where("id = ? AND collector_id = ?", id, p.UserID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
		} else {
			serverError(c, err, "could not load collection")
		}
		return record, false
	}
	return record, true
}

// lookupCustomer resolves ?customer_id=. Unknown or malformed ids are ignored.
func lookupCustomer(c *gin.Context) *models.CustomerInfo {
	raw := c.Query("customer_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	var customer models.CustomerInfo
	if err := config.DB.WithContext(c.Request.Context()).First(&customer, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("customer_id", id).Warn("customer lookup failed")
		}
		return nil
	}
	return &customer
}

func renderForm(c *gin.Context, code int, state formState) {
	var localBodies []models.LocalBody
	if err := config.DB.WithContext(c.Request.Context()).Order("name").Find(&localBodies).Error; err != nil {
		logrus.WithError(err).Warn("could not load local bodies for form")
	}
	render(c, code, "waste_collect_form.html", gin.H{
		"form":         state,
		"local_bodies": localBodies,
	})
}

func removePhoto(c *gin.Context, key string) {
	if err := config.Photos.Delete(c.Request.Context(), key); err != nil {
		logrus.WithError(err).WithField("photo", key).Warn("could not remove photo")
	}
}
