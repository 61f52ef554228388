package controllers

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waste_tracker/internal/config"
	"waste_tracker/internal/models"
	"waste_tracker/internal/urls"
)

func TestCollectorRoutesRejectOthers(t *testing.T) {
	e := setupTestEnv(t)
	collector, _ := e.createUser(t, "a@example.com", models.RoleCollector)
	rec := e.createCollection(t, collector.ID, 3)
	_, customerToken := e.createUser(t, "c@example.com", models.RoleCustomer)
	_, adminToken := e.createUser(t, "admin@example.com", models.RoleAdmin)

	writes := []string{
		urls.Path(urls.CollectionCreate),
		urls.Path(urls.CollectionUpdate, rec.ID),
		urls.Path(urls.CollectionDelete, rec.ID),
	}
	reads := append([]string{
		urls.Path(urls.Dashboard),
		urls.Path(urls.CollectionList),
		urls.Path(urls.AssignedCustomers),
	}, writes...)

	for _, token := range []string{"", customerToken, adminToken} {
		for _, path := range reads {
			w := e.get(path, token, false)
			assert.Equal(t, http.StatusFound, w.Code, path)
			assert.Equal(t, "/auth/login", w.Header().Get("Location"), path)
		}
		for _, path := range writes {
			w := e.postForm(path, token, url.Values{"kg": {"9"}}, false)
			assert.Equal(t, http.StatusFound, w.Code, path)
			assert.Equal(t, "/auth/login", w.Header().Get("Location"), path)
		}
	}

	// nothing was created, changed or deleted
	assert.Equal(t, int64(1), e.countCollections(t))
	var got models.WasteCollection
	require.NoError(t, e.db.First(&got, rec.ID).Error)
	assert.True(t, got.Kg.Equal(decimal.NewFromInt(3)))
}

func TestCreateCollectionComputesTotal(t *testing.T) {
	e := setupTestEnv(t)
	collector, token := e.createUser(t, "a@example.com", models.RoleCollector)
	lb := e.createLocalBody(t, "Ward 4")

	w := e.postForm(urls.Path(urls.CollectionCreate), token, url.Values{
		"kg":        {"12.5"},
		"localbody": {strconv.Itoa(int(lb.ID))},
	}, false)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/waste-collector/dashboard", w.Header().Get("Location"))

	var rec models.WasteCollection
	require.NoError(t, e.db.First(&rec).Error)
	assert.Equal(t, collector.ID, rec.CollectorID)
	assert.True(t, rec.Kg.Equal(decimal.RequireFromString("12.5")), rec.Kg.String())
	assert.True(t, rec.TotalAmount.Equal(decimal.NewFromInt(625)), rec.TotalAmount.String())
	require.NotNil(t, rec.LocalBodyID)
	assert.Equal(t, lb.ID, *rec.LocalBodyID)
	assert.Empty(t, rec.Photo)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestCreateCollectionFromJSON(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.postJSON(t, urls.Path(urls.CollectionCreate), token, map[string]any{"kg": 4})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	var rec models.WasteCollection
	require.NoError(t, e.db.First(&rec).Error)
	assert.True(t, rec.TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.Nil(t, rec.LocalBodyID)
}

func TestCreateCollectionValidation(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	tests := []struct {
		name      string
		form      url.Values
		wantField string
	}{
		{"missing kg", url.Values{"localbody": {""}}, "kg"},
		{"zero kg", url.Values{"kg": {"0"}}, "kg"},
		{"negative kg", url.Values{"kg": {"-2"}}, "kg"},
		{"not a number", url.Values{"kg": {"lots"}}, "kg"},
		{"rounds to zero", url.Values{"kg": {"0.001"}}, "kg"},
		{"too many decimal places", url.Values{"kg": {"1.005"}}, "kg"},
		{"exponent beyond column", url.Values{"kg": {"1e15"}}, "kg"},
		{"kg beyond column", url.Values{"kg": {"123456789012"}}, "kg"},
		{"unknown local body", url.Values{"kg": {"2"}, "localbody": {"999"}}, "localbody"},
		{"malformed photo", url.Values{"kg": {"2"}, "photo_data": {"data:image/png;base64,!!!not-base64"}}, "photo_data"},
		{"photo without separator", url.Values{"kg": {"2"}, "photo_data": {"garbage"}}, "photo_data"},
		{"photo not an image", url.Values{"kg": {"2"}, "photo_data": {"data:text/plain;base64,aGVsbG8="}}, "photo_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.postForm(urls.Path(urls.CollectionCreate), token, tt.form, true)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			var resp formResponse
			decodeBody(t, w.Body, &resp)
			assert.Contains(t, resp.Form.Errors, tt.wantField)
			assert.Equal(t, tt.form.Get("kg"), resp.Form.Kg)
		})
	}

	assert.Equal(t, int64(0), e.countCollections(t))
	entries, err := os.ReadDir(e.mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateCollectionRejectsTotalBeyondColumn(t *testing.T) {
	e := setupTestEnv(t)
	config.App.UnitPrice = decimal.NewFromInt(1000)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.postForm(urls.Path(urls.CollectionCreate), token, url.Values{"kg": {"20000000"}}, true)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var resp formResponse
	decodeBody(t, w.Body, &resp)
	assert.Contains(t, resp.Form.Errors, "kg")
	assert.Equal(t, int64(0), e.countCollections(t))
}

func TestKgProblem(t *testing.T) {
	price := decimal.NewFromInt(50)
	tests := []struct {
		kg     string
		wantOK bool
	}{
		{"2.5", true},
		{"1.500", true},
		{"99999999.99", true},
		{"0.001", false},
		{"2.555", false},
		{"100000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.kg, func(t *testing.T) {
			msg := kgProblem(decimal.RequireFromString(tt.kg), price)
			assert.Equal(t, tt.wantOK, msg == "", msg)
		})
	}
}

func TestCreateCollectionValidationRendersForm(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.postForm(urls.Path(urls.CollectionCreate), token, url.Values{"kg": {"-1"}}, false)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Enter a number greater than zero.")
	assert.Contains(t, w.Body.String(), `value="-1"`)
}

func TestCreateCollectionStoresDataURLPhoto(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.postForm(urls.Path(urls.CollectionCreate), token, url.Values{
		"kg":         {"1"},
		"photo_data": {pngDataURL()},
	}, false)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	var rec models.WasteCollection
	require.NoError(t, e.db.First(&rec).Error)
	require.NotEmpty(t, rec.Photo)
	assert.True(t, strings.HasSuffix(rec.Photo, ".png"), rec.Photo)

	data, err := os.ReadFile(filepath.Join(e.mediaDir, filepath.FromSlash(rec.Photo)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestCreateCollectionStoresUploadedPhoto(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.postMultipart(t, urls.Path(urls.CollectionCreate), token, map[string]string{"kg": "2.25"}, pngBytes)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	var rec models.WasteCollection
	require.NoError(t, e.db.First(&rec).Error)
	assert.True(t, rec.TotalAmount.Equal(decimal.RequireFromString("112.5")), rec.TotalAmount.String())
	assert.True(t, strings.HasSuffix(rec.Photo, ".png"), rec.Photo)
	_, err := os.Stat(filepath.Join(e.mediaDir, filepath.FromSlash(rec.Photo)))
	assert.NoError(t, err)
}

func TestCreateCollectionRejectsNonImageUpload(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.postMultipart(t, urls.Path(urls.CollectionCreate), token, map[string]string{"kg": "2"}, []byte("just some text"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, int64(0), e.countCollections(t))
}

func TestCreateCollectionCustomerPrefill(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)
	lb := e.createLocalBody(t, "Ward 9")
	customer := models.CustomerInfo{Name: "Asha", LocalBodyID: &lb.ID}
	require.NoError(t, e.db.Create(&customer).Error)

	path := urls.Path(urls.CollectionCreate) + "?customer_id=" + strconv.Itoa(int(customer.ID))
	w := e.get(path, token, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp formResponse
	decodeBody(t, w.Body, &resp)
	assert.Equal(t, customer.ID, resp.Form.CustomerID)
	assert.Equal(t, lb.ID, resp.Form.LocalBodyID)
	assert.Equal(t, path, resp.Form.Action)
	require.Len(t, resp.LocalBodies, 1)

	// the record inherits the customer and, when none is given, its local body
	w = e.postForm(path, token, url.Values{"kg": {"3"}}, false)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	var rec models.WasteCollection
	require.NoError(t, e.db.First(&rec).Error)
	require.NotNil(t, rec.CustomerID)
	assert.Equal(t, customer.ID, *rec.CustomerID)
	require.NotNil(t, rec.LocalBodyID)
	assert.Equal(t, lb.ID, *rec.LocalBodyID)
}

func TestCreateCollectionUnknownCustomerIgnored(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	for _, id := range []string{"9999", "abc"} {
		w := e.get(urls.Path(urls.CollectionCreate)+"?customer_id="+id, token, true)
		require.Equal(t, http.StatusOK, w.Code)
		var resp formResponse
		decodeBody(t, w.Body, &resp)
		assert.Zero(t, resp.Form.CustomerID)
		assert.Equal(t, urls.Path(urls.CollectionCreate), resp.Form.Action)
	}

	w := e.postForm(urls.Path(urls.CollectionCreate)+"?customer_id=9999", token, url.Values{"kg": {"1"}}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	var rec models.WasteCollection
	require.NoError(t, e.db.First(&rec).Error)
	assert.Nil(t, rec.CustomerID)
}

func TestDashboardListsOwnRecordsOnly(t *testing.T) {
	e := setupTestEnv(t)
	a, tokenA := e.createUser(t, "a@example.com", models.RoleCollector)
	b, _ := e.createUser(t, "b@example.com", models.RoleCollector)
	mine := e.createCollection(t, a.ID, 2)
	e.createCollection(t, b.ID, 7)

	for _, path := range []string{urls.Path(urls.Dashboard), urls.Path(urls.CollectionList)} {
		w := e.get(path, tokenA, true)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Collections []struct {
				ID          uint   `json:"id"`
				CollectorID uint   `json:"collector_id"`
				TotalAmount string `json:"total_amount"`
			} `json:"collections"`
		}
		decodeBody(t, w.Body, &resp)
		require.Len(t, resp.Collections, 1, path)
		assert.Equal(t, mine.ID, resp.Collections[0].ID)
		assert.Equal(t, a.ID, resp.Collections[0].CollectorID)
		assert.Equal(t, "100", resp.Collections[0].TotalAmount)
	}

	w := e.get(urls.Path(urls.Dashboard), tokenA, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/waste-collector/collections/"+strconv.Itoa(int(mine.ID))+"/update")
}

func TestDashboardEmpty(t *testing.T) {
	e := setupTestEnv(t)
	_, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.get(urls.Path(urls.Dashboard), token, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No pickups logged yet.")
}

func TestOtherCollectorsRecordsAreNotFound(t *testing.T) {
	e := setupTestEnv(t)
	a, _ := e.createUser(t, "a@example.com", models.RoleCollector)
	_, tokenB := e.createUser(t, "b@example.com", models.RoleCollector)
	rec := e.createCollection(t, a.ID, 5)

	for _, path := range []string{
		urls.Path(urls.CollectionUpdate, rec.ID),
		urls.Path(urls.CollectionDelete, rec.ID),
		urls.Path(urls.CollectionUpdate, 4242),
		"/waste-collector/collections/nope/update",
	} {
		w := e.get(path, tokenB, true)
		assert.Equal(t, http.StatusNotFound, w.Code, path)

		w = e.postForm(path, tokenB, url.Values{"kg": {"50"}}, false)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	var got models.WasteCollection
	require.NoError(t, e.db.First(&got, rec.ID).Error)
	assert.True(t, got.Kg.Equal(decimal.NewFromInt(5)))
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(250)))
}

func TestUpdateCollectionReadsDoNotMutate(t *testing.T) {
	e := setupTestEnv(t)
	a, token := e.createUser(t, "a@example.com", models.RoleCollector)
	rec := e.createCollection(t, a.ID, 5)
	path := urls.Path(urls.CollectionUpdate, rec.ID)

	w := e.get(path, token, true)
	require.Equal(t, http.StatusOK, w.Code)
	var resp formResponse
	decodeBody(t, w.Body, &resp)
	assert.Equal(t, rec.ID, resp.Form.ID)
	assert.Equal(t, "5", resp.Form.Kg)
	assert.Equal(t, path, resp.Form.Action)

	// an empty POST only re-renders the form
	w = e.postForm(path, token, url.Values{}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Edit pickup")

	var got models.WasteCollection
	require.NoError(t, e.db.First(&got, rec.ID).Error)
	assert.True(t, got.Kg.Equal(decimal.NewFromInt(5)))
	assert.True(t, got.UpdatedAt.Equal(rec.UpdatedAt))
}

func TestUpdateCollection(t *testing.T) {
	e := setupTestEnv(t)
	a, token := e.createUser(t, "a@example.com", models.RoleCollector)
	lb := e.createLocalBody(t, "Ward 1")
	rec := e.createCollection(t, a.ID, 5)

	w := e.postForm(urls.Path(urls.CollectionUpdate, rec.ID), token, url.Values{
		"kg":         {"8"},
		"localbody":  {strconv.Itoa(int(lb.ID))},
		"photo_data": {pngDataURL()},
	}, false)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/waste-collector/dashboard", w.Header().Get("Location"))

	var got models.WasteCollection
	require.NoError(t, e.db.First(&got, rec.ID).Error)
	assert.Equal(t, a.ID, got.CollectorID)
	assert.True(t, got.Kg.Equal(decimal.NewFromInt(8)))
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(400)))
	require.NotNil(t, got.LocalBodyID)
	assert.Equal(t, lb.ID, *got.LocalBodyID)
	assert.True(t, got.CreatedAt.Equal(rec.CreatedAt))
	assert.True(t, strings.HasSuffix(got.Photo, ".png"))
	firstPhoto := got.Photo

	// replacing the photo removes the old file
	w = e.postForm(urls.Path(urls.CollectionUpdate, rec.ID), token, url.Values{
		"kg":         {"8"},
		"photo_data": {pngDataURL()},
	}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NoError(t, e.db.First(&got, rec.ID).Error)
	assert.NotEqual(t, firstPhoto, got.Photo)
	assert.Nil(t, got.LocalBodyID)
	_, err := os.Stat(filepath.Join(e.mediaDir, filepath.FromSlash(firstPhoto)))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateCollectionValidation(t *testing.T) {
	e := setupTestEnv(t)
	a, token := e.createUser(t, "a@example.com", models.RoleCollector)
	rec := e.createCollection(t, a.ID, 5)

	w := e.postForm(urls.Path(urls.CollectionUpdate, rec.ID), token, url.Values{"kg": {"-5"}}, true)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp formResponse
	decodeBody(t, w.Body, &resp)
	assert.Contains(t, resp.Form.Errors, "kg")

	var got models.WasteCollection
	require.NoError(t, e.db.First(&got, rec.ID).Error)
	assert.True(t, got.Kg.Equal(decimal.NewFromInt(5)))
}

func TestDeleteCollection(t *testing.T) {
	e := setupTestEnv(t)
	a, token := e.createUser(t, "a@example.com", models.RoleCollector)

	w := e.postForm(urls.Path(urls.CollectionCreate), token, url.Values{
		"kg":         {"1"},
		"photo_data": {pngDataURL()},
	}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	var rec models.WasteCollection
	require.NoError(t, e.db.Where("collector_id = ?", a.ID).First(&rec).Error)
	path := urls.Path(urls.CollectionDelete, rec.ID)

	// GET only confirms
	w = e.get(path, token, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Yes, delete")
	assert.Equal(t, int64(1), e.countCollections(t))

	w = e.postForm(path, token, url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/waste-collector/dashboard", w.Header().Get("Location"))
	assert.Equal(t, int64(0), e.countCollections(t))

	_, err := os.Stat(filepath.Join(e.mediaDir, filepath.FromSlash(rec.Photo)))
	assert.True(t, os.IsNotExist(err))

	w = e.postForm(path, token, url.Values{}, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
