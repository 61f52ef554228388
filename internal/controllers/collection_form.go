package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"waste_tracker/internal/config"
	"waste_tracker/internal/models"
	"waste_tracker/internal/storage"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(formFieldName)
		_ = v.RegisterValidation("positive_decimal", positiveDecimal)
	}
}

// formFieldName reports validation errors under the submitted field name.
func formFieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

func positiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	return err == nil && d.IsPositive()
}

type collectionInput struct {
	Kg        json.Number `form:"kg" json:"kg" binding:"required,positive_decimal"`
	LocalBody *uint       `form:"localbody" json:"localbody"`
	PhotoData string      `form:"photo_data" json:"photo_data"`
}

// collectionSubmission is a bound and validated create/update request.
type collectionSubmission struct {
	rawKg       string
	kg          decimal.Decimal
	localBodyID *uint
	photo       *storage.Asset
}

// formState is what the form template and JSON clients see.
type formState struct {
	ID          uint              `json:"id,omitempty"`
	Action      string            `json:"action"`
	Kg          string            `json:"kg"`
	LocalBodyID uint              `json:"localbody,omitempty"`
	CustomerID  uint              `json:"customer_id,omitempty"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

func (s *formState) applySubmission(sub collectionSubmission) {
	s.Kg = sub.rawKg
	s.LocalBodyID = 0
	if sub.localBodyID != nil {
		s.LocalBodyID = *sub.localBodyID
	}
}

// hasSubmission is false for reads and for POSTs that carry no fields.
func hasSubmission(c *gin.Context) bool {
	if c.Request.Method != http.MethodPost {
		return false
	}
	switch c.ContentType() {
	case binding.MIMEJSON:
		return c.Request.ContentLength != 0
	case binding.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return true
		}
		return len(form.Value) > 0 || len(form.File) > 0
	default:
		if err := c.Request.ParseForm(); err != nil {
			return true
		}
		return len(c.Request.PostForm) > 0
	}
}

// limitBody caps request bodies at the upload limit plus room for fields.
func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.App.MaxUploadBytes+(1<<20))
}

// bindCollection binds the submission and validates it. Field problems come
// back in the map; the error is reserved for store failures.
func bindCollection(c *gin.Context) (collectionSubmission, map[string]string, error) {
	var in collectionInput
	fieldErrs := map[string]string{}

	bindErr := c.ShouldBind(&in)
	sub := collectionSubmission{rawKg: in.Kg.String()}
	if in.LocalBody != nil && *in.LocalBody != 0 {
		id := *in.LocalBody
		sub.localBodyID = &id
	}
	if bindErr != nil {
		addBindErrors(fieldErrs, bindErr)
		return sub, fieldErrs, nil
	}

	kg, _ := decimal.NewFromString(strings.TrimSpace(sub.rawKg))
	sub.kg = kg
	if msg := kgProblem(kg, config.App.UnitPrice); msg != "" {
		fieldErrs["kg"] = msg
	}

	if sub.localBodyID != nil {
		err := config.DB.WithContext(c.Request.Context()).Select("id").First(&models.LocalBody{}, *sub.localBodyID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fieldErrs["localbody"] = "Select a valid local body."
		case err != nil:
			return sub, nil, err
		}
	}

	if in.PhotoData != "" {
		asset, err := storage.DecodeDataURL(in.PhotoData)
		if err != nil {
			fieldErrs["photo_data"] = photoErrorMessage(err)
		} else {
			sub.photo = &asset
		}
	} else if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if fh, err := c.FormFile("photo"); err == nil {
			asset, err := storage.ReadUpload(fh, config.App.MaxUploadBytes)
			if err != nil {
				fieldErrs["photo"] = photoErrorMessage(err)
			} else {
				sub.photo = &asset
			}
		}
	}

	return sub, fieldErrs, nil
}

// kgProblem checks a positive weight against the column precision and the
// largest total the amount column can store.
func kgProblem(kg, unitPrice decimal.Decimal) string {
	switch {
	case !kg.Equal(kg.Round(2)):
		return "Enter a number with at most 2 decimal places."
	case kg.GreaterThan(models.MaxKg):
		return "Enter at most " + models.MaxKg.StringFixed(2) + " kg."
	case kg.Mul(unitPrice).Round(2).GreaterThan(models.MaxTotalAmount):
		return "Weight is too large for the current price."
	}
	return ""
}

func addBindErrors(dst map[string]string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		dst["form"] = "Invalid submission: " + err.Error()
		return
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			dst[fe.Field()] = "This field is required."
		case "positive_decimal":
			dst[fe.Field()] = "Enter a number greater than zero."
		default:
			dst[fe.Field()] = fe.Error()
		}
	}
}

func photoErrorMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrMalformedDataURL):
		return "Malformed photo data; expected data:<mime>;base64,<payload>."
	case errors.Is(err, storage.ErrUnsupportedType):
		return "Upload a valid image."
	case errors.Is(err, storage.ErrTooLarge):
		return "Photo is too large."
	default:
		return "Could not read the photo."
	}
}
