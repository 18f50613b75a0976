package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

type PlaceHandler struct {
	places        *service.PlaceService
	publicBaseURL string
}

func RegisterPlaces(e *echo.Echo, auth *service.AuthService, places *service.PlaceService, publicBaseURL string) {
	handler := &PlaceHandler{
		places:        places,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}

	public := e.Group("/api/v1/places")
	public.GET("", handler.listPlaces)
	public.GET("/search/:query", handler.searchPlaces)
	public.GET("/featured/top-rated", handler.topRatedPlaces)
	public.GET("/nearby/search", handler.nearbyPlaces)
	public.GET("/:id", handler.getPlace)
	public.GET("/:id/weather", handler.placeWeather)

	admin := e.Group("/api/v1/places", RequireAuth(auth), RequireAdmin())
	admin.POST("", handler.createPlace)
	admin.PUT("/:id", handler.updatePlace)
	admin.DELETE("/:id", handler.deletePlace)
}

func (h *PlaceHandler) createPlace(c echo.Context) error {
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}
	form := c.Request().MultipartForm

	var closers []io.Closer
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	gallery, galleryClosers, err := openImageUploads(formFiles(form, "images"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	closers = append(closers, galleryClosers...)

	attractions, attractionClosers, err := parseAttractionInputs(c.FormValue("topAttractions"), formFiles(form, "attractionImages"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	closers = append(closers, attractionClosers...)

	thingsToDo, thingClosers, err := parseThingToDoInputs(c.FormValue("thingsToDo"), formFiles(form, "thingsToDoImages"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	closers = append(closers, thingClosers...)

	place, err := h.places.CreatePlace(c.Request().Context(), service.PlaceCreateInput{
		Name:           c.FormValue("name"),
		Description:    c.FormValue("description"),
		Address:        c.FormValue("address"),
		TravelStyles:   formValues(form, "travelStyles"),
		Images:         gallery,
		TopAttractions: attractions,
		ThingsToDo:     thingsToDo,
	})
	if err != nil {
		return h.writePlaceError(c, err, "unable to create place")
	}
	return c.JSON(http.StatusCreated, util.Envelope{"place": place})
}

func (h *PlaceHandler) updatePlace(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}

	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}
	form := c.Request().MultipartForm

	var closers []io.Closer
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	input := service.PlaceUpdateInput{}
	if v, ok := formValue(form, "name"); ok {
		input.Name = &v
	}
	if v, ok := formValue(form, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(form, "address"); ok {
		input.Address = &v
	}
	input.TravelStyles = formValues(form, "travelStyles")
	input.ExistingImages = formValues(form, "existingImages")

	gallery, galleryClosers, err := openImageUploads(formFiles(form, "images"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	closers = append(closers, galleryClosers...)
	input.Images = gallery

	if raw, ok := formValue(form, "topAttractions"); ok {
		attractions, attractionClosers, err := parseAttractionInputs(raw, formFiles(form, "attractionImages"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		closers = append(closers, attractionClosers...)
		input.TopAttractions = attractions
	}
	if raw, ok := formValue(form, "thingsToDo"); ok {
		thingsToDo, thingClosers, err := parseThingToDoInputs(raw, formFiles(form, "thingsToDoImages"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		closers = append(closers, thingClosers...)
		input.ThingsToDo = thingsToDo
	}

	place, err := h.places.UpdatePlace(c.Request().Context(), placeID, input)
	if err != nil {
		return h.writePlaceError(c, err, "unable to update place")
	}
	return c.JSON(http.StatusOK, util.Envelope{"place": place})
}

func (h *PlaceHandler) deletePlace(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}
	if err := h.places.DeletePlace(c.Request().Context(), placeID); err != nil {
		return h.writePlaceError(c, err, "unable to delete place")
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *PlaceHandler) getPlace(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}
	detail, err := h.places.GetPlace(c.Request().Context(), placeID)
	if err != nil {
		return h.writePlaceError(c, err, "unable to load place")
	}
	return c.JSON(http.StatusOK, util.Envelope{"place": detail})
}

func (h *PlaceHandler) listPlaces(c echo.Context) error {
	places, err := h.places.ListPlaces(c.Request().Context(), strings.TrimSpace(c.QueryParam("travelStyle")))
	if err != nil {
		return h.writePlaceError(c, err, "unable to list places")
	}
	return c.JSON(http.StatusOK, util.Envelope{"places": places, "count": len(places)})
}

func (h *PlaceHandler) searchPlaces(c echo.Context) error {
	places, err := h.places.SearchPlaces(c.Request().Context(), c.Param("query"))
	if err != nil {
		return h.writePlaceError(c, err, "unable to search places")
	}
	return c.JSON(http.StatusOK, util.Envelope{"places": places, "count": len(places)})
}

// topRatedPlaces serves the landing carousel. Stored image paths that are not
// absolute URLs get rewritten against the configured public base URL so the
// frontend can embed them directly.
func (h *PlaceHandler) topRatedPlaces(c echo.Context) error {
	limit := 0
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, util.Error("limit must be a non-negative integer"))
		}
		limit = parsed
	}

	places, err := h.places.TopRatedPlaces(c.Request().Context(), limit)
	if err != nil {
		return h.writePlaceError(c, err, "unable to list top rated places")
	}
	for i := range places {
		for j, image := range places[i].Images {
			places[i].Images[j] = absoluteImageURL(h.publicBaseURL, image)
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"places": places, "count": len(places)})
}

func (h *PlaceHandler) nearbyPlaces(c echo.Context) error {
	lngStr := strings.TrimSpace(c.QueryParam("lng"))
	latStr := strings.TrimSpace(c.QueryParam("lat"))
	if lngStr == "" || latStr == "" {
		return c.JSON(http.StatusBadRequest, util.Error("lng and lat are required"))
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("lng must be a number"))
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("lat must be a number"))
	}

	maxDistance := 0
	if v := strings.TrimSpace(c.QueryParam("distance")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, util.Error("distance must be a non-negative integer"))
		}
		maxDistance = parsed
	}

	places, err := h.places.NearbyPlaces(c.Request().Context(), lng, lat, maxDistance)
	if err != nil {
		return h.writePlaceError(c, err, "unable to list nearby places")
	}
	return c.JSON(http.StatusOK, util.Envelope{"places": places, "count": len(places)})
}

func (h *PlaceHandler) placeWeather(c echo.Context) error {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid place id"))
	}
	report, err := h.places.PlaceWeather(c.Request().Context(), placeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlaceNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		case errors.Is(err, service.ErrWeatherUnavailable):
			return c.JSON(http.StatusBadGateway, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load weather"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"weather": report})
}

func (h *PlaceHandler) writePlaceError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrPlaceNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrPlaceAlreadyExist):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrPlaceValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}

// attractionMeta and thingToDoMeta are the JSON shapes the frontend sends
// alongside the image files; entries are zipped with the files by position.
type attractionMeta struct {
	Name string `json:"name"`
}

type thingToDoMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func parseAttractionInputs(metadata string, headers []*multipart.FileHeader) ([]service.AttractionInput, []io.Closer, error) {
	metadata = strings.TrimSpace(metadata)
	if metadata == "" {
		if len(headers) > 0 {
			return nil, nil, errors.New("topAttractions metadata required when attraction images are sent")
		}
		return nil, nil, nil
	}

	var metas []attractionMeta
	if err := json.Unmarshal([]byte(metadata), &metas); err != nil {
		return nil, nil, errors.New("topAttractions must be a JSON array")
	}
	if len(headers) > 0 && len(headers) != len(metas) {
		return nil, nil, fmt.Errorf("got %d attraction images for %d attractions", len(headers), len(metas))
	}

	uploads, closers, err := openImageUploads(headers)
	if err != nil {
		return nil, nil, errors.New("unable to read upload")
	}

	inputs := make([]service.AttractionInput, 0, len(metas))
	for i, meta := range metas {
		input := service.AttractionInput{Name: meta.Name}
		if i < len(uploads) {
			input.Image = &uploads[i]
		}
		inputs = append(inputs, input)
	}
	return inputs, closers, nil
}

func parseThingToDoInputs(metadata string, headers []*multipart.FileHeader) ([]service.ThingToDoInput, []io.Closer, error) {
	metadata = strings.TrimSpace(metadata)
	if metadata == "" {
		if len(headers) > 0 {
			return nil, nil, errors.New("thingsToDo metadata required when images are sent")
		}
		return nil, nil, nil
	}

	var metas []thingToDoMeta
	if err := json.Unmarshal([]byte(metadata), &metas); err != nil {
		return nil, nil, errors.New("thingsToDo must be a JSON array")
	}
	if len(headers) > 0 && len(headers) != len(metas) {
		return nil, nil, fmt.Errorf("got %d activity images for %d activities", len(headers), len(metas))
	}

	uploads, closers, err := openImageUploads(headers)
	if err != nil {
		return nil, nil, errors.New("unable to read upload")
	}

	inputs := make([]service.ThingToDoInput, 0, len(metas))
	for i, meta := range metas {
		input := service.ThingToDoInput{Title: meta.Title, Description: meta.Description}
		if i < len(uploads) {
			input.Image = &uploads[i]
		}
		inputs = append(inputs, input)
	}
	return inputs, closers, nil
}

func openImageUploads(headers []*multipart.FileHeader) ([]service.ImageUpload, []io.Closer, error) {
	uploads := make([]service.ImageUpload, 0, len(headers))
	closers := make([]io.Closer, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return nil, nil, err
		}
		closers = append(closers, file)
		uploads = append(uploads, service.ImageUpload{
			Reader:      file,
			Size:        header.Size,
			FileName:    header.Filename,
			ContentType: header.Header.Get(echo.HeaderContentType),
		})
	}
	return uploads, closers, nil
}

func formFiles(form *multipart.Form, key string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File[key]...)
	headers = append(headers, form.File[key+"[]"]...)
	return headers
}

func formValue(form *multipart.Form, key string) (string, bool) {
	if form == nil {
		return "", false
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// formValues accepts either repeated fields or a single comma separated value.
func formValues(form *multipart.Form, key string) []string {
	if form == nil {
		return nil
	}
	raw := form.Value[key]
	if len(raw) == 0 {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

func absoluteImageURL(baseURL, image string) string {
	trimmed := strings.TrimSpace(image)
	if trimmed == "" || baseURL == "" {
		return image
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return image
	}
	return baseURL + "/" + strings.TrimLeft(trimmed, "/")
}
