package api

import (
	"net/http"

	"weeklygrind/plan-tracker/internal/repository"
	"weeklygrind/plan-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type LibraryHandler struct {
	libraryService service.LibraryService
}

func NewLibraryHandler(libraryService service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

type EquipmentOptionsResponse struct {
	Options []string `json:"options"`
}

// ListExercises godoc
// @Summary Browse the exercise library
// @Tags Library
// @Produce json
// @Param category query string false "Exact category"
// @Param equipment query string false "Case-insensitive equipment substring"
// @Success 200 {array} LibraryExerciseResponse
// @Router /exercise-library [get]
func (h *LibraryHandler) ListExercises(c *gin.Context) {
	exercises, err := h.libraryService.List(c.Request.Context(), repository.LibraryFilter{
		Category:  c.Query("category"),
		Equipment: c.Query("equipment"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapLibrary(exercises))
}

// EquipmentOptions godoc
// @Summary Equipment names offered when editing a plan
// @Tags Library
// @Produce json
// @Success 200 {object} EquipmentOptionsResponse
// @Router /equipment-options [get]
func (h *LibraryHandler) EquipmentOptions(c *gin.Context) {
	options, err := h.libraryService.EquipmentOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if options == nil {
		options = []string{}
	}
	c.JSON(http.StatusOK, EquipmentOptionsResponse{Options: options})
}
