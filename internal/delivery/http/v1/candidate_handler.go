package v1

import (
	"net/http"
	"strconv"

	"go-whatscv-backend/internal/delivery/http/response"
	"go-whatscv-backend/internal/domain"
	"go-whatscv-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	candidates := r.Group("/candidates")
	{
		candidates.GET("/search", handler.Search)
		candidates.GET("/:id", handler.GetByID)
	}
}

// GetByID godoc
// @Summary      Get candidate by id
// @Description  Full candidate detail including education and experiences
// @Tags         candidates
// @Produce      json
// @Param        id   path      int  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.CandidateDetail}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
func (h *CandidateHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Candidate id must be an integer"))
		return
	}

	detail, err := h.candidateUC.GetCandidate(c, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate detail", detail)
}

// Search godoc
// @Summary      Search candidates
// @Description  Filter candidates by skills keywords, education level and city
// @Tags         candidates
// @Produce      json
// @Param        skills           query     string  false  "Comma-separated keywords, all must match"
// @Param        education_level  query     string  false  "Degree substring, case-insensitive"
// @Param        city             query     string  false  "City substring, case-insensitive"
// @Success      200  {object}  response.Response{data=domain.SearchResult}
// @Router       /candidates/search [get]
func (h *CandidateHandler) Search(c *gin.Context) {
	filter := domain.SearchFilter{
		Skills:         c.Query("skills"),
		EducationLevel: c.Query("education_level"),
		City:           c.Query("city"),
	}

	result, err := h.candidateUC.Search(c, filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Search results", result)
}
