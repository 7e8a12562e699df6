package album

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"albumhub/pkg/models"
)

type Handler struct {
	Repo     *Repo
	PageSize int
	Logger   *zap.Logger
}

func NewHandler(repo *Repo, pageSize int, logger *zap.Logger) *Handler {
	if pageSize <= 0 {
		pageSize = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Repo: repo, PageSize: pageSize, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)        // GET /albums
	rg.GET("/:id", h.getByID) // GET /albums/:id
}

func (h *Handler) RegisterGenreRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.genres) // GET /genres
}

// list serves ?genre=<string>&date=<ISO date>&q=<text>&p=<page index>.
func (h *Handler) list(c *gin.Context) {
	page, err := parsePage(c.Query("p"), h.PageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}

	f := Filter{
		Genre:  c.Query("genre"),
		Search: c.Query("q"),
		Limit:  h.PageSize,
		Offset: page * h.PageSize,
	}

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		from, err := models.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		f.From = &from
	}

	items, err := h.Repo.Query(c.Request.Context(), f)
	if err != nil {
		h.Logger.Error("list albums", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("id")
	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Logger.Error("get album", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) genres(c *gin.Context) {
	out, err := h.Repo.Genres(c.Request.Context())
	if err != nil {
		h.Logger.Error("list genres", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "genres failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// parsePage rejects negative pages and pages whose offset would overflow.
func parsePage(s string, pageSize int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	if pageSize > 0 && n > math.MaxInt/pageSize {
		return 0, strconv.ErrRange
	}
	return n, nil
}
