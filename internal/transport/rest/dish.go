package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
	"github.com/mgoto/recipelog/internal/domain"
	"github.com/mgoto/recipelog/internal/service/submission"
	"github.com/mgoto/recipelog/pkg/ctxutil"
)

// maxUploadBytes caps one multipart submission, photo included.
const maxUploadBytes = 10 << 20

type catalogService interface {
	Get(ctx context.Context, id int64) (*domain.Dish, error)
	List(ctx context.Context, f dish.Filter) ([]domain.Dish, error)
	Gallery(ctx context.Context, f dish.Filter) ([]domain.Dish, error)
	AllTags(ctx context.Context) ([]string, error)
	SetFavorite(ctx context.Context, id int64, value bool) error
	Claim(ctx context.Context, dishID int64, editToken string, account *domain.Account) error
}

type submitService interface {
	Submit(ctx context.Context, sub submission.Submission, account *domain.Account, sess *domain.Session) (int64, error)
}

// DishHandler serves dish REST endpoints.
type DishHandler struct {
	catalog catalogService
	submit  submitService
	log     *slog.Logger
}

// NewDishHandler creates a DishHandler.
func NewDishHandler(catalog catalogService, submit submitService, logger *slog.Logger) *DishHandler {
	return &DishHandler{
		catalog: catalog,
		submit:  submit,
		log:     logger.With("handler", "dish"),
	}
}

type dishResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Memo      string    `json:"memo"`
	RecipeURL string    `json:"recipeUrl,omitempty"`
	Tags      []string  `json:"tags"`
	Favorite  bool      `json:"favorite"`
	IsPublic  bool      `json:"isPublic"`
	PhotoPath string    `json:"photoPath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toDishResponse(d domain.Dish) dishResponse {
	resp := dishResponse{
		ID:        d.ID,
		Name:      d.Name,
		Memo:      d.Memo,
		Tags:      d.TagList(),
		Favorite:  d.Favorite,
		IsPublic:  d.IsPublic,
		CreatedAt: d.CreatedAt,
	}
	if d.RecipeURL != nil {
		resp.RecipeURL = *d.RecipeURL
	}
	if d.PhotoPath != nil {
		resp.PhotoPath = *d.PhotoPath
	}
	return resp
}

func toDishListResponse(dishes []domain.Dish) []dishResponse {
	out := make([]dishResponse, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, toDishResponse(d))
	}
	return out
}

// List returns the caller's dish log, filtered.
// GET /api/dishes?q=...&tags=a,b&favorite=1&limit=50
func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.catalog.List(r.Context(), filterFromQuery(r))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDishListResponse(dishes))
}

// Gallery returns the public subset only, regardless of query flags.
// GET /api/gallery?q=...&tags=a,b&limit=50
func (h *DishHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.catalog.Gallery(r.Context(), filterFromQuery(r))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDishListResponse(dishes))
}

// Get returns one dish.
// GET /api/dishes/{id}
func (h *DishHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	d, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDishResponse(*d))
}

// Tags returns every distinct tag in use.
// GET /api/tags
func (h *DishHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.AllTags(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// Favorite sets the favorite flag.
// PUT /api/dishes/{id}/favorite
func (h *DishHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.catalog.SetFavorite(r.Context(), id, req.Favorite); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": req.Favorite})
}

type claimRequest struct {
	EditToken string `json:"editToken"`
}

// Claim attaches an ownerless dish to the authenticated account.
// POST /api/dishes/{id}/claim
func (h *DishHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, _ := ctxutil.AccountFromCtx(r.Context())
	if err := h.catalog.Claim(r.Context(), id, req.EditToken, account); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Submit runs one multipart form submission through the admission pipeline.
// POST /api/dishes
func (h *DishHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	sub := submission.Submission{
		Name:        r.FormValue("name"),
		Memo:        r.FormValue("memo"),
		RecipeURL:   r.FormValue("recipeUrl"),
		TagsRaw:     r.FormValue("tags"),
		Favorite:    r.FormValue("favorite") == "true",
		IsPublic:    r.FormValue("isPublic") == "true",
		Honeypot:    r.FormValue("website"),
		VerifyToken: r.FormValue("verifyToken"),
	}

	file, header, err := r.FormFile("photo")
	switch {
	case err == nil:
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			writeError(w, http.StatusBadRequest, "invalid photo upload")
			return
		}
		sub.Photo = &dish.Photo{Filename: header.Filename, Data: data}
	case errors.Is(err, http.ErrMissingFile):
		// photo is optional
	default:
		writeError(w, http.StatusBadRequest, "invalid photo upload")
		return
	}

	account, _ := ctxutil.AccountFromCtx(r.Context())
	sess, _ := ctxutil.SessionFromCtx(r.Context())

	id, err := h.submit.Submit(r.Context(), sub, account, sess)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func filterFromQuery(r *http.Request) dish.Filter {
	q := r.URL.Query()
	f := dish.Filter{
		Keyword:      q.Get("q"),
		FavoriteOnly: q.Get("favorite") == "1" || q.Get("favorite") == "true",
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	return f
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
