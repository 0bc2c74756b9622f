package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
	"github.com/mgoto/recipelog/internal/domain"
	"github.com/mgoto/recipelog/internal/service/submission"
	"github.com/mgoto/recipelog/pkg/ctxutil"
)

type fakeCatalog struct {
	dishes     []domain.Dish
	lastFilter dish.Filter
	claimed    []int64
	claimErr   error
}

func (f *fakeCatalog) Get(_ context.Context, id int64) (*domain.Dish, error) {
	for i := range f.dishes {
		if f.dishes[i].ID == id {
			return &f.dishes[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) List(_ context.Context, flt dish.Filter) ([]domain.Dish, error) {
	f.lastFilter = flt
	return f.dishes, nil
}

func (f *fakeCatalog) Gallery(_ context.Context, flt dish.Filter) ([]domain.Dish, error) {
	flt.PublicOnly = true
	f.lastFilter = flt
	return f.dishes, nil
}

func (f *fakeCatalog) AllTags(_ context.Context) ([]string, error) {
	return []string{"和食"}, nil
}

func (f *fakeCatalog) SetFavorite(_ context.Context, id int64, _ bool) error {
	return nil
}

func (f *fakeCatalog) Claim(_ context.Context, dishID int64, _ string, _ *domain.Account) error {
	if f.claimErr != nil {
		return f.claimErr
	}
	f.claimed = append(f.claimed, dishID)
	return nil
}

type fakeSubmitter struct {
	id  int64
	err error
	got submission.Submission
}

func (f *fakeSubmitter) Submit(_ context.Context, sub submission.Submission, _ *domain.Account, _ *domain.Session) (int64, error) {
	f.got = sub
	if f.err != nil {
		return 0, f.err
	}
	return f.id, nil
}

func newDishHandler(catalog *fakeCatalog, submit *fakeSubmitter) *DishHandler {
	return NewDishHandler(catalog, submit, slog.New(slog.DiscardHandler))
}

func TestDishList_QueryFilter(t *testing.T) {
	t.Parallel()
	catalog := &fakeCatalog{dishes: []domain.Dish{
		{ID: 1, Name: "肉じゃが", Tags: "和食,30分", CreatedAt: time.Now()},
	}}
	h := newDishHandler(catalog, &fakeSubmitter{})

	req := httptest.NewRequest(http.MethodGet, "/api/dishes?q=じゃが&tags=和食,%2030分&favorite=1&limit=10", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "じゃが", catalog.lastFilter.Keyword)
	assert.Equal(t, []string{"和食", "30分"}, catalog.lastFilter.Tags)
	assert.True(t, catalog.lastFilter.FavoriteOnly)
	assert.Equal(t, 10, catalog.lastFilter.Limit)

	var body []dishResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, []string{"和食", "30分"}, body[0].Tags)
}

func TestDishSubmit_Multipart(t *testing.T) {
	t.Parallel()
	submitter := &fakeSubmitter{id: 7}
	h := newDishHandler(&fakeCatalog{}, submitter)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "カレー"))
	require.NoError(t, mw.WriteField("tags", "和食,30分"))
	require.NoError(t, mw.WriteField("isPublic", "true"))
	fw, err := mw.CreateFormFile("photo", "curry.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpegdata"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dishes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	ctx := ctxutil.WithAccount(req.Context(), &domain.Account{ID: 1, Username: "chef"})
	ctx = ctxutil.WithSession(ctx, &domain.Session{ID: "s1", AccountID: 1})
	rec := httptest.NewRecorder()
	h.Submit(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(7), body["id"])

	assert.Equal(t, "カレー", submitter.got.Name)
	assert.True(t, submitter.got.IsPublic)
	require.NotNil(t, submitter.got.Photo)
	assert.Equal(t, "curry.jpg", submitter.got.Photo.Filename)
	assert.Equal(t, []byte("jpegdata"), submitter.got.Photo.Data)
}

func TestDishSubmit_RejectionMapsTo422(t *testing.T) {
	t.Parallel()
	submitter := &fakeSubmitter{
		err: &domain.RejectionError{Gate: "session_rate", Message: "limit reached"},
	}
	h := newDishHandler(&fakeCatalog{}, submitter)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dishes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "limit reached", body["error"])
	assert.Equal(t, "session_rate", body["gate"])
}

func TestDishClaim(t *testing.T) {
	t.Parallel()
	catalog := &fakeCatalog{}
	h := newDishHandler(catalog, &fakeSubmitter{})

	req := httptest.NewRequest(http.MethodPost, "/api/dishes/3/claim",
		strings.NewReader(`{"editToken":"tok"}`))
	req.SetPathValue("id", "3")
	ctx := ctxutil.WithAccount(req.Context(), &domain.Account{ID: 1, Username: "chef"})
	rec := httptest.NewRecorder()
	h.Claim(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{3}, catalog.claimed)
}

func TestDishClaim_WrongTokenIs404(t *testing.T) {
	t.Parallel()
	catalog := &fakeCatalog{claimErr: domain.ErrNotFound}
	h := newDishHandler(catalog, &fakeSubmitter{})

	req := httptest.NewRequest(http.MethodPost, "/api/dishes/3/claim",
		strings.NewReader(`{"editToken":"wrong"}`))
	req.SetPathValue("id", "3")
	rec := httptest.NewRecorder()
	h.Claim(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
