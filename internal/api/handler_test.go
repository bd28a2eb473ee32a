package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/cardman/internal/form"
	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/service"
	"github.com/amterp/cardman/internal/store"
	"github.com/amterp/cardman/testutil"
)

const testKey = testutil.Key

// testAPI provides a complete test environment for API handler tests.
type testAPI struct {
	mux     *http.ServeMux
	cards   *service.CardService
	storage *kv.MemoryStorage
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()

	storage := kv.NewMemoryStorage(0)
	cards := service.NewCardService(store.NewCardStore(storage, testKey), nil)
	t.Cleanup(cards.Close)

	mux := http.NewServeMux()
	NewHandler(cards, nil).RegisterRoutes(mux)

	return &testAPI{mux: mux, cards: cards, storage: storage}
}

func (api *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestListCards(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/cards", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, model.DefaultCards(), decode[ListCardsResponse](t, rec).Cards)
}

func TestGetCard(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/cards/2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.DefaultCards()[1], decode[model.Card](t, rec))
}

func TestGetCard_NotFound(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/cards/99", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "card not found: 99", decode[ErrorResponse](t, rec).Error)
}

func TestGetCard_BadID(t *testing.T) {
	api := setupTestAPI(t)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := api.do(t, http.MethodGet, "/api/v1/cards/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
}

func TestCreateCard(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/cards", map[string]string{
		"title":       "  New  ",
		"description": "0123456789",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[model.Card](t, rec)
	assert.Equal(t, model.Card{ID: 4, Title: "New", Description: "0123456789"}, card)

	got, ok := api.cards.GetCardByID(4)
	require.True(t, ok)
	assert.Equal(t, card, got)
}

func TestCreateCard_ValidationFailure(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/cards", map[string]string{
		"title":       "",
		"description": "short",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, map[string]string{
		"title":       form.MsgTitleRequired,
		"description": form.MsgDescriptionTooShort,
	}, resp.Fields)
	assert.Len(t, api.cards.Cards(), 3)
}

func TestCreateCard_MissingFields(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/cards", map[string]string{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, form.MsgTitleRequired, resp.Fields["title"])
	assert.Equal(t, form.MsgDescriptionRequired, resp.Fields["description"])
}

func TestCreateCard_InvalidJSON(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/cards", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decode[ErrorResponse](t, rec).Error)
}

func TestUpdateCard_Partial(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPut, "/api/v1/cards/1", map[string]string{"title": "Renamed"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	card := decode[model.Card](t, rec)
	assert.Equal(t, model.Card{ID: 1, Title: "Renamed", Description: "This is the description for card 1."}, card)
	assert.Equal(t, []int{1, 2, 3}, ids(api.cards.Cards()))
}

func TestUpdateCard_NotFound(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPut, "/api/v1/cards/42", map[string]string{"title": "Ghost"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.DefaultCards(), api.cards.Cards())
}

func TestUpdateCard_ValidationFailure(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodPut, "/api/v1/cards/1", map[string]string{"description": "tiny"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, form.MsgDescriptionTooShort, decode[ErrorResponse](t, rec).Fields["description"])
	assert.Equal(t, model.DefaultCards(), api.cards.Cards())
}

func TestDeleteCard_Idempotent(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.do(t, http.MethodDelete, "/api/v1/cards/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/v1/cards/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []int{1, 3}, ids(api.cards.Cards()))
}

func TestClosedServiceIsUnavailable(t *testing.T) {
	api := setupTestAPI(t)
	api.cards.Close()

	rec := api.do(t, http.MethodDelete, "/api/v1/cards/1", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStaticIndex(t *testing.T) {
	api := setupTestAPI(t)

	for _, path := range []string{"/", "/some/client/route"} {
		rec := api.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<title>cardman</title>")
	}
}

func TestCorsPreflight(t *testing.T) {
	handler := Cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the wrapped handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/cards", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func ids(cards []model.Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
