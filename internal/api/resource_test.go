package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelhub-io/go-modelapi-backend/internal/model"
)

var groupMeta = &model.Meta{
	Name:              "group",
	VerboseName:       "group",
	VerboseNamePlural: "groups",
	Fields: []model.Field{
		{Name: "name", Kind: model.Text, Required: true, MaxLength: 100},
	},
}

var personMeta = &model.Meta{
	Name:              "person",
	VerboseName:       "person",
	VerboseNamePlural: "persons",
	Fields: []model.Field{
		{Name: "name", Kind: model.Text, Required: true, MaxLength: 100},
		{Name: "status", Kind: model.Choice, Choices: []model.ChoicePair{
			{Code: "A", Label: "Active"},
			{Code: "I", Label: "Inactive"},
		}},
		{Name: "joined", Kind: model.Time},
		{Name: "group", Kind: model.Ref, Ref: groupMeta},
	},
}

type testEnv struct {
	api     *API
	persons *model.MemStore
	groups  *model.MemStore
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	persons := model.NewMemStore(personMeta)
	persons.LabelFunc = func(v model.Values) string { s, _ := v["name"].(string); return s }
	groups := model.NewMemStore(groupMeta)
	groups.LabelFunc = func(v model.Values) string { s, _ := v["name"].(string); return s }

	a := New("v1", "/api/v1", 0)
	_, err := a.Register(persons, ResourceOptions{AllowPost: true})
	require.NoError(t, err)
	_, err = a.Register(groups, ResourceOptions{})
	require.NoError(t, err)

	r := gin.New()
	a.Mount(r)

	return &testEnv{api: a, persons: persons, groups: groups, router: r}
}

func (e *testEnv) addPersons(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := e.persons.Create(context.Background(), model.Values{
			"name":   fmt.Sprintf("Person %03d", i),
			"status": "A",
			"joined": time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
}

func (e *testEnv) get(path string, headers map[string]string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, path, "", "", headers)
}

func (e *testEnv) do(method, path, body, contentType string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc), "body: %s", w.Body.String())
	return doc
}

func TestCollectionPagination(t *testing.T) {
	env := newTestEnv(t)
	env.addPersons(t, 50)

	t.Run("default page", func(t *testing.T) {
		w := env.get("/api/v1/person/", nil)
		require.Equal(t, http.StatusOK, w.Code)

		doc := decode(t, w)
		meta := doc["meta"].(map[string]any)
		assert.EqualValues(t, 20, meta["limit"])
		assert.EqualValues(t, 0, meta["offset"])
		assert.EqualValues(t, 50, meta["total"])
		assert.Equal(t, "/api/v1/person/?limit=20&offset=20", meta["next"])
		assert.Nil(t, meta["previous"])
		assert.Len(t, doc["objects"], 20)
	})

	t.Run("explicit window", func(t *testing.T) {
		w := env.get("/api/v1/person/?limit=10&offset=45", nil)
		require.Equal(t, http.StatusOK, w.Code)

		meta := decode(t, w)["meta"].(map[string]any)
		assert.Nil(t, meta["next"])
		assert.Equal(t, "/api/v1/person/?limit=10&offset=35", meta["previous"])
	})

	t.Run("limit clamps to total", func(t *testing.T) {
		w := env.get("/api/v1/person/?limit=100", nil)
		require.Equal(t, http.StatusOK, w.Code)

		doc := decode(t, w)
		meta := doc["meta"].(map[string]any)
		assert.EqualValues(t, 50, meta["limit"])
		assert.Len(t, doc["objects"], 50)
	})

	t.Run("empty collection", func(t *testing.T) {
		w := env.get("/api/v1/group/", nil)
		require.Equal(t, http.StatusOK, w.Code)

		doc := decode(t, w)
		meta := doc["meta"].(map[string]any)
		assert.EqualValues(t, 0, meta["total"])
		assert.Len(t, doc["objects"], 0)
	})
}

func TestContentNegotiation(t *testing.T) {
	env := newTestEnv(t)
	env.addPersons(t, 1)

	t.Run("json via accept", func(t *testing.T) {
		w := env.get("/api/v1/person/", map[string]string{"Accept": "application/json"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("wildcard selects json", func(t *testing.T) {
		w := env.get("/api/v1/person/", map[string]string{"Accept": "*/*"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("xml via format parameter", func(t *testing.T) {
		w := env.get("/api/v1/person/?format=xml", map[string]string{"Accept": "text/html"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
		assert.Contains(t, w.Body.String(), "<response>")
		assert.Contains(t, w.Body.String(), `<value type="integer" name="total">1</value>`)
	})

	t.Run("unacceptable accept header", func(t *testing.T) {
		w := env.get("/api/v1/person/", map[string]string{"Accept": "text/html"})
		require.Equal(t, http.StatusNotAcceptable, w.Code)
		assert.Equal(t, "Not acceptable", decode(t, w)["error"])
	})

	t.Run("quality values decide", func(t *testing.T) {
		w := env.get("/api/v1/person/", map[string]string{
			"Accept": "application/json;q=0.3, application/xml;q=0.9",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	})
}

func TestDetail(t *testing.T) {
	env := newTestEnv(t)
	group, err := env.groups.Create(context.Background(), model.Values{"name": "Editors"})
	require.NoError(t, err)
	person, err := env.persons.Create(context.Background(), model.Values{
		"name":   "Ada",
		"status": "A",
		"joined": time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		"group":  group.PK(),
	})
	require.NoError(t, err)

	t.Run("document keys", func(t *testing.T) {
		w := env.get(fmt.Sprintf("/api/v1/person/%d/", person.PK()), nil)
		require.Equal(t, http.StatusOK, w.Code)

		doc := decode(t, w)
		assert.EqualValues(t, person.PK(), doc["__pk__"])
		assert.Equal(t, "Ada", doc["__str__"])
		assert.Equal(t, fmt.Sprintf("/api/v1/person/%d/", person.PK()), doc["__uri__"])
		assert.Equal(t, "A", doc["status"])
		assert.Equal(t, "Active", doc["__pretty__"].(map[string]any)["status"])
	})

	t.Run("reference serializes as uri", func(t *testing.T) {
		w := env.get(fmt.Sprintf("/api/v1/person/%d/", person.PK()), nil)
		doc := decode(t, w)
		assert.Equal(t, fmt.Sprintf("/api/v1/group/%d/", group.PK()), doc["group"])
	})

	t.Run("full expands reference one level", func(t *testing.T) {
		w := env.get(fmt.Sprintf("/api/v1/person/%d/?full=1", person.PK()), nil)
		doc := decode(t, w)
		nested, ok := doc["group"].(map[string]any)
		require.True(t, ok, "group should be expanded")
		assert.Equal(t, "Editors", nested["__str__"])
		assert.Equal(t, "Editors", nested["name"])
	})

	t.Run("absent choice stays null", func(t *testing.T) {
		blank, err := env.persons.Create(context.Background(), model.Values{"name": "Barbara"})
		require.NoError(t, err)

		w := env.get(fmt.Sprintf("/api/v1/person/%d/", blank.PK()), nil)
		require.Equal(t, http.StatusOK, w.Code)

		doc := decode(t, w)
		assert.Nil(t, doc["status"])
		assert.Nil(t, doc["__pretty__"].(map[string]any)["status"])
	})

	t.Run("unknown pk", func(t *testing.T) {
		w := env.get("/api/v1/person/4242/", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No person matches the given query.", decode(t, w)["error"])
	})

	t.Run("non-numeric pk", func(t *testing.T) {
		w := env.get("/api/v1/person/nope/", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSetLookup(t *testing.T) {
	env := newTestEnv(t)
	env.addPersons(t, 5)

	t.Run("returns the full set", func(t *testing.T) {
		w := env.get("/api/v1/person/1;3;5/", nil)
		require.Equal(t, http.StatusOK, w.Code)

		doc := decode(t, w)
		assert.Len(t, doc["objects"], 3)
		assert.NotContains(t, doc, "meta")
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		w := env.get("/api/v1/person/2;2;2/", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["objects"], 1)
	})

	t.Run("one missing member fails the set", func(t *testing.T) {
		w := env.get("/api/v1/person/1;2;4242/", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Some objects do not exist.", decode(t, w)["error"])
	})

	t.Run("malformed member fails the set", func(t *testing.T) {
		w := env.get("/api/v1/person/1;x/", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid body creates and points at the object", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/person/",
			`{"name": "Grace", "status": "A"}`, "application/json", nil)
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
		assert.Equal(t, "/api/v1/person/1/", w.Header().Get("Location"))
		assert.Empty(t, w.Body.String())

		got := env.get("/api/v1/person/1/", nil)
		require.Equal(t, http.StatusOK, got.Code)
		assert.Equal(t, "Grace", decode(t, got)["__str__"])
	})

	t.Run("form encoded body", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/person/",
			"name=Edsger&status=I", "application/x-www-form-urlencoded", nil)
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	})

	t.Run("missing required field", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/person/",
			`{"status": "A"}`, "application/json", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		doc := decode(t, w)
		assert.Equal(t, "Validation failed", doc["error"])
		form := doc["form"].(map[string]any)
		assert.Contains(t, form["name"], "This field is required.")
	})

	t.Run("invalid choice", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/person/",
			`{"name": "Kurt", "status": "X"}`, "application/json", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		form := decode(t, w)["form"].(map[string]any)
		assert.NotEmpty(t, form["status"])
	})

	t.Run("dangling reference", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/person/",
			`{"name": "Kurt", "group": 4242}`, "application/json", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		form := decode(t, w)["form"].(map[string]any)
		assert.Contains(t, form["group"],
			"Select a valid choice. That choice is not one of the available choices.")
	})

	t.Run("unsupported media type", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/person/",
			"raw bytes", "application/octet-stream", nil)
		require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("post disabled resource", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/group/",
			`{"name": "Writers"}`, "application/json", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
	})
}

func TestOptionsAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	env.addPersons(t, 1)

	t.Run("options on writable collection", func(t *testing.T) {
		w := env.do(http.MethodOptions, "/api/v1/person/", "", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS, POST", w.Header().Get("Allow"))
		assert.Empty(t, w.Body.String())
	})

	t.Run("options on read-only collection", func(t *testing.T) {
		w := env.do(http.MethodOptions, "/api/v1/group/", "", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
	})

	t.Run("options on detail", func(t *testing.T) {
		w := env.do(http.MethodOptions, "/api/v1/person/1/", "", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
	})

	t.Run("delete on detail", func(t *testing.T) {
		w := env.do(http.MethodDelete, "/api/v1/person/1/", "", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS", w.Header().Get("Allow"))
		assert.Equal(t, "Method not allowed", decode(t, w)["error"])
	})

	t.Run("put on collection", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/v1/person/", "", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET, HEAD, OPTIONS, POST", w.Header().Get("Allow"))
	})
}

func TestAPIRoot(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/api/v1/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc := decode(t, w)
	assert.Equal(t, "v1", doc["__str__"])
	assert.Equal(t, "/api/v1/", doc["__uri__"])
	assert.Len(t, doc["resources"], 2)

	person := doc["person"].(map[string]any)
	assert.Equal(t, "/api/v1/person/", person["__uri__"])
}

func TestReverse(t *testing.T) {
	env := newTestEnv(t)

	t.Run("actions", func(t *testing.T) {
		uri, err := env.api.Reverse("person", "list")
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/person/", uri)

		uri, err = env.api.Reverse("person", "detail", 7)
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/person/7/", uri)

		uri, err = env.api.Reverse("person", "set", 1, 2, 3)
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/person/1;2;3/", uri)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := env.api.Reverse("nothing", "list")
		assert.Error(t, err)

		_, err = env.api.Reverse("person", "detail")
		assert.Error(t, err)

		_, err = env.api.Reverse("person", "set")
		assert.Error(t, err)

		_, err = env.api.Reverse("person", "frobnicate", 1)
		assert.Error(t, err)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := env.api.Register(env.persons, ResourceOptions{})
		assert.Error(t, err)
	})
}
