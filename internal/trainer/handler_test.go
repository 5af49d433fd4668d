package trainer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bu1gur/challenger-crm/internal/api"
	"github.com/Bu1gur/challenger-crm/internal/client"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(repo *MockRepository, clients *MockClients) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(repo, testReference(), clients))

	r := gin.New()
	r.GET("/trainers", h.List)
	r.POST("/trainers", h.Create)
	r.GET("/trainers/:id", h.Get)
	r.PUT("/trainers/:id", h.Update)
	r.DELETE("/trainers/:id", h.Delete)
	r.GET("/trainers/:id/clients", h.Clients)
	r.GET("/trainers/:id/schedule", h.Schedule)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateValidation(t *testing.T) {
	r := setupRouter(new(MockRepository), new(MockClients))

	w := doJSON(r, http.MethodPost, "/trainers", Request{Phone: "0700"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var got api.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Details, 2)
	assert.Equal(t, "Name", got.Details[0].Field)
	assert.Equal(t, "phone", got.Details[1].Tag)
}

func TestHandler_Create(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	r := setupRouter(repo, new(MockClients))

	w := doJSON(r, http.MethodPost, "/trainers", Request{Name: "Мирлан", Phone: "+996700000001", Groups: []string{"kids"}})
	require.Equal(t, http.StatusCreated, w.Code)

	var got Trainer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, []string{"kids"}, []string(got.Groups))
}

func TestHandler_ListIncludesClientsCount(t *testing.T) {
	repo := new(MockRepository)
	clients := new(MockClients)
	repo.On("List", mock.Anything).Return([]Trainer{{ID: 1, Name: "Мирлан", Groups: []string{"kids"}}}, nil)
	clients.On("ByGroups", mock.Anything, []string{"kids"}).Return([]client.Record{groupClient("kids"), groupClient("kids")}, nil)
	r := setupRouter(repo, clients)

	w := doJSON(r, http.MethodGet, "/trainers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, float64(2), got[0]["clients_count"])
}

func TestHandler_GetNotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Get", mock.Anything, int64(8)).Return(nil, ErrNotFound)
	r := setupRouter(repo, new(MockClients))

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/trainers/8", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/trainers/x", nil).Code)
}

func TestHandler_ClientsAndSchedule(t *testing.T) {
	repo := new(MockRepository)
	clients := new(MockClients)
	repo.On("Get", mock.Anything, int64(1)).Return(&Trainer{ID: 1, Groups: []string{"kids"}}, nil)
	clients.On("ByGroups", mock.Anything, []string{"kids"}).Return([]client.Record{{}}, nil)
	r := setupRouter(repo, clients)

	w := doJSON(r, http.MethodGet, "/trainers/1/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list api.ListResponse[client.ClientResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	w = doJSON(r, http.MethodGet, "/trainers/1/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []ScheduleEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "tue", entries[0].Day)
}

func TestHandler_Delete(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)
	r := setupRouter(repo, new(MockClients))

	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/trainers/1", nil).Code)
}
