package reference

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bu1gur/challenger-crm/internal/api"
	"github.com/Bu1gur/challenger-crm/internal/membership"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(repo *MockRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(repo, newMemoryCache()))

	r := gin.New()
	r.GET("/periods", h.ListPeriods)
	r.GET("/payments", h.ListPaymentMethods)
	r.GET("/groups", h.ListGroups)
	r.GET("/freezeSettings", h.GetFreezeSettings)
	r.POST("/admin/periods", h.CreatePeriod)
	r.PUT("/admin/periods/:id", h.UpdatePeriod)
	r.DELETE("/admin/periods/:id", h.DeletePeriod)
	r.POST("/admin/payments", h.CreatePaymentMethod)
	r.POST("/admin/groups", h.CreateGroup)
	r.PUT("/admin/freezeSettings", h.UpdateFreezeSettings)
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

func TestHandler_ListPeriods(t *testing.T) {
	repo := new(MockRepository)
	expectLoad(repo)

	w := doJSON(setupRouter(repo), http.MethodGet, "/periods", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []PeriodDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "1m", got[0].Value)
	assert.Equal(t, 12, got[0].Trainings)
}

func TestHandler_GetFreezeSettings(t *testing.T) {
	repo := new(MockRepository)
	expectLoad(repo)

	w := doJSON(setupRouter(repo), http.MethodGet, "/freezeSettings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"max_days":30,"reasons":[],"require_confirm":false}`, w.Body.String())
}

func TestHandler_CreatePaymentTransferWithoutBanks(t *testing.T) {
	w := doJSON(setupRouter(new(MockRepository)), http.MethodPost, "/admin/payments",
		PaymentMethodDTO{Label: "Перевод", Type: "transfer"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(membership.KindMissingField), resp.Kind)
}

func TestHandler_CreatePaymentUnknownType(t *testing.T) {
	w := doJSON(setupRouter(new(MockRepository)), http.MethodPost, "/admin/payments",
		map[string]string{"label": "Крипта", "type": "crypto"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreatePeriodDuplicate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreatePeriod", mock.Anything, mock.Anything).Return(ErrDuplicate)

	w := doJSON(setupRouter(repo), http.MethodPost, "/admin/periods",
		PeriodDTO{Value: "1m", Label: "Месячный", Price: 4000, Months: 1, Trainings: 12})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_UpdatePeriodUsesPathID(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpdatePeriod", mock.Anything, membership.Period{ID: "3m", Label: "Квартал", Price: 10000, Months: 3, Sessions: 36}).Return(nil)

	w := doJSON(setupRouter(repo), http.MethodPut, "/admin/periods/3m",
		PeriodDTO{Value: "ignored", Label: "Квартал", Price: 10000, Months: 3, Trainings: 36})
	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestHandler_DeletePeriodNotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("DeletePeriod", mock.Anything, "9m").Return(ErrNotFound)

	w := doJSON(setupRouter(repo), http.MethodDelete, "/admin/periods/9m", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CreateGroupAcceptsRussianDays(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreateGroup", mock.Anything, mock.MatchedBy(func(g Group) bool {
		return g.ID == "evening" && len(g.Days) == 2 && g.Days[0] == Monday && g.Days[1] == Thursday
	})).Return(nil)

	w := doJSON(setupRouter(repo), http.MethodPost, "/admin/groups",
		GroupDTO{Value: "evening", Name: "Вечерняя", Days: []string{"Чт", "Пн"}, TimeStart: "19:00", TimeEnd: "20:30"})
	require.Equal(t, http.StatusCreated, w.Code)

	var got GroupDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"mon", "thu"}, got.Days)
}

func TestHandler_CreateGroupUnknownDay(t *testing.T) {
	w := doJSON(setupRouter(new(MockRepository)), http.MethodPost, "/admin/groups",
		GroupDTO{Name: "Вечерняя", Days: []string{"Funday"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateFreezeSettings(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveFreezePolicy", mock.Anything, membership.FreezePolicy{MaxDays: 21, Reasons: []string{"Болезнь"}, RequireConfirm: true}).Return(nil)

	w := doJSON(setupRouter(repo), http.MethodPut, "/admin/freezeSettings",
		FreezeSettingsDTO{MaxDays: 21, Reasons: []string{"Болезнь"}, RequireConfirm: true})
	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
