package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"rental-backend/internal/audit"
	"rental-backend/internal/httpx"
	"rental-backend/internal/models"
	"rental-backend/internal/report"
	"rental-backend/internal/store"
	"rental-backend/internal/testutil"
	"rental-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	f      *testutil.Fixtures
	svc    *Service
	car    models.Car
	client models.Client
}

func setup(t *testing.T) env {
	f := testutil.Seed(t)
	svc := NewService(store.New(f.DB), nil, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC) }
	return env{
		f:      f,
		svc:    svc,
		car:    f.Car(t, "А123ВС77", "XTA21099012345678", "1500"),
		client: f.Client(t, "Иванов Иван", "100001"),
	}
}

func (e env) input(issue, ret string) ContractInput {
	return ContractInput{
		StatusID:       e.f.OpenStatus.ID,
		ClientID:       e.client.ID,
		CarID:          e.car.ID,
		IssueDate:      issue,
		ReturnDate:     ret,
		Payment:        models.PaymentCashless,
		IssueBranchID:  e.f.Branch.ID,
		ReturnBranchID: e.f.Branch.ID,
	}
}

func TestCreate_PricesFromCar(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	c, err := e.svc.Create(ctx, audit.Actor{}, e.input("2024-03-10", "2024-03-12"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500).Equal(c.DailyPrice))
	assert.True(t, decimal.NewFromInt(4500).Equal(c.TotalAmount))
	assert.Equal(t, testutil.Date(2024, 3, 10), models.DateOf(c.CreatedOn))
	require.NotNil(t, c.Car)
	require.NotNil(t, c.Client)

	// same-day return is one billable day
	c, err = e.svc.Create(ctx, audit.Actor{}, e.input("15.03.2024", "15.03.2024"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500).Equal(c.TotalAmount))
}

func TestCreate_RejectsReturnBeforeIssue(t *testing.T) {
	e := setup(t)

	_, err := e.svc.Create(context.Background(), audit.Actor{}, e.input("2024-03-12", "2024-03-11"))
	ve, ok := validation.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, validation.MsgReturnBeforeIssue, ve[validation.FormField])

	var n int64
	e.f.DB.Model(&models.Contract{}).Count(&n)
	assert.Zero(t, n)
}

func TestCreate_FieldErrors(t *testing.T) {
	e := setup(t)

	in := e.input("2024-13-01", "2024-03-11")
	in.Payment = "бартер"
	in.ClientID = 999
	_, err := e.svc.Create(context.Background(), audit.Actor{}, in)
	ve, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Введите правильную дату.", ve["issue_date"])
	assert.Equal(t, "Недопустимый способ оплаты.", ve["payment"])
	assert.Equal(t, MsgUnknownRef, ve["client_id"])
	assert.NotContains(t, ve, validation.FormField)
}

func TestUpdate_KeepsSnapshotUntilPeriodOrCarChanges(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	c, err := e.svc.Create(ctx, audit.Actor{}, e.input("2024-03-10", "2024-03-12"))
	require.NoError(t, err)

	require.NoError(t, e.f.DB.Model(&models.Car{}).Where("car_id = ?", e.car.ID).
		Update("daily_price", decimal.NewFromInt(2000)).Error)

	in := e.input("2024-03-10", "2024-03-12")
	in.Payment = models.PaymentCash
	c, err = e.svc.Update(ctx, audit.Actor{}, c.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, c.Payment)
	assert.True(t, decimal.NewFromInt(1500).Equal(c.DailyPrice))
	assert.True(t, decimal.NewFromInt(4500).Equal(c.TotalAmount))

	in.ReturnDate = "2024-03-13"
	c, err = e.svc.Update(ctx, audit.Actor{}, c.ID, in)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2000).Equal(c.DailyPrice))
	assert.True(t, decimal.NewFromInt(8000).Equal(c.TotalAmount))

	in.ReturnDate = "2024-03-01"
	_, err = e.svc.Update(ctx, audit.Actor{}, c.ID, in)
	_, ok := validation.As(err)
	assert.True(t, ok)

	var logs int64
	e.f.DB.Model(&models.AuditLog{}).Where("entity_type = ?", "contract").Count(&logs)
	assert.Equal(t, int64(3), logs)
}

func TestDelete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	c, err := e.svc.Create(ctx, audit.Actor{}, e.input("2024-03-10", "2024-03-12"))
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, audit.Actor{}, c.ID))
	_, err = e.svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, e.svc.Delete(ctx, audit.Actor{}, c.ID), store.ErrNotFound)
}

func TestHandlers(t *testing.T) {
	e := setup(t)
	st := store.New(e.f.DB)
	other := e.f.Car(t, "В456ЕК99", "XTA21099012345679", "2000")
	e.f.Contract(t, e.client, e.car, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 5))
	e.f.Contract(t, e.client, other, testutil.Date(2024, 3, 8), testutil.Date(2024, 3, 20))

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(zap.NewNop())})
	app.Get("/contracts", ListContractsHandler(st, e.svc))
	app.Post("/contracts", CreateContractHandler(e.svc))
	app.Get("/contracts/:id", GetContractHandler(e.svc))

	resp, err := app.Test(httptest.NewRequest("GET", "/contracts", nil))
	require.NoError(t, err)
	var page store.Page[ContractResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2024-03-08", page.Items[0].IssueDate)
	assert.Equal(t, report.StatusContractActive, page.Items[0].StatusText)
	assert.Equal(t, report.StatusContractFinished, page.Items[1].StatusText)
	assert.Equal(t, 5, page.Items[1].Days)

	resp, err = app.Test(httptest.NewRequest("GET", "/contracts?sort=issue_asc&search="+url.QueryEscape("В456"), nil))
	require.NoError(t, err)
	page = store.Page[ContractResponse]{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Kia Rio (В456ЕК99)", page.Items[0].Car)

	body := fmt.Sprintf(`{"status_id":%d,"client_id":%d,"car_id":%d,"issue_date":"2024-03-10",
		"return_date":"2024-03-11","payment":"наличный","issue_branch_id":%d,"return_branch_id":%d,
		"daily_price":"1","total_amount":"1"}`,
		e.f.OpenStatus.ID, e.client.ID, other.ID, e.f.Branch.ID, e.f.Branch.ID)
	req := httptest.NewRequest("POST", "/contracts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)
	var created ContractResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	// client-supplied prices are ignored
	assert.True(t, decimal.NewFromInt(4000).Equal(created.TotalAmount))
	assert.Equal(t, "2024-03-10", created.CreatedAt)
}
