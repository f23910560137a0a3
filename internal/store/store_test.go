package store_test

import (
	"context"
	"testing"

	"rental-backend/internal/models"
	"rental-backend/internal/store"
	"rental-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirst_NotFound(t *testing.T) {
	f := testutil.Seed(t)
	s := store.New(f.DB)

	var car models.Car
	err := s.First(context.Background(), &car, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFirst_Preloads(t *testing.T) {
	f := testutil.Seed(t)
	s := store.New(f.DB)
	car := f.Car(t, "А123ВС77", "XTA21099012345678", "1500")

	var got models.Car
	require.NoError(t, s.First(context.Background(), &got, car.ID, "Category", "Status", "Branch"))
	require.NotNil(t, got.Category)
	assert.Equal(t, "Эконом", got.Category.Name)
	assert.Equal(t, "свободен", got.Status.Status)
	assert.Equal(t, "Центральный", got.Branch.Name)
}

func TestCreate_Duplicate(t *testing.T) {
	f := testutil.Seed(t)
	s := store.New(f.DB)
	f.Client(t, "Иванов Иван", "123456")

	dup := models.Client{FullName: "Петров Пётр", BirthDate: testutil.Date(1980, 1, 1), Passport: "123456"}
	err := s.Create(context.Background(), &dup)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestDelete_InUseAndMissing(t *testing.T) {
	f := testutil.Seed(t)
	s := store.New(f.DB)
	ctx := context.Background()

	car := f.Car(t, "А123ВС77", "XTA21099012345678", "1500")
	client := f.Client(t, "Иванов Иван", "123456")
	f.Contract(t, client, car, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 3))

	assert.ErrorIs(t, s.Delete(ctx, &models.Car{}, car.ID), store.ErrInUse)
	assert.ErrorIs(t, s.Delete(ctx, &models.Car{}, 999), store.ErrNotFound)
}

func TestTaken_ExcludesOwnRow(t *testing.T) {
	f := testutil.Seed(t)
	s := store.New(f.DB)
	ctx := context.Background()
	client := f.Client(t, "Иванов Иван", "123456")

	taken, err := s.Taken(ctx, &models.Client{}, "passport", "123456", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.Taken(ctx, &models.Client{}, "passport", "123456", client.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	ok, err := s.Exists(ctx, &models.Client{}, client.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransaction_RollsBack(t *testing.T) {
	f := testutil.Seed(t)
	s := store.New(f.DB)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *store.Store) error {
		b := models.Branch{Name: "Северный", Address: "ул. Северная, 2", Contacts: "-"}
		require.NoError(t, tx.Create(ctx, &b))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var n int64
	f.DB.Model(&models.Branch{}).Where("name = ?", "Северный").Count(&n)
	assert.Zero(t, n)
}

func TestPreloads_SharedLookups(t *testing.T) {
	f := testutil.Seed(t)
	s := store.New(f.DB)
	ctx := context.Background()

	var comfort models.CarCategory
	require.NoError(t, f.DB.Where("name = ?", "Комфорт").First(&comfort).Error)
	north := models.Branch{Name: "Северный", Address: "Москва, ул. Мира, 5", Contacts: "+74950000001"}
	require.NoError(t, f.DB.Create(&north).Error)

	first := f.Car(t, "А123ВС77", "XTA21099012345678", "1500")
	second := f.Car(t, "В456ОР77", "XTA21099012345679", "1700")
	third := f.Car(t, "Е789КХ77", "XTA21099012345680", "2500")
	require.NoError(t, f.DB.Model(&third).Updates(map[string]any{
		"category_id": comfort.ID, "status_id": f.RentedStatus.ID, "branch_id": north.ID,
	}).Error)

	cars, err := s.ReportCars(ctx)
	require.NoError(t, err)
	require.Len(t, cars, 3)
	byID := map[uint]models.Car{}
	for _, c := range cars {
		require.NotNil(t, c.Category)
		require.NotNil(t, c.Status)
		require.NotNil(t, c.Branch)
		byID[c.ID] = c
	}
	for _, id := range []uint{first.ID, second.ID} {
		assert.Equal(t, "Эконом", byID[id].Category.Name)
		assert.Equal(t, "свободен", byID[id].Status.Status)
		assert.Equal(t, "Центральный", byID[id].Branch.Name)
	}
	assert.Equal(t, "Комфорт", byID[third.ID].Category.Name)
	assert.Equal(t, "в аренде", byID[third.ID].Status.Status)
	assert.Equal(t, "Северный", byID[third.ID].Branch.Name)

	for i, e := range []models.Employee{
		{FullName: "Петров Пётр", Passport: "7000000001", RoleID: f.ManagerRole.ID, BranchID: f.Branch.ID, Phone: "+79990000001", Email: "p1@example.com"},
		{FullName: "Сидоров Олег", Passport: "7000000002", RoleID: f.ManagerRole.ID, BranchID: f.Branch.ID, Phone: "+79990000002", Email: "p2@example.com"},
		{FullName: "Акимова Анна", Passport: "7000000003", RoleID: f.AdminRole.ID, BranchID: north.ID, Phone: "+79990000003", Email: "p3@example.com"},
	} {
		require.NoError(t, f.DB.Create(&e).Error, i)
	}
	page, err := s.ListEmployees(ctx, store.ListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	roles := map[string]string{}
	for _, e := range page.Items {
		require.NotNil(t, e.Role)
		require.NotNil(t, e.Branch)
		roles[e.FullName] = e.Role.Name + "/" + e.Branch.Name
	}
	assert.Equal(t, map[string]string{
		"Петров Пётр":  "Менеджер/Центральный",
		"Сидоров Олег": "Менеджер/Центральный",
		"Акимова Анна": "Администратор/Северный",
	}, roles)

	// client, car and contract ids do not line up
	ivanov := f.Client(t, "Иванов Иван", "123456")
	petrova := f.Client(t, "Петрова Анна", "654321")
	f.Contract(t, petrova, third, testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 3))
	f.Contract(t, ivanov, third, testutil.Date(2024, 3, 5), testutil.Date(2024, 3, 6))
	f.Contract(t, petrova, first, testutil.Date(2024, 3, 7), testutil.Date(2024, 3, 7))

	contracts, err := s.ReportContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 3)
	for _, c := range contracts {
		require.NotNil(t, c.Client)
		require.NotNil(t, c.Car)
		assert.Equal(t, c.ClientID, c.Client.ID)
		assert.Equal(t, c.CarID, c.Car.ID)
		assert.Equal(t, "активен", c.Status.Status)
	}
	assert.Equal(t, "Петрова Анна", contracts[0].Client.FullName)
	assert.Equal(t, "А123ВС77", contracts[0].Car.Plate)
}

func TestMigrate_ForeignKeysPointAtLookups(t *testing.T) {
	f := testutil.Seed(t)

	ddl := func(table string) string {
		var sql string
		require.NoError(t, f.DB.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&sql).Error)
		return sql
	}
	for _, lookup := range []string{"car_categories", "car_statuses", "roles", "branches", "clients"} {
		assert.NotContains(t, ddl(lookup), "REFERENCES", lookup)
	}
	assert.Contains(t, ddl("cars"), "car_categories")
	assert.Contains(t, ddl("employees"), "roles")
	assert.Contains(t, ddl("contracts"), "clients")
}
