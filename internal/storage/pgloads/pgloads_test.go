package pgloads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BearBump/DriverComm/internal/models"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "drivercomm_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/drivercomm_test?sslmode=disable"

	// postgres внутри контейнера может перезапуститься после initdb
	var st *Storage
	require.Eventually(t, func() bool {
		st, err = New(dsn)
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(st.Close)
	return st
}

func strp(s string) *string { return &s }

func TestPGLoads_LoadsFlow(t *testing.T) {
	ctx := context.Background()
	st := startPostgres(t)

	require.NoError(t, st.Ping(ctx))

	in := models.LoadInput{
		Origin:      "Chicago",
		Destination: "Dallas",
		DriverPhone: "5551112222",
		AgentPhone:  "5550001111",
		Commodity:   "Steel",
	}
	created, err := st.UpsertLoad(ctx, in.ToLoad())
	require.NoError(t, err)
	require.Regexp(t, `^LD-\d{5}$`, created.ID)
	require.Equal(t, "Chicago → Dallas", created.Lane)
	require.Equal(t, models.LoadStatusPlanned, created.Status)
	require.Equal(t, "+15550001111", created.DispatcherPhone)
	require.False(t, created.UpdatedAt.Before(created.CreatedAt))

	got, err := st.GetLoad(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	// patch сохраняет непереданные поля
	patched, err := st.PatchLoad(ctx, created.ID, models.LoadPatch{Status: strp("Arrived")})
	require.NoError(t, err)
	require.Equal(t, "Arrived", patched.Status)
	require.Equal(t, "Steel", patched.Commodity)
	require.Equal(t, "Chicago → Dallas", patched.Lane)
	require.True(t, patched.CreatedAt.Equal(created.CreatedAt))

	patched, err = st.PatchLoad(ctx, created.ID, models.LoadPatch{Destination: strp("Austin")})
	require.NoError(t, err)
	require.Equal(t, "Chicago → Austin", patched.Lane)

	// upsert с тем же id = полная замена
	replaced, err := st.UpsertLoad(ctx, &models.Load{ID: created.ID, Origin: "X", Destination: "Y"})
	require.NoError(t, err)
	require.Equal(t, created.ID, replaced.ID)
	require.Equal(t, "", replaced.Commodity)
	require.Equal(t, models.LoadStatusPlanned, replaced.Status)
	require.True(t, replaced.CreatedAt.Equal(created.CreatedAt))

	// upsert с новым явным id вставляет
	explicit, err := st.UpsertLoad(ctx, &models.Load{ID: "LD-00001", Origin: "A", Destination: "B"})
	require.NoError(t, err)
	require.Equal(t, "LD-00001", explicit.ID)

	list, err := st.ListLoads(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "LD-00001", list[0].ID)

	_, err = st.PatchLoad(ctx, "LD-missing", models.LoadPatch{Status: strp("Arrived")})
	require.ErrorIs(t, err, models.ErrNotFound)

	ok, err := st.DeleteLoad(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = st.DeleteLoad(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = st.GetLoad(ctx, created.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestPGLoads_Messages(t *testing.T) {
	ctx := context.Background()
	st := startPostgres(t)

	for _, body := range []string{"first", "second"} {
		_, err := st.AppendMessage(ctx, models.MessageInput{LoadID: "LD-1", ToRole: models.RoleDriver, ToPhone: "+15551112222", Body: body})
		require.NoError(t, err)
	}
	_, err := st.AppendMessage(ctx, models.MessageInput{LoadID: "LD-2", ToRole: models.RoleDispatcher, Body: "other"})
	require.NoError(t, err)

	items, err := st.ListMessages(ctx, "LD-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "first", items[0].Body)
	require.Equal(t, "second", items[1].Body)

	items, err = st.ListMessages(ctx, "LD-none")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestPGLoads_Directory(t *testing.T) {
	ctx := context.Background()
	st := startPostgres(t)

	p, err := st.CreatePartner(ctx, &models.Partner{Kind: "shipper", Name: "Acme"})
	require.NoError(t, err)
	_, err = st.CreatePartner(ctx, &models.Partner{Kind: "receiver", Name: "Globex"})
	require.NoError(t, err)

	shippers, err := st.ListPartners(ctx, "shipper")
	require.NoError(t, err)
	require.Len(t, shippers, 1)
	all, err := st.ListPartners(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	p, err = st.UpdatePartner(ctx, p.ID, models.PartnerFields{Notes: strp("dock at rear")})
	require.NoError(t, err)
	require.Equal(t, "Acme", p.Name)
	require.Equal(t, "dock at rear", p.Notes)

	loc, err := st.CreateLocation(ctx, &models.Location{PartnerID: p.ID, Name: "Main"})
	require.NoError(t, err)
	_, err = st.CreateLocation(ctx, &models.Location{PartnerID: 999999, Name: "Ghost"})
	require.True(t, models.IsValidation(err))

	r1, err := st.CreateRecipient(ctx, models.NewRecipient(models.RecipientFields{LocationID: &loc.ID, Email: strp("a@example.com")}))
	require.NoError(t, err)
	require.True(t, r1.NotifySMS)
	require.False(t, r1.NotifyEmail)

	on := true
	r1, err = st.UpdateRecipient(ctx, r1.ID, models.RecipientFields{NotifyEmail: &on})
	require.NoError(t, err)
	require.True(t, r1.NotifyEmail)

	byLoc, err := st.ListRecipientsByLocations(ctx, []int64{loc.ID})
	require.NoError(t, err)
	require.Len(t, byLoc, 1)

	// каскад: партнёр -> локации -> получатели
	ok, err := st.DeletePartner(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = st.GetLocation(ctx, loc.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = st.GetRecipient(ctx, r1.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = st.UpdatePartner(ctx, p.ID, models.PartnerFields{Name: strp("x")})
	require.ErrorIs(t, err, models.ErrNotFound)

	// уникальные имена мерчантов
	_, err = st.CreateContact(ctx, models.ContactMerchants, &models.Contact{Name: "M1"})
	require.NoError(t, err)
	_, err = st.CreateContact(ctx, models.ContactMerchants, &models.Contact{Name: "M1"})
	require.ErrorIs(t, err, models.ErrConflict)
	_, err = st.CreateContact(ctx, models.ContactDispatchers, &models.Contact{Name: "M1"})
	require.NoError(t, err)

	_, err = st.ListContacts(ctx, models.ContactTable("loads"))
	require.Error(t, err)
}
