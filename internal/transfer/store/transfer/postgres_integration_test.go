//go:build integration

package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	idmodels "civreg/internal/identity/models"
	userstore "civreg/internal/identity/store/user"
	locmodels "civreg/internal/location/models"
	villagestore "civreg/internal/location/store/village"
	wardstore "civreg/internal/location/store/ward"
	regmodels "civreg/internal/registry/models"
	residencestore "civreg/internal/registry/store/residence"
	"civreg/internal/transfer/models"
	transferstore "civreg/internal/transfer/store/transfer"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/testutil/containers"
)

// PostgresTransferSuite runs the transfer store against a real database so
// the row locking, null handling and status filtering are tested for real.
type PostgresTransferSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *transferstore.PostgresStore

	requester   id.UserID
	residence   *regmodels.Residence
	fromWard    id.WardID
	fromVillage id.VillageID
	toWard      id.WardID
	toVillage   id.VillageID
}

func TestPostgresTransferSuite(t *testing.T) {
	suite.Run(t, new(PostgresTransferSuite))
}

func (s *PostgresTransferSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = transferstore.NewPostgres(s.pg.DB)
}

func (s *PostgresTransferSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateAll(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	wards := wardstore.NewPostgres(s.pg.DB)
	villages := villagestore.NewPostgres(s.pg.DB)
	users := userstore.NewPostgres(s.pg.DB)
	residences := residencestore.NewPostgres(s.pg.DB)

	s.fromWard, s.fromVillage = s.seedLocation(ctx, wards, villages, "Kigamboni", "KGM-01", "Tungi", "KGM-01-V1", now)
	s.toWard, s.toVillage = s.seedLocation(ctx, wards, villages, "Temeke", "TMK-01", "Mbagala", "TMK-01-V1", now)

	nida, err := id.ParseNIDANumber("19900101123456789012")
	s.Require().NoError(err)
	veo, err := idmodels.NewUser(id.NewUserID(), "veo.tungi", "Asha Mrisho", nida, "hash", idmodels.RoleVeo, s.fromWard, s.fromVillage, now)
	s.Require().NoError(err)
	s.Require().NoError(users.CreateIfAvailable(ctx, veo))
	s.requester = veo.ID

	resNIDA, err := id.ParseNIDANumber("19851231098765432109")
	s.Require().NoError(err)
	res, err := regmodels.NewResidence(id.NewResidenceID(), "KG-12", "Juma Hassan", resNIDA, s.fromWard, s.fromVillage, 4, veo.ID, now)
	s.Require().NoError(err)
	s.Require().NoError(residences.CreateIfNIDAAvailable(ctx, res))
	s.residence = res
}

func (s *PostgresTransferSuite) seedLocation(ctx context.Context, wards *wardstore.PostgresStore, villages *villagestore.PostgresStore, wardName, wardCode, villageName, villageCode string, now time.Time) (id.WardID, id.VillageID) {
	w, err := locmodels.NewWard(id.NewWardID(), wardName, wardCode, now)
	s.Require().NoError(err)
	s.Require().NoError(wards.CreateIfCodeAvailable(ctx, w))

	v, err := locmodels.NewVillage(id.NewVillageID(), villageName, villageCode, w.ID, now)
	s.Require().NoError(err)
	s.Require().NoError(villages.CreateIfCodeAvailable(ctx, v))
	return w.ID, v.ID
}

func (s *PostgresTransferSuite) newTransfer(at time.Time) *models.Transfer {
	t, err := models.NewTransfer(id.NewTransferID(), s.residence.ID,
		s.fromWard, s.fromVillage, s.toWard, s.toVillage,
		models.TypeVeo, "family moved across the district", s.requester, at)
	s.Require().NoError(err)
	return t
}

func (s *PostgresTransferSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	created := s.newTransfer(now)
	s.Require().NoError(s.store.Create(ctx, created))

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(s.residence.ID, found.ResidenceID)
	s.Equal(models.StatusPendingApproval, found.Status)
	s.Equal(models.TypeVeo, found.Type)
	s.Equal("family moved across the district", found.Reason)
	s.Equal(s.requester, found.RequestedBy)
	s.Nil(found.WeoApprovedBy)
	s.Nil(found.WardApprovedBy)
	s.Nil(found.VeoAcceptedBy)
	s.Nil(found.RejectedBy)
	s.True(found.CreatedAt.Equal(now))
}

func (s *PostgresTransferSuite) TestFindActiveByResidenceSkipsTerminalRows() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rejected := s.newTransfer(now)
	rejected.ApplyRejection(s.requester, now, "duplicate request")
	s.Require().NoError(s.store.Create(ctx, rejected))

	active := s.newTransfer(now.Add(time.Second))
	s.Require().NoError(s.store.Create(ctx, active))

	actives, err := s.store.FindActiveByResidence(ctx, s.residence.ID)
	s.Require().NoError(err)
	s.Require().Len(actives, 1)
	s.Equal(active.ID, actives[0].ID)
}

func (s *PostgresTransferSuite) TestFindActiveByResidenceUnknownResidence() {
	_, err := s.store.FindActiveByResidence(context.Background(), id.NewResidenceID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresTransferSuite) TestExecutePersistsApprovalStamps() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t := s.newTransfer(now)
	s.Require().NoError(s.store.Create(ctx, t))

	approvedAt := now.Add(time.Minute)
	updated, err := s.store.Execute(ctx, t.ID,
		func(t *models.Transfer) error { return t.CanApproveAsWeo() },
		func(t *models.Transfer) { t.ApplyWeoApproval(s.requester, approvedAt) },
	)
	s.Require().NoError(err)
	s.Equal(models.StatusWeoApproved, updated.Status)

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusWeoApproved, found.Status)
	s.Require().NotNil(found.WeoApprovedBy)
	s.Equal(s.requester, *found.WeoApprovedBy)
	s.Require().NotNil(found.WeoApprovedAt)
	s.True(found.WeoApprovedAt.Equal(approvedAt))
}

func (s *PostgresTransferSuite) TestExecuteValidationFailureLeavesRowUntouched() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t := s.newTransfer(now)
	t.ApplyRejection(s.requester, now, "wrong residence")
	s.Require().NoError(s.store.Create(ctx, t))

	_, err := s.store.Execute(ctx, t.ID,
		func(t *models.Transfer) error { return t.CanApproveAsWeo() },
		func(t *models.Transfer) { t.ApplyWeoApproval(s.requester, now) },
	)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, found.Status)
	s.Nil(found.WeoApprovedBy)
}

func (s *PostgresTransferSuite) TestListByResidenceReturnsHistoryInOrder() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := s.newTransfer(now)
	first.ApplyRejection(s.requester, now, "changed mind")
	s.Require().NoError(s.store.Create(ctx, first))

	second := s.newTransfer(now.Add(2 * time.Second))
	s.Require().NoError(s.store.Create(ctx, second))

	history, err := s.store.ListByResidence(ctx, s.residence.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(first.ID, history[0].ID)
	s.Equal(second.ID, history[1].ID)
}
