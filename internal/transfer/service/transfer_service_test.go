package service

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civreg/internal/access"
	identity "civreg/internal/identity/models"
	"civreg/internal/location/hierarchy"
	locmodels "civreg/internal/location/models"
	"civreg/internal/location/store/village"
	"civreg/internal/location/store/ward"
	regmetrics "civreg/internal/registry/metrics"
	regmodels "civreg/internal/registry/models"
	regservice "civreg/internal/registry/service"
	familystore "civreg/internal/registry/store/familymember"
	residencestore "civreg/internal/registry/store/residence"
	"civreg/internal/transfer/metrics"
	"civreg/internal/transfer/models"
	transferstore "civreg/internal/transfer/store/transfer"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/audit"
	txcontext "civreg/pkg/platform/tx"
)

var (
	testMetrics    = metrics.New()
	regTestMetrics = regmetrics.New()
)

type TransferSuite struct {
	suite.Suite
	ctx        context.Context
	service    *Service
	registry   *regservice.Service
	residences *residencestore.InMemory
	events     *audit.Channel
	nidaSeq    int

	wardA, wardB                    id.WardID
	villageA1, villageB1, villageB2 id.VillageID

	veoA1, veoB1, weoA      identity.Actor
	adminA, adminB          identity.Actor
	collectorA1, superAdmin identity.Actor
}

func TestTransferSuite(t *testing.T) {
	suite.Run(t, new(TransferSuite))
}

func (s *TransferSuite) SetupTest() {
	s.ctx = context.Background()
	wards := ward.NewInMemory()
	villages := village.NewInMemory()
	now := time.Now().UTC()

	mkWard := func(name, code string) id.WardID {
		w, err := locmodels.NewWard(id.NewWardID(), name, code, now)
		s.Require().NoError(err)
		s.Require().NoError(wards.CreateIfCodeAvailable(s.ctx, w))
		return w.ID
	}
	mkVillage := func(name, code string, wardID id.WardID) id.VillageID {
		v, err := locmodels.NewVillage(id.NewVillageID(), name, code, wardID, now)
		s.Require().NoError(err)
		s.Require().NoError(villages.CreateIfCodeAvailable(s.ctx, v))
		return v.ID
	}
	s.wardA = mkWard("Ward A", "WA")
	s.wardB = mkWard("Ward B", "WB")
	s.villageA1 = mkVillage("Village A1", "VA1", s.wardA)
	s.villageB1 = mkVillage("Village B1", "VB1", s.wardB)
	s.villageB2 = mkVillage("Village B2", "VB2", s.wardB)

	h := hierarchy.New(wards, villages)
	checker := access.NewChecker(h)
	s.events = audit.NewChannel(64)
	publisher := s.events
	s.residences = residencestore.NewInMemory()
	s.registry = regservice.New(s.residences, familystore.NewInMemory(),
		checker, h, publisher, regTestMetrics, slog.Default())
	s.service = New(transferstore.NewInMemory(), s.residences, s.registry,
		checker, h, txcontext.NewSerialRunner(), publisher, testMetrics, slog.Default())

	s.veoA1 = identity.Actor{ID: id.NewUserID(), Role: identity.RoleVeo, AssignedWardID: s.wardA, AssignedVillageID: s.villageA1}
	s.veoB1 = identity.Actor{ID: id.NewUserID(), Role: identity.RoleVeo, AssignedWardID: s.wardB, AssignedVillageID: s.villageB1}
	s.weoA = identity.Actor{ID: id.NewUserID(), Role: identity.RoleWeo, AssignedWardID: s.wardA}
	s.adminA = identity.Actor{ID: id.NewUserID(), Role: identity.RoleAdmin, AssignedWardID: s.wardA}
	s.adminB = identity.Actor{ID: id.NewUserID(), Role: identity.RoleAdmin, AssignedWardID: s.wardB}
	s.collectorA1 = identity.Actor{ID: id.NewUserID(), Role: identity.RoleDataCollector, AssignedWardID: s.wardA, AssignedVillageID: s.villageA1}
	s.superAdmin = identity.Actor{ID: id.NewUserID(), Role: identity.RoleSuperAdmin}
}

func (s *TransferSuite) register(wardID id.WardID, villageID id.VillageID) *regmodels.Residence {
	s.nidaSeq++
	r, err := s.registry.Register(s.ctx, s.superAdmin, regservice.RegisterCommand{
		HouseNo:       fmt.Sprintf("H-%03d", s.nidaSeq),
		ResidentName:  "Resident",
		NIDANumber:    id.NIDANumber(fmt.Sprintf("%020d", s.nidaSeq)),
		WardID:        wardID,
		VillageID:     villageID,
		FamilyMembers: 2,
	})
	s.Require().NoError(err)
	return r
}

func (s *TransferSuite) request(actor identity.Actor, r *regmodels.Residence, toWard id.WardID, toVillage id.VillageID) *models.Transfer {
	t, err := s.service.RequestTransfer(s.ctx, actor, RequestCommand{
		ResidenceID: r.ID,
		ToWardID:    toWard,
		ToVillageID: toVillage,
		Reason:      "household relocation",
	})
	s.Require().NoError(err)
	return t
}

func (s *TransferSuite) residenceLocation(residenceID id.ResidenceID) (id.WardID, id.VillageID) {
	r, err := s.residences.FindByID(s.ctx, residenceID)
	s.Require().NoError(err)
	return r.WardID, r.VillageID
}

// drainEvents discards everything queued on the audit channel so far.
func (s *TransferSuite) drainEvents() {
	for {
		select {
		case <-s.events.Events():
		default:
			return
		}
	}
}

func (s *TransferSuite) nextEvent() audit.Event {
	select {
	case e := <-s.events.Events():
		return e
	default:
		s.Require().FailNow("no audit event queued")
		return audit.Event{}
	}
}

func (s *TransferSuite) TestVeoTransferFullChain() {
	r := s.register(s.wardA, s.villageA1)

	t := s.request(s.veoA1, r, s.wardB, s.villageB1)
	s.Equal(models.TypeVeo, t.Type)
	s.Equal(models.StatusPendingApproval, t.Status)
	wardID, villageID := s.residenceLocation(r.ID)
	s.Equal(s.wardA, wardID)
	s.Equal(s.villageA1, villageID)

	t, err := s.service.ApproveAsWeo(s.ctx, s.weoA, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusWeoApproved, t.Status)
	s.Equal(s.weoA.ID, t.WeoApprovedBy)

	t, err = s.service.ApproveAsReceivingWard(s.ctx, s.adminB, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusWardApproved, t.Status)
	wardID, _ = s.residenceLocation(r.ID)
	s.Equal(s.wardA, wardID, "residence must not move before the final step")

	t, err = s.service.AcceptAsReceivingVeo(s.ctx, s.veoB1, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, t.Status)
	s.Equal(s.veoB1.ID, t.VeoAcceptedBy)
	s.Require().NotNil(t.VeoAcceptedAt)

	wardID, villageID = s.residenceLocation(r.ID)
	s.Equal(s.wardB, wardID)
	s.Equal(s.villageB1, villageID)

	moved, err := s.residences.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(regmodels.StatusMoved, moved.Status)
}

func (s *TransferSuite) TestActiveTransferBlocksNewRequest() {
	r := s.register(s.wardA, s.villageA1)
	first := s.request(s.veoA1, r, s.wardB, s.villageB1)

	_, err := s.service.RequestTransfer(s.ctx, s.veoA1, RequestCommand{
		ResidenceID: r.ID,
		ToWardID:    s.wardB,
		ToVillageID: s.villageB2,
		Reason:      "changed my mind",
	})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), first.ID.String())
	s.Contains(err.Error(), string(models.StatusPendingApproval))
}

func (s *TransferSuite) TestAdminOverrideCreatesSecondActiveTransfer() {
	r := s.register(s.wardA, s.villageA1)
	s.request(s.veoA1, r, s.wardB, s.villageB1)

	s.Run("override needs the explicit flag", func() {
		_, err := s.service.RequestTransfer(s.ctx, s.adminA, RequestCommand{
			ResidenceID: r.ID,
			ToWardID:    s.wardB,
			ToVillageID: s.villageB2,
			Reason:      "administrative correction",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("veo cannot override even with the flag", func() {
		_, err := s.service.RequestTransfer(s.ctx, s.veoA1, RequestCommand{
			ResidenceID:   r.ID,
			ToWardID:      s.wardB,
			ToVillageID:   s.villageB2,
			Reason:        "changed my mind",
			AllowOverride: true,
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("admin with the flag creates a second transfer", func() {
		second, err := s.service.RequestTransfer(s.ctx, s.adminA, RequestCommand{
			ResidenceID:   r.ID,
			ToWardID:      s.wardB,
			ToVillageID:   s.villageB2,
			Reason:        "administrative correction",
			AllowOverride: true,
		})
		s.Require().NoError(err)
		s.Equal(models.TypeWardAdmin, second.Type)

		history, err := s.service.ListByResidence(s.ctx, s.superAdmin, r.ID)
		s.Require().NoError(err)
		s.Len(history, 2)
	})
}

func (s *TransferSuite) TestSuperAdminDirectTransfer() {
	r := s.register(s.wardA, s.villageA1)

	t := s.request(s.superAdmin, r, s.wardB, s.villageB1)
	s.Equal(models.TypeDirect, t.Type)
	s.Equal(models.StatusCompleted, t.Status)

	wardID, villageID := s.residenceLocation(r.ID)
	s.Equal(s.wardB, wardID)
	s.Equal(s.villageB1, villageID)

	history, err := s.service.ListByResidence(s.ctx, s.superAdmin, r.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1, "the direct path still leaves an audit row")
	s.Equal(models.StatusCompleted, history[0].Status)
}

func (s *TransferSuite) TestWardAdminTransferCompletesOnWardApproval() {
	r := s.register(s.wardA, s.villageA1)

	t := s.request(s.adminA, r, s.wardB, s.villageB1)
	s.Equal(models.TypeWardAdmin, t.Type)
	s.Equal(models.StatusPendingApproval, t.Status)

	t, err := s.service.ApproveAsReceivingWard(s.ctx, s.adminB, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, t.Status)
	s.Require().NotNil(t.WardApprovedAt)

	wardID, villageID := s.residenceLocation(r.ID)
	s.Equal(s.wardB, wardID)
	s.Equal(s.villageB1, villageID)
}

func (s *TransferSuite) TestRejectTerminatesTransfer() {
	r := s.register(s.wardA, s.villageA1)
	t := s.request(s.adminA, r, s.wardB, s.villageB1)

	t, err := s.service.Reject(s.ctx, s.adminB, t.ID, "target household not recognized")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, t.Status)
	s.Equal(s.adminB.ID, t.RejectedBy)
	s.Equal("target household not recognized", t.RejectionReason)

	wardID, villageID := s.residenceLocation(r.ID)
	s.Equal(s.wardA, wardID, "rejection must not move the residence")
	s.Equal(s.villageA1, villageID)

	_, err = s.service.ApproveAsReceivingWard(s.ctx, s.adminB, t.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	_, err = s.service.Reject(s.ctx, s.adminB, t.ID, "again")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *TransferSuite) TestRejectRequiresStageAuthority() {
	r := s.register(s.wardA, s.villageA1)
	t := s.request(s.veoA1, r, s.wardB, s.villageB1)

	s.Run("requesting veo cannot reject their own pending transfer", func() {
		_, err := s.service.Reject(s.ctx, s.veoA1, t.ID, "changed my mind")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("origin weo rejects a pending veo transfer", func() {
		rejected, err := s.service.Reject(s.ctx, s.weoA, t.ID, "insufficient grounds")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
	})

	s.Run("receiving veo rejects a ward approved transfer", func() {
		r2 := s.register(s.wardA, s.villageA1)
		t2 := s.request(s.veoA1, r2, s.wardB, s.villageB1)
		_, err := s.service.ApproveAsWeo(s.ctx, s.weoA, t2.ID)
		s.Require().NoError(err)
		_, err = s.service.ApproveAsReceivingWard(s.ctx, s.adminB, t2.ID)
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctx, s.adminB, t2.ID, "not mine anymore")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))

		rejected, err := s.service.Reject(s.ctx, s.veoB1, t2.ID, "household refused")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
	})

	s.Run("superadmin may reject at any stage", func() {
		r3 := s.register(s.wardA, s.villageA1)
		t3 := s.request(s.veoA1, r3, s.wardB, s.villageB1)
		rejected, err := s.service.Reject(s.ctx, s.superAdmin, t3.ID, "duplicate request")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)
	})

	s.Run("empty reason is invalid", func() {
		r4 := s.register(s.wardA, s.villageA1)
		t4 := s.request(s.veoA1, r4, s.wardB, s.villageB1)
		_, err := s.service.Reject(s.ctx, s.weoA, t4.ID, "")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *TransferSuite) TestApprovalAuthorityBoundaries() {
	r := s.register(s.wardA, s.villageA1)
	t := s.request(s.veoA1, r, s.wardB, s.villageB1)

	s.Run("veo cannot approve as weo", func() {
		_, err := s.service.ApproveAsWeo(s.ctx, s.veoA1, t.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("weo of another ward cannot approve", func() {
		weoB := identity.Actor{ID: id.NewUserID(), Role: identity.RoleWeo, AssignedWardID: s.wardB}
		_, err := s.service.ApproveAsWeo(s.ctx, weoB, t.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("origin admin cannot approve for the receiving ward", func() {
		_, err := s.service.ApproveAsWeo(s.ctx, s.weoA, t.ID)
		s.Require().NoError(err)
		_, err = s.service.ApproveAsReceivingWard(s.ctx, s.adminA, t.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("wrong village veo cannot accept", func() {
		_, err := s.service.ApproveAsReceivingWard(s.ctx, s.adminB, t.ID)
		s.Require().NoError(err)
		veoB2 := identity.Actor{ID: id.NewUserID(), Role: identity.RoleVeo, AssignedWardID: s.wardB, AssignedVillageID: s.villageB2}
		_, err = s.service.AcceptAsReceivingVeo(s.ctx, veoB2, t.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *TransferSuite) TestRequestValidation() {
	r := s.register(s.wardA, s.villageA1)

	s.Run("data collector cannot request", func() {
		_, err := s.service.RequestTransfer(s.ctx, s.collectorA1, RequestCommand{
			ResidenceID: r.ID, ToWardID: s.wardB, ToVillageID: s.villageB1, Reason: "reason",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("veo cannot request for a residence outside their village", func() {
		outside := s.register(s.wardB, s.villageB1)
		_, err := s.service.RequestTransfer(s.ctx, s.veoA1, RequestCommand{
			ResidenceID: outside.ID, ToWardID: s.wardA, ToVillageID: s.villageA1, Reason: "reason",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("target equal to current location is invalid", func() {
		_, err := s.service.RequestTransfer(s.ctx, s.veoA1, RequestCommand{
			ResidenceID: r.ID, ToWardID: s.wardA, ToVillageID: s.villageA1, Reason: "reason",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("target village must belong to target ward", func() {
		_, err := s.service.RequestTransfer(s.ctx, s.veoA1, RequestCommand{
			ResidenceID: r.ID, ToWardID: s.wardA, ToVillageID: s.villageB1, Reason: "reason",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty reason is invalid", func() {
		_, err := s.service.RequestTransfer(s.ctx, s.veoA1, RequestCommand{
			ResidenceID: r.ID, ToWardID: s.wardB, ToVillageID: s.villageB1, Reason: "   ",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown residence is not found", func() {
		_, err := s.service.RequestTransfer(s.ctx, s.superAdmin, RequestCommand{
			ResidenceID: id.NewResidenceID(), ToWardID: s.wardB, ToVillageID: s.villageB1, Reason: "reason",
		})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TransferSuite) TestDoubleApprovalIsInvalidState() {
	r := s.register(s.wardA, s.villageA1)
	t := s.request(s.veoA1, r, s.wardB, s.villageB1)

	_, err := s.service.ApproveAsWeo(s.ctx, s.weoA, t.ID)
	s.Require().NoError(err)
	_, err = s.service.ApproveAsWeo(s.ctx, s.weoA, t.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	_, err = s.service.ApproveAsReceivingWard(s.ctx, s.adminB, t.ID)
	s.Require().NoError(err)
	_, err = s.service.ApproveAsReceivingWard(s.ctx, s.adminB, t.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *TransferSuite) TestGetTransferProgress() {
	r := s.register(s.wardA, s.villageA1)
	t := s.request(s.veoA1, r, s.wardB, s.villageB1)

	_, progress, err := s.service.GetTransfer(s.ctx, s.veoA1, t.ID)
	s.Require().NoError(err)
	s.Equal(25, progress.ProgressPercent)
	s.Equal("WEO of the origin ward", progress.WaitingFor)

	s.Run("receiving side may view the transfer", func() {
		_, _, err := s.service.GetTransfer(s.ctx, s.veoB1, t.ID)
		s.Require().NoError(err)
	})

	s.Run("uninvolved actor may not", func() {
		veoB2 := identity.Actor{ID: id.NewUserID(), Role: identity.RoleVeo, AssignedWardID: s.wardB, AssignedVillageID: s.villageB2}
		_, _, err := s.service.GetTransfer(s.ctx, veoB2, t.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown transfer is not found", func() {
		_, _, err := s.service.GetTransfer(s.ctx, s.superAdmin, id.NewTransferID())
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TransferSuite) TestListByResidenceScope() {
	r := s.register(s.wardA, s.villageA1)
	s.request(s.veoA1, r, s.wardB, s.villageB1)

	history, err := s.service.ListByResidence(s.ctx, s.veoA1, r.ID)
	s.Require().NoError(err)
	s.Len(history, 1)

	veoB2 := identity.Actor{ID: id.NewUserID(), Role: identity.RoleVeo, AssignedWardID: s.wardB, AssignedVillageID: s.villageB2}
	_, err = s.service.ListByResidence(s.ctx, veoB2, r.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *TransferSuite) TestDeniedApprovalAuditsAttemptedAction() {
	r := s.register(s.wardA, s.villageA1)
	t := s.request(s.veoA1, r, s.wardB, s.villageB1)
	s.drainEvents()

	weoB := identity.Actor{ID: id.NewUserID(), Role: identity.RoleWeo, AssignedWardID: s.wardB}
	_, err := s.service.ApproveAsWeo(s.ctx, weoB, t.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))

	denial := s.nextEvent()
	s.Equal(string(audit.EventTransferWeoApproved), denial.Action)
	s.Equal(audit.DecisionDenied, denial.Decision)
	s.Equal(audit.CategorySecurity, denial.Category)
	s.Equal(weoB.ID, denial.ActorID)
}
