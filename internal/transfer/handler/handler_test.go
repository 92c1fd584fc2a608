package handler_test

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	identity "civreg/internal/identity/models"
	"civreg/internal/transfer/handler"
	"civreg/internal/transfer/handler/mocks"
	"civreg/internal/transfer/models"
	"civreg/internal/transfer/service"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/requestcontext"
	"civreg/pkg/testutil"
)

type fixture struct {
	service *mocks.MockService
	actors  *mocks.MockActorResolver
	router  chi.Router
	actor   identity.Actor
}

func setup(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		service: mocks.NewMockService(ctrl),
		actors:  mocks.NewMockActorResolver(ctrl),
		actor:   identity.Actor{ID: id.NewUserID(), Role: identity.RoleVeo, AssignedWardID: id.NewWardID(), AssignedVillageID: id.NewVillageID()},
	}
	f.router = chi.NewRouter()
	handler.New(f.service, f.actors, slog.Default()).Register(f.router)
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	f.actors.EXPECT().ResolveActor(gomock.Any(), f.actor.ID).Return(f.actor, nil)
	return req.WithContext(requestcontext.WithActorID(req.Context(), f.actor.ID))
}

func sampleTransfer() *models.Transfer {
	now := time.Now().UTC()
	return &models.Transfer{
		ID:            id.NewTransferID(),
		ResidenceID:   id.NewResidenceID(),
		FromWardID:    id.NewWardID(),
		FromVillageID: id.NewVillageID(),
		ToWardID:      id.NewWardID(),
		ToVillageID:   id.NewVillageID(),
		Type:          models.TypeVeo,
		Reason:        "household relocation",
		RequestedBy:   id.NewUserID(),
		Status:        models.StatusPendingApproval,
		CreatedAt:     now,
	}
}

func TestHandleRequest(t *testing.T) {
	t.Run("creates a transfer", func(t *testing.T) {
		f := setup(t)
		expected := sampleTransfer()
		f.service.EXPECT().
			RequestTransfer(gomock.Any(), f.actor, service.RequestCommand{
				ResidenceID: expected.ResidenceID,
				ToWardID:    expected.ToWardID,
				ToVillageID: expected.ToVillageID,
				Reason:      "household relocation",
			}).
			Return(expected, nil)

		req := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/transfers", map[string]any{
			"residence_id":  expected.ResidenceID.String(),
			"to_ward_id":    expected.ToWardID.String(),
			"to_village_id": expected.ToVillageID.String(),
			"reason":        "household relocation",
		}))
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[handler.TransferResponse](t, rr)
		require.Equal(t, expected.ID.String(), resp.ID)
		require.Equal(t, string(models.StatusPendingApproval), resp.Status)
	})

	t.Run("rejects malformed target ids", func(t *testing.T) {
		f := setup(t)
		req := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/transfers", map[string]any{
			"residence_id":  id.NewResidenceID().String(),
			"to_ward_id":    "not-a-uuid",
			"to_village_id": id.NewVillageID().String(),
			"reason":        "household relocation",
		}))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	t.Run("maps conflicts to 409", func(t *testing.T) {
		f := setup(t)
		f.service.EXPECT().
			RequestTransfer(gomock.Any(), f.actor, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "residence has an active transfer"))

		req := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/transfers", map[string]any{
			"residence_id":  id.NewResidenceID().String(),
			"to_ward_id":    id.NewWardID().String(),
			"to_village_id": id.NewVillageID().String(),
			"reason":        "household relocation",
		}))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeConflict))
	})
}

func TestHandleApprovalSteps(t *testing.T) {
	f := setup(t)
	approved := sampleTransfer()
	approved.ApplyWeoApproval(f.actor.ID, time.Now())
	f.service.EXPECT().
		ApproveAsWeo(gomock.Any(), f.actor, approved.ID).
		Return(approved, nil)

	req := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/transfers/"+approved.ID.String()+"/approve/weo", nil))
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[handler.TransferResponse](t, rr)
	require.Equal(t, string(models.StatusWeoApproved), resp.Status)
	require.Equal(t, f.actor.ID.String(), resp.WeoApprovedBy)
}

func TestHandleApprovalInvalidState(t *testing.T) {
	f := setup(t)
	transferID := id.NewTransferID()
	f.service.EXPECT().
		ApproveAsReceivingWard(gomock.Any(), f.actor, transferID).
		Return(nil, dErrors.New(dErrors.CodeInvalidState, "transfer is already completed"))

	req := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/transfers/"+transferID.String()+"/approve/ward", nil))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeInvalidState))
}

func TestHandleReject(t *testing.T) {
	t.Run("rejects with a reason", func(t *testing.T) {
		f := setup(t)
		rejected := sampleTransfer()
		rejected.ApplyRejection(f.actor.ID, time.Now(), "household refused")
		f.service.EXPECT().
			Reject(gomock.Any(), f.actor, rejected.ID, "household refused").
			Return(rejected, nil)

		req := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/transfers/"+rejected.ID.String()+"/reject",
			map[string]string{"reason": "household refused"}))
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.TransferResponse](t, rr)
		require.Equal(t, string(models.StatusRejected), resp.Status)
	})

	t.Run("requires a reason", func(t *testing.T) {
		f := setup(t)
		req := f.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/transfers/"+id.NewTransferID().String()+"/reject",
			map[string]string{"reason": "  "}))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func TestHandleGetIncludesProgress(t *testing.T) {
	f := setup(t)
	expected := sampleTransfer()
	f.service.EXPECT().
		GetTransfer(gomock.Any(), f.actor, expected.ID).
		Return(expected, models.Describe(expected), nil)

	req := f.do(t, testutil.NewRequest(t, http.MethodGet, "/transfers/"+expected.ID.String()))
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[handler.TransferDetailsResponse](t, rr)
	require.Equal(t, expected.ID.String(), resp.Transfer.ID)
	require.Equal(t, 25, resp.Progress.ProgressPercent)
	require.Equal(t, "WEO of the origin ward", resp.Progress.WaitingFor)
}

func TestHandleListByResidence(t *testing.T) {
	f := setup(t)
	first := sampleTransfer()
	f.service.EXPECT().
		ListByResidence(gomock.Any(), f.actor, first.ResidenceID).
		Return([]*models.Transfer{first}, nil)

	req := f.do(t, testutil.NewRequest(t, http.MethodGet, "/residences/"+first.ResidenceID.String()+"/transfers"))
	rr := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[handler.TransferListResponse](t, rr)
	require.Len(t, resp.Transfers, 1)
}
