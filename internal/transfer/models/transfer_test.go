package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

func newVeoTransfer(t *testing.T) *Transfer {
	t.Helper()
	tr, err := NewTransfer(id.NewTransferID(), id.NewResidenceID(),
		id.NewWardID(), id.NewVillageID(), id.NewWardID(), id.NewVillageID(),
		TypeVeo, "family relocated for work", id.NewUserID(), time.Now())
	require.NoError(t, err)
	return tr
}

func TestNewTransferValidation(t *testing.T) {
	wardID := id.NewWardID()
	villageID := id.NewVillageID()

	tests := []struct {
		name string
		fn   func() (*Transfer, error)
	}{
		{"missing residence", func() (*Transfer, error) {
			return NewTransfer(id.NewTransferID(), id.ResidenceID{}, wardID, villageID,
				id.NewWardID(), id.NewVillageID(), TypeVeo, "reason", id.NewUserID(), time.Now())
		}},
		{"missing target", func() (*Transfer, error) {
			return NewTransfer(id.NewTransferID(), id.NewResidenceID(), wardID, villageID,
				id.WardID{}, id.VillageID{}, TypeVeo, "reason", id.NewUserID(), time.Now())
		}},
		{"blank reason", func() (*Transfer, error) {
			return NewTransfer(id.NewTransferID(), id.NewResidenceID(), wardID, villageID,
				id.NewWardID(), id.NewVillageID(), TypeVeo, "   ", id.NewUserID(), time.Now())
		}},
		{"unknown type", func() (*Transfer, error) {
			return NewTransfer(id.NewTransferID(), id.NewResidenceID(), wardID, villageID,
				id.NewWardID(), id.NewVillageID(), TransferType("postal"), "reason", id.NewUserID(), time.Now())
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestVeoTransferWalksFullChain(t *testing.T) {
	tr := newVeoTransfer(t)
	now := time.Now()

	assert.Equal(t, StatusPendingApproval, tr.Status)
	assert.True(t, tr.Active())

	weo := id.NewUserID()
	require.NoError(t, tr.CanApproveAsWeo())
	tr.ApplyWeoApproval(weo, now)
	assert.Equal(t, StatusWeoApproved, tr.Status)
	assert.Equal(t, weo, tr.WeoApprovedBy)
	require.NotNil(t, tr.WeoApprovedAt)

	admin := id.NewUserID()
	require.NoError(t, tr.CanApproveAsReceivingWard())
	tr.ApplyWardApproval(admin, now)
	assert.Equal(t, StatusWardApproved, tr.Status)

	veo := id.NewUserID()
	require.NoError(t, tr.CanAcceptAsReceivingVeo())
	tr.ApplyVeoAcceptance(veo, now)
	assert.Equal(t, StatusVeoAccepted, tr.Status)
	assert.Equal(t, veo, tr.VeoAcceptedBy)

	tr.Complete()
	assert.Equal(t, StatusCompleted, tr.Status)
	assert.True(t, tr.Terminal())
}

func TestStatusNeverRegresses(t *testing.T) {
	tr := newVeoTransfer(t)
	tr.ApplyWeoApproval(id.NewUserID(), time.Now())

	err := tr.CanApproveAsWeo()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	tr.ApplyWardApproval(id.NewUserID(), time.Now())
	err = tr.CanApproveAsReceivingWard()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestWardAdminTransferSkipsWeoAndVeoSteps(t *testing.T) {
	tr, err := NewTransfer(id.NewTransferID(), id.NewResidenceID(),
		id.NewWardID(), id.NewVillageID(), id.NewWardID(), id.NewVillageID(),
		TypeWardAdmin, "moving closer to relatives", id.NewUserID(), time.Now())
	require.NoError(t, err)

	err = tr.CanApproveAsWeo()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	require.NoError(t, tr.CanApproveAsReceivingWard())

	err = tr.CanAcceptAsReceivingVeo()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestVeoTransferCannotSkipWeoApproval(t *testing.T) {
	tr := newVeoTransfer(t)
	err := tr.CanApproveAsReceivingWard()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.ErrorContains(t, err, "awaiting WEO approval")

	err = tr.CanAcceptAsReceivingVeo()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestTerminalTransferIsImmutable(t *testing.T) {
	rejected := newVeoTransfer(t)
	rejected.ApplyRejection(id.NewUserID(), time.Now(), "wrong target village")
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "wrong target village", rejected.RejectionReason)

	completed := newVeoTransfer(t)
	completed.ApplyWeoApproval(id.NewUserID(), time.Now())
	completed.ApplyWardApproval(id.NewUserID(), time.Now())
	completed.ApplyVeoAcceptance(id.NewUserID(), time.Now())
	completed.Complete()

	for _, tr := range []*Transfer{rejected, completed} {
		assert.True(t, tr.Terminal())
		for _, err := range []error{
			tr.CanApproveAsWeo(),
			tr.CanApproveAsReceivingWard(),
			tr.CanAcceptAsReceivingVeo(),
			tr.CanReject(),
		} {
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		}
	}
}

func TestDescribeProgress(t *testing.T) {
	veo := newVeoTransfer(t)
	wardAdmin, err := NewTransfer(id.NewTransferID(), id.NewResidenceID(),
		id.NewWardID(), id.NewVillageID(), id.NewWardID(), id.NewVillageID(),
		TypeWardAdmin, "reason", id.NewUserID(), time.Now())
	require.NoError(t, err)

	p := Describe(veo)
	assert.Equal(t, 25, p.ProgressPercent)
	assert.Equal(t, "WEO of the origin ward", p.WaitingFor)

	p = Describe(wardAdmin)
	assert.Equal(t, 25, p.ProgressPercent)
	assert.Equal(t, "Admin of the receiving ward", p.WaitingFor)

	veo.ApplyWeoApproval(id.NewUserID(), time.Now())
	assert.Equal(t, 50, Describe(veo).ProgressPercent)

	veo.ApplyWardApproval(id.NewUserID(), time.Now())
	assert.Equal(t, 75, Describe(veo).ProgressPercent)

	veo.ApplyVeoAcceptance(id.NewUserID(), time.Now())
	assert.Equal(t, 100, Describe(veo).ProgressPercent)

	veo.Complete()
	p = Describe(veo)
	assert.Equal(t, 100, p.ProgressPercent)
	assert.Equal(t, "Completed", p.Stage)

	wardAdmin.ApplyRejection(id.NewUserID(), time.Now(), "reason")
	p = Describe(wardAdmin)
	assert.Equal(t, 0, p.ProgressPercent)
	assert.Equal(t, "Rejected", p.Stage)
}
