package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am-muhwezi/ptf-sub000/internal/member"
	"github.com/am-muhwezi/ptf-sub000/internal/subscription"
)

func TestSubscriptionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	f := newFixture(t, db)
	ctx := context.Background()

	m := createTestMember(t, db, "+254700000010")

	sub, err := f.issuer.Issue(ctx, subscription.IssueParams{
		MemberID: m.ID,
		PlanCode: "indoor_monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, sub.Status)
	assert.Equal(t, subscription.PaymentPending, sub.PaymentStatus)

	// Only one running subscription per membership type.
	_, err = f.issuer.Issue(ctx, subscription.IssueParams{
		MemberID: m.ID,
		PlanCode: "indoor_monthly",
	})
	assert.ErrorIs(t, err, subscription.ErrActiveExists)

	err = f.issuer.RecordPayment(ctx, sub.ID, subscription.PaymentPaid, decimal.New(8000, 0))
	require.NoError(t, err)

	paid, err := f.subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.PaymentPaid, paid.PaymentStatus)

	suspended, err := f.issuer.Suspend(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusSuspended, suspended.Status)

	// Suspended is not admissible.
	_, err = f.issuer.Suspend(ctx, sub.ID)
	assert.ErrorIs(t, err, subscription.ErrInvalidStateTransition)

	reactivated, err := f.issuer.Reactivate(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, reactivated.Status)

	cancelled, err := f.issuer.Cancel(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, cancelled.Status)

	_, err = f.issuer.Reactivate(ctx, sub.ID)
	assert.ErrorIs(t, err, subscription.ErrInvalidStateTransition)
}

func TestSubscriptionRenewal(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	f := newFixture(t, db)
	ctx := context.Background()

	m := createTestMember(t, db, "+254700000011")
	sub := f.issuePaid(t, m.ID, "indoor_monthly")

	accountant := subscription.NewAccountant(f.db, f.subs, f.clk, time.UTC)
	_, _, err := accountant.UseSession(ctx, sub.ID, subscription.LogRegular, nil)
	require.NoError(t, err)

	// Early renewal extends from the current end date and resets the budget.
	renewed, err := f.issuer.Renew(ctx, sub.ID, subscription.RenewRequest{
		PaymentStatus: subscription.PaymentPaid,
		AmountPaid:    decimal.New(8000, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, renewed.SessionsUsed)
	assert.True(t, renewed.EndDate.After(sub.EndDate))

	logs, err := f.subs.ListSessionLogs(ctx, sub.ID, 50)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, subscription.LogRegular, logs[0].Type)
}

func TestMemberDirectory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	f := newFixture(t, db)
	ctx := context.Background()

	m := createTestMember(t, db, "+254700000012")
	assert.NotEmpty(t, m.MemberCode)

	// Phone numbers are unique across the directory.
	_, err := f.members.Create(ctx, member.CreateParams{
		FirstName:             "Atieno",
		LastName:              "Odhiambo",
		Phone:                 "+254700000012",
		EmergencyContactName:  "Mary Odhiambo",
		EmergencyContactPhone: "+254700000098",
	})
	var dup *member.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "phone", dup.Field)

	found, err := f.members.Search(ctx, "wanjiru", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, m.ID, found[0].ID)

	profile, err := f.members.UpsertPhysicalProfile(ctx, m.ID, member.ProfileParams{
		HeightCM:     170,
		WeightKG:     68,
		FitnessLevel: member.FitnessIntermediate,
	})
	require.NoError(t, err)
	assert.InDelta(t, 23.5, profile.BMI, 0.1)

	require.NoError(t, f.members.Deactivate(ctx, m.ID))
	gone, err := f.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, member.StatusInactive, gone.Status)
}
